// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the lifecycle of loading and running
// pipeline files, decoupled from any specific entrypoint like a CLI.
package app
