// Package meta holds the type catalogue: the descriptors of every block
// type and constraint type the interpreter knows about.
//
// The catalogue is populated once at startup and read concurrently
// afterwards. Registering the same name twice is a programming error and
// panics immediately, mirroring the registry package.
package meta
