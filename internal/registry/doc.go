// Package registry provides the central "glue" for the module system.
//
// The Registry maps the block type names used in pipeline files (e.g.
// "CSVInterpreter") to the Go factories that implement them, and owns the
// Type Catalogue describing those blocks to the loader. Constraint types are
// registered alongside, so one Registry holds everything a run dispatches to.
//
// During application startup, the registry is populated and then validated to
// ensure that the Go code and the catalogue descriptors are in sync,
// preventing a wide class of runtime errors.
package registry
