// Package dag implements the dependency graph the pipeline runner schedules
// over: a concurrency-safe set of named nodes and directed edges, with cycle
// detection and a deterministic topological order.
package dag
