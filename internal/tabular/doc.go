// Package tabular implements the two in-memory data shapes most blocks work
// on: the Sheet, a grid of raw text cells, and the Table, a schema-consistent
// set of typed columns. Both have value semantics: every transformation
// returns a new value and leaves its receiver untouched.
package tabular
