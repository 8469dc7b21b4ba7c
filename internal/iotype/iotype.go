// Package iotype enumerates the kinds of data that flow between blocks and
// implements the file-shaped values. Sheets and tables live in package
// tabular.
package iotype

import "fmt"

// Kind is the closed set of data shapes blocks exchange.
type Kind int

const (
	Nothing Kind = iota
	File
	TextFile
	FileSystem
	Sheet
	Table
)

var kindNames = [...]string{"None", "File", "TextFile", "FileSystem", "Sheet", "Table"}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is implemented by everything one block may hand to the next.
type Value interface {
	Kind() Kind
}

type nothing struct{}

func (nothing) Kind() Kind { return Nothing }

// None is the unit value consumed by sources and produced by sinks.
var None Value = nothing{}
