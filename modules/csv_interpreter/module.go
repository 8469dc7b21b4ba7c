// Package csv_interpreter provides the CSVInterpreter block, which parses
// delimited text into a sheet.
package csv_interpreter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/vk/tabflow/internal/execution"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/registry"
	"github.com/vk/tabflow/internal/tabular"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBlock(&meta.BlockType{
		Name:   "CSVInterpreter",
		Input:  iotype.TextFile,
		Output: iotype.Sheet,
		Properties: meta.Properties{
			"delimiter": {Type: valuetype.Of(valuetype.Text), Default: meta.Default(cty.StringVal(",")),
				Validate: validDelimiter,
				Docs:     meta.Docs{Description: "Character separating the cells of a row."}},
			"enclosing": {Type: valuetype.Of(valuetype.Text), Default: meta.Default(cty.StringVal(`"`)),
				Validate: validEnclosing,
				Docs:     meta.Docs{Description: `Character enclosing cells that contain delimiters: " or empty for none.`}},
		},
		Docs: meta.Docs{Description: "Interprets lines of delimiter-separated values as a sheet."},
	}, func() registry.Executor { return interpreter{} })
}

type interpreter struct{}

func (interpreter) InputKind() iotype.Kind  { return iotype.TextFile }
func (interpreter) OutputKind() iotype.Kind { return iotype.Sheet }

func (interpreter) Execute(ec *execution.Context, in iotype.Value) (iotype.Value, error) {
	file := in.(*iotype.TextFileValue)
	delim, _ := utf8.DecodeRuneInString(ec.Text("delimiter"))

	var (
		rows [][]string
		err  error
	)
	if ec.Text("enclosing") == "" {
		rows = splitLines(file.Lines, string(delim))
	} else {
		rows, err = parse(file.Lines, delim)
	}
	if err != nil {
		return nil, ec.Errorf("%s is not valid CSV: %v", file.Name, err)
	}

	sheet := tabular.NewSheet(rows)
	ec.Logger().Debug("Parsed CSV.", "file", file.Name, "rows", sheet.NumRows(), "columns", sheet.NumCols())
	return sheet, nil
}

func parse(lines []string, delim rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	r.Comma = delim
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
}

func splitLines(lines []string, delim string) [][]string {
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, strings.Split(line, delim))
	}
	return rows
}

func validDelimiter(v cty.Value) error {
	s := v.AsString()
	if utf8.RuneCountInString(s) != 1 {
		return fmt.Errorf("delimiter must be exactly one character, got %q", s)
	}
	switch s {
	case "\r", "\n", `"`:
		return fmt.Errorf("%q cannot be used as delimiter", s)
	}
	return nil
}

func validEnclosing(v cty.Value) error {
	switch v.AsString() {
	case `"`, "":
		return nil
	}
	return fmt.Errorf(`enclosing must be " or empty, got %q`, v.AsString())
}
