// Package text provides blocks that decode files into lines and edit those
// lines.
package text

import (
	"fmt"
	"math"

	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/registry"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/text/encoding/htmlindex"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers TextFileInterpreter, TextRangeSelector and
// TextLineDeleter.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBlock(&meta.BlockType{
		Name:   "TextFileInterpreter",
		Input:  iotype.File,
		Output: iotype.TextFile,
		Properties: meta.Properties{
			"encoding": {Type: valuetype.Of(valuetype.Text), Default: meta.Default(cty.StringVal("utf-8")),
				Validate: knownEncoding,
				Docs:     meta.Docs{Description: "Character encoding of the file, e.g. utf-8 or windows-1252."}},
			"line_break": {Type: valuetype.Of(valuetype.Regex), Default: meta.Default(valuetype.PatternVal(valuetype.MustPattern(`\r?\n`))),
				Docs: meta.Docs{Description: "Pattern separating lines."}},
		},
		Docs: meta.Docs{Description: "Decodes a file into lines of text."},
	}, func() registry.Executor { return interpreter{} })

	r.RegisterBlock(&meta.BlockType{
		Name:   "TextRangeSelector",
		Input:  iotype.TextFile,
		Output: iotype.TextFile,
		Properties: meta.Properties{
			"line_from": {Type: valuetype.Of(valuetype.Integer), Default: meta.Default(cty.NumberIntVal(1)),
				Validate: positive,
				Docs:     meta.Docs{Description: "First line to keep, counted from 1."}},
			"line_to": {Type: valuetype.Of(valuetype.Integer), Default: meta.Default(cty.NumberIntVal(math.MaxInt32)),
				Validate: positive,
				Docs:     meta.Docs{Description: "Last line to keep; larger values select up to the end."}},
		},
		Docs: meta.Docs{Description: "Keeps a consecutive range of lines."},
	}, func() registry.Executor { return rangeSelector{} })

	r.RegisterBlock(&meta.BlockType{
		Name:   "TextLineDeleter",
		Input:  iotype.TextFile,
		Output: iotype.TextFile,
		Properties: meta.Properties{
			"lines": {Type: valuetype.CollectionOf(valuetype.Of(valuetype.Integer)),
				Docs: meta.Docs{Description: "Numbers of the lines to delete, counted from 1."}},
		},
		Docs: meta.Docs{Description: "Deletes individual lines."},
	}, func() registry.Executor { return lineDeleter{} })
}

func knownEncoding(v cty.Value) error {
	if _, err := htmlindex.Get(v.AsString()); err != nil {
		return fmt.Errorf("unknown encoding %q", v.AsString())
	}
	return nil
}

func positive(v cty.Value) error {
	if v.AsBigFloat().Sign() <= 0 {
		return fmt.Errorf("lines are counted from 1")
	}
	return nil
}
