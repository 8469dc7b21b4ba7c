// Package sheet provides blocks that reshape sheets: selecting a range,
// writing cells and deleting whole columns or rows.
package sheet

import (
	"fmt"

	"github.com/vk/tabflow/internal/cells"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/registry"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

var rangeList = valuetype.CollectionOf(valuetype.Of(valuetype.CellRange))

// Register registers CellRangeSelector, CellWriter, ColumnDeleter and
// RowDeleter.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBlock(&meta.BlockType{
		Name:   "CellRangeSelector",
		Input:  iotype.Sheet,
		Output: iotype.Sheet,
		Properties: meta.Properties{
			"select": {Type: valuetype.Of(valuetype.CellRange),
				Docs: meta.Docs{Description: "The range to keep, e.g. range(\"A1:C*\")."}},
		},
		Docs: meta.Docs{Description: "Keeps only the cells of a range."},
	}, func() registry.Executor { return selector{} })

	r.RegisterBlock(&meta.BlockType{
		Name:   "CellWriter",
		Input:  iotype.Sheet,
		Output: iotype.Sheet,
		Properties: meta.Properties{
			"write": {Type: valuetype.CollectionOf(valuetype.Of(valuetype.Text)),
				Docs: meta.Docs{Description: "Values written one per cell, in order."}},
			"at": {Type: valuetype.Of(valuetype.CellRange), Validate: oneDimensional,
				Docs: meta.Docs{Description: "A cell, or a segment of one row or column, receiving the values."}},
		},
		Docs: meta.Docs{Description: "Overwrites cells with fixed text."},
	}, func() registry.Executor { return writer{} })

	r.RegisterBlock(&meta.BlockType{
		Name:   "ColumnDeleter",
		Input:  iotype.Sheet,
		Output: iotype.Sheet,
		Properties: meta.Properties{
			"delete": {Type: rangeList, Validate: allOf(cells.Range.IsColumn, "a whole column such as column(\"B\")"),
				Docs: meta.Docs{Description: "The columns to delete."}},
		},
		Docs: meta.Docs{Description: "Deletes entire columns."},
	}, func() registry.Executor { return deleter{what: "column", delete: deleteColumns} })

	r.RegisterBlock(&meta.BlockType{
		Name:   "RowDeleter",
		Input:  iotype.Sheet,
		Output: iotype.Sheet,
		Properties: meta.Properties{
			"delete": {Type: rangeList, Validate: allOf(cells.Range.IsRow, "a whole row such as row(2)"),
				Docs: meta.Docs{Description: "The rows to delete."}},
		},
		Docs: meta.Docs{Description: "Deletes entire rows."},
	}, func() registry.Executor { return deleter{what: "row", delete: deleteRows} })
}

func oneDimensional(v cty.Value) error {
	r := valuetype.AsCellRange(v)
	if r.IsColumn() || r.IsRow() || r.IsCell() {
		return nil
	}
	if r.Start.Row == r.End.Row || r.Start.Col == r.End.Col {
		return nil
	}
	return fmt.Errorf("%s spans several rows and columns", r)
}

func allOf(pred func(cells.Range) bool, want string) func(cty.Value) error {
	return func(v cty.Value) error {
		for _, e := range v.AsValueSlice() {
			if r := valuetype.AsCellRange(e); !pred(r) {
				return fmt.Errorf("%s is not %s", r, want)
			}
		}
		return nil
	}
}
