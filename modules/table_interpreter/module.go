// Package table_interpreter provides the TableInterpreter block, which turns
// a sheet into a typed table and enforces the constraints of its column
// types.
package table_interpreter

import (
	"errors"
	"fmt"

	"github.com/vk/tabflow/internal/constraints"
	"github.com/vk/tabflow/internal/diag"
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
	checker := r.Constraints()
	r.RegisterBlock(&meta.BlockType{
		Name:   "TableInterpreter",
		Input:  iotype.Sheet,
		Output: iotype.Table,
		Properties: meta.Properties{
			"header": {Type: valuetype.Of(valuetype.Boolean), Default: meta.Default(cty.True),
				Docs: meta.Docs{Description: "Whether the first row names the columns. Without a header, columns are taken by position."}},
			"columns": {Type: valuetype.CollectionOf(valuetype.Of(valuetype.ColumnAssignment)), Validate: uniqueNames,
				Docs: meta.Docs{Description: "The columns of the table and their value types."}},
			"on_invalid": {Type: valuetype.Of(valuetype.Text), Default: meta.Default(cty.StringVal(string(constraints.DropRow))),
				Validate: validPolicy,
				Docs:     meta.Docs{Description: "What to do with a cell that does not fit its type: drop_row, null_cell or fail_table."}},
		},
		Docs: meta.Docs{
			Description: "Interprets a sheet as a table with typed columns.",
			Examples: []meta.Example{{
				Code: "block \"Cars\" {\n  type    = \"TableInterpreter\"\n  columns = [\n    { name = \"name\", type = \"text\" },\n    { name = \"mpg\", type = \"decimal\" },\n  ]\n}",
				Description: "Two columns matched by header name.",
			}},
		},
	}, func() registry.Executor { return &interpreter{checker: checker} })
}

type interpreter struct {
	checker *constraints.Checker
}

func (*interpreter) InputKind() iotype.Kind  { return iotype.Sheet }
func (*interpreter) OutputKind() iotype.Kind { return iotype.Table }

func (in *interpreter) Execute(ec *execution.Context, input iotype.Value) (iotype.Value, error) {
	sheet := input.(*tabular.Sheet)
	header := ec.Bool("header")
	columns := ec.Columns("columns")
	policy, err := constraints.ParsePolicy(ec.Text("on_invalid"))
	if err != nil {
		return nil, ec.PropertyErrorf("on_invalid", "%v", err)
	}

	indexes, err := columnIndexes(sheet, columns, header)
	if err != nil {
		return nil, ec.PropertyErrorf("columns", "%v", err)
	}

	schema := make([]tabular.Column, len(columns))
	for i, c := range columns {
		schema[i] = tabular.Column{Name: c.Name, Type: c.Type.Base}
	}
	table, err := tabular.NewTable(schema...)
	if err != nil {
		return nil, ec.PropertyErrorf("columns", "%v", err)
	}

	first := 0
	if header {
		first = 1
	}
	dropped, nulled := 0, 0
rows:
	for row := first; row < sheet.NumRows(); row++ {
		values := make([]cty.Value, len(columns))
		for i, c := range columns {
			v, err := in.cell(ec, sheet.Cell(row, indexes[i]), c.Type)
			if err == nil {
				values[i] = v
				continue
			}
			switch policy {
			case constraints.FailTable:
				return nil, ec.Errorf("row %d, column %q: %v", row+1, c.Name, err)
			case constraints.NullCell:
				nulled++
				values[i] = cty.NullVal(valuetype.Of(c.Type.Base).Cty())
			default:
				ec.Logger().Debug("Dropping invalid row.", "row", row+1, "column", c.Name, "reason", err.Error())
				dropped++
				continue rows
			}
		}
		if err := table.AppendRow(values); err != nil {
			panic(fmt.Sprintf("row %d does not fit its own schema: %v", row+1, err))
		}
	}

	if dropped > 0 {
		ec.Warnf("dropped %d row(s) with invalid values", dropped)
	}
	if nulled > 0 {
		ec.Warnf("replaced %d invalid value(s) with null", nulled)
	}
	ec.Logger().Debug("Interpreted table.", "rows", table.NumRows(), "columns", table.NumCols())
	return table, nil
}

// cell parses raw as a value of vt and checks its constraints.
func (in *interpreter) cell(ec *execution.Context, raw string, vt *valuetype.ValueType) (cty.Value, error) {
	v, err := valuetype.Parse(vt.Base, raw)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%w (expected %s)", err, vt.Name)
	}
	if err := in.checker.Check(ec, vt, v); err != nil {
		return cty.NilVal, errors.New(diag.From(err, ec.DiagNode()).Message)
	}
	return v, nil
}

// columnIndexes maps every column assignment to a sheet column, by header
// name or by position.
func columnIndexes(sheet *tabular.Sheet, columns []valuetype.Column, header bool) ([]int, error) {
	out := make([]int, len(columns))
	if !header {
		if len(columns) > sheet.NumCols() {
			return nil, fmt.Errorf("%d columns declared but the sheet has only %d", len(columns), sheet.NumCols())
		}
		for i := range columns {
			out[i] = i
		}
		return out, nil
	}

	if sheet.NumRows() == 0 {
		return nil, fmt.Errorf("the sheet is empty and has no header row")
	}
	names := make(map[string]int, sheet.NumCols())
	for i, name := range sheet.Row(0) {
		if _, dup := names[name]; !dup {
			names[name] = i
		}
	}
	for i, c := range columns {
		idx, ok := names[c.Name]
		if !ok {
			return nil, fmt.Errorf("no column %q in the header row", c.Name)
		}
		out[i] = idx
	}
	return out, nil
}

func uniqueNames(v cty.Value) error {
	seen := make(map[string]bool)
	for _, e := range v.AsValueSlice() {
		name := valuetype.AsColumn(e).Name
		if seen[name] {
			return fmt.Errorf("column %q is declared twice", name)
		}
		seen[name] = true
	}
	return nil
}

func validPolicy(v cty.Value) error {
	_, err := constraints.ParsePolicy(v.AsString())
	return err
}
