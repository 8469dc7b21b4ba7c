package tabular

import (
	"fmt"
	"slices"

	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

// Column is a named, typed table column. Cells of every column may be null.
type Column struct {
	Name string
	Type valuetype.Primitive
}

// Table is a row set with a fixed schema. Every row holds exactly one value
// per column, typed as the column's primitive or null.
type Table struct {
	columns []Column
	rows    [][]cty.Value
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{}
	for _, c := range columns {
		if err := t.addColumn(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Kind implements iotype.Value.
func (*Table) Kind() iotype.Kind { return iotype.Table }

func (t *Table) addColumn(c Column) error {
	if !c.Type.IsScalar() {
		return fmt.Errorf("column %q: %s is not a valid column type", c.Name, c.Type)
	}
	if _, exists := t.ColumnIndex(c.Name); exists {
		return fmt.Errorf("column %q already exists", c.Name)
	}
	t.columns = append(t.columns, c)
	null := cty.NullVal(valuetype.Of(c.Type).Cty())
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], null)
	}
	return nil
}

// AddColumn returns a copy of t with c appended. Existing rows get null in
// the new column.
func (t *Table) AddColumn(c Column) (*Table, error) {
	out := t.Clone()
	if err := out.addColumn(c); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendRow adds a row in place. It is meant for building a table before
// handing it on; values must match the schema in count and type.
func (t *Table) AppendRow(values []cty.Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d value(s), table has %d column(s)", len(values), len(t.columns))
	}
	row := make([]cty.Value, len(values))
	for i, v := range values {
		want := valuetype.Of(t.columns[i].Type).Cty()
		if v.Type() == cty.NilType {
			v = cty.NullVal(want)
		}
		if !v.Type().Equals(want) {
			return fmt.Errorf("column %q holds %s, got %s", t.columns[i].Name, t.columns[i].Type, v.Type().FriendlyName())
		}
		row[i] = v
	}
	t.rows = append(t.rows, row)
	return nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.columns) }

// Columns returns a copy of the schema.
func (t *Table) Columns() []Column { return slices.Clone(t.columns) }

// ColumnIndex looks up a column by name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i := slices.IndexFunc(t.columns, func(c Column) bool { return c.Name == name })
	return i, i >= 0
}

// Row returns a copy of one row.
func (t *Table) Row(i int) []cty.Value { return slices.Clone(t.rows[i]) }

// Value returns one cell.
func (t *Table) Value(row, col int) cty.Value { return t.rows[row][col] }

// Clone returns an independent copy.
func (t *Table) Clone() *Table {
	rows := make([][]cty.Value, len(t.rows))
	for i, r := range t.rows {
		rows[i] = slices.Clone(r)
	}
	return &Table{columns: slices.Clone(t.columns), rows: rows}
}

// DisplayValue renders a cell for humans.
func DisplayValue(v cty.Value) string {
	switch {
	case v.IsNull():
		return "NULL"
	case v.Type() == cty.String:
		return v.AsString()
	case v.Type() == cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case v.Type() == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	}
	return v.GoString()
}
