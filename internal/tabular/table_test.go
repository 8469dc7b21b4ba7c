package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

func TestNewTable(t *testing.T) {
	_, err := NewTable(Column{Name: "a", Type: valuetype.Text}, Column{Name: "a", Type: valuetype.Integer})
	assert.ErrorContains(t, err, `column "a" already exists`)

	_, err = NewTable(Column{Name: "r", Type: valuetype.Regex})
	assert.ErrorContains(t, err, "not a valid column type")
}

func TestAppendRow(t *testing.T) {
	tbl, err := NewTable(Column{Name: "name", Type: valuetype.Text}, Column{Name: "cyl", Type: valuetype.Integer})
	require.NoError(t, err)

	require.NoError(t, tbl.AppendRow([]cty.Value{cty.StringVal("Valiant"), cty.NumberIntVal(6)}))
	require.NoError(t, tbl.AppendRow([]cty.Value{cty.StringVal("Duster"), cty.NullVal(cty.Number)}))

	assert.ErrorContains(t, tbl.AppendRow([]cty.Value{cty.StringVal("x")}), "row has 1 value(s), table has 2 column(s)")
	assert.ErrorContains(t, tbl.AppendRow([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(1)}), `column "name" holds text`)

	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, 2, tbl.NumCols())
	assert.True(t, tbl.Value(1, 1).IsNull())

	idx, ok := tbl.ColumnIndex("cyl")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = tbl.ColumnIndex("mpg")
	assert.False(t, ok)
}

func TestAddColumn_KeepsRowsConsistent(t *testing.T) {
	tbl, err := NewTable(Column{Name: "name", Type: valuetype.Text})
	require.NoError(t, err)
	require.NoError(t, tbl.AppendRow([]cty.Value{cty.StringVal("Valiant")}))

	wider, err := tbl.AddColumn(Column{Name: "automatic", Type: valuetype.Boolean})
	require.NoError(t, err)

	assert.Equal(t, 1, tbl.NumCols(), "original is untouched")
	assert.Equal(t, 2, wider.NumCols())
	for i := 0; i < wider.NumRows(); i++ {
		assert.Len(t, wider.Row(i), wider.NumCols())
	}
	assert.True(t, wider.Value(0, 1).IsNull())
}

func TestTableClone(t *testing.T) {
	tbl, err := NewTable(Column{Name: "name", Type: valuetype.Text})
	require.NoError(t, err)
	require.NoError(t, tbl.AppendRow([]cty.Value{cty.StringVal("Valiant")}))

	clone := tbl.Clone()
	require.NoError(t, clone.AppendRow([]cty.Value{cty.StringVal("Duster")}))
	assert.Equal(t, 1, tbl.NumRows())
	assert.Equal(t, 2, clone.NumRows())
	assert.Equal(t, []Column{{Name: "name", Type: valuetype.Text}}, clone.Columns())
}

func TestTablePreview(t *testing.T) {
	tbl, err := NewTable(Column{Name: "name", Type: valuetype.Text}, Column{Name: "mpg", Type: valuetype.Decimal})
	require.NoError(t, err)
	require.NoError(t, tbl.AppendRow([]cty.Value{cty.StringVal("Valiant"), cty.NumberFloatVal(18.1)}))
	require.NoError(t, tbl.AppendRow([]cty.Value{cty.StringVal("Duster"), cty.NilVal}))

	p := tbl.Preview(10)
	assert.Contains(t, p, "name (text)")
	assert.Contains(t, p, "18.1")
	assert.Contains(t, p, "NULL")
}
