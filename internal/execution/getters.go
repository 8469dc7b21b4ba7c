package execution

import (
	"fmt"

	"github.com/vk/tabflow/internal/cells"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

func (c *Context) typed(name string, want valuetype.Type) cty.Value {
	spec := c.props[name]
	if _, ok := c.props[name]; ok && !spec.Type.Equals(want) {
		panic(fmt.Sprintf("property %q of '%s' is declared as %s, read as %s", name, c.node.NodeName(), spec.Type, want))
	}
	return c.Value(name)
}

func (c *Context) decode(name string, want valuetype.Type, target any) {
	v := c.typed(name, want)
	if err := gocty.FromCtyValue(v, target); err != nil {
		panic(fmt.Sprintf("property %q of '%s': %v", name, c.node.NodeName(), err))
	}
}

// Text reads a text property.
func (c *Context) Text(name string) string {
	var s string
	c.decode(name, valuetype.Of(valuetype.Text), &s)
	return s
}

// Integer reads an integer property.
func (c *Context) Integer(name string) int {
	var n int
	c.decode(name, valuetype.Of(valuetype.Integer), &n)
	return n
}

// Number reads a numeric property of either integer or decimal type.
func (c *Context) Number(name string) float64 {
	want := valuetype.Of(valuetype.Decimal)
	if spec, ok := c.props[name]; ok && spec.Type.Primitive == valuetype.Integer {
		want = spec.Type
	}
	f, _ := c.typed(name, want).AsBigFloat().Float64()
	return f
}

// Bool reads a boolean property.
func (c *Context) Bool(name string) bool {
	var b bool
	c.decode(name, valuetype.Of(valuetype.Boolean), &b)
	return b
}

// CellRange reads a cell-range property.
func (c *Context) CellRange(name string) cells.Range {
	return valuetype.AsCellRange(c.typed(name, valuetype.Of(valuetype.CellRange)))
}

// Regex reads a regex property.
func (c *Context) Regex(name string) *valuetype.Pattern {
	return valuetype.AsPattern(c.typed(name, valuetype.Of(valuetype.Regex)))
}

// Texts reads a collection of text.
func (c *Context) Texts(name string) []string {
	var out []string
	c.decode(name, valuetype.CollectionOf(valuetype.Of(valuetype.Text)), &out)
	return out
}

// Integers reads a collection of integers.
func (c *Context) Integers(name string) []int {
	var out []int
	c.decode(name, valuetype.CollectionOf(valuetype.Of(valuetype.Integer)), &out)
	return out
}

// CellRanges reads a collection of cell ranges.
func (c *Context) CellRanges(name string) []cells.Range {
	v := c.typed(name, valuetype.CollectionOf(valuetype.Of(valuetype.CellRange)))
	out := make([]cells.Range, 0, v.LengthInt())
	for _, e := range v.AsValueSlice() {
		out = append(out, valuetype.AsCellRange(e))
	}
	return out
}

// Columns reads a collection of column assignments.
func (c *Context) Columns(name string) []valuetype.Column {
	v := c.typed(name, valuetype.CollectionOf(valuetype.Of(valuetype.ColumnAssignment)))
	out := make([]valuetype.Column, 0, v.LengthInt())
	for _, e := range v.AsValueSlice() {
		out = append(out, valuetype.AsColumn(e))
	}
	return out
}

// Constraints reads a collection of constraint references.
func (c *Context) Constraints(name string) []*valuetype.Constraint {
	v := c.typed(name, valuetype.CollectionOf(valuetype.Of(valuetype.ConstraintRef)))
	out := make([]*valuetype.Constraint, 0, v.LengthInt())
	for _, e := range v.AsValueSlice() {
		out = append(out, valuetype.AsConstraint(e))
	}
	return out
}
