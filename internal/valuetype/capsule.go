package valuetype

import (
	"github.com/vk/tabflow/internal/cells"
	"github.com/zclconf/go-cty/cty"
)

// CellRangeVal wraps r in a cty capsule value.
func CellRangeVal(r cells.Range) cty.Value {
	return cty.CapsuleVal(CellRangeType, &r)
}

// AsCellRange unwraps a value produced by CellRangeVal.
func AsCellRange(v cty.Value) cells.Range {
	return *v.EncapsulatedValue().(*cells.Range)
}

// AsPattern unwraps a value produced by PatternVal.
func AsPattern(v cty.Value) *Pattern {
	return v.EncapsulatedValue().(*Pattern)
}

// AsConstraint unwraps a value produced by ConstraintVal.
func AsConstraint(v cty.Value) *Constraint {
	return v.EncapsulatedValue().(*Constraint)
}

// AsColumn unwraps a value produced by ColumnVal.
func AsColumn(v cty.Value) Column {
	return *v.EncapsulatedValue().(*Column)
}
