// Package valuetype defines the closed set of primitive types carried by
// property values and table columns, their cty representations, and the
// user-defined value types that attach constraints to a primitive.
package valuetype

import (
	"fmt"
	"reflect"

	"github.com/vk/tabflow/internal/cells"
	"github.com/zclconf/go-cty/cty"
)

// Primitive enumerates the primitive types known to the interpreter.
type Primitive int

const (
	Untyped Primitive = iota
	Text
	Integer
	Decimal
	Boolean
	Regex
	CellRange
	ConstraintRef
	ColumnAssignment
	Collection
)

var primitiveNames = map[Primitive]string{
	Untyped:          "untyped",
	Text:             "text",
	Integer:          "integer",
	Decimal:          "decimal",
	Boolean:          "boolean",
	Regex:            "regex",
	CellRange:        "cellrange",
	ConstraintRef:    "constraint",
	ColumnAssignment: "column",
	Collection:       "collection",
}

func (p Primitive) String() string {
	if name, ok := primitiveNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Primitive(%d)", int(p))
}

// IsScalar reports whether values of p may appear as table cells.
func (p Primitive) IsScalar() bool {
	switch p {
	case Text, Integer, Decimal, Boolean:
		return true
	}
	return false
}

// IsNumeric reports whether p is represented as a cty.Number.
func (p Primitive) IsNumeric() bool {
	return p == Integer || p == Decimal
}

// ParsePrimitive looks up a scalar primitive by its textual name.
func ParsePrimitive(name string) (Primitive, bool) {
	for p, n := range primitiveNames {
		if n == name && p.IsScalar() {
			return p, true
		}
	}
	return Untyped, false
}

// Capsule types for primitives that have no native cty representation.
var (
	RegexType            = cty.Capsule("regex", reflect.TypeOf(Pattern{}))
	CellRangeType        = cty.Capsule("cellrange", reflect.TypeOf(cells.Range{}))
	ConstraintRefType    = cty.Capsule("constraint", reflect.TypeOf(Constraint{}))
	ColumnAssignmentType = cty.Capsule("column", reflect.TypeOf(Column{}))
)

// Type is a primitive type, optionally parameterised by an element type when
// the primitive is Collection.
type Type struct {
	Primitive Primitive
	Elem      *Type
}

// Of returns the non-parameterised type for p.
func Of(p Primitive) Type {
	return Type{Primitive: p}
}

// CollectionOf returns the collection type with the given element type.
func CollectionOf(elem Type) Type {
	return Type{Primitive: Collection, Elem: &elem}
}

// Equals reports structural type equality.
func (t Type) Equals(o Type) bool {
	if t.Primitive != o.Primitive {
		return false
	}
	if t.Elem == nil || o.Elem == nil {
		return t.Elem == nil && o.Elem == nil
	}
	return t.Elem.Equals(*o.Elem)
}

func (t Type) String() string {
	if t.Primitive == Collection && t.Elem != nil {
		return "collection<" + t.Elem.String() + ">"
	}
	return t.Primitive.String()
}

// Cty returns the cty type used to carry values of t.
func (t Type) Cty() cty.Type {
	switch t.Primitive {
	case Text:
		return cty.String
	case Integer, Decimal:
		return cty.Number
	case Boolean:
		return cty.Bool
	case Regex:
		return RegexType
	case CellRange:
		return CellRangeType
	case ConstraintRef:
		return ConstraintRefType
	case ColumnAssignment:
		return ColumnAssignmentType
	case Collection:
		if t.Elem == nil {
			return cty.List(cty.DynamicPseudoType)
		}
		return cty.List(t.Elem.Cty())
	}
	return cty.DynamicPseudoType
}
