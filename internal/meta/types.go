package meta

import (
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

// Example is a documented usage snippet.
type Example struct {
	Code        string
	Description string
}

// Docs is user-facing documentation for a type or property.
type Docs struct {
	Description string
	Validation  string
	Examples    []Example
}

// PropertySpec describes one property accepted by a block or constraint.
type PropertySpec struct {
	Type valuetype.Type
	// Default is used when the property is omitted. A nil Default makes
	// the property required.
	Default *cty.Value
	// Validate runs additional checks on a well-typed value while loading.
	Validate func(cty.Value) error
	Docs     Docs
}

// Required reports whether the property has no default.
func (p PropertySpec) Required() bool { return p.Default == nil }

// Properties maps property names to their specifications.
type Properties map[string]PropertySpec

// BlockType describes a block type and its data-kind signature.
type BlockType struct {
	Name       string
	Input      iotype.Kind
	Output     iotype.Kind
	Properties Properties
	Docs       Docs
}

// ConstraintType describes a constraint type and the primitives it may be
// attached to.
type ConstraintType struct {
	Name       string
	Properties Properties
	Compatible []valuetype.Primitive
	Docs       Docs
}

// Default is a helper for building PropertySpec defaults inline.
func Default(v cty.Value) *cty.Value { return &v }
