package valuetype

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Constraint is a named, configured constraint definition.
type Constraint struct {
	Name       string
	Type       string
	Properties map[string]cty.Value
	Range      hcl.Range
}

// NodeName implements execution.Node.
func (c *Constraint) NodeName() string { return c.Name }

// TypeName implements execution.Node.
func (c *Constraint) TypeName() string { return c.Type }

// Property implements execution.Node.
func (c *Constraint) Property(name string) (cty.Value, bool) {
	v, ok := c.Properties[name]
	return v, ok
}

// SourceRange implements execution.Node.
func (c *Constraint) SourceRange() hcl.Range { return c.Range }

// ConstraintVal wraps c in a cty capsule value.
func ConstraintVal(c *Constraint) cty.Value {
	return cty.CapsuleVal(ConstraintRefType, c)
}

// ValueType is a scalar primitive refined by an ordered list of constraints.
type ValueType struct {
	Name        string
	Base        Primitive
	Constraints []*Constraint
}

// Builtin returns the unconstrained value type for a scalar primitive.
func Builtin(p Primitive) *ValueType {
	return &ValueType{Name: p.String(), Base: p}
}

// Column binds a column name to a value type.
type Column struct {
	Name string
	Type *ValueType
}

// ColumnVal wraps c in a cty capsule value.
func ColumnVal(c Column) cty.Value {
	return cty.CapsuleVal(ColumnAssignmentType, &c)
}
