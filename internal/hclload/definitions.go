package hclload

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

func (l *Loader) decodeConstraint(b *hcl.Block) (*valuetype.Constraint, hcl.Diagnostics) {
	name := b.Labels[0]
	attrs, diags := b.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	typeName, tDiags := typeAttr(attrs, "constraint "+name, b.DefRange)
	diags = append(diags, tDiags...)
	if tDiags.HasErrors() {
		return nil, diags
	}
	ct, ok := l.catalogue.ConstraintType(typeName)
	if !ok {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unknown constraint type",
			Detail:   fmt.Sprintf("Constraint %q uses type %q, which does not exist.", name, typeName),
			Subject:  attrs["type"].Expr.Range().Ptr(),
		})
	}

	owner := fmt.Sprintf("constraint %q (%s)", name, typeName)
	props, pDiags := l.decodeProperties(owner, attrs, map[string]bool{"type": true},
		ct.Properties, &hcl.EvalContext{Functions: functions()}, nil, b.DefRange)
	diags = append(diags, pDiags...)
	if pDiags.HasErrors() {
		return nil, diags
	}
	return &valuetype.Constraint{Name: name, Type: typeName, Properties: props, Range: b.DefRange}, diags
}

type valueTypeSpec struct {
	Base        string         `hcl:"base"`
	Constraints hcl.Expression `hcl:"constraints,optional"`
}

func (l *Loader) decodeValueType(b *hcl.Block, res *Result) (*valuetype.ValueType, hcl.Diagnostics) {
	name := b.Labels[0]
	var spec valueTypeSpec
	diags := gohcl.DecodeBody(b.Body, nil, &spec)
	if diags.HasErrors() {
		return nil, diags
	}

	base, ok := valuetype.ParsePrimitive(spec.Base)
	if !ok {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid base type",
			Detail:   fmt.Sprintf("Value type %q must be based on text, integer, decimal or boolean, not %q.", name, spec.Base),
			Subject:  b.DefRange.Ptr(),
		})
	}
	vt := &valuetype.ValueType{Name: name, Base: base}

	if spec.Constraints == nil {
		return vt, diags
	}
	v, cDiags := spec.Constraints.Value(l.evalContext(res))
	diags = append(diags, cDiags...)
	if cDiags.HasErrors() {
		return nil, diags
	}
	if v.IsNull() {
		return vt, diags
	}
	if !v.CanIterateElements() || v.Type().IsObjectType() || v.Type().IsMapType() {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid constraints",
			Detail:   "The constraints of a value type must be a list of constraint references.",
			Subject:  spec.Constraints.Range().Ptr(),
		})
	}

	for _, e := range v.AsValueSlice() {
		if !e.Type().Equals(valuetype.ConstraintRefType) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid constraint reference",
				Detail:   fmt.Sprintf("Expected a constraint such as constraint.Name, got %s.", e.Type().FriendlyName()),
				Subject:  spec.Constraints.Range().Ptr(),
			})
			continue
		}
		c := valuetype.AsConstraint(e)
		if !l.catalogue.IsCompatible(c.Type, base) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Incompatible constraint",
				Detail:   fmt.Sprintf("Constraint %q (%s) cannot be applied to %s values.", c.Name, c.Type, base),
				Subject:  spec.Constraints.Range().Ptr(),
			})
			continue
		}
		vt.Constraints = append(vt.Constraints, c)
	}
	if diags.HasErrors() {
		return nil, diags
	}
	return vt, diags
}

// typeAttr reads the mandatory literal "type" attribute of a block.
func typeAttr(attrs hcl.Attributes, owner string, defRange hcl.Range) (string, hcl.Diagnostics) {
	attr, ok := attrs["type"]
	if !ok {
		return "", hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Missing type",
			Detail:   fmt.Sprintf("%s needs a \"type\" attribute.", owner),
			Subject:  defRange.Ptr(),
		}}
	}
	v, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	if v.Type() != cty.String || v.IsNull() {
		return "", append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid type",
			Detail:   fmt.Sprintf("The type of %s must be a string.", owner),
			Subject:  attr.Expr.Range().Ptr(),
		})
	}
	return v.AsString(), diags
}
