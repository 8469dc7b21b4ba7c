package hclload

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/tabflow/internal/cells"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/pipeline"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

// decodeProperties evaluates every attribute except those in reserved and
// checks it against props. Required properties that are not assigned are
// reported against defRange.
func (l *Loader) decodeProperties(owner string, attrs hcl.Attributes, reserved map[string]bool,
	props meta.Properties, ectx *hcl.EvalContext, res *Result, defRange hcl.Range,
) (map[string]cty.Value, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	values := make(map[string]cty.Value)

	for _, attr := range sortedAttrs(attrs) {
		if reserved[attr.Name] {
			continue
		}
		spec, ok := props[attr.Name]
		if !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown property",
				Detail:   fmt.Sprintf("%s has no property %q.", owner, attr.Name),
				Subject:  attr.NameRange.Ptr(),
			})
			continue
		}

		v, vDiags := attr.Expr.Value(ectx)
		diags = append(diags, vDiags...)
		if vDiags.HasErrors() {
			continue
		}

		if name, isParam := pipeline.ParameterName(v); isParam {
			if l.opts.Params != nil {
				pv, supplied := l.opts.Params[name]
				if !supplied {
					diags = append(diags, &hcl.Diagnostic{
						Severity: hcl.DiagError,
						Summary:  "Missing runtime parameter",
						Detail:   fmt.Sprintf("Property %q requires the runtime parameter %q, which was not supplied.", attr.Name, name),
						Subject:  attr.Expr.Range().Ptr(),
					})
					continue
				}
				// The value is substituted at run time, so it must already
				// satisfy the property here.
				if _, err := meta.CheckProperty(spec, pv); err != nil {
					diags = append(diags, &hcl.Diagnostic{
						Severity: hcl.DiagError,
						Summary:  "Invalid runtime parameter",
						Detail:   fmt.Sprintf("Runtime parameter %q does not fit property %q of %s: %v.", name, attr.Name, owner, err),
						Subject:  attr.Expr.Range().Ptr(),
					})
					continue
				}
			}
			values[attr.Name] = v
			continue
		}

		converted, err := l.coerce(spec.Type, v, res)
		if err == nil {
			converted, err = meta.CheckProperty(spec, converted)
		}
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid property value",
				Detail:   fmt.Sprintf("Property %q of %s: %v.", attr.Name, owner, err),
				Subject:  attr.Expr.Range().Ptr(),
			})
			continue
		}
		values[attr.Name] = converted
	}

	for _, name := range sortedKeys(props) {
		if _, set := values[name]; set || !props[name].Required() {
			continue
		}
		if _, attempted := attrs[name]; attempted {
			continue
		}
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing required property",
			Detail:   fmt.Sprintf("%s requires the property %q.", owner, name),
			Subject:  defRange.Ptr(),
		})
	}
	return values, diags
}

// coerce turns the textual shorthands of capsule-typed values into their
// capsules: a string for a regex or cell range, and objects for column
// assignments.
func (l *Loader) coerce(t valuetype.Type, v cty.Value, res *Result) (cty.Value, error) {
	if v.IsNull() || !v.IsKnown() {
		return v, nil
	}
	ty := v.Type()

	if t.Primitive == valuetype.Collection && t.Elem != nil && (ty.IsTupleType() || ty.IsListType()) {
		elems := make([]cty.Value, 0, v.LengthInt())
		for i, e := range v.AsValueSlice() {
			ce, err := l.coerce(*t.Elem, e, res)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems = append(elems, ce)
		}
		if len(elems) == 0 {
			return cty.ListValEmpty(t.Elem.Cty()), nil
		}
		return cty.TupleVal(elems), nil
	}

	switch {
	case t.Primitive == valuetype.Regex && ty == cty.String:
		p, err := valuetype.ParsePattern(v.AsString())
		if err != nil {
			return cty.NilVal, err
		}
		return valuetype.PatternVal(p), nil
	case t.Primitive == valuetype.CellRange && ty == cty.String:
		r, err := cells.ParseRange(v.AsString())
		if err != nil {
			return cty.NilVal, err
		}
		return valuetype.CellRangeVal(r), nil
	case t.Primitive == valuetype.ColumnAssignment && (ty.IsObjectType() || ty.IsMapType()):
		return l.decodeColumn(v, res)
	}
	return v, nil
}

func (l *Loader) decodeColumn(v cty.Value, res *Result) (cty.Value, error) {
	m := v.AsValueMap()
	name, ok := m["name"]
	if !ok || name.Type() != cty.String || name.IsNull() {
		return cty.NilVal, fmt.Errorf("column needs a text \"name\"")
	}
	typ, ok := m["type"]
	if !ok || typ.Type() != cty.String || typ.IsNull() {
		return cty.NilVal, fmt.Errorf("column %q needs a text \"type\"", name.AsString())
	}
	for k := range m {
		if k != "name" && k != "type" {
			return cty.NilVal, fmt.Errorf("column %q has unexpected attribute %q", name.AsString(), k)
		}
	}

	vt, err := resolveValueType(typ.AsString(), res)
	if err != nil {
		return cty.NilVal, err
	}
	return valuetype.ColumnVal(valuetype.Column{Name: name.AsString(), Type: vt}), nil
}

func resolveValueType(name string, res *Result) (*valuetype.ValueType, error) {
	if p, ok := valuetype.ParsePrimitive(name); ok {
		return valuetype.Builtin(p), nil
	}
	if res != nil {
		if vt, ok := res.ValueTypes[name]; ok {
			return vt, nil
		}
	}
	return nil, fmt.Errorf("unknown value type %q", name)
}

func sortedKeys(props meta.Properties) []string {
	out := make([]string, 0, len(props))
	for k := range props {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
