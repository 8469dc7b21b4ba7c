package constraints

import (
	"math"
	"slices"
	"unicode/utf8"

	"github.com/vk/tabflow/internal/execution"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

var (
	textOnly    = []valuetype.Primitive{valuetype.Text}
	numericOnly = []valuetype.Primitive{valuetype.Integer, valuetype.Decimal}
	textList    = valuetype.CollectionOf(valuetype.Of(valuetype.Text))
)

// Builtin pairs a constraint descriptor with its executor.
type Builtin struct {
	Descriptor *meta.ConstraintType
	Executor   Executor
}

// Builtins returns the constraints shipped with the interpreter.
func Builtins() []Builtin {
	return []Builtin{
		{
			Descriptor: &meta.ConstraintType{
				Name:       "LengthConstraint",
				Compatible: textOnly,
				Properties: meta.Properties{
					"min_length": {Type: valuetype.Of(valuetype.Integer), Default: meta.Default(cty.Zero),
						Docs: meta.Docs{Description: "Inclusive minimum length."}},
					"max_length": {Type: valuetype.Of(valuetype.Integer), Default: meta.Default(cty.NumberIntVal(math.MaxInt32)),
						Docs: meta.Docs{Description: "Inclusive maximum length."}},
				},
				Docs: meta.Docs{Description: "Limits the number of characters of a text value."},
			},
			Executor: lengthConstraint{},
		},
		{
			Descriptor: &meta.ConstraintType{
				Name:       "DenylistConstraint",
				Compatible: textOnly,
				Properties: meta.Properties{
					"denylist": {Type: textList, Docs: meta.Docs{Description: "Values that are rejected."}},
				},
				Docs: meta.Docs{Description: "Rejects text values that appear in a list."},
			},
			Executor: listConstraint{name: "DenylistConstraint", property: "denylist", member: false},
		},
		{
			Descriptor: &meta.ConstraintType{
				Name:       "AllowlistConstraint",
				Compatible: textOnly,
				Properties: meta.Properties{
					"allowlist": {Type: textList, Docs: meta.Docs{Description: "The only values that are accepted."}},
				},
				Docs: meta.Docs{Description: "Accepts only text values that appear in a list."},
			},
			Executor: listConstraint{name: "AllowlistConstraint", property: "allowlist", member: true},
		},
		{
			Descriptor: &meta.ConstraintType{
				Name:       "RegexConstraint",
				Compatible: textOnly,
				Properties: meta.Properties{
					"regex": {Type: valuetype.Of(valuetype.Regex), Docs: meta.Docs{Description: "Pattern the whole value must match."}},
				},
				Docs: meta.Docs{Description: "Accepts text values that fully match a regular expression."},
			},
			Executor: regexConstraint{},
		},
		{
			Descriptor: &meta.ConstraintType{
				Name:       "RangeConstraint",
				Compatible: numericOnly,
				Properties: meta.Properties{
					"lower_bound":           {Type: valuetype.Of(valuetype.Decimal), Default: meta.Default(cty.NumberFloatVal(math.Inf(-1)))},
					"lower_bound_inclusive": {Type: valuetype.Of(valuetype.Boolean), Default: meta.Default(cty.True)},
					"upper_bound":           {Type: valuetype.Of(valuetype.Decimal), Default: meta.Default(cty.NumberFloatVal(math.Inf(1)))},
					"upper_bound_inclusive": {Type: valuetype.Of(valuetype.Boolean), Default: meta.Default(cty.True)},
				},
				Docs: meta.Docs{Description: "Limits a numeric value to an interval."},
			},
			Executor: rangeConstraint{},
		},
	}
}

// Install registers every builtin with cat and reg.
func Install(cat *meta.Catalogue, reg *Registry) {
	for _, b := range Builtins() {
		cat.RegisterConstraintType(b.Descriptor)
		reg.Register(b.Executor)
	}
}

func asText(v cty.Value) (string, bool) {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
		return "", false
	}
	return v.AsString(), true
}

type lengthConstraint struct{}

func (lengthConstraint) Type() string { return "LengthConstraint" }

func (lengthConstraint) IsValid(v cty.Value, ec *execution.Context) bool {
	s, ok := asText(v)
	if !ok {
		return false
	}
	n := utf8.RuneCountInString(s)
	return ec.Integer("min_length") <= n && n <= ec.Integer("max_length")
}

type listConstraint struct {
	name     string
	property string
	member   bool
}

func (l listConstraint) Type() string { return l.name }

func (l listConstraint) IsValid(v cty.Value, ec *execution.Context) bool {
	s, ok := asText(v)
	if !ok {
		return false
	}
	return slices.Contains(ec.Texts(l.property), s) == l.member
}

type regexConstraint struct{}

func (regexConstraint) Type() string { return "RegexConstraint" }

func (regexConstraint) IsValid(v cty.Value, ec *execution.Context) bool {
	s, ok := asText(v)
	if !ok {
		return false
	}
	return ec.Regex("regex").MatchFull(s)
}

type rangeConstraint struct{}

func (rangeConstraint) Type() string { return "RangeConstraint" }

func (rangeConstraint) IsValid(v cty.Value, ec *execution.Context) bool {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.Number {
		return false
	}
	f, _ := v.AsBigFloat().Float64()

	lower := ec.Number("lower_bound")
	if f < lower || (f == lower && !ec.Bool("lower_bound_inclusive")) {
		return false
	}
	upper := ec.Number("upper_bound")
	if f > upper || (f == upper && !ec.Bool("upper_bound_inclusive")) {
		return false
	}
	return true
}
