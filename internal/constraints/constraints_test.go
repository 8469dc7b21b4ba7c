package constraints

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/tabflow/internal/diag"
	"github.com/vk/tabflow/internal/execution"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/pipeline"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

func setup(t *testing.T) (*meta.Catalogue, *Registry) {
	t.Helper()
	cat := meta.NewCatalogue()
	reg := NewRegistry()
	Install(cat, reg)
	return cat, reg
}

// isValid evaluates one constraint of the given type against v.
func isValid(t *testing.T, typeName string, props map[string]cty.Value, v cty.Value) bool {
	t.Helper()
	cat, reg := setup(t)
	c := &valuetype.Constraint{Name: "Under" + typeName, Type: typeName, Properties: props}
	ec := execution.New(context.Background(), c, cat.MustConstraintType(typeName).Properties, nil, &diag.Sink{})
	return reg.MustGet(typeName).IsValid(v, ec)
}

func texts(ss ...string) cty.Value {
	vals := make([]cty.Value, 0, len(ss))
	for _, s := range ss {
		vals = append(vals, cty.StringVal(s))
	}
	return cty.ListVal(vals)
}

func TestLengthConstraint(t *testing.T) {
	props := map[string]cty.Value{"min_length": cty.NumberIntVal(1), "max_length": cty.NumberIntVal(3)}

	assert.True(t, isValid(t, "LengthConstraint", props, cty.StringVal("ab")))
	assert.True(t, isValid(t, "LengthConstraint", props, cty.StringVal("abc")))
	assert.False(t, isValid(t, "LengthConstraint", props, cty.StringVal("abcd")))
	assert.False(t, isValid(t, "LengthConstraint", props, cty.StringVal("")))
	assert.False(t, isValid(t, "LengthConstraint", props, cty.NumberIntVal(42)))
	assert.True(t, isValid(t, "LengthConstraint", props, cty.StringVal("äöü")), "length counts characters")
	assert.True(t, isValid(t, "LengthConstraint", nil, cty.StringVal("")), "defaults accept everything")
}

func TestListConstraints(t *testing.T) {
	deny := map[string]cty.Value{"denylist": texts("ns")}
	assert.True(t, isValid(t, "DenylistConstraint", deny, cty.StringVal("s")))
	assert.False(t, isValid(t, "DenylistConstraint", deny, cty.StringVal("ns")))
	assert.False(t, isValid(t, "DenylistConstraint", deny, cty.True))

	allow := map[string]cty.Value{"allowlist": texts("FR", "DE")}
	assert.True(t, isValid(t, "AllowlistConstraint", allow, cty.StringVal("DE")))
	assert.False(t, isValid(t, "AllowlistConstraint", allow, cty.StringVal("de")))
}

func TestRegexConstraint(t *testing.T) {
	props := map[string]cty.Value{"regex": valuetype.PatternVal(valuetype.MustPattern(`[A-Z]{2}`))}

	assert.True(t, isValid(t, "RegexConstraint", props, cty.StringVal("DE")))
	assert.False(t, isValid(t, "RegexConstraint", props, cty.StringVal("DEU")), "partial matches are rejected")
	assert.False(t, isValid(t, "RegexConstraint", props, cty.NullVal(cty.String)))
}

func TestRangeConstraint(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]cty.Value
		value cty.Value
		want  bool
	}{
		{"inside", map[string]cty.Value{"lower_bound": cty.NumberIntVal(1), "upper_bound": cty.NumberIntVal(10)}, cty.NumberIntVal(5), true},
		{"inclusive lower edge", map[string]cty.Value{"lower_bound": cty.NumberIntVal(1)}, cty.NumberIntVal(1), true},
		{"exclusive lower edge", map[string]cty.Value{"lower_bound": cty.NumberIntVal(1), "lower_bound_inclusive": cty.False}, cty.NumberIntVal(1), false},
		{"exclusive upper edge", map[string]cty.Value{"upper_bound": cty.NumberFloatVal(2.5), "upper_bound_inclusive": cty.False}, cty.NumberFloatVal(2.5), false},
		{"above upper", map[string]cty.Value{"upper_bound": cty.NumberIntVal(10)}, cty.NumberIntVal(11), false},
		{"unbounded", nil, cty.NumberFloatVal(-1e9), true},
		{"not numeric", nil, cty.StringVal("5"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isValid(t, "RangeConstraint", tc.props, tc.value))
		})
	}
}

type countingExecutor struct {
	name  string
	valid bool
	calls *int
}

func (c countingExecutor) Type() string { return c.name }

func (c countingExecutor) IsValid(cty.Value, *execution.Context) bool {
	*c.calls++
	return c.valid
}

func TestChecker_FirstFailureWins(t *testing.T) {
	cat, reg := setup(t)
	var passCalls, failCalls, laterCalls int
	for _, e := range []countingExecutor{
		{name: "Pass", valid: true, calls: &passCalls},
		{name: "Fail", valid: false, calls: &failCalls},
		{name: "Later", valid: false, calls: &laterCalls},
	} {
		cat.RegisterConstraintType(&meta.ConstraintType{Name: e.name, Compatible: []valuetype.Primitive{valuetype.Text}})
		reg.Register(e)
	}

	vt := &valuetype.ValueType{
		Name: "Code",
		Base: valuetype.Text,
		Constraints: []*valuetype.Constraint{
			{Name: "First", Type: "Pass"},
			{Name: "Second", Type: "Fail"},
			{Name: "Third", Type: "Later"},
		},
	}
	block := &pipeline.Block{Name: "Interpreter", Type: "TableInterpreter"}
	ec := execution.New(context.Background(), block, nil, nil, &diag.Sink{})

	err := NewChecker(cat, reg).Check(ec, vt, cty.StringVal("x1"))
	require.Error(t, err)
	assert.Equal(t, `Interpreter: value "x1" does not satisfy constraint "Second" (Fail)`, err.Error())
	assert.Equal(t, 1, passCalls)
	assert.Equal(t, 1, failCalls)
	assert.Zero(t, laterCalls)
}

func TestChecker_NoConstraints(t *testing.T) {
	cat, reg := setup(t)
	block := &pipeline.Block{Name: "Interpreter", Type: "TableInterpreter"}
	ec := execution.New(context.Background(), block, nil, nil, &diag.Sink{})
	assert.NoError(t, NewChecker(cat, reg).Check(ec, valuetype.Builtin(valuetype.Text), cty.StringVal("x")))
}

func TestRegistry(t *testing.T) {
	_, reg := setup(t)
	assert.PanicsWithValue(t, "constraint executor 'LengthConstraint' already registered", func() {
		reg.Register(lengthConstraint{})
	})
	assert.Panics(t, func() { reg.MustGet("Missing") })
	_, ok := reg.Get("RangeConstraint")
	assert.True(t, ok)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("null_cell")
	require.NoError(t, err)
	assert.Equal(t, NullCell, p)

	_, err = ParsePolicy("ignore")
	assert.ErrorContains(t, err, "unknown constraint policy")
}
