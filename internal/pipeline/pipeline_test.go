package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestPipelineLookups(t *testing.T) {
	p := &Pipeline{
		Name: "Cars",
		Blocks: []*Block{
			{Name: "Extractor", Type: "HttpExtractor"},
			{Name: "Interpreter", Type: "CSVInterpreter", Properties: map[string]cty.Value{
				"delimiter": cty.StringVal(";"),
			}},
		},
		Pipes: []Pipe{{From: "Extractor", To: "Interpreter"}},
	}

	b, ok := p.Block("Interpreter")
	require.True(t, ok)
	assert.Equal(t, "CSVInterpreter", b.TypeName())

	v, ok := b.Property("delimiter")
	require.True(t, ok)
	assert.Equal(t, ";", v.AsString())

	_, ok = b.Property("enclosing")
	assert.False(t, ok)

	_, ok = p.Block("Loader")
	assert.False(t, ok)

	assert.Equal(t, []Pipe{{From: "Extractor", To: "Interpreter"}}, p.Inbound("Interpreter"))
	assert.Empty(t, p.Inbound("Extractor"))
	assert.Equal(t, "Extractor -> Interpreter", p.Pipes[0].String())
}

func TestParameterName(t *testing.T) {
	name, ok := ParameterName(RuntimeParameter("DB_HOST"))
	require.True(t, ok)
	assert.Equal(t, "DB_HOST", name)

	_, ok = ParameterName(cty.StringVal("DB_HOST"))
	assert.False(t, ok)

	_, ok = ParameterName(cty.NullVal(RuntimeParameterType))
	assert.False(t, ok)
}
