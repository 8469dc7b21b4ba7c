package hclload

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/tabflow/internal/cells"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/pipeline"
	"github.com/vk/tabflow/internal/registry"
	"github.com/vk/tabflow/internal/testutil"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

func testCatalogue() *meta.Catalogue {
	r := registry.New()
	for _, m := range []registry.Module{
		&testutil.StubBlock{Name: "Source", Input: iotype.Nothing, Output: iotype.Sheet, Properties: meta.Properties{
			"url":     {Type: valuetype.Of(valuetype.Text)},
			"retries": {Type: valuetype.Of(valuetype.Integer), Default: meta.Default(cty.Zero)},
			"timeout": {Type: valuetype.Of(valuetype.Integer), Default: meta.Default(cty.NumberIntVal(30)), Validate: positive},
		}},
		&testutil.StubBlock{Name: "Selector", Input: iotype.Sheet, Output: iotype.Sheet, Properties: meta.Properties{
			"select": {Type: valuetype.Of(valuetype.CellRange)},
		}},
		&testutil.StubBlock{Name: "Interpreter", Input: iotype.Sheet, Output: iotype.Table, Properties: meta.Properties{
			"columns": {Type: valuetype.CollectionOf(valuetype.Of(valuetype.ColumnAssignment))},
			"pattern": {Type: valuetype.Of(valuetype.Regex), Default: meta.Default(valuetype.PatternVal(valuetype.MustPattern(`.*`)))},
		}},
		&testutil.StubBlock{Name: "Sink", Input: iotype.Table, Output: iotype.Nothing},
	} {
		m.Register(r)
	}
	return r.Catalogue()
}

const validSource = `
constraint "ShortText" {
  type       = "LengthConstraint"
  max_length = 20
}

constraint "Upper" {
  type  = "RegexConstraint"
  regex = "[A-Z]+"
}

valuetype "Code" {
  base        = "text"
  constraints = [constraint.ShortText, constraint.Upper]
}

pipeline "Cars" {
  block "Fetch" {
    type = "Source"
    url  = requires("CARS_URL")
  }

  block "Trim" {
    type   = "Selector"
    select = range("A1:C*")
  }

  block "Interpret" {
    type    = "Interpreter"
    pattern = "[0-9]+"
    columns = [
      { name = "code", type = valuetype.Code },
      { name = "mpg", type = "decimal" },
    ]
  }

  block "Store" {
    type = "Sink"
  }

  pipe {
    chain = ["Fetch", "Trim", "Interpret"]
  }

  pipe {
    from = "Interpret"
    to   = "Store"
  }
}
`

func positive(v cty.Value) error {
	if v.LessThanOrEqualTo(cty.Zero).True() {
		return errors.New("must be positive")
	}
	return nil
}

func load(t *testing.T, src string, opts Options) (*Result, hcl.Diagnostics) {
	t.Helper()
	return New(testCatalogue(), opts).LoadSource(context.Background(), []byte(src), "pipeline.hcl")
}

func TestLoad_Valid(t *testing.T) {
	res, diags := load(t, validSource, Options{Params: map[string]cty.Value{"CARS_URL": cty.StringVal("http://x")}})
	require.False(t, diags.HasErrors(), diags.Error())

	require.Len(t, res.Constraints, 2)
	assert.Equal(t, int64(20), mustInt(t, res.Constraints["ShortText"].Properties["max_length"]))
	assert.Equal(t, "[A-Z]+", valuetype.AsPattern(res.Constraints["Upper"].Properties["regex"]).String())

	code := res.ValueTypes["Code"]
	require.NotNil(t, code)
	assert.Equal(t, valuetype.Text, code.Base)
	require.Len(t, code.Constraints, 2)
	assert.Equal(t, "ShortText", code.Constraints[0].Name)
	assert.Same(t, res.Constraints["Upper"], code.Constraints[1])

	p, ok := res.Pipeline("Cars")
	require.True(t, ok)
	assert.Equal(t, []pipeline.Pipe{
		{From: "Fetch", To: "Trim"}, {From: "Trim", To: "Interpret"}, {From: "Interpret", To: "Store"},
	}, stripRanges(p.Pipes))

	fetch, _ := p.Block("Fetch")
	name, isParam := pipeline.ParameterName(fetch.Properties["url"])
	require.True(t, isParam)
	assert.Equal(t, "CARS_URL", name)
	assert.Equal(t, "pipeline.hcl", fetch.Range.Filename)

	trim, _ := p.Block("Trim")
	sel := valuetype.AsCellRange(trim.Properties["select"])
	assert.Equal(t, cells.NewRange(cells.Index{Col: 0, Row: 0}, cells.Index{Col: 2, Row: cells.Last}), sel)

	interpret, _ := p.Block("Interpret")
	assert.True(t, valuetype.AsPattern(interpret.Properties["pattern"]).MatchFull("42"))
	cols := interpret.Properties["columns"].AsValueSlice()
	require.Len(t, cols, 2)
	assert.Same(t, code, valuetype.AsColumn(cols[0]).Type)
	assert.Equal(t, valuetype.Decimal, valuetype.AsColumn(cols[1]).Type.Base)
}

func mustInt(t *testing.T, v cty.Value) int64 {
	t.Helper()
	n, acc := v.AsBigFloat().Int64()
	require.Zero(t, acc)
	return n
}

func stripRanges(pipes []pipeline.Pipe) []pipeline.Pipe {
	out := make([]pipeline.Pipe, len(pipes))
	for i, p := range pipes {
		out[i] = pipeline.Pipe{From: p.From, To: p.To}
	}
	return out
}

func TestLoad_Diagnostics(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		opts    Options
		summary string
	}{
		{
			name:    "unknown block type",
			src:     `pipeline "P" {
  block "A" {
    type = "Nope"
  }
}`,
			summary: "Unknown block type",
		},
		{
			name:    "unknown property",
			src:     `pipeline "P" {
  block "A" {
    type   = "Source"
    url    = "x"
    colour = "red"
  }
}`,
			summary: "Unknown property",
		},
		{
			name:    "missing required property",
			src:     `pipeline "P" {
  block "A" {
    type = "Source"
  }
}`,
			summary: "Missing required property",
		},
		{
			name:    "property type mismatch",
			src:     `pipeline "P" {
  block "A" {
    type    = "Source"
    url     = "x"
    retries = "many"
  }
}`,
			summary: "Invalid property value",
		},
		{
			name:    "invalid regex",
			src:     `constraint "C" {
  type  = "RegexConstraint"
  regex = "[a-"
}`,
			summary: "Invalid property value",
		},
		{
			name:    "invalid regex through function",
			src:     `constraint "C" {
  type  = "RegexConstraint"
  regex = regex("(")
}`,
			summary: "Error in function call",
		},
		{
			name: "incompatible constraint",
			src: `
constraint "C" {
  type = "LengthConstraint"
}
valuetype "N" {
  base        = "integer"
  constraints = [constraint.C]
}`,
			summary: "Incompatible constraint",
		},
		{
			name:    "unknown value type in columns",
			src:     `pipeline "P" {
  block "A" {
    type    = "Interpreter"
    columns = [{ name = "a", type = "colour" }]
  }
}`,
			summary: "Invalid property value",
		},
		{
			name: "unknown pipe endpoint",
			src: `pipeline "P" {
  block "A" {
    type = "Source"
    url  = "x"
  }
  pipe {
    from = "A"
    to   = "B"
  }
}`,
			summary: "Unknown block in pipe",
		},
		{
			name: "mismatched kinds",
			src: `pipeline "P" {
  block "A" {
    type = "Source"
    url  = "x"
  }
  block "B" {
    type = "Sink"
  }
  pipe {
    chain = ["A", "B"]
  }
}`,
			summary: "Mismatched data kinds",
		},
		{
			name: "two inputs",
			src: `pipeline "P" {
  block "A" {
    type = "Source"
    url  = "x"
  }
  block "B" {
    type = "Source"
    url  = "y"
  }
  block "C" {
    type   = "Selector"
    select = "A1"
  }
  pipe {
    chain = ["A", "C"]
  }
  pipe {
    chain = ["B", "C"]
  }
}`,
			summary: "Too many inputs",
		},
		{
			name: "cycle",
			src: `pipeline "P" {
  block "A" {
    type   = "Selector"
    select = "A1"
  }
  block "B" {
    type   = "Selector"
    select = "A1"
  }
  pipe {
    chain = ["A", "B", "A"]
  }
}`,
			summary: "Cyclic pipeline",
		},
		{
			name:    "missing runtime parameter",
			src:     `pipeline "P" {
  block "A" {
    type = "Source"
    url  = requires("URL")
  }
}`,
			opts:    Options{Params: map[string]cty.Value{}},
			summary: "Missing runtime parameter",
		},
		{
			name: "runtime parameter of the wrong type",
			src: `pipeline "P" {
  block "A" {
    type    = "Source"
    url     = "x"
    retries = requires("RETRIES")
  }
}`,
			opts:    Options{Params: map[string]cty.Value{"RETRIES": cty.StringVal("abc")}},
			summary: "Invalid runtime parameter",
		},
		{
			name: "fractional runtime parameter",
			src: `pipeline "P" {
  block "A" {
    type    = "Source"
    url     = "x"
    retries = requires("RETRIES")
  }
}`,
			opts:    Options{Params: map[string]cty.Value{"RETRIES": cty.StringVal("1.5")}},
			summary: "Invalid runtime parameter",
		},
		{
			name: "runtime parameter failing validation",
			src: `pipeline "P" {
  block "A" {
    type    = "Source"
    url     = "x"
    timeout = requires("TIMEOUT")
  }
}`,
			opts:    Options{Params: map[string]cty.Value{"TIMEOUT": cty.StringVal("0")}},
			summary: "Invalid runtime parameter",
		},
		{
			name: "runtime parameter in a constraint",
			src: `constraint "Short" {
  type       = "LengthConstraint"
  max_length = requires("MAX")
}`,
			opts:    Options{Params: map[string]cty.Value{"MAX": cty.StringVal("many")}},
			summary: "Invalid runtime parameter",
		},
		{
			name: "duplicate block",
			src: `pipeline "P" {
  block "A" {
    type = "Source"
    url  = "x"
  }
  block "A" {
    type = "Source"
    url  = "x"
  }
}`,
			summary: "Duplicate block",
		},
		{
			name:    "invalid pipe",
			src:     `pipeline "P" {
  pipe {
    from = "A"
  }
}`,
			summary: "Invalid pipe",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, diags := load(t, tc.src, tc.opts)
			require.True(t, diags.HasErrors(), "expected diagnostics")
			assert.Nil(t, res)

			var summaries []string
			for _, d := range diags {
				summaries = append(summaries, d.Summary)
			}
			assert.Contains(t, summaries, tc.summary, strings.Join(summaries, "; "))
		})
	}
}

func TestLoad_RuntimeParametersUncheckedWithoutParams(t *testing.T) {
	_, diags := load(t, `pipeline "P" {
  block "A" {
    type = "Source"
    url  = requires("URL")
  }
}`, Options{})
	assert.False(t, diags.HasErrors(), diags.Error())
}

func TestLoadFile(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"cars.hcl": validSource})
	l := New(testCatalogue(), Options{})

	res, diags := l.LoadFile(context.Background(), dir+"/cars.hcl")
	require.False(t, diags.HasErrors(), diags.Error())
	assert.Len(t, res.Pipelines, 1)
	assert.Contains(t, l.Files(), dir+"/cars.hcl")

	_, diags = l.LoadFile(context.Background(), dir+"/missing.hcl")
	assert.True(t, diags.HasErrors())
}

func TestLoadPath_Directory(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"types/constraints.hcl": "constraint \"Short\" {\n  type       = \"LengthConstraint\"\n  max_length = 3\n}\n",
		"types/valuetypes.hcl":  "valuetype \"Code\" {\n  base        = \"text\"\n  constraints = [constraint.Short]\n}\n",
		"pipeline.hcl":          "pipeline \"P\" {\n  block \"Store\" {\n    type = \"Sink\"\n  }\n}\n",
		"README.md":             "not a pipeline",
	})
	l := New(testCatalogue(), Options{})

	res, diags := l.LoadPath(context.Background(), dir)
	require.False(t, diags.HasErrors(), diags.Error())
	assert.Len(t, res.Pipelines, 1)
	require.Contains(t, res.ValueTypes, "Code")
	assert.Same(t, res.Constraints["Short"], res.ValueTypes["Code"].Constraints[0])
	assert.Len(t, l.Files(), 3)

	res, diags = l.LoadPath(context.Background(), dir+"/pipeline.hcl")
	require.False(t, diags.HasErrors(), diags.Error())
	assert.Len(t, res.Pipelines, 1)

	tests := map[string]string{
		"missing path": dir + "/nope",
		"no hcl files": testutil.WriteFiles(t, map[string]string{"a.txt": "x"}),
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			_, diags := l.LoadPath(context.Background(), path)
			assert.True(t, diags.HasErrors())
		})
	}
}

func TestFunctions(t *testing.T) {
	fns := functions()

	v, err := fns["row"].Call([]cty.Value{cty.NumberIntVal(2)})
	require.NoError(t, err)
	assert.Equal(t, cells.Row(1), valuetype.AsCellRange(v))

	v, err = fns["row"].Call([]cty.Value{cty.NumberIntVal(-1)})
	require.NoError(t, err)
	assert.Equal(t, cells.Row(cells.Last), valuetype.AsCellRange(v))

	_, err = fns["row"].Call([]cty.Value{cty.Zero})
	assert.Error(t, err)

	v, err = fns["column"].Call([]cty.Value{cty.StringVal("C")})
	require.NoError(t, err)
	assert.Equal(t, cells.Column(2), valuetype.AsCellRange(v))

	v, err = fns["cell"].Call([]cty.Value{cty.StringVal("B2")})
	require.NoError(t, err)
	assert.True(t, valuetype.AsCellRange(v).IsCell())
}
