package app

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/testutil"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

const carsCSV = `name,mpg,cylinders
Pinto,21.5,4
Beetle,not-a-number,4
Mustang,15.0,8
`

const carsPipeline = `
constraint "PositiveCylinders" {
  type        = "RangeConstraint"
  lower_bound = 1
}

valuetype "Cylinders" {
  base        = "integer"
  constraints = [constraint.PositiveCylinders]
}

pipeline "Cars" {
  block "Extract" {
    type      = "LocalFileExtractor"
    file_path = requires("CARS_FILE")
  }

  block "Text" {
    type = "TextFileInterpreter"
  }

  block "CSV" {
    type = "CSVInterpreter"
  }

  block "Table" {
    type = "TableInterpreter"
    columns = [
      { name = "name", type = "text" },
      { name = "mpg", type = "decimal" },
      { name = "cylinders", type = valuetype.Cylinders },
    ]
  }

  block "Load" {
    type  = "SQLiteLoader"
    file  = requires("CARS_DB")
    table = "cars"
  }

  block "Show" {
    type = "TablePrinter"
  }

  pipe {
    chain = ["Extract", "Text", "CSV", "Table", "Load"]
  }

  pipe {
    from = "Table"
    to   = "Show"
  }
}
`

func TestApp_Run_EndToEnd(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"cars.csv":     carsCSV,
		"pipeline.hcl": carsPipeline,
	})
	dbFile := filepath.Join(dir, "cars.sqlite")
	t.Setenv("TABFLOW_PARAM_CARS_FILE", filepath.Join(dir, "cars.csv"))

	var printed bytes.Buffer
	cfg := DefaultConfig()
	cfg.PipelinePath = filepath.Join(dir, "pipeline.hcl")
	cfg.Params = map[string]string{"CARS_DB": dbFile}
	app, out := setupAppTest(t, cfg, offlineModules(&printed)...)

	require.NoError(t, app.Run(context.Background()), out.String())

	assert.Contains(t, out.String(), "dropped 1 row(s) with invalid values")
	assert.Contains(t, printed.String(), "Show:\n")
	assert.Contains(t, printed.String(), "Mustang")
	assert.NotContains(t, printed.String(), "Beetle")

	db, err := sql.Open("sqlite3", dbFile)
	require.NoError(t, err)
	defer db.Close()

	var names []string
	rows, err := db.Query(`SELECT name FROM cars ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Mustang", "Pinto"}, names)
}

func TestApp_Run_FailingBlock(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"pipeline.hcl": carsPipeline})

	var printed bytes.Buffer
	cfg := DefaultConfig()
	cfg.PipelinePath = filepath.Join(dir, "pipeline.hcl")
	cfg.EnvPrefix = ""
	cfg.Params = map[string]string{
		"CARS_FILE": filepath.Join(dir, "missing.csv"),
		"CARS_DB":   filepath.Join(dir, "cars.sqlite"),
	}
	app, out := setupAppTest(t, cfg, offlineModules(&printed)...)

	err := app.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 block(s) failed")
	assert.Contains(t, out.String(), "does not exist")
	assert.Empty(t, printed.String())
}

func TestApp_Run_LoadErrors(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"broken.hcl": "pipeline \"Cars\" {\n  block \"A\" {\n",
		"cars.hcl":   carsPipeline,
	})

	t.Run("syntax error", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.PipelinePath = filepath.Join(dir, "broken.hcl")
		app, out := setupAppTest(t, cfg, offlineModules(&bytes.Buffer{})...)

		err := app.Run(context.Background())
		assert.ErrorContains(t, err, "failed to load")
		assert.Contains(t, out.String(), "Error:")
	})

	t.Run("missing runtime parameter", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.PipelinePath = filepath.Join(dir, "cars.hcl")
		cfg.EnvPrefix = ""
		app, out := setupAppTest(t, cfg, offlineModules(&bytes.Buffer{})...)

		assert.ErrorContains(t, app.Run(context.Background()), "failed to load")
		assert.Contains(t, out.String(), "CARS_FILE")
	})

	t.Run("unknown pipeline", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.PipelinePath = filepath.Join(dir, "cars.hcl")
		cfg.Pipeline = "Trains"
		cfg.EnvPrefix = ""
		cfg.Params = map[string]string{"CARS_FILE": "x.csv", "CARS_DB": "x.sqlite"}
		app, _ := setupAppTest(t, cfg, offlineModules(&bytes.Buffer{})...)

		assert.ErrorContains(t, app.Run(context.Background()), `pipeline "Trains" is not declared`)
	})
}

const linesPipeline = `
pipeline "Lines" {
  block "Extract" {
    type      = "LocalFileExtractor"
    file_path = requires("FILE")
  }

  block "Text" {
    type = "TextFileInterpreter"
  }

  block "Select" {
    type      = "TextRangeSelector"
    line_from = requires("FROM")
  }

  block "CSV" {
    type = "CSVInterpreter"
  }

  block "Table" {
    type    = "TableInterpreter"
    header  = false
    columns = [{ name = "value", type = "text" }]
  }

  block "Show" {
    type = "TablePrinter"
  }

  pipe {
    chain = ["Extract", "Text", "Select", "CSV", "Table", "Show"]
  }
}
`

func TestApp_Run_InvalidRuntimeParameter(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"lines.txt":    "alpha\nbeta\ngamma\n",
		"pipeline.hcl": linesPipeline,
	})

	tests := []struct {
		name string
		from string
	}{
		{name: "not a number", from: "abc"},
		{name: "fails validation", from: "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var printed bytes.Buffer
			cfg := DefaultConfig()
			cfg.PipelinePath = filepath.Join(dir, "pipeline.hcl")
			cfg.EnvPrefix = ""
			cfg.Params = map[string]string{"FILE": filepath.Join(dir, "lines.txt"), "FROM": tc.from}
			app, out := setupAppTest(t, cfg, offlineModules(&printed)...)

			var err error
			require.NotPanics(t, func() { err = app.Run(context.Background()) })
			assert.ErrorContains(t, err, "failed to load")
			assert.Contains(t, out.String(), "Invalid runtime parameter")
			assert.Empty(t, printed.String())
		})
	}

	t.Run("valid value", func(t *testing.T) {
		var printed bytes.Buffer
		cfg := DefaultConfig()
		cfg.PipelinePath = filepath.Join(dir, "pipeline.hcl")
		cfg.EnvPrefix = ""
		cfg.Params = map[string]string{"FILE": filepath.Join(dir, "lines.txt"), "FROM": "2"}
		app, out := setupAppTest(t, cfg, offlineModules(&printed)...)

		require.NoError(t, app.Run(context.Background()), out.String())
		assert.NotContains(t, printed.String(), "alpha")
		assert.Contains(t, printed.String(), "beta")
		assert.Contains(t, printed.String(), "gamma")
	})
}

func TestNewApp_InvalidRegistryPanics(t *testing.T) {
	broken := &testutil.StubBlock{
		Name:   "Broken",
		Input:  iotype.Nothing,
		Output: iotype.Nothing,
		Properties: meta.Properties{
			"count": {Type: valuetype.Of(valuetype.Integer), Default: meta.Default(cty.StringVal("abc"))},
		},
	}
	cfg := DefaultConfig()
	cfg.PipelinePath = "unused.hcl"

	assert.PanicsWithError(t,
		"registry validation failed:\n- block 'Broken', property 'count': default does not fit: "+
			checkError(t, broken.Properties["count"]),
		func() { NewApp(&bytes.Buffer{}, &cfg, broken) })
}

func checkError(t *testing.T, spec meta.PropertySpec) string {
	t.Helper()
	_, err := meta.CheckProperty(spec, *spec.Default)
	require.Error(t, err)
	return err.Error()
}

func TestApp_WriteTypes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PipelinePath = "unused.hcl"
	app, _ := setupAppTest(t, cfg)

	var buf bytes.Buffer
	require.NoError(t, app.WriteTypes(&buf))
	for _, name := range []string{"HttpExtractor", "TableInterpreter", "PostgresLoader", "RangeConstraint"} {
		assert.Contains(t, buf.String(), name)
	}
}
