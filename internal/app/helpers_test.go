package app

import (
	"io"
	"os"
	"testing"

	"github.com/vk/tabflow/internal/registry"
	"github.com/vk/tabflow/internal/testutil"
	"github.com/vk/tabflow/modules/archive"
	"github.com/vk/tabflow/modules/csv_interpreter"
	"github.com/vk/tabflow/modules/local_file"
	"github.com/vk/tabflow/modules/print"
	"github.com/vk/tabflow/modules/sheet"
	"github.com/vk/tabflow/modules/sql_loader"
	"github.com/vk/tabflow/modules/table_interpreter"
	"github.com/vk/tabflow/modules/text"
)

// offlineModules are the built-in modules that need no network, with the
// printer writing to printed.
func offlineModules(printed io.Writer) []registry.Module {
	return []registry.Module{
		&local_file.Module{},
		&archive.Module{},
		&text.Module{},
		&csv_interpreter.Module{},
		&sheet.Module{},
		&table_interpreter.Module{},
		&sql_loader.Module{},
		&print.Module{Out: printed},
	}
}

// setupAppTest creates a new app instance for system testing.
func setupAppTest(t *testing.T, cfg Config, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	testApp := NewApp(logBuffer, &cfg, modules...)

	t.Cleanup(func() {
		if os.Getenv("TABFLOW_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
