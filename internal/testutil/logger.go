package testutil

import (
	"log/slog"
	"os"
	"testing"
)

// NewTestLogger returns a debug logger writing into a buffer. The buffer is
// printed when the test ends if TABFLOW_TEST_LOGS is "true".
func NewTestLogger(t *testing.T) *slog.Logger {
	t.Helper()
	buf := &SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("TABFLOW_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
