package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/specialistvlad/neurogrid/internal/ctxlog"
)

// LogsEnv makes tests dump their captured logs when set to "true".
const LogsEnv = "NEUROGRID_TEST_LOGS"

// DumpOnCleanup logs the contents of buf at the end of t when LogsEnv is
// set.
func DumpOnCleanup(t *testing.T, buf *SafeBuffer) {
	t.Helper()
	t.Cleanup(func() {
		if os.Getenv(LogsEnv) == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
}

// Context returns a context carrying a debug logger that writes into the
// returned buffer.
func Context(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()
	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	DumpOnCleanup(t, buf)
	return ctxlog.WithLogger(context.Background(), logger), buf
}
