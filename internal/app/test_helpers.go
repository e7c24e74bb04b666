package app

import (
	"testing"

	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. Logs and
// Print output both go to the returned buffer.
func SetupAppTest(t *testing.T, cfg *Config, modules ...catalog.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	testApp := NewApp(logBuffer, cfg, modules...)
	testutil.DumpOnCleanup(t, logBuffer)

	return testApp, logBuffer
}
