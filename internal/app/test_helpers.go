package app

import (
	"os"
	"testing"

	"github.com/specialistvlad/pullgridgo/internal/hcl_adapter"
	"github.com/specialistvlad/pullgridgo/internal/registry"
	"github.com/specialistvlad/pullgridgo/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. The process
// environment is not consulted; pass variables in environ instead. The app
// is closed when the test finishes.
func SetupAppTest(t *testing.T, cfg *Config, environ []string, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	testApp := NewApp(logBuffer, cfg, hcl_adapter.NewLoader(), hcl_adapter.NewConverter(), modules...)
	testApp.environ = environ

	t.Cleanup(func() {
		_ = testApp.Close()
		if os.Getenv("PULLGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
