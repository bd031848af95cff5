package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/pathfinder/internal/config"
	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/testutil"
)

// TestSettings returns settings for a server on a random loopback port,
// backed by a fresh directory store that holds graphs under their ids.
func TestSettings(t *testing.T, graphs map[string]*graph.Graph) *config.Settings {
	t.Helper()

	dir := t.TempDir()
	for id, g := range graphs {
		f, err := os.Create(filepath.Join(dir, id+".json"))
		require.NoError(t, err)
		require.NoError(t, graph.Encode(f, graph.FormatJSON, g))
		require.NoError(t, f.Close())
	}

	settings := config.Default()
	settings.Server.Address = "127.0.0.1:0"
	settings.Server.RateLimit = 0
	settings.Store = config.Store{Kind: config.StoreDir, Path: dir}
	settings.Log = config.Log{Level: "debug", Format: "text"}
	return settings
}

// SetupAppTest creates a new app instance for system testing.
func SetupAppTest(t *testing.T, settings *config.Settings) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	testApp, err := NewApp(logBuffer, settings)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = testApp.Close()
		if os.Getenv("PATHFINDER_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
