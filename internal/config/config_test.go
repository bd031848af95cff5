package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	s, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	require.NoError(t, s.Validate())
}

func TestParse_FullFile(t *testing.T) {
	t.Setenv("PATHFINDER_TEST_DB", "/var/lib/pathfinder/graphs.db")

	src := `
server {
  address          = ":9090"
  cors_origins     = ["https://maps.example.com"]
  rate_limit       = 5
  rate_burst       = 10
  shutdown_timeout = "3s"
}

store {
  kind = "sqlite"
  path = env.PATHFINDER_TEST_DB
}

search {
  algorithm      = "dijkstra"
  heuristic      = "zero"
  timeout        = "2m"
  queue_size     = 64
  overflow       = "block"
  max_concurrent = 8
}

log {
  level  = "debug"
  format = "text"
}
`
	s, err := Parse(context.Background(), []byte(src), "pathfinder.hcl")
	require.NoError(t, err)

	assert.Equal(t, Server{
		Address:         ":9090",
		CORSOrigins:     []string{"https://maps.example.com"},
		RateLimit:       5,
		RateBurst:       10,
		ShutdownTimeout: 3 * time.Second,
	}, s.Server)
	assert.Equal(t, Store{Kind: StoreSQLite, Path: "/var/lib/pathfinder/graphs.db"}, s.Store)
	assert.Equal(t, Search{
		Algorithm:     "dijkstra",
		Heuristic:     "zero",
		Timeout:       2 * time.Minute,
		QueueSize:     64,
		Overflow:      "block",
		MaxConcurrent: 8,
	}, s.Search)
	assert.Equal(t, Log{Level: "debug", Format: "text"}, s.Log)
}

func TestParse_PartialFileKeepsDefaults(t *testing.T) {
	s, err := Parse(context.Background(), []byte(`search { heuristic = "manhattan" }`), "partial.hcl")
	require.NoError(t, err)

	want := Default()
	want.Search.Heuristic = "manhattan"
	assert.Equal(t, want, s)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `server {`, "failed to parse"},
		{"unknown block", `cache { size = 1 }`, "failed to decode"},
		{"unknown attribute", `server { port = 1 }`, "failed to decode"},
		{"bad type", `search { queue_size = "big" }`, "failed to decode"},
		{"missing env", `store { path = env.PATHFINDER_SURELY_UNSET_VAR }`, "failed to decode"},
		{"bad duration", `search { timeout = "soon" }`, "invalid search.timeout"},
		{"bad algorithm", `search { algorithm = "bfs" }`, "invalid algorithm"},
		{"bad heuristic", `search { heuristic = "chebyshev" }`, "invalid heuristic"},
		{"bad overflow", `search { overflow = "drop-newest" }`, "invalid overflow"},
		{"bad store", `store { kind = "postgres" }`, "invalid store.kind"},
		{"bad level", `log { level = "trace" }`, "invalid log.level"},
		{"bad format", `log { format = "xml" }`, "invalid log.format"},
		{"negative rate", `server { rate_limit = -1 }`, "must not be negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(context.Background(), []byte(tc.src), "bad.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pathfinder.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`log { level = "warn" }`), 0600))

	s, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "warn", s.Log.Level)

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
}

func TestEvalContext(t *testing.T) {
	ctx := evalContext([]string{"A=1", "B=x=y", "malformed", "=nokey"})
	env := ctx.Variables["env"].AsValueMap()
	assert.Equal(t, "1", env["A"].AsString())
	assert.Equal(t, "x=y", env["B"].AsString())
	assert.Len(t, env, 2)
}
