package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/pathfinder/internal/config"
	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/graphstore"
	"github.com/specialistvlad/pathfinder/internal/search"
	"github.com/specialistvlad/pathfinder/internal/session"
	"github.com/specialistvlad/pathfinder/internal/testutil"
	"github.com/specialistvlad/pathfinder/internal/visit"
)

func sessionRequest(id string) session.Request {
	return session.Request{Graph: id, Start: testutil.A, End: testutil.D, Algorithm: search.NameUniformCost}
}

func writeGraph(t *testing.T, path string, format graph.Format, g *graph.Graph) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, graph.Encode(&buf, format, g))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
}

func TestRoute_FromFileWithEvents(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.Context(t)
	path := filepath.Join(t.TempDir(), "diamond.yaml")
	writeGraph(t, path, graph.FormatYAML, testutil.Diamond(t))
	var events bytes.Buffer

	// --- Act ---
	res, err := Route(ctx, config.Default(), RouteOptions{
		Graph:     path,
		Start:     testutil.A,
		End:       testutil.D,
		Algorithm: "dijkstra",
		Events:    &events,
	})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "diamond", res.Graph)
	assert.Equal(t, []graph.NodeID{testutil.A, testutil.B, testutil.C, testutil.D}, res.Path)

	var got []graph.NodeID
	sc := bufio.NewScanner(&events)
	for sc.Scan() {
		var ev visit.Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		assert.Equal(t, res.SessionID, ev.SessionID)
		got = append(got, ev.NodeID)
	}
	assert.Equal(t, []graph.NodeID{testutil.A, testutil.B, testutil.C}, got)
}

func TestRoute_FromStore(t *testing.T) {
	ctx, _ := testutil.Context(t)
	settings := TestSettings(t, map[string]*graph.Graph{"diamond": testutil.Diamond(t)})

	res, err := Route(ctx, settings, RouteOptions{Graph: "diamond", Start: testutil.A, End: testutil.Isolated})
	require.NoError(t, err)
	assert.Equal(t, search.OutcomeUnreachable, res.Outcome)

	_, err = Route(ctx, settings, RouteOptions{Graph: "atlantis", Start: 1, End: 2})
	require.ErrorIs(t, err, graphstore.ErrGraphNotFound)
}

func TestImport(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeGraph(t, filepath.Join(src, "diamond.json"), graph.FormatJSON, testutil.Diamond(t))
	writeGraph(t, filepath.Join(src, "nested", "grid.gob"), graph.FormatGob, testutil.Grid(t, 3, 3, 1))
	require.NoError(t, os.WriteFile(filepath.Join(src, "README.md"), []byte("not a graph"), 0600))

	cases := []struct {
		name  string
		store config.Store
	}{
		{"sqlite", config.Store{Kind: config.StoreSQLite, Path: filepath.Join(t.TempDir(), "graphs.db")}},
		{"dir", config.Store{Kind: config.StoreDir, Path: filepath.Join(t.TempDir(), "created")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx, _ := testutil.Context(t)
			settings := config.Default()
			settings.Store = tc.store

			infos, err := Import(ctx, settings, "", src)
			require.NoError(t, err)
			require.Len(t, infos, 2)

			info, err := Import(ctx, settings, "montreal", filepath.Join(src, "diamond.json"))
			require.NoError(t, err)
			require.Len(t, info, 1)
			assert.Equal(t, "montreal", info[0].ID)

			listed, err := ListGraphs(ctx, settings)
			require.NoError(t, err)
			ids := make([]string, 0, len(listed))
			for _, i := range listed {
				ids = append(ids, i.ID)
			}
			assert.ElementsMatch(t, []string{"diamond", "grid", "montreal"}, ids)
		})
	}
}

func TestImport_Errors(t *testing.T) {
	ctx, _ := testutil.Context(t)
	settings := TestSettings(t, nil)
	src := t.TempDir()

	_, err := Import(ctx, settings, "x", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "place name cannot be given")

	_, err = Import(ctx, settings, "", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no graph files found")

	_, err = Import(ctx, settings, "", filepath.Join(src, "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(src, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"nodes": [{"id": 1}], "links": [{"source": 1, "target": 9}]}`), 0600))
	_, err = Import(ctx, settings, "", bad)
	require.ErrorIs(t, err, graph.ErrInvalidGraph)
}

func TestRoute_CancelledContext(t *testing.T) {
	ctx, _ := testutil.Context(t)
	settings := TestSettings(t, map[string]*graph.Graph{"diamond": testutil.Diamond(t)})

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	res, err := Route(ctx, settings, RouteOptions{Graph: "diamond", Start: testutil.A, End: testutil.D})
	require.NoError(t, err)
	assert.Equal(t, search.OutcomeCancelled, res.Outcome)
}
