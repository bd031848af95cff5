package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/specialistvlad/pathfinder/internal/config"
	"github.com/specialistvlad/pathfinder/internal/ctxlog"
	"github.com/specialistvlad/pathfinder/internal/fsutil"
	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/graphstore"
	"github.com/specialistvlad/pathfinder/internal/session"
	"github.com/specialistvlad/pathfinder/internal/visit"
)

// RouteOptions describes an offline search.
type RouteOptions struct {
	// Graph is either a graph file or the id of a graph in the configured
	// store.
	Graph     string
	Start     graph.NodeID
	End       graph.NodeID
	Algorithm string
	Heuristic string
	Timeout   time.Duration
	// Events, when set, receives every node visit as a JSON line.
	Events io.Writer
}

// Route runs a single search without starting a server. Visits are
// delivered with the block overflow policy so that Events sees all of them.
func Route(ctx context.Context, settings *config.Settings, opts RouteOptions) (*session.Result, error) {
	logger := ctxlog.FromContext(ctx)

	var src graphstore.Source
	id := opts.Graph
	closeSrc := func() error { return nil }
	if fi, err := os.Stat(opts.Graph); err == nil && !fi.IsDir() {
		g, err := graph.DecodeFile(opts.Graph)
		if err != nil {
			return nil, err
		}
		id = fsutil.TrimExt(opts.Graph)
		mem := graphstore.NewMemory()
		if _, err := mem.Put(ctx, id, g); err != nil {
			return nil, err
		}
		src = mem
		logger.Debug("Graph loaded from file.", "path", opts.Graph, "node_count", g.NodeCount())
	} else {
		store, closeStore, err := openStore(settings.Store)
		if err != nil {
			return nil, err
		}
		src, closeSrc = store, closeStore
	}
	defer func() {
		if err := closeSrc(); err != nil {
			logger.Warn("Failed to close graph store.", "error", err)
		}
	}()

	sopts := sessionOptions(settings.Search)
	var sink visit.Sink
	if opts.Events != nil {
		sopts.Overflow = visit.Block
		enc := json.NewEncoder(opts.Events)
		sink = visit.SinkFunc(func(_ context.Context, ev visit.Event) error {
			return enc.Encode(ev)
		})
	}

	manager := session.NewManager(src, sopts, nil)
	return manager.Run(ctx, session.Request{
		Graph:     id,
		Start:     opts.Start,
		End:       opts.End,
		Algorithm: opts.Algorithm,
		Heuristic: opts.Heuristic,
		Timeout:   opts.Timeout,
	}, sink)
}

// Import decodes graph files into the configured store. A directory is
// imported recursively with ids taken from the file names; a single file is
// stored under place, or its file name when place is empty.
func Import(ctx context.Context, settings *config.Settings, place, path string) ([]graphstore.Info, error) {
	logger := ctxlog.FromContext(ctx)

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("could not read import source: %w", err)
	}

	files := []string{path}
	if fi.IsDir() {
		if place != "" {
			return nil, errors.New("a place name cannot be given when importing a directory")
		}
		files, err = fsutil.FindFilesByExtension(path, graph.Extensions...)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no graph files found in %s", path)
		}
	}

	store, closeStore, err := openStore(settings.Store)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("Failed to close graph store.", "error", err)
		}
	}()

	infos := make([]graphstore.Info, 0, len(files))
	for _, file := range files {
		id := place
		if id == "" {
			id = fsutil.TrimExt(file)
		}
		info, err := importFile(ctx, store, id, file)
		if err != nil {
			return infos, err
		}
		logger.Info("Graph imported.", slog.String("id", info.ID), slog.Int("node_count", info.NodeCount), slog.Int("edge_count", info.EdgeCount))
		infos = append(infos, info)
	}
	return infos, nil
}

func importFile(ctx context.Context, w graphstore.Writer, id, path string) (graphstore.Info, error) {
	g, err := graph.DecodeFile(path)
	if err != nil {
		return graphstore.Info{}, fmt.Errorf("import %s: %w", path, err)
	}
	return w.Put(ctx, id, g)
}

// ListGraphs returns the catalog of the configured store.
func ListGraphs(ctx context.Context, settings *config.Settings) ([]graphstore.Info, error) {
	store, closeStore, err := openStore(settings.Store)
	if err != nil {
		return nil, err
	}
	defer closeStore()
	return store.List(ctx)
}

// NewLogger exposes the server logger factory to the CLI's offline commands.
func NewLogger(settings *config.Settings, outW io.Writer) *slog.Logger {
	return newLogger(settings.Log, outW)
}
