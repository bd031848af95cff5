package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/specialistvlad/pathfinder/internal/api"
	"github.com/specialistvlad/pathfinder/internal/config"
	"github.com/specialistvlad/pathfinder/internal/ctxlog"
	"github.com/specialistvlad/pathfinder/internal/graphstore"
	"github.com/specialistvlad/pathfinder/internal/metrics"
	"github.com/specialistvlad/pathfinder/internal/session"
	"github.com/specialistvlad/pathfinder/internal/stream"
)

// App encapsulates the server's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	settings *config.Settings

	registry   *prometheus.Registry
	closeStore func() error
	graphs     *graphstore.Cache
	manager    *session.Manager
	api        *api.Server
	stream     *stream.Server

	httpServer *http.Server
	listener   net.Listener
	ready      chan struct{}
}

// NewApp is the constructor for the server application. It returns a fully
// initialized App with its own isolated logger and metrics registry.
// Nothing listens until Run is called.
func NewApp(outW io.Writer, settings *config.Settings) (*App, error) {
	logger := newLogger(settings.Log, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	store, closeStore, err := openStore(settings.Store)
	if err != nil {
		return nil, err
	}
	graphs := graphstore.NewCache(store, m)
	infos, err := graphs.List(ctx)
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	logger.Info("Graph store opened.", "kind", settings.Store.Kind, "path", settings.Store.Path, "graphs", len(infos))

	manager := session.NewManager(graphs, sessionOptions(settings.Search), m)
	streamServer := stream.New(manager, logger)
	apiServer := api.New(api.Config{
		CORSOrigins: settings.Server.CORSOrigins,
		RateLimit:   settings.Server.RateLimit,
		RateBurst:   settings.Server.RateBurst,
	}, manager, graphs, registry, logger)
	apiServer.Mount("/socket.io/", streamServer.Handler())
	logger.Debug("HTTP and socket.io handlers mounted.")

	return &App{
		outW:       outW,
		logger:     logger,
		settings:   settings,
		registry:   registry,
		closeStore: closeStore,
		graphs:     graphs,
		manager:    manager,
		api:        apiServer,
		stream:     streamServer,
		ready:      make(chan struct{}),
	}, nil
}

// Manager returns the session manager. This is primarily for testing.
func (a *App) Manager() *session.Manager {
	return a.manager
}

// Graphs returns the cached graph store.
func (a *App) Graphs() *graphstore.Cache {
	return a.graphs
}

// Ready is closed once the listener is bound.
func (a *App) Ready() <-chan struct{} {
	return a.ready
}

// Addr returns the bound listener address, or nil before Ready.
func (a *App) Addr() net.Addr {
	select {
	case <-a.ready:
		return a.listener.Addr()
	default:
		return nil
	}
}

// Close releases the graph store. Run calls it on shutdown.
func (a *App) Close() error {
	if a.closeStore == nil {
		return nil
	}
	err := a.closeStore()
	a.closeStore = nil
	if err != nil {
		return errors.Join(errors.New("failed to close graph store"), err)
	}
	return nil
}
