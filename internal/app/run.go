package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/pathfinder/internal/ctxlog"
)

// Run serves HTTP and socket.io until ctx is cancelled, then shuts down
// gracefully: the listener stops accepting, running sessions are cancelled
// and awaited, and the graph store is closed.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer a.Close()

	if err := a.startHTTPServer(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🚀 Pathfinder server starting.", "address", a.listener.Addr().String())
		// Serve returns http.ErrServerClosed on graceful shutdown.
		if err := a.httpServer.Serve(a.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error("HTTP server failed unexpectedly.", "error", err)
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		a.logger.Info("Shutdown requested.", "cause", context.Cause(ctx))
	}

	err := a.shutdown(context.WithoutCancel(ctx))
	a.logger.Info("🏁 Pathfinder server stopped.")
	return err
}

func (a *App) startHTTPServer() error {
	a.logger.Debug("Configuring HTTP server.", "address", a.settings.Server.Address)
	ln, err := net.Listen("tcp", a.settings.Server.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.settings.Server.Address, err)
	}
	a.listener = ln
	a.httpServer = &http.Server{
		Handler:           a.api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	close(a.ready)
	return nil
}

func (a *App) shutdown(ctx context.Context) error {
	timeout := a.settings.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error
	a.logger.Info("Shutting down HTTP server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP server shutdown failed.", "error", err)
		errs = append(errs, err)
	}

	a.stream.Close()
	if err := a.manager.Shutdown(ctx); err != nil {
		a.logger.Error("Sessions did not finish before the shutdown deadline.", "error", err, "active", a.manager.Active())
		errs = append(errs, err)
	}

	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}
	a.logger.Debug("Shutdown complete.")
	return errors.Join(errs...)
}
