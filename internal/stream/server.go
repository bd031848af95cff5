package stream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/zishang520/socket.io/v2/socket"

	"github.com/specialistvlad/pathfinder/internal/ctxlog"
	"github.com/specialistvlad/pathfinder/internal/inmemorystore"
	"github.com/specialistvlad/pathfinder/internal/session"
	"github.com/specialistvlad/pathfinder/internal/visit"
)

// Server bridges socket.io connections to a session.Manager.
type Server struct {
	io      *socket.Server
	manager *session.Manager
	logger  *slog.Logger
	conns   *inmemorystore.Store[string, *conn]
}

// conn is the per-connection state. Its context is cancelled on disconnect,
// which cancels every session started through it.
type conn struct {
	client   *socket.Socket
	ctx      context.Context
	cancel   context.CancelFunc
	sessions *inmemorystore.Store[string, *session.Session]
	requests *inmemorystore.Store[string, *session.Session]
}

// New creates a socket.io server. Serve it with Handler.
func New(manager *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		io:      socket.NewServer(nil, nil),
		manager: manager,
		logger:  logger.With("component", "stream"),
		conns:   inmemorystore.New[string, *conn](),
	}
	s.io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			s.logger.Error("Unexpected connection payload.", "type", fmt.Sprintf("%T", clients[0]))
			return
		}
		s.accept(client)
	})
	return s
}

// Handler returns the HTTP handler to mount under /socket.io/.
func (s *Server) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

// Connections reports the number of connected clients.
func (s *Server) Connections() int {
	return s.conns.Len()
}

// Close cancels every streamed session and closes the socket.io server.
func (s *Server) Close() {
	s.conns.Range(func(_ string, c *conn) bool {
		c.cancel()
		return true
	})
	s.io.Close(nil)
}

func (s *Server) accept(client *socket.Socket) {
	id := string(client.Id())
	ctx, cancel := context.WithCancel(context.Background())
	ctx, logger := ctxlog.With(ctxlog.WithLogger(ctx, s.logger), "sid", id)

	c := &conn{
		client:   client,
		ctx:      ctx,
		cancel:   cancel,
		sessions: inmemorystore.New[string, *session.Session](),
		requests: inmemorystore.New[string, *session.Session](),
	}
	s.conns.Store(id, c)
	logger.Info("🔌 Stream client connected.")

	client.On(EventFindPath, func(args ...any) {
		s.handleFindPath(c, args)
	})
	client.On(EventCancel, func(args ...any) {
		s.handleCancel(c, args)
	})
	client.On("disconnect", func(reason ...any) {
		s.conns.Delete(id)
		cancel()
		logger.Info("Stream client disconnected.", "reason", fmt.Sprint(reason...), "open_sessions", c.sessions.Len())
	})
}

func (s *Server) handleFindPath(c *conn, args []any) {
	logger := ctxlog.FromContext(c.ctx)

	var req FindPathRequest
	if len(args) == 0 {
		s.reject(c, req, fmt.Errorf("%w: empty payload", errInvalidRequest))
		return
	}
	if err := Decode(args[0], &req); err != nil {
		s.reject(c, req, fmt.Errorf("%w: %v", errInvalidRequest, err))
		return
	}
	sreq, err := req.sessionRequest()
	if err != nil {
		s.reject(c, req, err)
		return
	}

	sink := visit.SinkFunc(func(_ context.Context, ev visit.Event) error {
		return c.client.Emit(EventNodeVisit, NodeVisit{RequestID: req.RequestID, Event: ev})
	})
	// session_started goes out before the search can produce a visit.
	sess, err := s.manager.StartWith(c.ctx, sreq, sink, func(sess *session.Session) {
		c.sessions.Store(sess.ID(), sess)
		if req.RequestID != "" {
			c.requests.Store(req.RequestID, sess)
		}
		s.emit(c, EventSessionStarted, SessionStarted{
			RequestID: req.RequestID,
			SessionID: sess.ID(),
			Algorithm: sess.Request().Algorithm,
		})
	})
	if err != nil {
		s.reject(c, req, err)
		return
	}

	go func() {
		defer c.sessions.Delete(sess.ID())
		if req.RequestID != "" {
			defer c.requests.Delete(req.RequestID)
		}
		res, err := sess.Wait()
		if err != nil {
			logger.Error("Streamed session failed.", "session_id", sess.ID(), "error", err)
			s.emit(c, EventPathError, PathError{RequestID: req.RequestID, Code: CodeInternal, Error: err.Error()})
			return
		}
		s.emit(c, EventPathResult, PathResult{RequestID: req.RequestID, Summary: res.Summary()})
	}()
}

func (s *Server) handleCancel(c *conn, args []any) {
	var req CancelRequest
	if len(args) > 0 && args[0] != nil {
		if err := Decode(args[0], &req); err != nil {
			ctxlog.FromContext(c.ctx).Warn("Ignoring malformed cancel request.", "error", err)
			return
		}
	}

	switch {
	case req.SessionID != "":
		if sess, ok := c.sessions.Load(req.SessionID); ok {
			sess.Cancel()
		}
		return
	case req.RequestID != "":
		if sess, ok := c.requests.Load(req.RequestID); ok {
			sess.Cancel()
		}
		return
	}
	c.sessions.Range(func(_ string, sess *session.Session) bool {
		sess.Cancel()
		return true
	})
}

func (s *Server) reject(c *conn, req FindPathRequest, err error) {
	ctxlog.FromContext(c.ctx).Warn("Rejected find_path request.", "error", err)
	s.emit(c, EventPathError, PathError{RequestID: req.RequestID, Code: codeFor(err), Error: err.Error()})
}

func (s *Server) emit(c *conn, event string, payload any) {
	if err := c.client.Emit(event, payload); err != nil {
		ctxlog.FromContext(c.ctx).Warn("Failed to emit event.", "event", event, "error", err)
	}
}
