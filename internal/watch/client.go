// Package watch is the socket.io client for the streaming search endpoint.
// It backs the "pathfinder watch" command and the end-to-end stream tests.
package watch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/pathfinder/internal/ctxlog"
	"github.com/specialistvlad/pathfinder/internal/inmemorystore"
	"github.com/specialistvlad/pathfinder/internal/stream"
	"github.com/specialistvlad/pathfinder/internal/visit"
)

const (
	defaultNamespace      = "/"
	defaultConnectTimeout = 15 * time.Second
	defaultCancelGrace    = 5 * time.Second
)

// ErrRejected wraps path_error replies.
var ErrRejected = errors.New("request rejected by server")

// RejectedError carries the server's error code.
type RejectedError struct {
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrRejected, e.Message, e.Code)
}

func (e *RejectedError) Is(target error) bool { return target == ErrRejected }

// Options configures Dial.
type Options struct {
	URL string
	// Namespace defaults to "/".
	Namespace          string
	ConnectTimeout     time.Duration
	InsecureSkipVerify bool
	// CancelGrace bounds how long FindPath waits for the final result after
	// its context is cancelled, and for visits still in flight once the
	// result has arrived.
	CancelGrace time.Duration
}

// Client is a connected socket.io client. It is safe for concurrent
// FindPath calls.
type Client struct {
	io      *socket.Socket
	logger  *slog.Logger
	grace   time.Duration
	pending *inmemorystore.Store[string, *call]
}

type reply struct {
	result *stream.PathResult
	err    error
}

// call is one FindPath in flight. socket.io-client-go dispatches every
// packet on its own goroutine, so the events of a call arrive in any order.
// Visits are handed to onVisit in seq order and the result is held back
// until every delivered visit has been seen.
type call struct {
	onVisit func(visit.Event)
	started chan string
	done    chan reply

	mu       sync.Mutex
	next     uint64
	held     map[uint64]visit.Event
	received uint64
	result   *stream.PathResult
	finished bool
	timer    *time.Timer
}

func newCall(onVisit func(visit.Event)) *call {
	return &call{
		onVisit: onVisit,
		started: make(chan string, 1),
		done:    make(chan reply, 1),
		next:    1,
		held:    make(map[uint64]visit.Event),
	}
}

func (cl *call) visit(ev visit.Event) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.finished || ev.Seq < cl.next {
		return
	}
	if _, dup := cl.held[ev.Seq]; dup {
		return
	}
	cl.received++
	cl.held[ev.Seq] = ev
	cl.release()
	cl.complete(false)
}

// release hands the held visits that continue the sequence to onVisit.
func (cl *call) release() {
	for {
		ev, ok := cl.held[cl.next]
		if !ok {
			return
		}
		delete(cl.held, cl.next)
		cl.next++
		cl.deliver(ev)
	}
}

func (cl *call) deliver(ev visit.Event) {
	if cl.onVisit != nil {
		cl.onVisit(ev)
	}
}

// resolve records the terminal result. The call completes once all visits
// the server delivered have arrived, or after grace.
func (cl *call) resolve(res *stream.PathResult, grace time.Duration) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.finished || cl.result != nil {
		return
	}
	cl.result = res
	if cl.complete(false) {
		return
	}
	cl.timer = time.AfterFunc(grace, func() {
		cl.mu.Lock()
		defer cl.mu.Unlock()
		cl.complete(true)
	})
}

// complete finishes the call if the result is known and every expected
// visit has arrived, or unconditionally with force. Visits held behind a
// gap left by dropped events are flushed in seq order first.
func (cl *call) complete(force bool) bool {
	if cl.finished || cl.result == nil {
		return cl.finished
	}
	var expected uint64
	if ev := cl.result.Events; ev != nil {
		expected = ev.Delivered
	}
	if !force && cl.received < expected {
		return false
	}
	for _, seq := range slices.Sorted(maps.Keys(cl.held)) {
		cl.deliver(cl.held[seq])
	}
	clear(cl.held)
	if cl.timer != nil {
		cl.timer.Stop()
	}
	cl.finished = true
	cl.done <- reply{result: cl.result}
	return true
}

func (cl *call) fail(err error) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.finished {
		return
	}
	if cl.timer != nil {
		cl.timer.Stop()
	}
	cl.finished = true
	cl.done <- reply{err: err}
}

// Dial connects to a pathfinder server and waits for the handshake.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("URL %q must include scheme and host", opts.URL)
	}
	logger := ctxlog.FromContext(ctx).With("component", "watch", "url", opts.URL)

	sopts := socket.DefaultOptions()
	if p := parsedURL.Path; p != "" && p != "/" {
		sopts.SetPath(p)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		sopts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sopts.SetTransports(types.NewSet(transports.WebSocket))

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	grace := opts.CancelGrace
	if grace <= 0 {
		grace = defaultCancelGrace
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sopts)
	ns := opts.Namespace
	if ns == "" {
		ns = defaultNamespace
	}
	io := manager.Socket(ns, sopts)

	c := &Client{
		io:      io,
		logger:  logger,
		grace:   grace,
		pending: inmemorystore.New[string, *call](),
	}
	c.listen()

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		if err == nil {
			err = fmt.Errorf("%v", errs[0])
		}
		connected <- err
	})

	logger.Debug("Connecting to stream endpoint.")
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		logger.Info("Connected to stream endpoint.", "sid", io.Id())
		return c, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Close disconnects. Pending FindPath calls fail.
func (c *Client) Close() {
	c.io.Disconnect()
	c.pending.Range(func(_ string, cl *call) bool {
		cl.fail(errors.New("connection closed"))
		return true
	})
}

// FindPath starts a streamed search and blocks until its terminal event.
// onVisit, if non-nil, receives node visits in expansion order; calls for
// one FindPath never overlap, and all of them happen before FindPath
// returns. When ctx is cancelled the session is cancelled on the server and
// the cancelled result is returned if it arrives within the grace period.
func (c *Client) FindPath(ctx context.Context, req stream.FindPathRequest, onVisit func(visit.Event)) (*stream.PathResult, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	cl := newCall(onVisit)
	c.pending.Store(req.RequestID, cl)
	defer c.pending.Delete(req.RequestID)

	if err := c.io.Emit(stream.EventFindPath, req); err != nil {
		return nil, fmt.Errorf("failed to emit %s: %w", stream.EventFindPath, err)
	}

	for {
		select {
		case id := <-cl.started:
			c.logger.Debug("Session started.", "request_id", req.RequestID, "session_id", id)
		case r := <-cl.done:
			return r.result, r.err
		case <-ctx.Done():
			c.cancel(stream.CancelRequest{RequestID: req.RequestID})
			select {
			case r := <-cl.done:
				return r.result, r.err
			case <-time.After(c.grace):
				// Late events for this call are ignored from here on.
				cl.fail(ctx.Err())
				return nil, ctx.Err()
			}
		}
	}
}

func (c *Client) cancel(req stream.CancelRequest) {
	if err := c.io.Emit(stream.EventCancel, req); err != nil {
		c.logger.Warn("Failed to emit cancel.", "session_id", req.SessionID, "request_id", req.RequestID, "error", err)
	}
}

func (c *Client) listen() {
	c.io.On(types.EventName(stream.EventSessionStarted), func(args ...any) {
		var ev stream.SessionStarted
		if !c.decode(stream.EventSessionStarted, args, &ev) {
			return
		}
		if cl, ok := c.pending.Load(ev.RequestID); ok {
			select {
			case cl.started <- ev.SessionID:
			default:
			}
		}
	})
	c.io.On(types.EventName(stream.EventNodeVisit), func(args ...any) {
		var ev stream.NodeVisit
		if !c.decode(stream.EventNodeVisit, args, &ev) {
			return
		}
		if cl, ok := c.pending.Load(ev.RequestID); ok {
			cl.visit(ev.Event)
		}
	})
	c.io.On(types.EventName(stream.EventPathResult), func(args ...any) {
		var res stream.PathResult
		if !c.decode(stream.EventPathResult, args, &res) {
			return
		}
		if cl, ok := c.pending.Load(res.RequestID); ok {
			cl.resolve(&res, c.grace)
		}
	})
	c.io.On(types.EventName(stream.EventPathError), func(args ...any) {
		var perr stream.PathError
		if !c.decode(stream.EventPathError, args, &perr) {
			return
		}
		if cl, ok := c.pending.Load(perr.RequestID); ok {
			cl.fail(&RejectedError{Code: perr.Code, Message: perr.Error})
		}
	})
}

func (c *Client) decode(event string, args []any, v any) bool {
	if len(args) == 0 {
		c.logger.Warn("Received event without payload.", "event", event)
		return false
	}
	if err := stream.Decode(args[0], v); err != nil {
		c.logger.Warn("Failed to decode event.", "event", event, "error", err)
		return false
	}
	return true
}
