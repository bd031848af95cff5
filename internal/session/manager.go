package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/specialistvlad/pathfinder/internal/ctxlog"
	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/graphstore"
	"github.com/specialistvlad/pathfinder/internal/heuristic"
	"github.com/specialistvlad/pathfinder/internal/inmemorystore"
	"github.com/specialistvlad/pathfinder/internal/metrics"
	"github.com/specialistvlad/pathfinder/internal/search"
	"github.com/specialistvlad/pathfinder/internal/visit"
)

// ErrCancelled is the cancellation cause of sessions stopped through Cancel.
var ErrCancelled = errors.New("session cancelled")

// Options holds the defaults applied to requests that leave a field empty,
// and the limits of the manager.
type Options struct {
	Algorithm string
	Heuristic string
	// Timeout bounds every session; zero means no deadline.
	Timeout   time.Duration
	QueueSize int
	Overflow  visit.Overflow
	// MaxConcurrent bounds the number of searches running at once; zero
	// means unlimited.
	MaxConcurrent int64
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Algorithm: search.NameHeuristicGuided,
		Heuristic: heuristic.Haversine.String(),
		Timeout:   30 * time.Second,
		QueueSize: visit.DefaultQueueSize,
		Overflow:  visit.DropOldest,
	}
}

// Request describes one search.
type Request struct {
	Graph     string        `json:"graph"`
	Start     graph.NodeID  `json:"start"`
	End       graph.NodeID  `json:"end"`
	Algorithm string        `json:"algorithm,omitempty"`
	Heuristic string        `json:"heuristic,omitempty"`
	// Timeout overrides Options.Timeout when positive. A request cannot lift
	// the manager's deadline; only a manager configured with a zero Timeout
	// runs sessions without one.
	Timeout   time.Duration `json:"timeout,omitempty"`
}

// Result is the outcome of a session.
type Result struct {
	search.Result
	SessionID string
	Graph     string
	Algorithm string
	Heuristic string
	Events    visit.Stats
	Duration  time.Duration
}

// Manager starts sessions and tracks the running ones.
type Manager struct {
	source   graphstore.Source
	opts     Options
	metrics  *metrics.Metrics
	sem      *semaphore.Weighted
	sessions *inmemorystore.Store[string, *Session]
}

// NewManager returns a manager loading graphs from source. m may be nil.
func NewManager(source graphstore.Source, opts Options, m *metrics.Metrics) *Manager {
	defaults := DefaultOptions()
	if opts.Algorithm == "" {
		opts.Algorithm = defaults.Algorithm
	}
	if opts.Heuristic == "" {
		opts.Heuristic = defaults.Heuristic
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaults.QueueSize
	}
	if opts.Overflow == "" {
		opts.Overflow = defaults.Overflow
	}
	if m == nil {
		m = metrics.New(nil)
	}

	mgr := &Manager{
		source:   source,
		opts:     opts,
		metrics:  m,
		sessions: inmemorystore.New[string, *Session](),
	}
	if opts.MaxConcurrent > 0 {
		mgr.sem = semaphore.NewWeighted(opts.MaxConcurrent)
	}
	return mgr
}

// Options returns the effective defaults.
func (m *Manager) Options() Options {
	return m.opts
}

// Run executes a search and waits for its result.
func (m *Manager) Run(ctx context.Context, req Request, sink visit.Sink) (*Result, error) {
	s, err := m.Start(ctx, req, sink)
	if err != nil {
		return nil, err
	}
	return s.Wait()
}

// Start validates req and runs the search in the background. The session
// ends when the search completes or when ctx, the session deadline or
// Cancel stops it. sink may be nil.
func (m *Manager) Start(ctx context.Context, req Request, sink visit.Sink) (*Session, error) {
	return m.StartWith(ctx, req, sink, nil)
}

// StartWith is Start with a hook. onStart runs on the calling goroutine once
// the session is registered and before the search begins, so it happens
// before the first event reaches sink.
func (m *Manager) StartWith(ctx context.Context, req Request, sink visit.Sink, onStart func(*Session)) (*Session, error) {
	req = m.withDefaults(req)

	alg, err := search.New(req.Algorithm, req.Heuristic)
	if err != nil {
		return nil, err
	}
	req.Algorithm = alg.Name()

	g, err := m.source.Graph(ctx, req.Graph)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph %q: %w", req.Graph, err)
	}
	if err := g.Require(req.Start, req.End); err != nil {
		return nil, fmt.Errorf("invalid request for graph %q: %w", req.Graph, err)
	}

	id := uuid.NewString()
	sctx, cancel := context.WithCancelCause(ctx)
	var stopTimer context.CancelFunc = func() {}
	if req.Timeout > 0 {
		sctx, stopTimer = context.WithTimeout(sctx, req.Timeout)
	}
	sctx, logger := ctxlog.With(sctx, "session_id", id, "graph", req.Graph, "algorithm", req.Algorithm)

	s := &Session{
		id:        id,
		req:       req,
		startedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	m.sessions.Store(id, s)
	m.metrics.SessionsStarted.WithLabelValues(req.Algorithm).Inc()
	m.metrics.SessionsActive.Inc()
	logger.Info("🚀 Search session started.", "start", req.Start, "end", req.End, "heuristic", req.Heuristic)
	if onStart != nil {
		onStart(s)
	}

	go func() {
		defer close(s.done)
		defer m.sessions.Delete(id)
		defer m.metrics.SessionsActive.Dec()
		defer cancel(nil)
		defer stopTimer()

		s.result, s.err = m.run(sctx, s, alg, g, sink)
	}()
	return s, nil
}

func (m *Manager) run(ctx context.Context, s *Session, alg search.Algorithm, g *graph.Graph, sink visit.Sink) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	res := &Result{
		SessionID: s.id,
		Graph:     s.req.Graph,
		Algorithm: s.req.Algorithm,
		Heuristic: s.req.Heuristic,
	}

	if m.sem != nil {
		if err := m.sem.Acquire(ctx, 1); err != nil {
			res.Result = search.Result{Outcome: search.OutcomeCancelled, Cost: math.NaN(), Cause: context.Cause(ctx)}
			m.finish(ctx, res)
			return res, nil
		}
		defer m.sem.Release(1)
	}

	emitter := visit.NewEmitter(ctx, sink, visit.Options{
		SessionID: s.id,
		QueueSize: m.opts.QueueSize,
		Overflow:  m.opts.Overflow,
	})
	var obs search.Observer
	if emitter != nil {
		obs = emitter
	}

	began := time.Now()
	out, err := alg.FindPath(ctx, g, s.req.Start, s.req.End, obs)
	res.Duration = time.Since(began)
	if err != nil {
		emitter.Abort()
		logger.Error("Search failed.", "error", err)
		return nil, err
	}

	if out.Outcome == search.OutcomeCancelled {
		emitter.Abort()
	} else {
		emitter.Close()
	}
	res.Result = *out
	res.Events = emitter.Stats()

	m.metrics.SearchDuration.WithLabelValues(res.Algorithm).Observe(res.Duration.Seconds())
	m.metrics.NodesVisited.WithLabelValues(res.Algorithm).Observe(float64(res.Visited))
	m.metrics.EventsDelivered.Add(float64(res.Events.Delivered))
	m.metrics.EventsDropped.Add(float64(res.Events.Dropped))
	m.metrics.EventsFailed.Add(float64(res.Events.Failed))
	m.finish(ctx, res)
	return res, nil
}

func (m *Manager) finish(ctx context.Context, res *Result) {
	m.metrics.SessionsFinished.WithLabelValues(res.Algorithm, res.Outcome.String()).Inc()

	logger := ctxlog.FromContext(ctx)
	attrs := []any{
		"outcome", res.Outcome.String(),
		"visited", res.Visited,
		"duration", res.Duration,
		"events_delivered", res.Events.Delivered,
		"events_dropped", res.Events.Dropped,
	}
	switch res.Outcome {
	case search.OutcomeFound:
		logger.Info("🏁 Search session finished.", append(attrs, "cost", res.Cost, "path_length", len(res.Path))...)
	case search.OutcomeCancelled:
		logger.Warn("Search session cancelled.", append(attrs, "cause", res.Cause)...)
	default:
		logger.Info("🏁 Search session finished.", attrs...)
	}
}

// Get returns the running session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	return m.sessions.Load(id)
}

// Cancel stops the running session with the given id. It reports whether
// such a session was found.
func (m *Manager) Cancel(id string) bool {
	s, ok := m.sessions.Load(id)
	if !ok {
		return false
	}
	s.Cancel()
	return true
}

// Sessions lists the running sessions, oldest first.
func (m *Manager) Sessions() []Info {
	var out []Info
	m.sessions.Range(func(_ string, s *Session) bool {
		out = append(out, s.Info())
		return true
	})
	slices.SortFunc(out, func(a, b Info) int {
		if c := a.StartedAt.Compare(b.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Active returns the number of running sessions.
func (m *Manager) Active() int {
	return m.sessions.Len()
}

// Shutdown cancels every running session and waits until all of them have
// ended or ctx is done.
func (m *Manager) Shutdown(ctx context.Context) error {
	var running []*Session
	m.sessions.Range(func(_ string, s *Session) bool {
		s.Cancel()
		running = append(running, s)
		return true
	})
	for _, s := range running {
		select {
		case <-s.Done():
		case <-ctx.Done():
			return fmt.Errorf("waiting for %d sessions: %w", m.Active(), ctx.Err())
		}
	}
	return nil
}

func (m *Manager) withDefaults(req Request) Request {
	if req.Algorithm == "" {
		req.Algorithm = m.opts.Algorithm
	}
	if req.Heuristic == "" {
		req.Heuristic = m.opts.Heuristic
	}
	if req.Timeout <= 0 {
		req.Timeout = m.opts.Timeout
	}
	return req
}
