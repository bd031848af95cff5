package visit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/pathfinder/internal/ctxlog"
	"github.com/specialistvlad/pathfinder/internal/graph"
)

// DefaultQueueSize is the queue capacity used when Options.QueueSize is zero.
const DefaultQueueSize = 256

// Overflow selects what happens when the queue is full.
type Overflow string

const (
	DropOldest Overflow = "drop-oldest"
	Block      Overflow = "block"
)

// ParseOverflow validates an overflow policy name. An empty name means
// DropOldest.
func ParseOverflow(name string) (Overflow, error) {
	switch o := Overflow(strings.ToLower(strings.TrimSpace(name))); o {
	case "":
		return DropOldest, nil
	case DropOldest, Block:
		return o, nil
	default:
		return "", fmt.Errorf("invalid overflow policy %q: must be %q or %q", name, DropOldest, Block)
	}
}

// Options configures an Emitter.
type Options struct {
	SessionID string
	QueueSize int
	Overflow  Overflow
}

// Stats counts what happened to emitted events.
type Stats struct {
	Emitted   uint64 `json:"emitted"`
	Delivered uint64 `json:"delivered"`
	Dropped   uint64 `json:"dropped"`
	Failed    uint64 `json:"failed"`
}

// Emitter queues events for asynchronous, ordered delivery to a Sink.
// Observe, Close and Abort must be called from the goroutine that runs the
// search. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	sink      Sink
	sessionID string
	overflow  Overflow
	logger    *slog.Logger

	queue  chan Event
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	seq       uint64
	closeOnce sync.Once
	closed    atomic.Bool
	aborted   atomic.Bool

	emitted   atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// NewEmitter starts an emitter delivering to sink. It returns nil when sink
// is nil. Delivery uses a context detached from ctx's cancellation so that
// Close can drain after the session ends; Abort stops it.
func NewEmitter(ctx context.Context, sink Sink, opts Options) *Emitter {
	if sink == nil {
		return nil
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Overflow == "" {
		opts.Overflow = DropOldest
	}

	deliverCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e := &Emitter{
		sink:      sink,
		sessionID: opts.SessionID,
		overflow:  opts.Overflow,
		logger:    ctxlog.FromContext(ctx),
		queue:     make(chan Event, opts.QueueSize),
		done:      make(chan struct{}),
		ctx:       deliverCtx,
		cancel:    cancel,
	}
	go e.run()
	return e
}

// Observe queues a node-visit event. It never blocks under DropOldest. Under
// Block it waits for room until ctx ends, then drops the event.
func (e *Emitter) Observe(ctx context.Context, node graph.NodeID, cost float64) {
	if e == nil || e.closed.Load() {
		return
	}
	e.seq++
	e.emitted.Add(1)
	ev := Event{
		Type:      EventType,
		Version:   Version,
		SessionID: e.sessionID,
		Seq:       e.seq,
		NodeID:    node,
		Cost:      cost,
		Metadata:  map[string]any{},
	}

	if e.overflow == Block {
		select {
		case e.queue <- ev:
		case <-ctx.Done():
			e.dropped.Add(1)
		}
		return
	}

	for {
		select {
		case e.queue <- ev:
			return
		default:
		}
		// Full: discard the oldest queued event. The delivery goroutine may
		// have taken it first, in which case the next send succeeds.
		select {
		case <-e.queue:
			e.dropped.Add(1)
		default:
		}
	}
}

// Close stops accepting events and waits until the queue is drained.
func (e *Emitter) Close() {
	if e == nil {
		return
	}
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		close(e.queue)
	})
	<-e.done
	e.cancel()
}

// Abort discards undelivered events and waits for the delivery goroutine to
// exit.
func (e *Emitter) Abort() {
	if e == nil {
		return
	}
	e.aborted.Store(true)
	e.cancel()
	e.Close()
}

// Stats returns a snapshot of the counters.
func (e *Emitter) Stats() Stats {
	if e == nil {
		return Stats{}
	}
	return Stats{
		Emitted:   e.emitted.Load(),
		Delivered: e.delivered.Load(),
		Dropped:   e.dropped.Load(),
		Failed:    e.failed.Load(),
	}
}

func (e *Emitter) run() {
	defer close(e.done)
	for ev := range e.queue {
		if e.aborted.Load() {
			e.dropped.Add(1)
			continue
		}
		if err := e.sink.Deliver(e.ctx, ev); err != nil {
			e.failed.Add(1)
			e.logger.Debug("Failed to deliver visit event.", "session_id", e.sessionID, "seq", ev.Seq, "error", err)
			continue
		}
		e.delivered.Add(1)
	}
}
