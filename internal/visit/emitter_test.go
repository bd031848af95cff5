package visit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/pathfinder/internal/graph"
)

type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) Deliver(_ context.Context, ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *collector) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

// gatedSink blocks every delivery until release is closed.
type gatedSink struct {
	collector
	release chan struct{}
	entered chan struct{}
	once    sync.Once
}

func newGatedSink() *gatedSink {
	return &gatedSink{release: make(chan struct{}), entered: make(chan struct{})}
}

func (g *gatedSink) Deliver(ctx context.Context, ev Event) error {
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return g.collector.Deliver(ctx, ev)
}

func TestEmitter_PreservesOrder(t *testing.T) {
	// --- Arrange ---
	sink := &collector{}
	e := NewEmitter(context.Background(), sink, Options{SessionID: "s1", QueueSize: 4, Overflow: Block})

	// --- Act ---
	for i := 1; i <= 100; i++ {
		e.Observe(context.Background(), graph.NodeID(i), float64(i))
	}
	e.Close()

	// --- Assert ---
	events := sink.snapshot()
	require.Len(t, events, 100)
	for i, ev := range events {
		assert.Equal(t, uint64(i+1), ev.Seq)
		assert.Equal(t, graph.NodeID(i+1), ev.NodeID)
		assert.Equal(t, EventType, ev.Type)
		assert.Equal(t, Version, ev.Version)
		assert.Equal(t, "s1", ev.SessionID)
		assert.NotNil(t, ev.Metadata)
	}
	assert.Equal(t, Stats{Emitted: 100, Delivered: 100}, e.Stats())
}

func TestEmitter_DropOldestNeverBlocks(t *testing.T) {
	sink := newGatedSink()
	e := NewEmitter(context.Background(), sink, Options{QueueSize: 3})

	e.Observe(context.Background(), 1, 0)
	<-sink.entered // event 1 is now held by the sink

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 2; i <= 50; i++ {
			e.Observe(context.Background(), graph.NodeID(i), float64(i))
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Observe blocked under drop-oldest")
	}

	close(sink.release)
	e.Close()

	events := sink.snapshot()
	require.Len(t, events, 4)
	// The first event was in flight; the queue kept the newest three.
	assert.Equal(t, []graph.NodeID{1, 48, 49, 50}, []graph.NodeID{events[0].NodeID, events[1].NodeID, events[2].NodeID, events[3].NodeID})
	st := e.Stats()
	assert.Equal(t, uint64(50), st.Emitted)
	assert.Equal(t, uint64(4), st.Delivered)
	assert.Equal(t, uint64(46), st.Dropped)
}

func TestEmitter_BlockRespectsContext(t *testing.T) {
	sink := newGatedSink()
	e := NewEmitter(context.Background(), sink, Options{QueueSize: 1, Overflow: Block})

	ctx, cancel := context.WithCancel(context.Background())
	e.Observe(ctx, 1, 0)
	<-sink.entered
	e.Observe(ctx, 2, 0) // fills the queue

	returned := make(chan struct{})
	go func() {
		e.Observe(ctx, 3, 0)
		close(returned)
	}()

	select {
	case <-returned:
		t.Fatal("Observe returned while the queue was full")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	<-returned
	assert.Equal(t, uint64(1), e.Stats().Dropped)

	close(sink.release)
	e.Close()
	assert.Len(t, sink.snapshot(), 2)
}

func TestEmitter_AbortDiscardsPending(t *testing.T) {
	sink := newGatedSink()
	e := NewEmitter(context.Background(), sink, Options{QueueSize: 10})

	for i := 1; i <= 5; i++ {
		e.Observe(context.Background(), graph.NodeID(i), 0)
	}
	<-sink.entered

	e.Abort()

	assert.Empty(t, sink.snapshot(), "the in-flight delivery is cancelled and the rest discarded")
	st := e.Stats()
	assert.Equal(t, uint64(0), st.Delivered)
	assert.Equal(t, uint64(1), st.Failed)
	assert.Equal(t, uint64(4), st.Dropped)

	// Observe after Abort is ignored; Close after Abort is safe.
	e.Observe(context.Background(), 6, 0)
	e.Close()
	assert.Equal(t, uint64(5), e.Stats().Emitted)
}

func TestEmitter_SinkErrorsAreCounted(t *testing.T) {
	var calls int
	sink := SinkFunc(func(_ context.Context, ev Event) error {
		calls++
		if ev.Seq%2 == 0 {
			return errors.New("socket closed")
		}
		return nil
	})
	e := NewEmitter(context.Background(), sink, Options{Overflow: Block})
	for i := 0; i < 10; i++ {
		e.Observe(context.Background(), graph.NodeID(i), 0)
	}
	e.Close()

	assert.Equal(t, 10, calls)
	assert.Equal(t, Stats{Emitted: 10, Delivered: 5, Failed: 5}, e.Stats())
}

func TestEmitter_NilSinkIsNoop(t *testing.T) {
	e := NewEmitter(context.Background(), nil, Options{})
	require.Nil(t, e)

	e.Observe(context.Background(), 1, 1)
	e.Close()
	e.Abort()
	assert.Equal(t, Stats{}, e.Stats())
}

func TestEmitter_CloseAfterSessionCancelStillDrains(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sink := &collector{}
	e := NewEmitter(ctx, sink, Options{QueueSize: 8, Overflow: Block})
	for i := 0; i < 8; i++ {
		e.Observe(ctx, graph.NodeID(i), 0)
	}
	cancel()
	e.Close()
	assert.Len(t, sink.snapshot(), 8)
}

func TestParseOverflow(t *testing.T) {
	o, err := ParseOverflow("")
	require.NoError(t, err)
	assert.Equal(t, DropOldest, o)

	o, err = ParseOverflow("BLOCK")
	require.NoError(t, err)
	assert.Equal(t, Block, o)

	_, err = ParseOverflow("drop-newest")
	require.Error(t, err)
}
