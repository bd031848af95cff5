package stream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/graphstore"
	"github.com/specialistvlad/pathfinder/internal/metrics"
	"github.com/specialistvlad/pathfinder/internal/search"
	"github.com/specialistvlad/pathfinder/internal/session"
	"github.com/specialistvlad/pathfinder/internal/stream"
	fixtures "github.com/specialistvlad/pathfinder/internal/testutil"
	"github.com/specialistvlad/pathfinder/internal/visit"
	"github.com/specialistvlad/pathfinder/internal/watch"
)

type harness struct {
	graphs  *graphstore.Memory
	manager *session.Manager
	server  *stream.Server
	client  *watch.Client
}

func newHarness(t *testing.T) (context.Context, *harness) {
	t.Helper()
	ctx, _ := fixtures.Context(t)

	mem := graphstore.NewMemory()
	_, err := mem.Put(ctx, "diamond", fixtures.Diamond(t))
	require.NoError(t, err)
	_, err = mem.Put(ctx, "grid", fixtures.Grid(t, 30, 30, 11))
	require.NoError(t, err)

	opts := session.DefaultOptions()
	opts.Overflow = visit.Block
	mgr := session.NewManager(mem, opts, metrics.New(nil))
	srv := stream.New(mgr, nil)

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", srv.Handler())
	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})

	client, err := watch.Dial(ctx, watch.Options{URL: ts.URL, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return ctx, &harness{graphs: mem, manager: mgr, server: srv, client: client}
}

func ptr(id graph.NodeID) *int64 {
	v := int64(id)
	return &v
}

type visitLog struct {
	mu     sync.Mutex
	events []visit.Event
}

func (l *visitLog) add(ev visit.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *visitLog) snapshot() []visit.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]visit.Event(nil), l.events...)
}

func TestStream_FindPath(t *testing.T) {
	// --- Arrange ---
	ctx, h := newHarness(t)
	visits := &visitLog{}

	// --- Act ---
	res, err := h.client.FindPath(ctx, stream.FindPathRequest{
		PlaceName: "diamond",
		StartNode: ptr(fixtures.A),
		EndNode:   ptr(fixtures.D),
		Algorithm: "dijkstra",
	}, visits.add)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, search.OutcomeFound, res.Outcome)
	assert.Equal(t, []graph.NodeID{fixtures.A, fixtures.B, fixtures.C, fixtures.D}, res.Path)
	require.NotNil(t, res.Cost)
	assert.Equal(t, 4.0, *res.Cost)
	assert.Equal(t, 3, res.Visited)
	assert.NotEmpty(t, res.RequestID)

	events := visits.snapshot()
	require.Len(t, events, 3, "every visit must arrive before path_result")
	wantNodes := []graph.NodeID{fixtures.A, fixtures.B, fixtures.C}
	wantCosts := []float64{0, 1, 3}
	for i, ev := range events {
		assert.Equal(t, visit.EventType, ev.Type)
		assert.Equal(t, res.SessionID, ev.SessionID)
		assert.Equal(t, uint64(i+1), ev.Seq)
		assert.Equal(t, wantNodes[i], ev.NodeID)
		assert.Equal(t, wantCosts[i], ev.Cost)
	}
}

func TestStream_EveryRunDeliversAllVisitsInOrder(t *testing.T) {
	ctx, h := newHarness(t)

	for run := 0; run < 50; run++ {
		visits := &visitLog{}
		res, err := h.client.FindPath(ctx, stream.FindPathRequest{
			PlaceName: "diamond",
			StartNode: ptr(fixtures.A),
			EndNode:   ptr(fixtures.D),
			Algorithm: "dijkstra",
		}, visits.add)
		require.NoError(t, err)

		events := visits.snapshot()
		require.Len(t, events, 3, "run %d", run)
		for i, ev := range events {
			require.Equal(t, uint64(i+1), ev.Seq, "run %d", run)
			require.Equal(t, res.SessionID, ev.SessionID, "run %d", run)
		}
		require.NotNil(t, res.Events)
		assert.Equal(t, uint64(3), res.Events.Delivered)
	}
}

func TestStream_CancelledContextCancelsSession(t *testing.T) {
	// --- Arrange ---
	ctx, h := newHarness(t)
	_, err := h.graphs.Put(ctx, "big", fixtures.Grid(t, 150, 150, 5))
	require.NoError(t, err)

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var once sync.Once

	// --- Act ---
	res, err := h.client.FindPath(callCtx, stream.FindPathRequest{
		PlaceName: "big",
		StartNode: ptr(1),
		EndNode:   ptr(150 * 150),
		Algorithm: "dijkstra",
	}, func(visit.Event) { once.Do(cancel) })

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, search.OutcomeCancelled, res.Outcome)
	assert.Less(t, res.Visited, 150*150)
	require.Eventually(t, func() bool { return h.manager.Active() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestStream_Unreachable(t *testing.T) {
	ctx, h := newHarness(t)

	res, err := h.client.FindPath(ctx, stream.FindPathRequest{
		PlaceName: "diamond",
		StartNode: ptr(fixtures.A),
		EndNode:   ptr(fixtures.Isolated),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, search.OutcomeUnreachable, res.Outcome)
	assert.Empty(t, res.Path)
	assert.Nil(t, res.Cost)
}

func TestStream_Rejections(t *testing.T) {
	ctx, h := newHarness(t)

	cases := []struct {
		name string
		req  stream.FindPathRequest
		code string
	}{
		{"unknown graph", stream.FindPathRequest{PlaceName: "atlantis", StartNode: ptr(1), EndNode: ptr(2)}, stream.CodeGraphNotFound},
		{"unknown node", stream.FindPathRequest{PlaceName: "diamond", StartNode: ptr(1), EndNode: ptr(99)}, stream.CodeNodeNotFound},
		{"missing start", stream.FindPathRequest{PlaceName: "diamond", EndNode: ptr(2)}, stream.CodeInvalidRequest},
		{"bad algorithm", stream.FindPathRequest{PlaceName: "diamond", StartNode: ptr(1), EndNode: ptr(2), Algorithm: "bfs"}, stream.CodeInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.client.FindPath(ctx, tc.req, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, watch.ErrRejected)

			var rej *watch.RejectedError
			require.ErrorAs(t, err, &rej)
			assert.Equal(t, tc.code, rej.Code)
		})
	}
}

func TestStream_TimeoutEndsWithCancelledResult(t *testing.T) {
	ctx, h := newHarness(t)

	res, err := h.client.FindPath(ctx, stream.FindPathRequest{
		PlaceName: "grid",
		StartNode: ptr(1),
		EndNode:   ptr(900),
		Timeout:   "1ns",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, search.OutcomeCancelled, res.Outcome)
	assert.Nil(t, res.Cost)
	assert.Empty(t, res.Path)
	assert.NotEmpty(t, res.Cause)
}

func TestStream_ConcurrentSessionsAreDemultiplexed(t *testing.T) {
	ctx, h := newHarness(t)

	type outcome struct {
		res    *stream.PathResult
		visits []visit.Event
		err    error
	}
	run := func(end graph.NodeID) outcome {
		log := &visitLog{}
		res, err := h.client.FindPath(ctx, stream.FindPathRequest{
			PlaceName: "grid",
			StartNode: ptr(1),
			EndNode:   ptr(end),
		}, log.add)
		return outcome{res: res, visits: log.snapshot(), err: err}
	}

	var wg sync.WaitGroup
	results := make([]outcome, 2)
	for i, end := range []graph.NodeID{450, 900} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = run(end)
		}()
	}
	wg.Wait()

	for _, r := range results {
		require.NoError(t, r.err)
		assert.Equal(t, search.OutcomeFound, r.res.Outcome)
		require.Len(t, r.visits, r.res.Visited)
		for i, ev := range r.visits {
			assert.Equal(t, r.res.SessionID, ev.SessionID)
			assert.Equal(t, uint64(i+1), ev.Seq)
		}
	}
	assert.NotEqual(t, results[0].res.SessionID, results[1].res.SessionID)
}

func TestStream_DisconnectReleasesConnection(t *testing.T) {
	_, h := newHarness(t)
	require.Eventually(t, func() bool { return h.server.Connections() == 1 }, 5*time.Second, 10*time.Millisecond)

	h.client.Close()

	require.Eventually(t, func() bool { return h.server.Connections() == 0 }, 5*time.Second, 10*time.Millisecond)
	assert.Zero(t, h.manager.Active())
}
