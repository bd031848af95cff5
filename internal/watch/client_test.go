package watch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/graphstore"
	"github.com/specialistvlad/pathfinder/internal/search"
	"github.com/specialistvlad/pathfinder/internal/session"
	"github.com/specialistvlad/pathfinder/internal/stream"
	"github.com/specialistvlad/pathfinder/internal/testutil"
	"github.com/specialistvlad/pathfinder/internal/visit"
)

func TestDial_InvalidURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"localhost:8080", "://nope", "/socket.io"} {
		_, err := Dial(context.Background(), Options{URL: raw})
		require.Error(t, err, raw)
	}
}

func TestDial_NothingListening(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	start := time.Now()
	_, err = Dial(context.Background(), Options{URL: "http://" + addr, ConnectTimeout: time.Second})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDial_ContextCancelled(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	// The listener accepts TCP but never speaks engine.io, so only the
	// context can end the wait.
	_, err = Dial(ctx, Options{URL: "http://" + l.Addr().String(), ConnectTimeout: time.Minute})
	require.Error(t, err)
}

func TestRejectedError(t *testing.T) {
	err := error(&RejectedError{Code: "graph_not_found", Message: `graph "x" not found`})
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Equal(t, `request rejected by server: graph "x" not found (graph_not_found)`, err.Error())
}

func TestDial_DefaultNamespace(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.Context(t)
	mem := graphstore.NewMemory()
	_, err := mem.Put(ctx, "diamond", testutil.Diamond(t))
	require.NoError(t, err)
	srv := stream.New(session.NewManager(mem, session.DefaultOptions(), nil), nil)

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", srv.Handler())
	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})

	// --- Act ---
	client, err := Dial(ctx, Options{URL: ts.URL, ConnectTimeout: 5 * time.Second})

	// --- Assert ---
	require.NoError(t, err)
	defer client.Close()
	require.Eventually(t, func() bool { return srv.Connections() == 1 }, 5*time.Second, 10*time.Millisecond)
}

func visitEvent(seq uint64) visit.Event {
	return visit.Event{Type: visit.EventType, Version: visit.Version, SessionID: "s1", Seq: seq, NodeID: graph.NodeID(seq * 10)}
}

func resultWith(delivered uint64) *stream.PathResult {
	res := &stream.PathResult{RequestID: "r1"}
	res.SessionID = "s1"
	res.Outcome = search.OutcomeFound
	if delivered > 0 {
		res.Events = &visit.Stats{Emitted: delivered, Delivered: delivered}
	}
	return res
}

func seqs(events []visit.Event) []uint64 {
	out := make([]uint64, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Seq)
	}
	return out
}

func TestCall_ReordersVisitsAndHoldsResult(t *testing.T) {
	// --- Arrange ---
	var got []visit.Event
	cl := newCall(func(ev visit.Event) { got = append(got, ev) })

	// --- Act ---
	cl.resolve(resultWith(4), time.Minute)
	for _, seq := range []uint64{3, 1, 4} {
		cl.visit(visitEvent(seq))
	}

	// --- Assert ---
	assert.Equal(t, []uint64{1}, seqs(got), "3 and 4 wait for 2")
	select {
	case <-cl.done:
		t.Fatal("the result must wait for every delivered visit")
	default:
	}

	cl.visit(visitEvent(2))
	r := <-cl.done
	require.NoError(t, r.err)
	assert.Equal(t, "s1", r.result.SessionID)
	assert.Equal(t, []uint64{1, 2, 3, 4}, seqs(got))
}

func TestCall_VisitsBeforeResult(t *testing.T) {
	var got []visit.Event
	cl := newCall(func(ev visit.Event) { got = append(got, ev) })

	cl.visit(visitEvent(2))
	cl.visit(visitEvent(1))
	cl.visit(visitEvent(2))
	cl.resolve(resultWith(2), time.Minute)

	r := <-cl.done
	require.NoError(t, r.err)
	assert.Equal(t, []uint64{1, 2}, seqs(got), "duplicates are ignored")
}

func TestCall_FlushesGapsAfterGrace(t *testing.T) {
	// --- Arrange ---
	var got []visit.Event
	cl := newCall(func(ev visit.Event) { got = append(got, ev) })

	// Seq 1 and 2 were dropped by the server's queue, and one delivered
	// visit never arrives.
	cl.visit(visitEvent(5))
	cl.visit(visitEvent(3))

	// --- Act ---
	cl.resolve(resultWith(3), 20*time.Millisecond)

	// --- Assert ---
	select {
	case r := <-cl.done:
		require.NoError(t, r.err)
	case <-time.After(5 * time.Second):
		t.Fatal("call did not complete after the grace period")
	}
	assert.Equal(t, []uint64{3, 5}, seqs(got))

	cl.visit(visitEvent(1))
	assert.Len(t, got, 2, "visits after completion are ignored")
}

func TestCall_NoVisits(t *testing.T) {
	cl := newCall(nil)
	cl.resolve(resultWith(0), time.Minute)

	r := <-cl.done
	require.NoError(t, r.err)
	assert.Equal(t, search.OutcomeFound, r.result.Outcome)
}

func TestCall_FailWinsOnce(t *testing.T) {
	cl := newCall(nil)
	cl.fail(&RejectedError{Code: "node_not_found", Message: "node 9 not found"})
	cl.fail(errors.New("connection closed"))
	cl.resolve(resultWith(0), time.Minute)

	r := <-cl.done
	assert.ErrorIs(t, r.err, ErrRejected)
	select {
	case <-cl.done:
		t.Fatal("a call completes exactly once")
	default:
	}
}
