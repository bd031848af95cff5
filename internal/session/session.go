package session

import (
	"context"
	"time"

	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/search"
)

// Info describes a session for listings.
type Info struct {
	ID        string       `json:"session_id"`
	Graph     string       `json:"place_name"`
	Start     graph.NodeID `json:"start_node"`
	End       graph.NodeID `json:"end_node"`
	Algorithm string       `json:"algorithm"`
	Heuristic string       `json:"heuristic,omitempty"`
	StartedAt time.Time    `json:"started_at"`
}

// Session is a running or finished search.
type Session struct {
	id        string
	req       Request
	startedAt time.Time
	cancel    context.CancelCauseFunc
	done      chan struct{}

	// Written by the session goroutine before done is closed.
	result *Result
	err    error
}

// ID returns the session UUID.
func (s *Session) ID() string { return s.id }

// Request returns the request with defaults applied.
func (s *Session) Request() Request { return s.req }

// StartedAt returns when the session was registered.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Info returns the listing entry of the session.
func (s *Session) Info() Info {
	info := Info{
		ID:        s.id,
		Graph:     s.req.Graph,
		Start:     s.req.Start,
		End:       s.req.End,
		Algorithm: s.req.Algorithm,
		StartedAt: s.startedAt.UTC(),
	}
	if s.req.Algorithm == search.NameHeuristicGuided {
		info.Heuristic = s.req.Heuristic
	}
	return info
}

// Cancel stops the session. It is safe to call more than once and after the
// session has ended.
func (s *Session) Cancel() {
	s.cancel(ErrCancelled)
}

// Done is closed when the session has ended.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the session ends and returns its result.
func (s *Session) Wait() (*Result, error) {
	<-s.done
	return s.result, s.err
}
