package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/visit"
)

// RecordingSink stores every delivered event.
type RecordingSink struct {
	mu     sync.Mutex
	events []visit.Event
}

// Deliver implements visit.Sink.
func (s *RecordingSink) Deliver(_ context.Context, ev visit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// Events returns a copy of the recorded events.
func (s *RecordingSink) Events() []visit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]visit.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Nodes returns the node ids of the recorded events in delivery order.
func (s *RecordingSink) Nodes() []graph.NodeID {
	events := s.Events()
	out := make([]graph.NodeID, len(events))
	for i, ev := range events {
		out[i] = ev.NodeID
	}
	return out
}
