package visit

import (
	"context"

	"github.com/specialistvlad/pathfinder/internal/graph"
)

// EventType is the type tag of a node-visit event.
const EventType = "node_visit"

// Version is the event payload version.
const Version = 1

// Event is the payload delivered for every expanded node.
type Event struct {
	Type      string         `json:"type"`
	Version   int            `json:"version"`
	SessionID string         `json:"session_id"`
	Seq       uint64         `json:"seq"`
	NodeID    graph.NodeID   `json:"node_id"`
	Cost      float64        `json:"cost"`
	Metadata  map[string]any `json:"metadata"`
}

// Sink receives events. Deliver is called from a single goroutine.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, ev Event) error

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}
