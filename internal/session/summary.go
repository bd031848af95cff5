package session

import (
	"math"

	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/search"
	"github.com/specialistvlad/pathfinder/internal/visit"
)

// Summary is the wire form of a Result shared by the HTTP and socket.io
// transports. Cost is null unless a path was found.
type Summary struct {
	SessionID  string         `json:"session_id"`
	Outcome    search.Outcome `json:"outcome"`
	Path       []graph.NodeID `json:"path"`
	Cost       *float64       `json:"cost"`
	Visited    int            `json:"visited"`
	Algorithm  string         `json:"algorithm"`
	Heuristic  string         `json:"heuristic,omitempty"`
	PlaceName  string         `json:"place_name"`
	DurationMS float64        `json:"duration_ms"`
	Events     *visit.Stats   `json:"events,omitempty"`
	Cause      string         `json:"cause,omitempty"`
}

// Summary converts r. The heuristic is only reported for heuristic-guided
// searches and event counters only when events were emitted.
func (r *Result) Summary() Summary {
	out := Summary{
		SessionID:  r.SessionID,
		Outcome:    r.Outcome,
		Path:       r.Path,
		Visited:    r.Visited,
		Algorithm:  r.Algorithm,
		PlaceName:  r.Graph,
		DurationMS: float64(r.Duration.Microseconds()) / 1000,
	}
	if r.Algorithm == search.NameHeuristicGuided {
		out.Heuristic = r.Heuristic
	}
	if out.Path == nil {
		out.Path = []graph.NodeID{}
	}
	if r.Outcome == search.OutcomeFound && !math.IsInf(r.Cost, 0) {
		cost := r.Cost
		out.Cost = &cost
	}
	if r.Events.Emitted > 0 {
		events := r.Events
		out.Events = &events
	}
	if r.Cause != nil {
		out.Cause = r.Cause.Error()
	}
	return out
}
