package search

import (
	"fmt"
	"math"

	"github.com/specialistvlad/pathfinder/internal/graph"
)

// Outcome is the terminal state of a search.
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeUnreachable
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeUnreachable:
		return "unreachable"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name produced by MarshalText.
func (o *Outcome) UnmarshalText(text []byte) error {
	for _, candidate := range []Outcome{OutcomeFound, OutcomeUnreachable, OutcomeCancelled} {
		if candidate.String() == string(text) {
			*o = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Result is the product of one search.
type Result struct {
	Outcome Outcome
	// Path lists node ids from start to end inclusive. Empty unless Found.
	Path []graph.NodeID
	// Cost is the total edge length of Path, +Inf when unreachable and NaN
	// when cancelled.
	Cost float64
	// Visited counts non-stale expansions, which equals the number of
	// observations made.
	Visited int
	// Cause is set when Outcome is OutcomeCancelled.
	Cause error
}

func unreachable(visited int) *Result {
	return &Result{Outcome: OutcomeUnreachable, Path: []graph.NodeID{}, Cost: math.Inf(1), Visited: visited}
}

func cancelled(visited int, cause error) *Result {
	return &Result{Outcome: OutcomeCancelled, Cost: math.NaN(), Visited: visited, Cause: cause}
}
