package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/heuristic"
)

// Algorithm names accepted by New.
const (
	NameUniformCost     = "uniform-cost"
	NameHeuristicGuided = "heuristic-guided"
)

// ErrInvalidAlgorithm is returned by New for unknown algorithm names.
var ErrInvalidAlgorithm = errors.New("invalid algorithm")

var aliases = map[string]string{
	NameUniformCost:     NameUniformCost,
	"dijkstra":          NameUniformCost,
	NameHeuristicGuided: NameHeuristicGuided,
	"astar":             NameHeuristicGuided,
	"a*":                NameHeuristicGuided,
}

// Observer receives one call per expanded node, in expansion order, with the
// node's distance from the start.
type Observer interface {
	Observe(ctx context.Context, node graph.NodeID, cost float64)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, node graph.NodeID, cost float64)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, node graph.NodeID, cost float64) {
	f(ctx, node, cost)
}

// Algorithm finds a shortest path between two nodes of a graph.
type Algorithm interface {
	// Name returns the canonical algorithm name.
	Name() string
	// FindPath searches g from start to end. It returns an error only when
	// start or end is not part of g; unreachable and cancelled searches are
	// reported through Result.Outcome.
	FindPath(ctx context.Context, g *graph.Graph, start, end graph.NodeID, obs Observer) (*Result, error)
}

// Names returns the canonical algorithm names.
func Names() []string {
	return []string{NameUniformCost, NameHeuristicGuided}
}

// CanonicalName resolves an algorithm name or alias.
func CanonicalName(name string) (string, error) {
	canonical, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrInvalidAlgorithm, name, strings.Join(Names(), ", "))
	}
	return canonical, nil
}

// New returns the algorithm registered under name. The heuristic name is
// resolved for heuristic-guided search and validated but unused for
// uniform-cost search; an empty heuristic name means heuristic.Zero.
func New(name, heuristicName string) (Algorithm, error) {
	canonical, err := CanonicalName(name)
	if err != nil {
		return nil, err
	}

	kind := heuristic.Zero
	if heuristicName != "" {
		if kind, err = heuristic.Parse(heuristicName); err != nil {
			return nil, err
		}
	}

	if canonical == NameUniformCost {
		return UniformCost{}, nil
	}
	return HeuristicGuided{Heuristic: kind}, nil
}
