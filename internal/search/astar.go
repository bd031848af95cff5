package search

import (
	"context"

	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/heuristic"
)

// HeuristicGuided is A*: nodes are expanded in order of distance from the
// start plus the heuristic estimate to the destination. The result is optimal
// when the heuristic is admissible.
type HeuristicGuided struct {
	Heuristic heuristic.Kind
}

// Name implements Algorithm.
func (HeuristicGuided) Name() string { return NameHeuristicGuided }

// FindPath implements Algorithm.
func (a HeuristicGuided) FindPath(ctx context.Context, g *graph.Graph, start, end graph.NodeID, obs Observer) (*Result, error) {
	goal, _ := g.Coordinate(end)
	return traverse(ctx, g, start, end, obs, func(neighbor graph.NodeID, cost float64) float64 {
		at, _ := g.Coordinate(neighbor)
		return cost + a.Heuristic.Estimate(at, goal)
	})
}
