package search

import (
	"context"

	"github.com/specialistvlad/pathfinder/internal/graph"
)

// UniformCost is Dijkstra's algorithm: nodes are expanded in order of their
// distance from the start.
type UniformCost struct{}

// Name implements Algorithm.
func (UniformCost) Name() string { return NameUniformCost }

// FindPath implements Algorithm.
func (UniformCost) FindPath(ctx context.Context, g *graph.Graph, start, end graph.NodeID, obs Observer) (*Result, error) {
	return traverse(ctx, g, start, end, obs, func(_ graph.NodeID, cost float64) float64 {
		return cost
	})
}
