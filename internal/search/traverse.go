package search

import (
	"context"
	"math"
	"slices"

	"github.com/specialistvlad/pathfinder/internal/frontier"
	"github.com/specialistvlad/pathfinder/internal/graph"
)

// priorityFunc returns the frontier priority of neighbor reached at cost.
type priorityFunc func(neighbor graph.NodeID, cost float64) float64

// state is the per-search bookkeeping. Nodes absent from dist are at +Inf.
type state struct {
	dist map[graph.NodeID]float64
	prev map[graph.NodeID]graph.NodeID
}

func (s *state) distance(id graph.NodeID) float64 {
	if d, ok := s.dist[id]; ok {
		return d
	}
	return math.Inf(1)
}

// traverse is the search loop shared by every variant.
func traverse(ctx context.Context, g *graph.Graph, start, end graph.NodeID, obs Observer, priority priorityFunc) (*Result, error) {
	if err := g.Require(start, end); err != nil {
		return nil, err
	}

	s := &state{
		dist: map[graph.NodeID]float64{start: 0},
		prev: make(map[graph.NodeID]graph.NodeID),
	}
	q := frontier.New(64)
	q.Push(priority(start, 0), start, 0)

	visited := 0
	for !q.Empty() {
		if ctx.Err() != nil {
			return cancelled(visited, context.Cause(ctx)), nil
		}

		entry := q.Pop()
		current := entry.Node
		cost := s.distance(current)
		if entry.Cost > cost {
			continue
		}
		if current == end {
			return &Result{
				Outcome: OutcomeFound,
				Path:    s.path(start, end),
				Cost:    cost,
				Visited: visited,
			}, nil
		}

		visited++
		if obs != nil {
			obs.Observe(ctx, current, cost)
		}

		for _, e := range g.Edges(current) {
			candidate := cost + e.Length
			if candidate < s.distance(e.To) {
				s.dist[e.To] = candidate
				s.prev[e.To] = current
				q.Push(priority(e.To, candidate), e.To, candidate)
			}
		}
	}

	return unreachable(visited), nil
}

// path walks predecessors back from end.
func (s *state) path(start, end graph.NodeID) []graph.NodeID {
	path := []graph.NodeID{end}
	for node := end; node != start; {
		node = s.prev[node]
		path = append(path, node)
	}
	slices.Reverse(path)
	return path
}
