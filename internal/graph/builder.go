package graph

import (
	"fmt"
	"math"
	"strconv"
)

// Builder collects nodes and edges and produces a validated Graph.
// A Builder is not safe for concurrent use.
type Builder struct {
	nodes map[NodeID]Node
	edges []Edge
	err   error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{nodes: make(map[NodeID]Node)}
}

// AddNode adds a node. Adding the same id twice is an error reported by Build.
func (b *Builder) AddNode(id NodeID, lat, lon float64) *Builder {
	if _, exists := b.nodes[id]; exists {
		b.fail(fmt.Errorf("%w: duplicate node %s", ErrInvalidGraph, formatID(id)))
		return b
	}
	b.nodes[id] = Node{ID: id, Coordinate: Coordinate{Lat: lat, Lon: lon}}
	return b
}

// AddEdge adds a directed edge. Parallel edges and self-loops are allowed.
func (b *Builder) AddEdge(from, to NodeID, length float64) *Builder {
	if math.IsNaN(length) || length < 0 {
		b.fail(fmt.Errorf("%w: edge %s->%s has invalid length %v", ErrInvalidGraph, formatID(from), formatID(to), length))
		return b
	}
	b.edges = append(b.edges, Edge{From: from, To: to, Length: length})
	return b
}

// Build validates the collected data and returns the graph. Every edge
// endpoint must have been added as a node.
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}

	adjacency := make(map[NodeID][]Edge)
	for _, e := range b.edges {
		if _, ok := b.nodes[e.From]; !ok {
			return nil, fmt.Errorf("%w: edge %s->%s references unknown source", ErrInvalidGraph, formatID(e.From), formatID(e.To))
		}
		if _, ok := b.nodes[e.To]; !ok {
			return nil, fmt.Errorf("%w: edge %s->%s references unknown target", ErrInvalidGraph, formatID(e.From), formatID(e.To))
		}
		adjacency[e.From] = append(adjacency[e.From], e)
	}

	nodes := make(map[NodeID]Node, len(b.nodes))
	for id, n := range b.nodes {
		nodes[id] = n
	}

	return &Graph{
		nodes:     nodes,
		edges:     adjacency,
		ids:       sortedIDs(nodes),
		edgeCount: len(b.edges),
		bounds:    computeBounds(nodes),
	}, nil
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func formatID(id NodeID) string {
	return strconv.FormatInt(int64(id), 10)
}
