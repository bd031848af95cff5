package graph

import (
	"errors"
	"math"
	"slices"
)

// DefaultLength is the weight given to edges whose source document does not
// specify a length.
const DefaultLength = 1.0

var (
	// ErrNodeNotFound is returned when a requested node is not part of the graph.
	ErrNodeNotFound = errors.New("node not found")
	// ErrInvalidGraph is returned by Build when the collected nodes and edges
	// do not form a valid graph.
	ErrInvalidGraph = errors.New("invalid graph")
)

// NodeID identifies a node. Road networks use OSM node ids, which are int64.
type NodeID int64

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Node is an intersection or shape point of the road network.
type Node struct {
	ID NodeID
	Coordinate
}

// Edge is a directed connection between two nodes. Length is in meters for
// graphs imported from osmnx.
type Edge struct {
	From   NodeID
	To     NodeID
	Length float64
}

// Bounds is the bounding box of all node coordinates.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether c lies inside b, borders included.
func (b Bounds) Contains(c Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

// Graph is an immutable directed multigraph. Build one with a Builder.
type Graph struct {
	nodes     map[NodeID]Node
	edges     map[NodeID][]Edge
	ids       []NodeID
	edgeCount int
	bounds    Bounds
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether id is part of the graph.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Coordinate returns the position of the given node.
func (g *Graph) Coordinate(id NodeID) (Coordinate, bool) {
	n, ok := g.nodes[id]
	return n.Coordinate, ok
}

// Edges returns the outgoing edges of id in insertion order.
// Note: the caller should not mutate the returned slice.
func (g *Graph) Edges(id NodeID) []Edge {
	return g.edges[id]
}

// NodeIDs returns all node ids in ascending order.
// Note: the caller should not mutate the returned slice.
func (g *Graph) NodeIDs() []NodeID {
	return g.ids
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges, counting parallel edges separately.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// Bounds returns the bounding box of the graph. It is the zero value for an
// empty graph.
func (g *Graph) Bounds() Bounds {
	return g.bounds
}

// Require returns an error wrapping ErrNodeNotFound for the first id that is
// not part of the graph.
func (g *Graph) Require(ids ...NodeID) error {
	for _, id := range ids {
		if !g.HasNode(id) {
			return &NodeNotFoundError{ID: id}
		}
	}
	return nil
}

// NodeNotFoundError reports which node was missing.
type NodeNotFoundError struct {
	ID NodeID
}

func (e *NodeNotFoundError) Error() string {
	return "node " + formatID(e.ID) + " not found"
}

// Is makes errors.Is(err, ErrNodeNotFound) match.
func (e *NodeNotFoundError) Is(target error) bool {
	return target == ErrNodeNotFound
}

func computeBounds(nodes map[NodeID]Node) Bounds {
	if len(nodes) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinLat: math.Inf(1), MinLon: math.Inf(1),
		MaxLat: math.Inf(-1), MaxLon: math.Inf(-1),
	}
	for _, n := range nodes {
		b.MinLat = math.Min(b.MinLat, n.Lat)
		b.MinLon = math.Min(b.MinLon, n.Lon)
		b.MaxLat = math.Max(b.MaxLat, n.Lat)
		b.MaxLon = math.Max(b.MaxLon, n.Lon)
	}
	return b
}

func sortedIDs(nodes map[NodeID]Node) []NodeID {
	ids := make([]NodeID, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
