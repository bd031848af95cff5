// Package testutil holds graph fixtures and helpers shared by the test suites
// of the search, session, API and streaming packages.
package testutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/pathfinder/internal/graph"
)

// Node ids of the Diamond fixture.
const (
	A graph.NodeID = 1
	B graph.NodeID = 2
	C graph.NodeID = 3
	D graph.NodeID = 4
	// Isolated has no edges in or out.
	Isolated graph.NodeID = 5
)

// Diamond builds A->B(1), B->C(2), A->C(5), C->D(1) plus an isolated node.
// The shortest A->D path is A,B,C,D with cost 4.
func Diamond(t testing.TB) *graph.Graph {
	t.Helper()
	g, err := graph.NewBuilder().
		AddNode(A, 45.500, -73.570).
		AddNode(B, 45.501, -73.569).
		AddNode(C, 45.502, -73.568).
		AddNode(D, 45.503, -73.567).
		AddNode(Isolated, 45.600, -73.600).
		AddEdge(A, B, 1).
		AddEdge(B, C, 2).
		AddEdge(A, C, 5).
		AddEdge(C, D, 1).
		Build()
	require.NoError(t, err)
	return g
}

// Grid builds a rows x cols lattice around (lat0, lon0) with bidirectional
// edges between orthogonal neighbours. Edge lengths are the great-circle
// distance scaled by a random factor in [1, 2), so haversine stays admissible.
// Node ids are row*cols+col+1.
func Grid(t testing.TB, rows, cols int, seed int64) *graph.Graph {
	t.Helper()
	const lat0, lon0, step = 45.5, -73.6, 0.001

	rng := rand.New(rand.NewSource(seed))
	id := func(r, c int) graph.NodeID { return graph.NodeID(r*cols + c + 1) }

	b := graph.NewBuilder()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			b.AddNode(id(r, c), lat0+float64(r)*step, lon0+float64(c)*step)
		}
	}
	link := func(r1, c1, r2, c2 int) {
		from := graph.Coordinate{Lat: lat0 + float64(r1)*step, Lon: lon0 + float64(c1)*step}
		to := graph.Coordinate{Lat: lat0 + float64(r2)*step, Lon: lon0 + float64(c2)*step}
		d := GreatCircle(from, to)
		b.AddEdge(id(r1, c1), id(r2, c2), d*(1+rng.Float64()))
		b.AddEdge(id(r2, c2), id(r1, c1), d*(1+rng.Float64()))
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c+1 < cols {
				link(r, c, r, c+1)
			}
			if r+1 < rows {
				link(r, c, r+1, c)
			}
		}
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

// Random builds a sparse random digraph with n nodes and about n*degree
// edges of integer length in [0, 10). Parallel edges and self-loops occur.
func Random(t testing.TB, n, degree int, seed int64) *graph.Graph {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	b := graph.NewBuilder()
	for i := 1; i <= n; i++ {
		b.AddNode(graph.NodeID(i), rng.Float64(), rng.Float64())
	}
	for i := 0; i < n*degree; i++ {
		from := graph.NodeID(rng.Intn(n) + 1)
		to := graph.NodeID(rng.Intn(n) + 1)
		b.AddEdge(from, to, float64(rng.Intn(10)))
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

// ShortestCost computes the shortest distance from start to end by
// Bellman-Ford relaxation. It is slow and obviously correct, which makes it
// a reference for the search implementations.
func ShortestCost(g *graph.Graph, start, end graph.NodeID) float64 {
	dist := map[graph.NodeID]float64{}
	for _, id := range g.NodeIDs() {
		dist[id] = math.Inf(1)
	}
	dist[start] = 0
	for i := 0; i < g.NodeCount(); i++ {
		changed := false
		for _, id := range g.NodeIDs() {
			for _, e := range g.Edges(id) {
				if dist[id]+e.Length < dist[e.To] {
					dist[e.To] = dist[id] + e.Length
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return dist[end]
}

// PathCost sums the cheapest edge between each consecutive pair of path.
// It returns +Inf if some pair is not connected.
func PathCost(g *graph.Graph, path []graph.NodeID) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		best := math.Inf(1)
		for _, e := range g.Edges(path[i]) {
			if e.To == path[i+1] && e.Length < best {
				best = e.Length
			}
		}
		total += best
	}
	return total
}

// GreatCircle is an independent haversine in meters used to build fixtures.
func GreatCircle(a, b graph.Coordinate) float64 {
	const r = 6371000.0
	rad := math.Pi / 180
	dLat := (b.Lat - a.Lat) * rad
	dLon := (b.Lon - a.Lon) * rad
	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * r * math.Asin(math.Min(1, math.Sqrt(h)))
}
