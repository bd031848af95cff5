package graph

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Basic(t *testing.T) {
	g, err := NewBuilder().
		AddNode(1, 45.50, -73.57).
		AddNode(2, 45.51, -73.56).
		AddNode(3, 45.49, -73.58).
		AddEdge(1, 2, 120).
		AddEdge(1, 2, 90).
		AddEdge(2, 3, 50).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())
	assert.Equal(t, []NodeID{1, 2, 3}, g.NodeIDs())

	// Parallel edges are kept in insertion order.
	edges := g.Edges(1)
	require.Len(t, edges, 2)
	assert.Equal(t, 120.0, edges[0].Length)
	assert.Equal(t, 90.0, edges[1].Length)

	assert.Empty(t, g.Edges(3))

	c, ok := g.Coordinate(2)
	require.True(t, ok)
	assert.Equal(t, Coordinate{Lat: 45.51, Lon: -73.56}, c)
}

func TestBuild_Bounds(t *testing.T) {
	g, err := NewBuilder().
		AddNode(1, 10, 20).
		AddNode(2, -5, 30).
		AddNode(3, 2, -1).
		Build()
	require.NoError(t, err)

	assert.Equal(t, Bounds{MinLat: -5, MinLon: -1, MaxLat: 10, MaxLon: 30}, g.Bounds())
	assert.True(t, g.Bounds().Contains(Coordinate{Lat: 0, Lon: 0}))
	assert.True(t, g.Bounds().Contains(Coordinate{Lat: 10, Lon: 30}), "borders are inside")
	assert.False(t, g.Bounds().Contains(Coordinate{Lat: 11, Lon: 0}))
	assert.False(t, g.Bounds().Contains(Coordinate{Lat: 0, Lon: -2}))
}

func TestBuild_EmptyGraph(t *testing.T) {
	g, err := NewBuilder().Build()
	require.NoError(t, err)

	assert.Zero(t, g.NodeCount())
	assert.Equal(t, Bounds{}, g.Bounds())
}

func TestBuild_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		build func(b *Builder)
	}{
		{
			name: "unknown source",
			build: func(b *Builder) {
				b.AddNode(1, 0, 0).AddEdge(7, 1, 1)
			},
		},
		{
			name: "unknown target",
			build: func(b *Builder) {
				b.AddNode(1, 0, 0).AddEdge(1, 7, 1)
			},
		},
		{
			name: "negative length",
			build: func(b *Builder) {
				b.AddNode(1, 0, 0).AddNode(2, 0, 0).AddEdge(1, 2, -3)
			},
		},
		{
			name: "NaN length",
			build: func(b *Builder) {
				b.AddNode(1, 0, 0).AddNode(2, 0, 0).AddEdge(1, 2, math.NaN())
			},
		},
		{
			name: "duplicate node",
			build: func(b *Builder) {
				b.AddNode(1, 0, 0).AddNode(1, 1, 1)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			b := NewBuilder()
			tc.build(b)
			_, err := b.Build()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidGraph)
		})
	}
}

func TestBuild_SelfLoopAllowed(t *testing.T) {
	g, err := NewBuilder().AddNode(1, 0, 0).AddEdge(1, 1, 0).Build()
	require.NoError(t, err)
	assert.Len(t, g.Edges(1), 1)
}

func TestRequire(t *testing.T) {
	g, err := NewBuilder().AddNode(1, 0, 0).AddNode(2, 0, 0).Build()
	require.NoError(t, err)

	require.NoError(t, g.Require(1, 2))

	err = g.Require(1, 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNodeNotFound))

	var nf *NodeNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, NodeID(99), nf.ID)
	assert.Equal(t, "node 99 not found", err.Error())
}
