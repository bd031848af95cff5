package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/pathfinder/internal/heuristic"
)

func TestNew(t *testing.T) {
	t.Parallel()

	cases := []struct {
		algorithm string
		heuristic string
		want      Algorithm
	}{
		{"uniform-cost", "", UniformCost{}},
		{"dijkstra", "haversine", UniformCost{}},
		{"heuristic-guided", "", HeuristicGuided{Heuristic: heuristic.Zero}},
		{"astar", "haversine", HeuristicGuided{Heuristic: heuristic.Haversine}},
		{" AStar ", "manhattan", HeuristicGuided{Heuristic: heuristic.Manhattan}},
		{"a*", "euclidean", HeuristicGuided{Heuristic: heuristic.Euclidean}},
	}
	for _, tc := range cases {
		t.Run(tc.algorithm+"/"+tc.heuristic, func(t *testing.T) {
			got, err := New(tc.algorithm, tc.heuristic)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New("bfs", "")
	require.ErrorIs(t, err, ErrInvalidAlgorithm)

	_, err = New("dijkstra", "chebyshev")
	require.ErrorIs(t, err, heuristic.ErrInvalidHeuristic)
}

func TestOutcomeText(t *testing.T) {
	b, err := OutcomeUnreachable.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "unreachable", string(b))
	assert.Equal(t, "cancelled", OutcomeCancelled.String())
	assert.Equal(t, "Outcome(7)", Outcome(7).String())
}

func TestOutcomeUnmarshalText(t *testing.T) {
	var o Outcome
	require.NoError(t, o.UnmarshalText([]byte("cancelled")))
	assert.Equal(t, OutcomeCancelled, o)

	require.Error(t, o.UnmarshalText([]byte("lost")))
}
