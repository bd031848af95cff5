package heuristic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/pathfinder/internal/graph"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Kind
	}{
		{"zero", Zero},
		{"haversine", Haversine},
		{"  Manhattan ", Manhattan},
		{"EUCLIDEAN", Euclidean},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Unknown(t *testing.T) {
	_, err := Parse("chebyshev")
	require.ErrorIs(t, err, ErrInvalidHeuristic)
	assert.Contains(t, err.Error(), "chebyshev")

	_, err = Parse("")
	require.ErrorIs(t, err, ErrInvalidHeuristic)
}

func TestNamesRoundTrip(t *testing.T) {
	for _, name := range Names() {
		k, err := Parse(name)
		require.NoError(t, err)
		assert.Equal(t, name, k.String())
	}
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestAdmissible(t *testing.T) {
	assert.True(t, Zero.Admissible())
	assert.True(t, Haversine.Admissible())
	assert.False(t, Manhattan.Admissible())
	assert.False(t, Euclidean.Admissible())
}

func TestEstimate(t *testing.T) {
	t.Parallel()

	paris := graph.Coordinate{Lat: 48.8566, Lon: 2.3522}
	london := graph.Coordinate{Lat: 51.5074, Lon: -0.1278}
	a := graph.Coordinate{Lat: 1, Lon: 1}
	b := graph.Coordinate{Lat: 4, Lon: 5}

	t.Run("zero", func(t *testing.T) {
		assert.Zero(t, Zero.Estimate(paris, london))
	})

	t.Run("haversine", func(t *testing.T) {
		// Paris to London is roughly 343.5 km along the great circle.
		d := Haversine.Estimate(paris, london)
		assert.InDelta(t, 343_500, d, 1_000)
		assert.InDelta(t, d, Haversine.Estimate(london, paris), 1e-6, "symmetric")
		assert.Zero(t, Haversine.Estimate(paris, paris))
	})

	t.Run("haversine quarter meridian", func(t *testing.T) {
		d := Haversine.Estimate(graph.Coordinate{}, graph.Coordinate{Lat: 90})
		assert.InDelta(t, math.Pi/2*EarthRadiusMeters, d, 1e-6)
	})

	t.Run("manhattan", func(t *testing.T) {
		assert.InDelta(t, 7.0, Manhattan.Estimate(a, b), 1e-12)
	})

	t.Run("euclidean", func(t *testing.T) {
		assert.InDelta(t, 5.0, Euclidean.Estimate(a, b), 1e-12)
	})
}

func TestEstimate_NonNegative(t *testing.T) {
	points := []graph.Coordinate{
		{Lat: -33.86, Lon: 151.21},
		{Lat: 40.71, Lon: -74.00},
		{Lat: 0, Lon: 180},
		{Lat: 0, Lon: -180},
	}
	for _, k := range []Kind{Zero, Haversine, Manhattan, Euclidean} {
		for _, p := range points {
			for _, q := range points {
				assert.GreaterOrEqual(t, k.Estimate(p, q), 0.0, "%s(%v, %v)", k, p, q)
			}
		}
	}
}
