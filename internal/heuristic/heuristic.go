// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package heuristic provides the named distance estimators used by
// heuristic-guided search.
//
// # Why Heuristic Package Exists
//
// Heuristic-guided search orders its frontier by cost-so-far plus an estimate
// of the remaining distance. The estimate is selected by name when a search is
// configured ("haversine", "manhattan", ...), so the set of estimators is a
// closed enumeration resolved once, before any traversal starts. An unknown
// name is a configuration error, never a runtime surprise in the middle of a
// search.
//
// # Units and Admissibility
//
// Road graphs carry edge lengths in meters. Only Zero and Haversine produce
// estimates in the same unit that never exceed the true remaining distance.
// Manhattan and Euclidean work in raw degree space: they are cheap, they keep
// the search correct in the sense that it terminates with a path, but they may
// over- or under-estimate badly and are therefore not guaranteed to find the
// optimal path. Kind.Admissible reports this property so callers and the API
// can surface it.
package heuristic

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/specialistvlad/pathfinder/internal/graph"
)

// EarthRadiusMeters is the mean Earth radius used by Haversine.
const EarthRadiusMeters = 6371000.0

// ErrInvalidHeuristic is returned by Parse for unknown heuristic names.
var ErrInvalidHeuristic = errors.New("invalid heuristic")

// Kind is one of the supported estimators.
type Kind int

const (
	Zero Kind = iota
	Haversine
	Manhattan
	Euclidean
)

var names = [...]string{
	Zero:      "zero",
	Haversine: "haversine",
	Manhattan: "manhattan",
	Euclidean: "euclidean",
}

// Names returns the accepted heuristic names in declaration order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names[:])
	return out
}

// Parse resolves a heuristic name. Matching is case-insensitive and ignores
// surrounding whitespace.
func Parse(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range names {
		if candidate == n {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q (supported: %s)", ErrInvalidHeuristic, name, strings.Join(names[:], ", "))
}

// String returns the configuration name of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(names) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return names[k]
}

// Admissible reports whether the estimate never exceeds the true remaining
// distance on graphs weighted in meters.
func (k Kind) Admissible() bool {
	return k == Zero || k == Haversine
}

// Estimate returns the estimated distance from a to b. The result is never
// negative.
func (k Kind) Estimate(a, b graph.Coordinate) float64 {
	switch k {
	case Haversine:
		return haversine(a, b)
	case Manhattan:
		return math.Abs(a.Lat-b.Lat) + math.Abs(a.Lon-b.Lon)
	case Euclidean:
		return math.Hypot(a.Lat-b.Lat, a.Lon-b.Lon)
	default:
		return 0
	}
}

// haversine returns the great-circle distance between a and b in meters.
func haversine(a, b graph.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h marginally outside [0, 1] for antipodal points.
	h = math.Min(1, math.Max(0, h))
	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
