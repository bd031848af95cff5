// Package graphstore supplies road graphs to search sessions.
//
// A Source resolves a graph id (the place name of the original import, for
// example "montreal") to a decoded *graph.Graph. Implementations read from a
// directory of graph files (Dir), a SQLite database (SQLite) or memory
// (Memory). Cache wraps any Source, keeps decoded graphs in memory and
// collapses concurrent loads of the same id into one.
package graphstore

import (
	"context"
	"errors"
	"time"

	"github.com/specialistvlad/pathfinder/internal/graph"
)

var (
	// ErrGraphNotFound is returned when no graph is stored under an id.
	ErrGraphNotFound = errors.New("graph not found")
	// ErrReadOnly is returned by Put and Delete on stores that cannot be
	// written.
	ErrReadOnly = errors.New("graph store is read-only")
	// ErrNoLocator is returned by location lookups on stores that do not
	// keep graph bounds.
	ErrNoLocator = errors.New("graph store cannot search by location")
)

// Source resolves graph ids.
type Source interface {
	Graph(ctx context.Context, id string) (*graph.Graph, error)
}

// Catalog describes the stored graphs without decoding them.
type Catalog interface {
	List(ctx context.Context) ([]Info, error)
	Info(ctx context.Context, id string) (Info, error)
}

// Writer stores and removes graphs.
type Writer interface {
	Put(ctx context.Context, id string, g *graph.Graph) (Info, error)
	Delete(ctx context.Context, id string) error
}

// Locator finds the graphs whose bounding box contains a coordinate.
type Locator interface {
	Contains(ctx context.Context, c graph.Coordinate) ([]Info, error)
}

// Store is a Source with a Catalog.
type Store interface {
	Source
	Catalog
}

// Info is the metadata of a stored graph. Counts and bounds are zero when a
// store cannot report them without decoding the graph.
type Info struct {
	ID        string       `json:"id"`
	NodeCount int          `json:"node_count"`
	EdgeCount int          `json:"edge_count"`
	Bounds    graph.Bounds `json:"bounds"`
	CreatedAt time.Time    `json:"created_at"`
}

// InfoOf summarizes g.
func InfoOf(id string, g *graph.Graph, createdAt time.Time) Info {
	return Info{
		ID:        id,
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
		Bounds:    g.Bounds(),
		CreatedAt: createdAt,
	}
}

// NotFoundError names the missing graph.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "graph " + e.ID + " not found"
}

// Is makes errors.Is(err, ErrGraphNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrGraphNotFound
}
