package graphstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/specialistvlad/pathfinder/internal/graph"
)

// Memory keeps graphs in a map. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	graphs map[string]*graph.Graph
	infos  map[string]Info
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		graphs: make(map[string]*graph.Graph),
		infos:  make(map[string]Info),
	}
}

// Graph implements Source.
func (m *Memory) Graph(_ context.Context, id string) (*graph.Graph, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.graphs[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return g, nil
}

// Put implements Writer.
func (m *Memory) Put(_ context.Context, id string, g *graph.Graph) (Info, error) {
	info := InfoOf(id, g, time.Now().UTC())
	m.mu.Lock()
	defer m.mu.Unlock()
	m.graphs[id] = g
	m.infos[id] = info
	return info, nil
}

// Delete implements Writer.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.graphs[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(m.graphs, id)
	delete(m.infos, id)
	return nil
}

// Info implements Catalog.
func (m *Memory) Info(_ context.Context, id string) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.infos[id]
	if !ok {
		return Info{}, &NotFoundError{ID: id}
	}
	return info, nil
}

// List implements Catalog. Entries are ordered by id.
func (m *Memory) List(_ context.Context) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.infos))
	for _, info := range m.infos {
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b Info) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// Contains implements Locator.
func (m *Memory) Contains(ctx context.Context, c graph.Coordinate) ([]Info, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Info, 0, len(all))
	for _, info := range all {
		if info.NodeCount > 0 && info.Bounds.Contains(c) {
			out = append(out, info)
		}
	}
	return out, nil
}
