package graphstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/specialistvlad/pathfinder/internal/ctxlog"
	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/inmemorystore"
	"github.com/specialistvlad/pathfinder/internal/metrics"
)

// Cache keeps decoded graphs in memory. Concurrent requests for an id that
// is not cached yet share one load from the underlying source. Failed loads
// are not cached.
type Cache struct {
	src     Source
	graphs  *inmemorystore.Store[string, *graph.Graph]
	group   singleflight.Group
	metrics *metrics.Metrics
}

// NewCache wraps src. m may be nil.
func NewCache(src Source, m *metrics.Metrics) *Cache {
	return &Cache{
		src:     src,
		graphs:  inmemorystore.New[string, *graph.Graph](),
		metrics: m,
	}
}

// Graph implements Source.
func (c *Cache) Graph(ctx context.Context, id string) (*graph.Graph, error) {
	if g, ok := c.graphs.Load(id); ok {
		c.record("hit")
		return g, nil
	}

	// Only the caller that runs the load records a miss; Do reports shared
	// to every caller once others have joined.
	leader := false
	v, err, _ := c.group.Do(id, func() (any, error) {
		leader = true
		// Use a context detached from this caller's cancellation: other
		// callers may be waiting on the same load.
		g, err := c.src.Graph(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		c.record("miss")
		c.graphs.Store(id, g)
		ctxlog.FromContext(ctx).Info("Graph loaded into cache.", "graph", id, "node_count", g.NodeCount(), "edge_count", g.EdgeCount())
		return g, nil
	})
	if err != nil {
		if !errors.Is(err, ErrGraphNotFound) {
			c.record("error")
		}
		return nil, err
	}
	if !leader {
		c.record("hit")
	}
	return v.(*graph.Graph), nil
}

// Invalidate drops id from the cache.
func (c *Cache) Invalidate(id string) {
	c.graphs.Delete(id)
	c.group.Forget(id)
}

// Len returns the number of cached graphs.
func (c *Cache) Len() int {
	return c.graphs.Len()
}

// List delegates to the underlying Catalog.
func (c *Cache) List(ctx context.Context) ([]Info, error) {
	cat, ok := c.src.(Catalog)
	if !ok {
		return nil, fmt.Errorf("graph source %T cannot list graphs", c.src)
	}
	return cat.List(ctx)
}

// Info delegates to the underlying Catalog. Sources without one are
// summarized from the decoded graph.
func (c *Cache) Info(ctx context.Context, id string) (Info, error) {
	if cat, ok := c.src.(Catalog); ok {
		return cat.Info(ctx, id)
	}
	g, err := c.Graph(ctx, id)
	if err != nil {
		return Info{}, err
	}
	return InfoOf(id, g, time.Time{}), nil
}

// Contains delegates to the underlying Locator.
func (c *Cache) Contains(ctx context.Context, at graph.Coordinate) ([]Info, error) {
	loc, ok := c.src.(Locator)
	if !ok {
		return nil, ErrNoLocator
	}
	return loc.Contains(ctx, at)
}

// Put stores g in the underlying Writer and replaces the cached copy.
func (c *Cache) Put(ctx context.Context, id string, g *graph.Graph) (Info, error) {
	w, ok := c.src.(Writer)
	if !ok {
		return Info{}, ErrReadOnly
	}
	info, err := w.Put(ctx, id, g)
	if err != nil {
		return Info{}, err
	}
	c.group.Forget(id)
	c.graphs.Store(id, g)
	return info, nil
}

// Delete removes id from the underlying Writer and the cache.
func (c *Cache) Delete(ctx context.Context, id string) error {
	w, ok := c.src.(Writer)
	if !ok {
		return ErrReadOnly
	}
	c.Invalidate(id)
	return w.Delete(ctx, id)
}

func (c *Cache) record(result string) {
	if c.metrics != nil {
		c.metrics.GraphLoads.WithLabelValues(result).Inc()
	}
}
