package executor

import (
	"context"
	"sync/atomic"

	"github.com/wbrown/janus-graph/graph"
)

// MethodCounts holds per-backend call counters
type MethodCounts struct {
	vertices        atomic.Uint64
	adjacent        atomic.Uint64
	multiAdjacent   atomic.Uint64
	properties      atomic.Uint64
	multiProperties atomic.Uint64
}

// Vertices returns the count of Vertices calls
func (m *MethodCounts) Vertices() uint64 { return m.vertices.Load() }

// Adjacent returns the count of Adjacent calls
func (m *MethodCounts) Adjacent() uint64 { return m.adjacent.Load() }

// MultiAdjacent returns the count of MultiAdjacent calls
func (m *MethodCounts) MultiAdjacent() uint64 { return m.multiAdjacent.Load() }

// Properties returns the count of Properties calls
func (m *MethodCounts) Properties() uint64 { return m.properties.Load() }

// MultiProperties returns the count of MultiProperties calls
func (m *MethodCounts) MultiProperties() uint64 { return m.multiProperties.Load() }

// Total returns the count of all backend calls
func (m *MethodCounts) Total() uint64 {
	return m.Vertices() + m.Adjacent() + m.MultiAdjacent() + m.Properties() + m.MultiProperties()
}

// NewCountingBackend wraps b with call counting
func NewCountingBackend(b Backend) (Backend, *MethodCounts) {
	counts := &MethodCounts{}
	return &countingBackend{delegate: b, counts: counts}, counts
}

type countingBackend struct {
	delegate Backend
	counts   *MethodCounts
}

func (c *countingBackend) Vertices(ctx context.Context, ids []graph.ElementID) ([]graph.Vertex, error) {
	c.counts.vertices.Add(1)
	return c.delegate.Vertices(ctx, ids)
}

func (c *countingBackend) Adjacent(ctx context.Context, v graph.ElementID, q graph.AdjacencyQuery) ([]graph.Edge, error) {
	c.counts.adjacent.Add(1)
	return c.delegate.Adjacent(ctx, v, q)
}

func (c *countingBackend) MultiAdjacent(ctx context.Context, vs []graph.ElementID, q graph.AdjacencyQuery) (map[graph.ElementID][]graph.Edge, error) {
	c.counts.multiAdjacent.Add(1)
	return c.delegate.MultiAdjacent(ctx, vs, q)
}

func (c *countingBackend) Properties(ctx context.Context, id graph.ElementID, q graph.PropertyQuery) ([]graph.Property, error) {
	c.counts.properties.Add(1)
	return c.delegate.Properties(ctx, id, q)
}

func (c *countingBackend) MultiProperties(ctx context.Context, ids []graph.ElementID, q graph.PropertyQuery) (map[graph.ElementID][]graph.Property, error) {
	c.counts.multiProperties.Add(1)
	return c.delegate.MultiProperties(ctx, ids, q)
}
