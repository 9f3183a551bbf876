package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/wbrown/janus-graph/graph"
)

// MemoryBackend is an in-memory graph. Vertices, properties and adjacency
// keep insertion order; Both adjacency lists out-edges before in-edges.
type MemoryBackend struct {
	mu       sync.RWMutex
	order    []graph.ElementID
	vertices map[graph.ElementID]*memoryVertex
}

type memoryVertex struct {
	label string
	props []graph.Property
	out   []graph.Edge
	in    []graph.Edge
}

// NewMemoryBackend returns an empty graph
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		vertices: make(map[graph.ElementID]*memoryVertex),
	}
}

// AddVertex adds a vertex. Re-adding an existing vertex updates its label.
func (m *MemoryBackend) AddVertex(id graph.ElementID, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.vertices[id]; ok {
		v.label = label
		return nil
	}
	m.vertices[id] = &memoryVertex{label: label}
	m.order = append(m.order, id)
	return nil
}

// SetProperty sets a single-valued vertex property, keeping the position of
// an existing key.
func (m *MemoryBackend) SetProperty(id graph.ElementID, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vertices[id]
	if !ok {
		return fmt.Errorf("set %s on %d: %w", key, id, graph.ErrVertexNotFound)
	}
	for i := range v.props {
		if v.props[i].Key == key {
			v.props[i].Value = value
			return nil
		}
	}
	v.props = append(v.props, graph.Property{Owner: id, Key: key, Value: value})
	return nil
}

// AddEdge adds an edge between two existing vertices
func (m *MemoryBackend) AddEdge(e graph.Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, ok := m.vertices[e.OutV]
	if !ok {
		return fmt.Errorf("edge %d tail %d: %w", e.ID, e.OutV, graph.ErrVertexNotFound)
	}
	in, ok := m.vertices[e.InV]
	if !ok {
		return fmt.Errorf("edge %d head %d: %w", e.ID, e.InV, graph.ErrVertexNotFound)
	}
	props := make([]graph.Property, len(e.Properties))
	for i, p := range e.Properties {
		p.Owner = e.ID
		props[i] = p
	}
	e.Properties = props
	out.out = append(out.out, e)
	in.in = append(in.in, e)
	return nil
}

// Vertices implements Backend
func (m *MemoryBackend) Vertices(ctx context.Context, ids []graph.ElementID) ([]graph.Vertex, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(ids) == 0 {
		ids = m.order
	}
	out := make([]graph.Vertex, 0, len(ids))
	for _, id := range ids {
		if v, ok := m.vertices[id]; ok {
			out = append(out, graph.Vertex{ID: id, Label: v.label})
		}
	}
	return out, ctx.Err()
}

// Adjacent implements Backend
func (m *MemoryBackend) Adjacent(ctx context.Context, v graph.ElementID, q graph.AdjacencyQuery) ([]graph.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return q.Apply(m.incident(v, q.Direction)), nil
}

// MultiAdjacent implements Backend
func (m *MemoryBackend) MultiAdjacent(ctx context.Context, vs []graph.ElementID, q graph.AdjacencyQuery) (map[graph.ElementID][]graph.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[graph.ElementID][]graph.Edge, len(vs))
	for _, v := range vs {
		out[v] = q.Apply(m.incident(v, q.Direction))
	}
	return out, nil
}

// Properties implements Backend
func (m *MemoryBackend) Properties(ctx context.Context, id graph.ElementID, q graph.PropertyQuery) ([]graph.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vertices[id]
	if !ok {
		return nil, nil
	}
	return q.Apply(v.props), nil
}

// MultiProperties implements Backend
func (m *MemoryBackend) MultiProperties(ctx context.Context, ids []graph.ElementID, q graph.PropertyQuery) (map[graph.ElementID][]graph.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[graph.ElementID][]graph.Property, len(ids))
	for _, id := range ids {
		if v, ok := m.vertices[id]; ok {
			out[id] = q.Apply(v.props)
		}
	}
	return out, nil
}

// incident returns the natural adjacency of v. Caller holds the read lock.
func (m *MemoryBackend) incident(id graph.ElementID, dir graph.Direction) []graph.Edge {
	v, ok := m.vertices[id]
	if !ok {
		return nil
	}
	switch dir {
	case graph.Out:
		return v.out
	case graph.In:
		return v.in
	default:
		both := make([]graph.Edge, 0, len(v.out)+len(v.in))
		both = append(both, v.out...)
		return append(both, v.in...)
	}
}
