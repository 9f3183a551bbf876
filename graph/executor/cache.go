package executor

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/annotations"
)

// vertexCache holds what one execution has learned about vertices. A
// present props entry, even an empty one, means the full property set is
// loaded.
type vertexCache struct {
	labels map[graph.ElementID]string
	props  map[graph.ElementID][]graph.Property
}

func newVertexCache() *vertexCache {
	return &vertexCache{
		labels: make(map[graph.ElementID]string),
		props:  make(map[graph.ElementID][]graph.Property),
	}
}

// resolve turns ids into vertices, loading unknown labels in one call
func (x *execution) resolve(ctx context.Context, ids []graph.ElementID) ([]graph.Element, error) {
	missing := mapset.NewThreadUnsafeSet[graph.ElementID]()
	var order []graph.ElementID
	for _, id := range ids {
		if _, ok := x.cache.labels[id]; !ok && missing.Add(id) {
			order = append(order, id)
		}
	}
	if len(order) > 0 {
		if _, err := x.vertices(ctx, order); err != nil {
			return nil, err
		}
	}

	out := make([]graph.Element, len(ids))
	for i, id := range ids {
		out[i] = graph.Vertex{ID: id, Label: x.cache.labels[id]}
	}
	return out, nil
}

// prefetch loads full property sets for the vertices in stream that are not
// cached yet, batchSize vertices per backend call
func (x *execution) prefetch(ctx context.Context, stream []graph.Element, batchSize *uint) error {
	seen := mapset.NewThreadUnsafeSet[graph.ElementID]()
	var ids []graph.ElementID
	for _, e := range stream {
		v, ok := e.(graph.Vertex)
		if !ok {
			continue
		}
		if _, cached := x.cache.props[v.ID]; cached || !seen.Add(v.ID) {
			continue
		}
		ids = append(ids, v.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	size := x.options.batchSize()
	if batchSize != nil {
		size = int(*batchSize)
	}
	all := graph.NewPropertyQuery()
	loaded, err := dispatch(ctx, x, "prefetch", ids, size,
		func(ctx context.Context, keys []graph.ElementID) (map[graph.ElementID][]graph.Property, error) {
			return x.backend.MultiProperties(ctx, keys, all)
		})
	if err != nil {
		return err
	}
	for _, id := range ids {
		x.cache.props[id] = loaded[id]
	}
	x.note(annotations.PrefetchLoaded, map[string]interface{}{
		"vertices": len(ids),
	})
	return nil
}

// ensureProperties loads, one vertex at a time, the property sets a filter
// or order over keys will read
func (x *execution) ensureProperties(ctx context.Context, stream []graph.Element, keys []string) error {
	if !readsProperties(keys) {
		return nil
	}
	all := graph.NewPropertyQuery()
	for _, e := range stream {
		v, ok := e.(graph.Vertex)
		if !ok {
			continue
		}
		if _, cached := x.cache.props[v.ID]; cached {
			continue
		}
		props, err := x.backend.Properties(ctx, v.ID, all)
		if err != nil {
			return x.backendError(err)
		}
		x.cache.props[v.ID] = props
	}
	return nil
}

func readsProperties(keys []string) bool {
	for _, k := range keys {
		if k != graph.KeyID && k != graph.KeyLabel {
			return true
		}
	}
	return false
}

// lookup resolves keys inline, then from cached vertex properties
func (x *execution) lookup(e graph.Element, key string) (any, bool) {
	if v, ok := graph.InlineLookup(e, key); ok {
		return v, true
	}
	v, ok := e.(graph.Vertex)
	if !ok {
		return nil, false
	}
	for _, p := range x.cache.props[v.ID] {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}
