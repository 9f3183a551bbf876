// Package executor runs traversal plans against a Backend.
//
// Execution is bulk synchronous: each step consumes the complete output of
// the step before it. That gives multi-key steps their natural buffering
// point, the end of the upstream step's output, and keeps results in the
// order the unoptimized plan would produce them.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/annotations"
	"github.com/wbrown/janus-graph/graph/traversal"
)

// Executor runs plans. It is safe for concurrent use; each Execute call has
// its own vertex cache.
type Executor struct {
	backend Backend
	options Options
}

// NewExecutor creates an executor over backend
func NewExecutor(backend Backend, opts Options) *Executor {
	return &Executor{backend: backend, options: opts}
}

// Execute runs plan and returns its output in order. A plan starting with
// V() ignores start; any other plan runs from start alone. An empty result
// is always nil.
func (e *Executor) Execute(ctx context.Context, plan *traversal.Plan, start graph.Element) ([]graph.Element, error) {
	var input []graph.Element
	if plan.Anonymous() {
		if start == nil {
			return nil, ErrNoStart
		}
		input = []graph.Element{start}
	}

	x := &execution{
		id:      uuid.NewString(),
		backend: e.backend,
		options: e.options,
		cache:   newVertexCache(),
	}

	begin := time.Now()
	x.note(annotations.ExecutionBegin, map[string]interface{}{
		"plan": plan.String(),
	})

	out, err := x.run(ctx, plan, input)

	data := map[string]interface{}{
		"execution": x.id,
		"results":   len(out),
		"success":   err == nil,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	e.options.Collector.AddTiming(annotations.ExecutionComplete, begin, data)

	if err != nil || len(out) == 0 {
		return nil, err
	}
	return out, nil
}

// execution is the state of one Execute call
type execution struct {
	id      string
	backend Backend
	options Options
	cache   *vertexCache
}

func (x *execution) note(name string, data map[string]interface{}) {
	if x.options.Collector == nil {
		return
	}
	data["execution"] = x.id
	x.options.Collector.Note(name, data)
}

// run evaluates plan over input, one step at a time
func (x *execution) run(ctx context.Context, plan *traversal.Plan, input []graph.Element) ([]graph.Element, error) {
	stream := input
	for i := 0; i < plan.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var err error
		s := plan.At(i)
		switch st := s.(type) {
		case *traversal.Vertices:
			if i != 0 {
				err = ErrMisplacedSource
				break
			}
			stream, err = x.vertices(ctx, st.IDs)

		case *traversal.Expand:
			stream, err = x.expand(ctx, stream, st, graph.NewAdjacencyQuery(st.Direction, st.Labels...), nil)

		case *traversal.BackendExpand:
			stream, err = x.expand(ctx, stream, &st.Expand, st.Query(), &st.Pushdown)

		case *traversal.FetchProperties:
			stream, err = x.properties(ctx, stream, st.Return, graph.NewPropertyQuery(st.Keys...), false)

		case *traversal.BackendProperties:
			stream, err = x.properties(ctx, stream, st.Return, st.Query(), st.MultiKeyFetch)

		case *traversal.EdgeVertex:
			stream, err = x.edgeVertex(ctx, stream, st.Direction)

		case *traversal.BackendEdgeVertex:
			stream, err = x.edgeVertex(ctx, stream, st.Direction)
			if err == nil && st.EagerPrefetch {
				err = x.prefetch(ctx, stream, st.PrefetchBatchSize)
			}

		case *traversal.Filter:
			stream, err = x.filter(ctx, stream, st.Containers)

		case *traversal.Order:
			stream, err = x.order(ctx, stream, st.Keys)

		case *traversal.Range:
			stream = applyRange(stream, st.Low, st.High)

		case *traversal.PerElementBlock:
			stream, err = x.local(ctx, stream, st.Inner)

		case *traversal.Identity:

		default:
			err = fmt.Errorf("unknown step type %T", s)
		}
		if err != nil {
			return nil, fmt.Errorf("step %d %s: %w", i, s, err)
		}
	}
	return stream, nil
}

func (x *execution) vertices(ctx context.Context, ids []graph.ElementID) ([]graph.Element, error) {
	vs, err := x.backend.Vertices(ctx, ids)
	if err != nil {
		return nil, x.backendError(err)
	}
	out := make([]graph.Element, len(vs))
	for i, v := range vs {
		x.cache.labels[v.ID] = v.Label
		out[i] = v
	}
	return out, nil
}

// expand follows adjacency from every input vertex. pd is nil for a
// generic Expand.
func (x *execution) expand(ctx context.Context, in []graph.Element, e *traversal.Expand, q graph.AdjacencyQuery, pd *traversal.Pushdown) ([]graph.Element, error) {
	ids, err := vertexIDs(in)
	if err != nil {
		return nil, err
	}

	lists := make([][]graph.Edge, len(ids))
	if pd != nil && pd.MultiKeyFetch {
		batch, err := dispatch(ctx, x, "adjacency", ids, x.options.batchSize(),
			func(ctx context.Context, keys []graph.ElementID) (map[graph.ElementID][]graph.Edge, error) {
				return x.backend.MultiAdjacent(ctx, keys, q)
			})
		if err != nil {
			return nil, err
		}
		for i, id := range ids {
			lists[i] = batch[id]
		}
	} else {
		for i, id := range ids {
			edges, err := x.backend.Adjacent(ctx, id, q)
			if err != nil {
				return nil, x.backendError(err)
			}
			lists[i] = edges
		}
	}

	var out []graph.Element
	if e.Kind == graph.EdgeKind {
		for _, edges := range lists {
			for _, edge := range edges {
				out = append(out, edge)
			}
		}
		return out, nil
	}

	var others []graph.ElementID
	for i, edges := range lists {
		for _, edge := range edges {
			others = append(others, edge.Other(ids[i]))
		}
	}
	out, err = x.resolve(ctx, others)
	if err != nil {
		return nil, err
	}
	if pd != nil && pd.EagerPrefetch {
		if err := x.prefetch(ctx, out, pd.PrefetchBatchSize); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// properties fetches properties of vertices and edges and projects them by
// return kind
func (x *execution) properties(ctx context.Context, in []graph.Element, ret graph.ReturnKind, q graph.PropertyQuery, multiKey bool) ([]graph.Element, error) {
	// Vertices without cached properties go to the backend
	var pending []graph.ElementID
	for _, e := range in {
		switch el := e.(type) {
		case graph.Vertex:
			if _, ok := x.cache.props[el.ID]; !ok {
				pending = append(pending, el.ID)
			}
		case graph.Edge:
		default:
			return nil, fmt.Errorf("%w: properties of %s", ErrElementKind, e)
		}
	}

	var fetched map[graph.ElementID][]graph.Property
	if multiKey && len(pending) > 0 {
		var err error
		fetched, err = dispatch(ctx, x, "properties", pending, x.options.batchSize(),
			func(ctx context.Context, keys []graph.ElementID) (map[graph.ElementID][]graph.Property, error) {
				return x.backend.MultiProperties(ctx, keys, q)
			})
		if err != nil {
			return nil, err
		}
	}

	var out []graph.Element
	for _, e := range in {
		var props []graph.Property
		switch el := e.(type) {
		case graph.Vertex:
			if cached, ok := x.cache.props[el.ID]; ok {
				props = q.Apply(cached)
			} else if fetched != nil {
				props = fetched[el.ID]
			} else {
				var err error
				props, err = x.backend.Properties(ctx, el.ID, q)
				if err != nil {
					return nil, x.backendError(err)
				}
			}
		case graph.Edge:
			props = q.Apply(el.Properties)
		}
		for _, p := range props {
			out = append(out, project(p, ret))
		}
	}
	return out, nil
}

func project(p graph.Property, ret graph.ReturnKind) graph.Element {
	switch ret {
	case graph.ReturnValue:
		return graph.PropertyValue{Value: p.Value}
	case graph.ReturnKey:
		return graph.PropertyKey(p.Key)
	default:
		return p
	}
}

func (x *execution) edgeVertex(ctx context.Context, in []graph.Element, dir graph.Direction) ([]graph.Element, error) {
	ids := make([]graph.ElementID, 0, len(in))
	for _, e := range in {
		edge, ok := e.(graph.Edge)
		if !ok {
			return nil, fmt.Errorf("%w: %sV() on %s", ErrElementKind, dir, e)
		}
		switch dir {
		case graph.Out:
			ids = append(ids, edge.OutV)
		case graph.In:
			ids = append(ids, edge.InV)
		default:
			ids = append(ids, edge.OutV, edge.InV)
		}
	}
	return x.resolve(ctx, ids)
}

func (x *execution) filter(ctx context.Context, in []graph.Element, containers []graph.HasContainer) ([]graph.Element, error) {
	keys := make([]string, len(containers))
	for i, h := range containers {
		keys[i] = h.Key
	}
	if err := x.ensureProperties(ctx, in, keys); err != nil {
		return nil, err
	}
	out := make([]graph.Element, 0, len(in))
	for _, e := range in {
		if graph.MatchAll(containers, e, x.lookup) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (x *execution) order(ctx context.Context, in []graph.Element, keys []graph.OrderKey) ([]graph.Element, error) {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Key
	}
	if err := x.ensureProperties(ctx, in, names); err != nil {
		return nil, err
	}
	out := append([]graph.Element(nil), in...)
	graph.SortElements(out, keys, x.lookup)
	return out, nil
}

func applyRange(in []graph.Element, low, high int64) []graph.Element {
	n := int64(len(in))
	if low > n {
		low = n
	}
	if high < 0 || high > n {
		high = n
	}
	if high <= low {
		return nil
	}
	return in[low:high]
}

func (x *execution) local(ctx context.Context, in []graph.Element, inner *traversal.Plan) ([]graph.Element, error) {
	var out []graph.Element
	for _, e := range in {
		sub, err := x.run(ctx, inner, []graph.Element{e})
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func (x *execution) backendError(err error) error {
	x.note(annotations.ErrorBackend, map[string]interface{}{
		"error": err.Error(),
	})
	return err
}

func vertexIDs(in []graph.Element) ([]graph.ElementID, error) {
	ids := make([]graph.ElementID, len(in))
	for i, e := range in {
		v, ok := e.(graph.Vertex)
		if !ok {
			return nil, fmt.Errorf("%w: expand from %s", ErrElementKind, e)
		}
		ids[i] = v.ID
	}
	return ids, nil
}
