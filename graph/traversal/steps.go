// Package traversal defines the mutable step pipeline the optimizer rewrites
// and the executor runs.
//
// Steps form a closed set. Every consumer dispatches with an exhaustive type
// switch over the pointer types declared in this file; nothing outside this
// package can add a variant.
package traversal

import "github.com/wbrown/janus-graph/graph"

// Step is one traversal operation
type Step interface {
	step() // seals the set to this package
	String() string
}

// Vertices is a source step emitting the given vertices, or every vertex
// when IDs is empty. A plan starting with Vertices ignores its start element.
type Vertices struct {
	IDs []graph.ElementID
}

// Expand traverses from a vertex to incident edges or adjacent vertices
type Expand struct {
	Direction graph.Direction
	Labels    []string
	Kind      graph.ElementKind
}

// FetchProperties fetches properties of a vertex or edge
type FetchProperties struct {
	Keys   []string
	Return graph.ReturnKind
}

// EdgeVertex maps an edge to its endpoint(s): Out is the tail, In the head
type EdgeVertex struct {
	Direction graph.Direction
}

// Filter keeps elements matching every has-container
type Filter struct {
	Containers []graph.HasContainer
}

// Order sorts the whole stream by keys. The sort is stable.
type Order struct {
	Keys []graph.OrderKey
}

// Range keeps stream positions [Low, High). High < 0 is unbounded.
type Range struct {
	Low  int64
	High int64
}

// PerElementBlock runs Inner once per input element, starting from that
// element, and concatenates the results in input order.
type PerElementBlock struct {
	Inner *Plan
}

// Identity passes elements through unchanged
type Identity struct{}

// Pushdown is the backend-facing state of an enhanced step: constraints
// folded out of neighboring steps plus execution tags.
type Pushdown struct {
	Filters []graph.HasContainer
	Orders  []graph.OrderKey
	// Limit is a per-input high bound [0, Limit); graph.NoLimit if unbounded
	Limit int

	MultiKeyFetch     bool
	EagerPrefetch     bool
	PrefetchBatchSize *uint
}

// HasLimit reports whether a limit has been folded in
func (p *Pushdown) HasLimit() bool {
	return p.Limit != graph.NoLimit
}

// SetPrefetch tags the step for eager property prefetch
func (p *Pushdown) SetPrefetch(batchSize uint) {
	p.EagerPrefetch = true
	p.PrefetchBatchSize = batchSizeOption(batchSize)
}

// BackendExpand is an Expand the backend serves directly, with pushdown
type BackendExpand struct {
	Expand
	Pushdown
}

// NewBackendExpand wraps e, copying its direction, labels and kind
func NewBackendExpand(e *Expand) *BackendExpand {
	return &BackendExpand{
		Expand: Expand{
			Direction: e.Direction,
			Labels:    append([]string(nil), e.Labels...),
			Kind:      e.Kind,
		},
		Pushdown: Pushdown{Limit: graph.NoLimit},
	}
}

// Query converts the step into the backend adjacency query
func (s *BackendExpand) Query() graph.AdjacencyQuery {
	return graph.AdjacencyQuery{
		Direction: s.Direction,
		Labels:    s.Labels,
		Filters:   s.Filters,
		Orders:    s.Orders,
		Limit:     s.Limit,
	}
}

// BackendProperties is a FetchProperties the backend serves directly
type BackendProperties struct {
	FetchProperties
	Pushdown
}

// NewBackendProperties wraps f, copying its keys and return kind
func NewBackendProperties(f *FetchProperties) *BackendProperties {
	return &BackendProperties{
		FetchProperties: FetchProperties{
			Keys:   append([]string(nil), f.Keys...),
			Return: f.Return,
		},
		Pushdown: Pushdown{Limit: graph.NoLimit},
	}
}

// Query converts the step into the backend property query
func (s *BackendProperties) Query() graph.PropertyQuery {
	return graph.PropertyQuery{
		Keys:    s.Keys,
		Filters: s.Filters,
		Orders:  s.Orders,
		Limit:   s.Limit,
	}
}

// BackendEdgeVertex is an EdgeVertex fused with a batched property load of
// the vertices it produces.
type BackendEdgeVertex struct {
	EdgeVertex
	EagerPrefetch     bool
	PrefetchBatchSize *uint
}

// NewBackendEdgeVertex wraps s and tags it for prefetch
func NewBackendEdgeVertex(s *EdgeVertex, batchSize uint) *BackendEdgeVertex {
	return &BackendEdgeVertex{
		EdgeVertex:        EdgeVertex{Direction: s.Direction},
		EagerPrefetch:     true,
		PrefetchBatchSize: batchSizeOption(batchSize),
	}
}

func batchSizeOption(n uint) *uint {
	if n == 0 {
		return nil
	}
	return &n
}

func (*Vertices) step()          {}
func (*Expand) step()            {}
func (*FetchProperties) step()   {}
func (*EdgeVertex) step()        {}
func (*Filter) step()            {}
func (*Order) step()             {}
func (*Range) step()             {}
func (*PerElementBlock) step()   {}
func (*Identity) step()          {}
func (*BackendExpand) step()     {}
func (*BackendProperties) step() {}
func (*BackendEdgeVertex) step() {}

// ReturnsVertices reports whether an expansion step emits vertices
func ReturnsVertices(s Step) bool {
	switch st := s.(type) {
	case *Expand:
		return st.Kind == graph.VertexKind
	case *BackendExpand:
		return st.Kind == graph.VertexKind
	case *EdgeVertex, *BackendEdgeVertex:
		return true
	}
	return false
}

// ReturnsEdges reports whether an expansion step emits edges
func ReturnsEdges(s Step) bool {
	switch st := s.(type) {
	case *Expand:
		return st.Kind == graph.EdgeKind
	case *BackendExpand:
		return st.Kind == graph.EdgeKind
	}
	return false
}

// PushdownOf returns the pushdown state of an enhanced step, or nil
func PushdownOf(s Step) *Pushdown {
	switch st := s.(type) {
	case *BackendExpand:
		return &st.Pushdown
	case *BackendProperties:
		return &st.Pushdown
	}
	return nil
}
