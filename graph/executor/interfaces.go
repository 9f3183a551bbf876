package executor

import (
	"context"
	"errors"

	"github.com/wbrown/janus-graph/graph"
)

// Backend serves the reads a traversal needs. Every method honors its query
// exactly: filters, orders and limits in the query are applied by the
// backend, per vertex.
type Backend interface {
	// Vertices returns the listed vertices in ids order, skipping unknown
	// ones. With no ids it returns every vertex.
	Vertices(ctx context.Context, ids []graph.ElementID) ([]graph.Vertex, error)

	// Adjacent returns the edges incident to v that pass q
	Adjacent(ctx context.Context, v graph.ElementID, q graph.AdjacencyQuery) ([]graph.Edge, error)

	// MultiAdjacent answers Adjacent for many vertices in one call. Results
	// are keyed by vertex; q applies to each vertex separately.
	MultiAdjacent(ctx context.Context, vs []graph.ElementID, q graph.AdjacencyQuery) (map[graph.ElementID][]graph.Edge, error)

	// Properties returns the properties of vertex id that pass q
	Properties(ctx context.Context, id graph.ElementID, q graph.PropertyQuery) ([]graph.Property, error)

	// MultiProperties answers Properties for many vertices in one call
	MultiProperties(ctx context.Context, ids []graph.ElementID, q graph.PropertyQuery) (map[graph.ElementID][]graph.Property, error)
}

// Writer loads graph data into a backend
type Writer interface {
	AddVertex(id graph.ElementID, label string) error
	SetProperty(id graph.ElementID, key string, value any) error
	AddEdge(e graph.Edge) error
}

var (
	// ErrNoStart is returned when an anonymous plan runs without a start element
	ErrNoStart = errors.New("anonymous traversal needs a start element")

	// ErrElementKind is returned when a step receives an element it cannot process
	ErrElementKind = errors.New("unexpected element kind")

	// ErrMisplacedSource is returned for a V() step that is not first
	ErrMisplacedSource = errors.New("V() must be the first step")
)
