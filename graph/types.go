// Package graph holds the element model shared by the traversal planner, the
// optimizer, the execution engine and the storage backends.
//
// File organization:
//   - types.go: element identifiers, directions, kinds and stream elements
//   - compare.go: value comparison used by filters and ordering
//   - predicate.go: has-containers and element key lookup
//   - query.go: adjacency and property queries with pushdown application
//   - config.go: optimizer configuration surface
//   - handle.go: graph handle and execution mode
package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrVertexNotFound is returned by backends when writing against a vertex
// that does not exist
var ErrVertexNotFound = errors.New("vertex not found")

// ElementID identifies a vertex or an edge
type ElementID uint64

// Direction selects which incident edges an expansion follows
type Direction uint8

const (
	Out Direction = iota
	In
	Both
)

// String returns the traversal keyword for the direction
func (d Direction) String() string {
	switch d {
	case Out:
		return "out"
	case In:
		return "in"
	case Both:
		return "both"
	default:
		return "unknown"
	}
}

// Opposite returns the reverse direction. Both is its own opposite.
func (d Direction) Opposite() Direction {
	switch d {
	case Out:
		return In
	case In:
		return Out
	default:
		return Both
	}
}

// ElementKind is what an expansion returns
type ElementKind uint8

const (
	VertexKind ElementKind = iota
	EdgeKind
)

// String returns the kind name
func (k ElementKind) String() string {
	if k == EdgeKind {
		return "edge"
	}
	return "vertex"
}

// ReturnKind is what a property fetch emits
type ReturnKind uint8

const (
	ReturnValue ReturnKind = iota
	ReturnProperty
	ReturnKey
)

// String returns the return kind name
func (r ReturnKind) String() string {
	switch r {
	case ReturnValue:
		return "value"
	case ReturnProperty:
		return "property"
	case ReturnKey:
		return "key"
	default:
		return "unknown"
	}
}

// ForProperties reports whether the fetch emits whole property elements.
// Only property elements carry a payload that filters and orders can inspect.
func (r ReturnKind) ForProperties() bool {
	return r == ReturnProperty
}

// Element is anything that flows through a traversal.
//
// This is a closed set: Vertex, Edge, Property, PropertyValue and PropertyKey.
type Element interface {
	element()
	String() string
}

// Vertex is a graph vertex. Its properties are fetched separately.
type Vertex struct {
	ID    ElementID
	Label string
}

func (Vertex) element() {}

func (v Vertex) String() string {
	return fmt.Sprintf("v[%d]", v.ID)
}

// Edge is a directed labelled edge. Edge properties travel with the edge.
type Edge struct {
	ID         ElementID
	Label      string
	OutV       ElementID
	InV        ElementID
	Properties []Property
}

func (Edge) element() {}

func (e Edge) String() string {
	return fmt.Sprintf("e[%d][%d-%s->%d]", e.ID, e.OutV, e.Label, e.InV)
}

// Property returns the edge property with the given key
func (e Edge) Property(key string) (Property, bool) {
	for _, p := range e.Properties {
		if p.Key == key {
			return p, true
		}
	}
	return Property{}, false
}

// Other returns the endpoint that is not id. For self loops it returns id.
func (e Edge) Other(id ElementID) ElementID {
	if e.OutV == id {
		return e.InV
	}
	return e.OutV
}

// Property is a key/value pair owned by a vertex or an edge
type Property struct {
	Owner ElementID
	Key   string
	Value any
}

func (Property) element() {}

func (p Property) String() string {
	return fmt.Sprintf("p[%s->%v]", p.Key, p.Value)
}

// PropertyValue is a bare property value emitted by values()
type PropertyValue struct {
	Value any
}

func (PropertyValue) element() {}

func (v PropertyValue) String() string {
	return fmt.Sprintf("%v", v.Value)
}

// PropertyKey is a bare property key emitted by keys()
type PropertyKey string

func (PropertyKey) element() {}

func (k PropertyKey) String() string {
	return string(k)
}

// IDOf returns the identifier of a vertex or edge
func IDOf(e Element) (ElementID, bool) {
	switch el := e.(type) {
	case Vertex:
		return el.ID, true
	case Edge:
		return el.ID, true
	default:
		return 0, false
	}
}

// FormatElements renders a result sequence on one line
func FormatElements(elems []Element) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
