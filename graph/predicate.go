package graph

import (
	"fmt"
	"strings"
)

// Special keys that address element structure rather than stored properties
const (
	KeyID    = "~id"
	KeyLabel = "~label"
	KeyKey   = "~key"
	KeyValue = "~value"
)

// CompareOp represents comparison operators
type CompareOp string

const (
	OpEQ     CompareOp = "eq"
	OpNE     CompareOp = "neq"
	OpLT     CompareOp = "lt"
	OpLTE    CompareOp = "lte"
	OpGT     CompareOp = "gt"
	OpGTE    CompareOp = "gte"
	OpWithin CompareOp = "within"
)

// Predicate tests a single resolved value
type Predicate struct {
	Op    CompareOp
	Value any // []any for OpWithin
}

// Eq builds an equality predicate
func Eq(v any) Predicate { return Predicate{Op: OpEQ, Value: v} }

// Neq builds an inequality predicate
func Neq(v any) Predicate { return Predicate{Op: OpNE, Value: v} }

// Lt builds a less-than predicate
func Lt(v any) Predicate { return Predicate{Op: OpLT, Value: v} }

// Lte builds a less-or-equal predicate
func Lte(v any) Predicate { return Predicate{Op: OpLTE, Value: v} }

// Gt builds a greater-than predicate
func Gt(v any) Predicate { return Predicate{Op: OpGT, Value: v} }

// Gte builds a greater-or-equal predicate
func Gte(v any) Predicate { return Predicate{Op: OpGTE, Value: v} }

// Within builds a set-membership predicate
func Within(vs ...any) Predicate { return Predicate{Op: OpWithin, Value: vs} }

// Test evaluates the predicate against a value
func (p Predicate) Test(v any) bool {
	switch p.Op {
	case OpEQ:
		return ValuesEqual(v, p.Value)
	case OpNE:
		return !ValuesEqual(v, p.Value)
	case OpLT:
		return comparableTypes(v, p.Value) && CompareValues(v, p.Value) < 0
	case OpLTE:
		return comparableTypes(v, p.Value) && CompareValues(v, p.Value) <= 0
	case OpGT:
		return comparableTypes(v, p.Value) && CompareValues(v, p.Value) > 0
	case OpGTE:
		return comparableTypes(v, p.Value) && CompareValues(v, p.Value) >= 0
	case OpWithin:
		set, _ := p.Value.([]any)
		for _, candidate := range set {
			if ValuesEqual(v, candidate) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// String renders the predicate in traversal syntax
func (p Predicate) String() string {
	if p.Op == OpWithin {
		set, _ := p.Value.([]any)
		parts := make([]string, len(set))
		for i, v := range set {
			parts[i] = FormatValue(v)
		}
		return fmt.Sprintf("within(%s)", strings.Join(parts, ","))
	}
	return fmt.Sprintf("%s(%s)", p.Op, FormatValue(p.Value))
}

// HasContainer is a single property constraint: the value at Key must
// satisfy Predicate. An element missing Key never matches.
type HasContainer struct {
	Key       string
	Predicate Predicate
}

// Has builds a has-container
func Has(key string, p Predicate) HasContainer {
	return HasContainer{Key: key, Predicate: p}
}

// String renders the container as key.pred(value)
func (h HasContainer) String() string {
	return h.Key + "." + h.Predicate.String()
}

// Matches evaluates the container against an element
func (h HasContainer) Matches(e Element, lookup Lookup) bool {
	v, ok := lookup(e, h.Key)
	if !ok {
		return false
	}
	return h.Predicate.Test(v)
}

// MatchAll reports whether every container matches
func MatchAll(containers []HasContainer, e Element, lookup Lookup) bool {
	for _, h := range containers {
		if !h.Matches(e, lookup) {
			return false
		}
	}
	return true
}

// Lookup resolves key on an element. Vertex properties are not carried by
// the Vertex value, so callers that filter vertices supply a Lookup that can
// reach their property source.
type Lookup func(e Element, key string) (any, bool)

// InlineLookup resolves keys using only data carried by the element itself.
//
// Vertices expose ~id and ~label, edges additionally their properties,
// properties expose ~key, ~value and their own key, bare values expose
// ~value and bare keys expose ~key.
func InlineLookup(e Element, key string) (any, bool) {
	switch el := e.(type) {
	case Vertex:
		switch key {
		case KeyID:
			return el.ID, true
		case KeyLabel:
			return el.Label, true
		}
		return nil, false
	case Edge:
		switch key {
		case KeyID:
			return el.ID, true
		case KeyLabel:
			return el.Label, true
		}
		if p, ok := el.Property(key); ok {
			return p.Value, true
		}
		return nil, false
	case Property:
		switch key {
		case KeyKey:
			return el.Key, true
		case KeyValue, el.Key:
			return el.Value, true
		}
		return nil, false
	case PropertyValue:
		if key == KeyValue {
			return el.Value, true
		}
		return nil, false
	case PropertyKey:
		if key == KeyKey {
			return string(el), true
		}
		return nil, false
	}
	return nil, false
}

// VertexLookup extends InlineLookup with a vertex property list
func VertexLookup(props []Property) Lookup {
	return func(e Element, key string) (any, bool) {
		if v, ok := InlineLookup(e, key); ok {
			return v, true
		}
		if _, ok := e.(Vertex); !ok {
			return nil, false
		}
		for _, p := range props {
			if p.Key == key {
				return p.Value, true
			}
		}
		return nil, false
	}
}

// FormatValue renders a literal the way the traversal parser reads it
func FormatValue(v any) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", val)
	}
}
