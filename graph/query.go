package graph

import (
	"fmt"
	"math"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// NoLimit marks an unbounded high limit. Any finite limit is smaller.
const NoLimit = math.MaxInt

// OrderKey is one sort criterion
type OrderKey struct {
	Key  string
	Desc bool
}

// String renders the key as key:asc or key:desc
func (o OrderKey) String() string {
	if o.Desc {
		return o.Key + ":desc"
	}
	return o.Key + ":asc"
}

// CompareBy orders two elements by keys. Missing values sort first, like nil.
func CompareBy(a, b Element, keys []OrderKey, lookup Lookup) int {
	for _, k := range keys {
		av, _ := lookup(a, k.Key)
		bv, _ := lookup(b, k.Key)
		c := CompareValues(av, bv)
		if k.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// SortElements stable-sorts elements in place
func SortElements(elems []Element, keys []OrderKey, lookup Lookup) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(elems, func(i, j int) bool {
		return CompareBy(elems[i], elems[j], keys, lookup) < 0
	})
}

// AdjacencyQuery describes an expansion from one vertex as the backend sees
// it. Filters, Orders and Limit are pushdown constraints. Limit is taken
// literally, so build queries with NewAdjacencyQuery to start unbounded.
type AdjacencyQuery struct {
	Direction Direction
	Labels    []string
	Filters   []HasContainer
	Orders    []OrderKey
	Limit     int
}

// NewAdjacencyQuery returns an unconstrained query
func NewAdjacencyQuery(dir Direction, labels ...string) AdjacencyQuery {
	return AdjacencyQuery{Direction: dir, Labels: labels, Limit: NoLimit}
}

// MatchesLabel reports whether the label passes the query's label filter
func (q AdjacencyQuery) MatchesLabel(label string) bool {
	if len(q.Labels) == 0 {
		return true
	}
	return mapset.NewThreadUnsafeSet(q.Labels...).Contains(label)
}

// Apply filters, sorts and truncates adjacency in that order. The input is
// expected to be the natural adjacency of one vertex in Direction.
func (q AdjacencyQuery) Apply(edges []Edge) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if !q.MatchesLabel(e.Label) {
			continue
		}
		if !MatchAll(q.Filters, e, InlineLookup) {
			continue
		}
		out = append(out, e)
	}
	if len(q.Orders) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			return CompareBy(out[i], out[j], q.Orders, InlineLookup) < 0
		})
	}
	if q.Limit >= 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out
}

// String renders the query for diagnostics
func (q AdjacencyQuery) String() string {
	return fmt.Sprintf("%s(%s)%s", q.Direction, strings.Join(q.Labels, ","),
		formatPushdown(q.Filters, q.Orders, q.Limit))
}

// PropertyQuery describes a property fetch on one element. An empty Keys
// slice selects every property. Limit is taken literally like
// AdjacencyQuery.Limit.
type PropertyQuery struct {
	Keys    []string
	Filters []HasContainer
	Orders  []OrderKey
	Limit   int
}

// NewPropertyQuery returns an unconstrained query over keys
func NewPropertyQuery(keys ...string) PropertyQuery {
	return PropertyQuery{Keys: keys, Limit: NoLimit}
}

// MatchesKey reports whether the key is selected
func (q PropertyQuery) MatchesKey(key string) bool {
	if len(q.Keys) == 0 {
		return true
	}
	return mapset.NewThreadUnsafeSet(q.Keys...).Contains(key)
}

// Apply selects, filters, sorts and truncates properties in that order.
// Selection keeps the order of the input, not of Keys.
func (q PropertyQuery) Apply(props []Property) []Property {
	out := make([]Property, 0, len(props))
	for _, p := range props {
		if !q.MatchesKey(p.Key) {
			continue
		}
		if !MatchAll(q.Filters, p, InlineLookup) {
			continue
		}
		out = append(out, p)
	}
	if len(q.Orders) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			return CompareBy(out[i], out[j], q.Orders, InlineLookup) < 0
		})
	}
	if q.Limit >= 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out
}

func formatPushdown(filters []HasContainer, orders []OrderKey, limit int) string {
	var parts []string
	if len(filters) > 0 {
		fs := make([]string, len(filters))
		for i, f := range filters {
			fs[i] = f.String()
		}
		parts = append(parts, "filter="+strings.Join(fs, "&"))
	}
	if len(orders) > 0 {
		os := make([]string, len(orders))
		for i, o := range orders {
			os[i] = o.String()
		}
		parts = append(parts, "order="+strings.Join(os, ","))
	}
	if limit >= 0 && limit != NoLimit {
		parts = append(parts, fmt.Sprintf("limit=%d", limit))
	}
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, " ") + "}"
}
