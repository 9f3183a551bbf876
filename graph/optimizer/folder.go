package optimizer

import (
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/traversal"
)

// FoldFilters absorbs every Filter step directly following plan[i] into pd,
// skipping Identity steps and stopping at the first other step. Containers
// keep plan order. Returns the number of containers folded.
func FoldFilters(plan *traversal.Plan, i int, pd *traversal.Pushdown) int {
	folded := 0
	for {
		j := plan.NextNonIdentity(i)
		f, ok := plan.At(j).(*traversal.Filter)
		if !ok {
			return folded
		}
		pd.Filters = append(pd.Filters, f.Containers...)
		folded += len(f.Containers)
		plan.Remove(j)
	}
}

// FoldOrder absorbs the Order step following plan[i] when only Identity
// steps separate them and every key can be served by the backend.
func FoldOrder(plan *traversal.Plan, i int, pd *traversal.Pushdown) bool {
	j := plan.NextNonIdentity(i)
	o, ok := plan.At(j).(*traversal.Order)
	if !ok || !foldableOrder(o.Keys) {
		return false
	}
	pd.Orders = append(pd.Orders, o.Keys...)
	plan.Remove(j)
	return true
}

func foldableOrder(keys []graph.OrderKey) bool {
	if len(keys) == 0 {
		return false
	}
	for _, k := range keys {
		if k.Key == "" || k.Key == graph.KeyID {
			return false
		}
	}
	return true
}

// FoldRange merges the high bound of a Range following plan[i] into pd.
// With local bounds (one input element for the whole segment) a Range
// starting at 0 is then fully served by the limit and removed; otherwise
// the Range stays to apply the global bound.
func FoldRange(plan *traversal.Plan, i int, pd *traversal.Pushdown, local bool) (folded, removed bool) {
	j := plan.NextNonIdentity(i)
	r, ok := plan.At(j).(*traversal.Range)
	if !ok {
		return false, false
	}
	pd.Limit = MergeHighLimits(pd.Limit, ConvertLimit(r.High))
	if local && r.Low == 0 {
		plan.Remove(j)
		return true, true
	}
	return true, false
}

// FoldableWithoutLimit reports whether plan[i] carries no folded limit and
// is followed by at least one Filter that is not itself followed by a
// Range. Only such steps need the properties of every element they produce.
func FoldableWithoutLimit(plan *traversal.Plan, i int) bool {
	if pd := traversal.PushdownOf(plan.At(i)); pd != nil && pd.HasLimit() {
		return false
	}
	j := plan.NextNonIdentity(i)
	if _, ok := plan.At(j).(*traversal.Filter); !ok {
		return false
	}
	for {
		next := plan.NextNonIdentity(j)
		switch plan.At(next).(type) {
		case *traversal.Filter:
			j = next
		case *traversal.Range:
			return false
		default:
			return true
		}
	}
}
