package optimizer

import "github.com/wbrown/janus-graph/graph"

// MergeHighLimits combines two half-open high bounds [0, high). The result
// is the tighter bound; graph.NoLimit loses to any finite value.
//
// The merge is associative, commutative and idempotent, with NoLimit as
// identity, so limits can be folded in any order.
func MergeHighLimits(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ConvertLimit maps a Range high bound to a step limit. Negative (unbounded)
// and overflowing highs become graph.NoLimit.
func ConvertLimit(high int64) int {
	if high < 0 || high >= int64(graph.NoLimit) {
		return graph.NoLimit
	}
	return int(high)
}
