package optimizer

import (
	"github.com/wbrown/janus-graph/graph/annotations"
	"github.com/wbrown/janus-graph/graph/traversal"
)

// unfoldLocals optimizes each PerElementBlock whose inner plan starts with
// an Expand or FetchProperties, then inlines blocks reduced to one step.
//
// Inside a block the first step runs once per input element, so a
// following Order or Range is local to that element and folds as well.
// Blocks starting with anything else are left untouched.
func (p *pass) unfoldLocals(plan *traversal.Plan, depth int) {
	for i := 0; i < plan.Len(); i++ {
		block, ok := plan.At(i).(*traversal.PerElementBlock)
		if !ok || block.Inner == nil || block.Inner.Len() == 0 {
			continue
		}
		inner := block.Inner

		var pd *traversal.Pushdown
		switch first := inner.At(0).(type) {
		case *traversal.Expand:
			s := traversal.NewBackendExpand(first)
			inner.Replace(0, s)
			pd = &s.Pushdown
			if traversal.ReturnsEdges(s) {
				p.foldFilters(inner, 0, pd)
				p.foldOrder(inner, 0, pd)
			}
		case *traversal.FetchProperties:
			s := traversal.NewBackendProperties(first)
			inner.Replace(0, s)
			pd = &s.Pushdown
			if s.Return.ForProperties() {
				p.foldFilters(inner, 0, pd)
				p.foldOrder(inner, 0, pd)
			}
		default:
			continue
		}
		p.foldRange(inner, 0, pd, true)

		// Remaining inner steps get the same treatment as a top-level plan
		p.rewrite(inner, depth+1)

		if inner.Len() != 1 {
			p.collector.Note(annotations.LocalRewritten, map[string]interface{}{
				"step":  block.String(),
				"depth": depth,
			})
			continue
		}

		step := inner.At(0)
		if p.multiKey {
			pd.MultiKeyFetch = true
		}
		plan.Replace(i, step)
		p.collector.Note(annotations.LocalInlined, map[string]interface{}{
			"step":  step.String(),
			"depth": depth,
		})
	}
}
