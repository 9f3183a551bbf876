package optimizer

import (
	"strings"

	"github.com/wbrown/janus-graph/graph/annotations"
	"github.com/wbrown/janus-graph/graph/traversal"
)

// pass carries the read-only inputs of one optimization run
type pass struct {
	multiKey  bool
	prefetch  bool
	cacheHint uint
	collector *annotations.Collector
}

// rewrite runs the expansion, property and local-block passes over plan.
// Nested plans recurse through unfoldLocals with depth+1.
func (p *pass) rewrite(plan *traversal.Plan, depth int) {
	p.rewriteExpansions(plan, depth)
	p.rewriteProperties(plan, depth)
	p.unfoldLocals(plan, depth)
}

// tagMultiKey marks steps that were already enhanced before this run
func (p *pass) tagMultiKey(plan *traversal.Plan) {
	if !p.multiKey {
		return
	}
	for i := 0; i < plan.Len(); i++ {
		pd := traversal.PushdownOf(plan.At(i))
		if pd == nil || pd.MultiKeyFetch {
			continue
		}
		pd.MultiKeyFetch = true
		p.collector.Note(annotations.BatchTagged, map[string]interface{}{
			"step": plan.At(i).String(),
		})
	}
}

// rewriteExpansions replaces every generic Expand in plan with a
// BackendExpand. Edge-returning expansions absorb following filters; a
// following Range is merged into the limit. Orders are never folded here
// because at this position they sort the global stream.
func (p *pass) rewriteExpansions(plan *traversal.Plan, depth int) {
	for i := 0; i < plan.Len(); i++ {
		e, ok := plan.At(i).(*traversal.Expand)
		if !ok {
			continue
		}
		s := traversal.NewBackendExpand(e)
		plan.Replace(i, s)

		if traversal.ReturnsEdges(s) {
			p.foldFilters(plan, i, &s.Pushdown)
		}
		p.foldRange(plan, i, &s.Pushdown, localBounds(plan, i))

		if p.multiKey {
			s.MultiKeyFetch = true
		}
		if p.prefetch {
			p.advise(plan, i, s)
		}

		p.collector.Note(annotations.RewriteExpand, map[string]interface{}{
			"step":  s.String(),
			"depth": depth,
		})
	}
}

// rewriteProperties replaces every generic FetchProperties with a
// BackendProperties. Filters are folded only for property-valued returns;
// bare values and keys have nothing a has-container could test.
func (p *pass) rewriteProperties(plan *traversal.Plan, depth int) {
	for i := 0; i < plan.Len(); i++ {
		f, ok := plan.At(i).(*traversal.FetchProperties)
		if !ok {
			continue
		}
		s := traversal.NewBackendProperties(f)
		plan.Replace(i, s)

		if s.Return.ForProperties() {
			p.foldFilters(plan, i, &s.Pushdown)
		}
		p.foldRange(plan, i, &s.Pushdown, localBounds(plan, i))

		if p.multiKey {
			s.MultiKeyFetch = true
		}

		p.collector.Note(annotations.RewriteProperties, map[string]interface{}{
			"step":  s.String(),
			"depth": depth,
		})
	}
}

// localBounds reports whether plan[i] sees one input element for its whole
// output: the first step of a plan evaluated from a single start element.
func localBounds(plan *traversal.Plan, i int) bool {
	return i == 0 && plan.Anonymous()
}

func (p *pass) foldFilters(plan *traversal.Plan, i int, pd *traversal.Pushdown) {
	if n := FoldFilters(plan, i, pd); n > 0 {
		p.collector.Note(annotations.FoldFilter, map[string]interface{}{
			"step":  plan.At(i).String(),
			"count": n,
		})
	}
}

func (p *pass) foldOrder(plan *traversal.Plan, i int, pd *traversal.Pushdown) {
	if FoldOrder(plan, i, pd) {
		p.collector.Note(annotations.FoldOrder, map[string]interface{}{
			"step": plan.At(i).String(),
			"keys": orderKeys(pd),
		})
	}
}

func (p *pass) foldRange(plan *traversal.Plan, i int, pd *traversal.Pushdown, local bool) {
	if folded, removed := FoldRange(plan, i, pd, local); folded {
		p.collector.Note(annotations.FoldRange, map[string]interface{}{
			"step":    plan.At(i).String(),
			"limit":   pd.Limit,
			"removed": removed,
		})
	}
}

func orderKeys(pd *traversal.Pushdown) string {
	keys := make([]string, len(pd.Orders))
	for i, k := range pd.Orders {
		keys[i] = k.String()
	}
	return strings.Join(keys, ",")
}
