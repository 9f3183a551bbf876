package optimizer

import (
	"github.com/wbrown/janus-graph/graph/annotations"
	"github.com/wbrown/janus-graph/graph/traversal"
)

// advise decides eager property prefetch for a freshly rewritten expansion.
//
// A vertex-returning step is tagged directly when the filters after it will
// read properties of every vertex it produces. An edge-returning step
// instead upgrades the EdgeVertex that follows it, so the adjacent vertices
// are loaded in one batched call. Neither happens once a limit is known: a
// bounded result should not trigger a cache-sized load.
func (p *pass) advise(plan *traversal.Plan, i int, s *traversal.BackendExpand) {
	if traversal.ReturnsVertices(s) {
		if FoldableWithoutLimit(plan, i) {
			s.SetPrefetch(p.cacheHint)
			p.collector.Note(annotations.PrefetchTagged, map[string]interface{}{
				"step":  s.String(),
				"batch": p.cacheHint,
			})
		}
		return
	}

	j := plan.NextNonIdentity(i)
	ev, ok := plan.At(j).(*traversal.EdgeVertex)
	if !ok || s.HasLimit() || !FoldableWithoutLimit(plan, j) {
		return
	}
	fused := traversal.NewBackendEdgeVertex(ev, p.cacheHint)
	plan.Replace(j, fused)
	p.collector.Note(annotations.PrefetchTagged, map[string]interface{}{
		"step":  fused.String(),
		"batch": p.cacheHint,
	})
}
