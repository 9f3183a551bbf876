package strategy

import (
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/optimizer"
	"github.com/wbrown/janus-graph/graph/traversal"
)

// FilterMerge merges runs of Filter steps, ignoring Identity steps between
// them, into the first Filter of the run. Blocks are merged recursively.
type FilterMerge struct{}

// Name returns the name the local query optimizer lists as its prior
func (FilterMerge) Name() string {
	return optimizer.PriorStrategy
}

// Priors returns nil
func (FilterMerge) Priors() []string {
	return nil
}

// Apply merges filters in place
func (FilterMerge) Apply(plan *traversal.Plan) {
	mergeFilters(plan)
}

func mergeFilters(plan *traversal.Plan) {
	for i := 0; i < plan.Len(); i++ {
		switch st := plan.At(i).(type) {
		case *traversal.PerElementBlock:
			if st.Inner != nil {
				mergeFilters(st.Inner)
			}
		case *traversal.Filter:
			var merged []graph.HasContainer
			for {
				j := plan.NextNonIdentity(i)
				next, ok := plan.At(j).(*traversal.Filter)
				if !ok {
					break
				}
				if merged == nil {
					merged = append(merged, st.Containers...)
				}
				merged = append(merged, next.Containers...)
				plan.Remove(j)
			}
			if merged != nil {
				plan.Replace(i, &traversal.Filter{Containers: merged})
			}
		}
	}
}
