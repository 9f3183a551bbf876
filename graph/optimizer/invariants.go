package optimizer

import (
	"errors"
	"fmt"

	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/traversal"
)

// ErrInvariant is wrapped by every CheckInvariants violation
var ErrInvariant = errors.New("plan invariant violated")

// CheckInvariants reports the first structural defect in an optimized plan.
// A plan produced by Optimize never has one; a violation is a bug.
func CheckInvariants(plan *traversal.Plan) error {
	var err error
	plan.Walk(func(owner *traversal.Plan, i int, s traversal.Step) bool {
		err = checkStep(s)
		if err != nil {
			err = fmt.Errorf("%w: step %d %s: %v", ErrInvariant, i, s, err)
			return false
		}
		return true
	})
	return err
}

func checkStep(s traversal.Step) error {
	switch st := s.(type) {
	case *traversal.BackendExpand:
		return checkPushdown(&st.Pushdown)
	case *traversal.BackendProperties:
		if len(st.Filters) > 0 && !st.Return.ForProperties() {
			return fmt.Errorf("filters folded into %s fetch", st.Return)
		}
		return checkPushdown(&st.Pushdown)
	case *traversal.BackendEdgeVertex:
		if st.PrefetchBatchSize != nil && !st.EagerPrefetch {
			return errors.New("prefetch batch size without prefetch")
		}
	case *traversal.PerElementBlock:
		if st.Inner == nil {
			return errors.New("block without inner plan")
		}
	case *traversal.Range:
		if st.Low < 0 {
			return fmt.Errorf("negative low bound %d", st.Low)
		}
	case *traversal.Vertices, *traversal.Expand, *traversal.FetchProperties,
		*traversal.EdgeVertex, *traversal.Filter, *traversal.Order, *traversal.Identity:
	default:
		return fmt.Errorf("unknown step type %T", s)
	}
	return nil
}

func checkPushdown(pd *traversal.Pushdown) error {
	if pd.Limit < 0 {
		return fmt.Errorf("negative limit %d", pd.Limit)
	}
	if pd.EagerPrefetch && pd.Limit != graph.NoLimit {
		return fmt.Errorf("prefetch with folded limit %d", pd.Limit)
	}
	if pd.PrefetchBatchSize != nil && !pd.EagerPrefetch {
		return errors.New("prefetch batch size without prefetch")
	}
	return nil
}
