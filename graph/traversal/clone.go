package traversal

import (
	"fmt"

	"github.com/wbrown/janus-graph/graph"
)

// Clone deep-copies the plan. The graph handle is shared, not copied.
func (p *Plan) Clone() *Plan {
	out := &Plan{Graph: p.Graph, steps: make([]Step, len(p.steps))}
	for i, s := range p.steps {
		out.steps[i] = CloneStep(s)
	}
	return out
}

// CloneStep deep-copies a single step
func CloneStep(s Step) Step {
	switch st := s.(type) {
	case *Vertices:
		return &Vertices{IDs: append([]graph.ElementID(nil), st.IDs...)}
	case *Expand:
		c := *st
		c.Labels = append([]string(nil), st.Labels...)
		return &c
	case *FetchProperties:
		c := *st
		c.Keys = append([]string(nil), st.Keys...)
		return &c
	case *EdgeVertex:
		c := *st
		return &c
	case *Filter:
		return &Filter{Containers: cloneContainers(st.Containers)}
	case *Order:
		return &Order{Keys: append([]graph.OrderKey(nil), st.Keys...)}
	case *Range:
		c := *st
		return &c
	case *PerElementBlock:
		if st.Inner == nil {
			return &PerElementBlock{}
		}
		return &PerElementBlock{Inner: st.Inner.Clone()}
	case *Identity:
		return &Identity{}
	case *BackendExpand:
		c := *st
		c.Labels = append([]string(nil), st.Labels...)
		c.Pushdown = st.Pushdown.clone()
		return &c
	case *BackendProperties:
		c := *st
		c.Keys = append([]string(nil), st.Keys...)
		c.Pushdown = st.Pushdown.clone()
		return &c
	case *BackendEdgeVertex:
		c := *st
		c.PrefetchBatchSize = cloneUint(st.PrefetchBatchSize)
		return &c
	default:
		panic(fmt.Sprintf("traversal: unknown step type %T", s))
	}
}

func (p Pushdown) clone() Pushdown {
	p.Filters = cloneContainers(p.Filters)
	p.Orders = append([]graph.OrderKey(nil), p.Orders...)
	p.PrefetchBatchSize = cloneUint(p.PrefetchBatchSize)
	return p
}

func cloneContainers(hs []graph.HasContainer) []graph.HasContainer {
	if hs == nil {
		return nil
	}
	out := make([]graph.HasContainer, len(hs))
	for i, h := range hs {
		out[i] = h
		if set, ok := h.Predicate.Value.([]any); ok {
			out[i].Predicate.Value = append([]any(nil), set...)
		}
	}
	return out
}

func cloneUint(v *uint) *uint {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
