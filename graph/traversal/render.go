package traversal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wbrown/janus-graph/graph"
)

func (s *Vertices) String() string {
	ids := make([]string, len(s.IDs))
	for i, id := range s.IDs {
		ids[i] = strconv.FormatUint(uint64(id), 10)
	}
	return "V(" + strings.Join(ids, ",") + ")"
}

func (s *Expand) String() string {
	name := s.Direction.String()
	if s.Kind == graph.EdgeKind {
		name += "E"
	}
	return name + "(" + quoteAll(s.Labels) + ")"
}

func (s *FetchProperties) String() string {
	var name string
	switch s.Return {
	case graph.ReturnValue:
		name = "values"
	case graph.ReturnKey:
		name = "keys"
	default:
		name = "properties"
	}
	return name + "(" + quoteAll(s.Keys) + ")"
}

func (s *EdgeVertex) String() string {
	return s.Direction.String() + "V()"
}

func (s *Filter) String() string {
	parts := make([]string, len(s.Containers))
	for i, h := range s.Containers {
		parts[i] = h.String()
	}
	return "has(" + strings.Join(parts, ", ") + ")"
}

func (s *Order) String() string {
	parts := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		parts[i] = k.String()
	}
	return "order(" + strings.Join(parts, ",") + ")"
}

func (s *Range) String() string {
	return fmt.Sprintf("range(%d,%d)", s.Low, s.High)
}

func (s *PerElementBlock) String() string {
	if s.Inner == nil {
		return "local()"
	}
	return "local(" + s.Inner.String() + ")"
}

func (s *Identity) String() string {
	return "identity()"
}

func (s *BackendExpand) String() string {
	return s.Expand.String() + s.Pushdown.describe()
}

func (s *BackendProperties) String() string {
	return s.FetchProperties.String() + s.Pushdown.describe()
}

func (s *BackendEdgeVertex) String() string {
	return s.EdgeVertex.String() + describeTags(false, s.EagerPrefetch, s.PrefetchBatchSize)
}

// describe renders folded constraints and tags as {k=v ...}
func (p *Pushdown) describe() string {
	var parts []string
	if len(p.Filters) > 0 {
		fs := make([]string, len(p.Filters))
		for i, f := range p.Filters {
			fs[i] = f.String()
		}
		parts = append(parts, "filter="+strings.Join(fs, "&"))
	}
	if len(p.Orders) > 0 {
		ks := make([]string, len(p.Orders))
		for i, k := range p.Orders {
			ks[i] = k.String()
		}
		parts = append(parts, "order="+strings.Join(ks, ","))
	}
	if p.HasLimit() {
		parts = append(parts, fmt.Sprintf("limit=%d", p.Limit))
	}
	parts = append(parts, tagParts(p.MultiKeyFetch, p.EagerPrefetch, p.PrefetchBatchSize)...)
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func describeTags(multiKey, prefetch bool, batch *uint) string {
	parts := tagParts(multiKey, prefetch, batch)
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func tagParts(multiKey, prefetch bool, batch *uint) []string {
	var parts []string
	if multiKey {
		parts = append(parts, "multikey")
	}
	if prefetch {
		if batch != nil {
			parts = append(parts, fmt.Sprintf("prefetch=%d", *batch))
		} else {
			parts = append(parts, "prefetch")
		}
	}
	return parts
}

func quoteAll(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = strconv.Quote(s)
	}
	return strings.Join(quoted, ",")
}
