package executor

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/annotations"
)

// dispatch issues one batched read per chunk of distinct keys and merges
// the keyed results. Each chunk is sent exactly once. Cancellation is
// checked before every dispatch; chunks not yet sent are abandoned.
func dispatch[T any](ctx context.Context, x *execution, kind string, ids []graph.ElementID, size int,
	fetch func(context.Context, []graph.ElementID) (map[graph.ElementID]T, error)) (map[graph.ElementID]T, error) {
	keys := distinct(ids)
	out := make(map[graph.ElementID]T, len(keys))
	for _, chunk := range chunks(keys, size) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := fetch(ctx, chunk)
		if err != nil {
			return nil, x.backendError(err)
		}
		for k, v := range res {
			out[k] = v
		}
		x.note(annotations.BatchDispatched, map[string]interface{}{
			"kind": kind,
			"keys": len(chunk),
		})
	}
	return out, nil
}

// distinct drops repeated ids, keeping first occurrences in order
func distinct(ids []graph.ElementID) []graph.ElementID {
	seen := mapset.NewThreadUnsafeSet[graph.ElementID]()
	out := make([]graph.ElementID, 0, len(ids))
	for _, id := range ids {
		if seen.Add(id) {
			out = append(out, id)
		}
	}
	return out
}

// chunks splits ids into consecutive slices of at most size
func chunks(ids []graph.ElementID, size int) [][]graph.ElementID {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]graph.ElementID
	for len(ids) > size {
		out = append(out, ids[:size:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
