package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/executor"
	"github.com/wbrown/janus-graph/graph/traversal"
)

func v(ids ...graph.ElementID) *traversal.Vertices {
	return &traversal.Vertices{IDs: ids}
}

func out(labels ...string) *traversal.Expand {
	return &traversal.Expand{Direction: graph.Out, Labels: labels, Kind: graph.VertexKind}
}

func outE(labels ...string) *traversal.Expand {
	return &traversal.Expand{Direction: graph.Out, Labels: labels, Kind: graph.EdgeKind}
}

func bothE(labels ...string) *traversal.Expand {
	return &traversal.Expand{Direction: graph.Both, Labels: labels, Kind: graph.EdgeKind}
}

func inV() *traversal.EdgeVertex {
	return &traversal.EdgeVertex{Direction: graph.In}
}

func values(keys ...string) *traversal.FetchProperties {
	return &traversal.FetchProperties{Keys: keys, Return: graph.ReturnValue}
}

func properties(keys ...string) *traversal.FetchProperties {
	return &traversal.FetchProperties{Keys: keys, Return: graph.ReturnProperty}
}

func keys() *traversal.FetchProperties {
	return &traversal.FetchProperties{Return: graph.ReturnKey}
}

func has(key string, p graph.Predicate) *traversal.Filter {
	return &traversal.Filter{Containers: []graph.HasContainer{graph.Has(key, p)}}
}

func orderBy(key string, desc bool) *traversal.Order {
	return &traversal.Order{Keys: []graph.OrderKey{{Key: key, Desc: desc}}}
}

func rng(low, high int64) *traversal.Range {
	return &traversal.Range{Low: low, High: high}
}

func local(steps ...traversal.Step) *traversal.PerElementBlock {
	return &traversal.PerElementBlock{Inner: traversal.NewPlan(steps...)}
}

func identity() *traversal.Identity {
	return &traversal.Identity{}
}

func bound(cfg graph.Config, steps ...traversal.Step) *traversal.Plan {
	return traversal.NewPlan(steps...).Bind(graph.NewHandle("test", cfg))
}

func config(multiKey, prefetch bool, hint uint) graph.Config {
	return graph.Config{
		MultiKeyFetchEnabled:         multiKey,
		EagerPropertyPrefetchEnabled: prefetch,
		VertexCacheSizeHint:          hint,
	}
}

// fixture is a small social graph with weighted edges
func fixture(t *testing.T) *executor.MemoryBackend {
	t.Helper()
	m := executor.NewMemoryBackend()
	people := []struct {
		id   graph.ElementID
		name string
		age  int64
	}{
		{1, "marko", 29}, {2, "vadas", 27}, {3, "josh", 32},
		{4, "peter", 35}, {5, "ripple", 30}, {6, "lop", 31},
	}
	for _, p := range people {
		require.NoError(t, m.AddVertex(p.id, "person"))
		require.NoError(t, m.SetProperty(p.id, "name", p.name))
		require.NoError(t, m.SetProperty(p.id, "age", p.age))
	}

	edges := []struct {
		id       graph.ElementID
		label    string
		from, to graph.ElementID
		weight   float64
	}{
		{7, "knows", 1, 2, 0.5},
		{8, "knows", 1, 4, 1.0},
		{9, "created", 1, 3, 0.4},
		{10, "created", 4, 5, 1.0},
		{11, "created", 4, 3, 0.4},
		{12, "created", 6, 3, 0.2},
		{13, "knows", 1, 3, 0.9},
		{14, "knows", 3, 5, 0.7},
		{15, "knows", 2, 4, 0.3},
		{16, "knows", 4, 6, 0.6},
	}
	for _, e := range edges {
		require.NoError(t, m.AddEdge(graph.Edge{
			ID: e.id, Label: e.label, OutV: e.from, InV: e.to,
			Properties: []graph.Property{{Key: "weight", Value: e.weight}},
		}))
	}
	return m
}

// run executes plan from vertex 1 when it is anonymous
func run(t *testing.T, b executor.Backend, plan *traversal.Plan) []graph.Element {
	t.Helper()
	got, err := executor.NewExecutor(b, executor.Options{BatchSize: 2}).
		Execute(context.Background(), plan, graph.Vertex{ID: 1, Label: "person"})
	require.NoError(t, err)
	return got
}
