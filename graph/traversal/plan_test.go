package traversal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-graph/graph"
)

func TestPlanStructuralOperations(t *testing.T) {
	out := &Expand{Direction: graph.Out, Labels: []string{"knows"}}
	rng := &Range{Low: 0, High: 10}
	p := NewPlan(out, &Identity{}, rng)

	t.Run("NextNonIdentity", func(t *testing.T) {
		assert.Equal(t, 2, p.NextNonIdentity(0))
		assert.Equal(t, -1, p.NextNonIdentity(2))
	})

	t.Run("IndexOf", func(t *testing.T) {
		assert.Equal(t, 0, p.IndexOf(out))
		assert.Equal(t, 2, p.IndexOf(rng))
		assert.Equal(t, -1, p.IndexOf(&Range{Low: 0, High: 10}), "identity, not equality")
	})

	t.Run("InsertRemoveReplace", func(t *testing.T) {
		q := p.Clone()
		q.Insert(1, &Filter{Containers: []graph.HasContainer{graph.Has("name", graph.Eq("bob"))}})
		require.Equal(t, 4, q.Len())
		assert.IsType(t, &Filter{}, q.At(1))

		removed := q.Remove(2)
		assert.IsType(t, &Identity{}, removed)
		assert.Equal(t, 3, q.Len())

		q.Replace(0, NewBackendExpand(out))
		assert.IsType(t, &BackendExpand{}, q.At(0))
		assert.Nil(t, q.At(5))

		// The original is untouched
		assert.Equal(t, 3, p.Len())
		assert.Same(t, out, p.At(0))
	})
}

func TestPlanString(t *testing.T) {
	be := NewBackendExpand(&Expand{Direction: graph.Out, Labels: []string{"knows"}, Kind: graph.EdgeKind})
	be.Filters = []graph.HasContainer{graph.Has("weight", graph.Gt(0.5))}
	be.Limit = 5
	be.MultiKeyFetch = true

	p := NewPlan(
		&Vertices{IDs: []graph.ElementID{1, 2}},
		&PerElementBlock{Inner: NewPlan(
			&Expand{Direction: graph.Out, Labels: []string{"knows"}, Kind: graph.EdgeKind},
			&Range{Low: 0, High: 5},
		)},
		be,
		&EdgeVertex{Direction: graph.In},
		&FetchProperties{Keys: []string{"name"}, Return: graph.ReturnValue},
		&Order{Keys: []graph.OrderKey{{Key: graph.KeyValue, Desc: true}}},
	)

	assert.Equal(t,
		`V(1,2).local(outE("knows").range(0,5)).outE("knows"){filter=weight.gt(0.5) limit=5 multikey}.inV().values("name").order(~value:desc)`,
		p.String())
}

func TestPlanCloneIsDeep(t *testing.T) {
	be := NewBackendExpand(&Expand{Direction: graph.Out, Kind: graph.VertexKind})
	be.SetPrefetch(100)
	inner := NewPlan(&FetchProperties{Keys: []string{"name"}, Return: graph.ReturnProperty})
	p := NewPlan(be, &PerElementBlock{Inner: inner}).Bind(graph.NewHandle("test", graph.DefaultConfig()))

	c := p.Clone()
	assert.Equal(t, p.Fingerprint(), c.Fingerprint())
	assert.Same(t, p.Graph, c.Graph)

	cbe := c.At(0).(*BackendExpand)
	*cbe.PrefetchBatchSize = 7
	cbe.Limit = 3
	c.At(1).(*PerElementBlock).Inner.Append(&Identity{})

	assert.Equal(t, uint(100), *be.PrefetchBatchSize)
	assert.Equal(t, graph.NoLimit, be.Limit)
	assert.Equal(t, 1, inner.Len())
	assert.NotEqual(t, p.Fingerprint(), c.Fingerprint())
}

func TestPlanWalk(t *testing.T) {
	p := NewPlan(
		&Expand{},
		&PerElementBlock{Inner: NewPlan(&Expand{}, &PerElementBlock{Inner: NewPlan(&Identity{})})},
	)

	var visited []string
	p.Walk(func(owner *Plan, i int, s Step) bool {
		visited = append(visited, s.String())
		return true
	})
	assert.Len(t, visited, 5)
	assert.Equal(t, "identity()", visited[4])

	count := 0
	p.Walk(func(owner *Plan, i int, s Step) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestAnonymous(t *testing.T) {
	assert.True(t, NewPlan().Anonymous())
	assert.True(t, NewPlan(&Expand{}).Anonymous())
	assert.False(t, NewPlan(&Vertices{}, &Expand{}).Anonymous())
}

func TestStepKindHelpers(t *testing.T) {
	assert.True(t, ReturnsEdges(&Expand{Kind: graph.EdgeKind}))
	assert.True(t, ReturnsVertices(&Expand{Kind: graph.VertexKind}))
	assert.True(t, ReturnsVertices(&EdgeVertex{Direction: graph.In}))
	assert.False(t, ReturnsVertices(&FetchProperties{}))
	assert.Nil(t, PushdownOf(&Expand{}))
	assert.NotNil(t, PushdownOf(NewBackendProperties(&FetchProperties{})))
}
