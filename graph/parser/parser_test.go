package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/optimizer"
	"github.com/wbrown/janus-graph/graph/traversal"
)

// Rendered plans parse back to themselves
func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		`V(1,2).outE("knows").has(weight.gt(0.5)).inV().values("name")`,
		`V().out().keys().has(~key.eq("name"))`,
		`outE("knows").order(weight:desc,since:asc).range(0,2)`,
		`V(1).local(outE("knows").range(1,3).inV())`,
		`in("a","b").bothV().identity().has(age.within(1,2,3), name.neq("x"))`,
		`V(1).properties("name","age").has(~value.gte(-1.5))`,
		`has(name.eq("a\"b"), flag.eq(true), gone.eq(null))`,
		`bothE().outV().range(3,-1)`,
		`V(1).local(out("knows").local(outE("created").range(0,1)))`,
	}
	for _, input := range inputs {
		plan, err := Parse(input)
		require.NoError(t, err, input)
		assert.Equal(t, input, plan.String())
		assert.False(t, plan.Bound())
	}
}

func TestParseGremlinSpellings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`V(1).outE("knows").order().by("weight", desc).limit(2)`,
			`V(1).outE("knows").order(weight:desc).range(0,2)`},
		{`out("knows").has("age", gt(30)).hasLabel("person")`,
			`out("knows").has(age.gt(30)).has(~label.eq("person"))`},
		{`hasLabel("a", "b")`, `has(~label.within("a","b"))`},
		{`order().by(weight).by("since", incr)`, `order(weight:asc,since:asc)`},
		{`has("name", "bob")`, `has(name.eq("bob"))`},
		{`has("active", false)`, `has(active.eq(false))`},
		{"V(1)   # start here\n  .out(\"knows\")\n  .values(\"name\")", `V(1).out("knows").values("name")`},
		{`local()`, `local()`},
	}
	for _, tt := range tests {
		plan, err := Parse(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, plan.String(), tt.input)
	}
}

func TestParseValues(t *testing.T) {
	plan, err := Parse(`has(a.eq(3), b.eq(2.5), c.eq("s"), d.eq(true), e.eq(null), f.within())`)
	require.NoError(t, err)
	f, ok := plan.At(0).(*traversal.Filter)
	require.True(t, ok)
	require.Len(t, f.Containers, 6)
	assert.Equal(t, int64(3), f.Containers[0].Predicate.Value)
	assert.Equal(t, 2.5, f.Containers[1].Predicate.Value)
	assert.Equal(t, "s", f.Containers[2].Predicate.Value)
	assert.Equal(t, true, f.Containers[3].Predicate.Value)
	assert.Nil(t, f.Containers[4].Predicate.Value)
	assert.Equal(t, graph.OpWithin, f.Containers[5].Predicate.Op)

	plan, err = Parse(`V(7).outE("knows")`)
	require.NoError(t, err)
	assert.Equal(t, &traversal.Vertices{IDs: []graph.ElementID{7}}, plan.At(0))
	assert.Equal(t, &traversal.Expand{Direction: graph.Out, Labels: []string{"knows"}, Kind: graph.EdgeKind}, plan.At(1))
	assert.False(t, plan.Anonymous())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{`V(1).out("knows"`, `expected "," or ")", found end of input at 1:17`},
		{`V(1).frob()`, "unknown step frob() at 1:6"},
		{`out().V(1)`, "V() must start the traversal at 1:7"},
		{`local(V(1))`, "V() must start the traversal at 1:7"},
		{`has(age.like(3))`, "unknown predicate like at 1:9"},
		{`out("a") @`, "unexpected character '@' at 1:10"},
		{`range(2,x)`, `expected integer, found "x" at 1:9`},
		{`range(-1,2)`, "range low must not be negative at 1:1"},
		{`order()`, "order() needs a key or a by() modulator at 1:1"},
		{`order(w:up)`, "unknown order direction up at 1:9"},
		{`by("x")`, "by() must follow order() at 1:1"},
		{`out() out()`, `expected "." or end of input, found "out" at 1:7`},
		{`inV(1)`, "inV() takes no arguments at 1:5"},
		{`out(knows)`, `expected string, found "knows" at 1:5`},
		{`hasLabel()`, "hasLabel() needs at least one label at 1:1"},
		{`V(1).`, "expected step name, found end of input at 1:6"},
		{``, "expected step name, found end of input at 1:1"},
	}
	for _, tt := range tests {
		_, err := Parse(tt.input)
		require.Error(t, err, tt.input)
		assert.EqualError(t, err, tt.err, tt.input)
	}
}

func TestParsedPlanOptimizes(t *testing.T) {
	plan, err := Parse(`outE("knows").has(weight.gt(0.5)).limit(5)`)
	require.NoError(t, err)
	plan.Bind(graph.NewHandle("test", graph.Config{MultiKeyFetchEnabled: true}))

	optimizer.Optimize(plan)
	assert.Equal(t, `outE("knows"){filter=weight.gt(0.5) limit=5 multikey}`, plan.String())
}
