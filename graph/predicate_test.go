package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicateTest(t *testing.T) {
	assert.True(t, Eq("bob").Test("bob"))
	assert.False(t, Eq("bob").Test("alice"))
	assert.True(t, Neq("bob").Test("alice"))
	assert.True(t, Gt(0.5).Test(0.7))
	assert.False(t, Gt(0.5).Test(0.5))
	assert.True(t, Gte(0.5).Test(0.5))
	assert.True(t, Lt(int64(10)).Test(int64(3)))
	assert.True(t, Lte(int64(10)).Test(10.0))
	assert.True(t, Within("a", "b").Test("b"))
	assert.False(t, Within("a", "b").Test("c"))

	// Ordering predicates never match across unrelated types
	assert.False(t, Lt(int64(10)).Test("3"))
	assert.False(t, Gt("a").Test(int64(3)))
}

func TestInlineLookup(t *testing.T) {
	e := Edge{ID: 9, Label: "knows", OutV: 1, InV: 2, Properties: []Property{
		{Owner: 9, Key: "weight", Value: 0.8},
	}}

	t.Run("EdgeProperty", func(t *testing.T) {
		v, ok := InlineLookup(e, "weight")
		assert.True(t, ok)
		assert.Equal(t, 0.8, v)
	})

	t.Run("EdgeStructure", func(t *testing.T) {
		v, ok := InlineLookup(e, KeyLabel)
		assert.True(t, ok)
		assert.Equal(t, "knows", v)
		v, ok = InlineLookup(e, KeyID)
		assert.True(t, ok)
		assert.Equal(t, ElementID(9), v)
	})

	t.Run("VertexWithoutProperties", func(t *testing.T) {
		_, ok := InlineLookup(Vertex{ID: 1, Label: "person"}, "name")
		assert.False(t, ok)
	})

	t.Run("PropertyOwnKey", func(t *testing.T) {
		p := Property{Owner: 1, Key: "name", Value: "bob"}
		v, ok := InlineLookup(p, "name")
		assert.True(t, ok)
		assert.Equal(t, "bob", v)
		v, ok = InlineLookup(p, KeyKey)
		assert.True(t, ok)
		assert.Equal(t, "name", v)
		_, ok = InlineLookup(p, "age")
		assert.False(t, ok)
	})

	t.Run("VertexLookup", func(t *testing.T) {
		lookup := VertexLookup([]Property{{Owner: 1, Key: "name", Value: "bob"}})
		v, ok := lookup(Vertex{ID: 1}, "name")
		assert.True(t, ok)
		assert.Equal(t, "bob", v)
		assert.True(t, Has("name", Eq("bob")).Matches(Vertex{ID: 1}, lookup))
		assert.False(t, Has("age", Gt(int64(1))).Matches(Vertex{ID: 1}, lookup))
	})
}

func TestHasContainerString(t *testing.T) {
	assert.Equal(t, `name.eq("bob")`, Has("name", Eq("bob")).String())
	assert.Equal(t, `weight.gt(0.5)`, Has("weight", Gt(0.5)).String())
	assert.Equal(t, `~label.within("a","b")`, Has(KeyLabel, Within("a", "b")).String())
}
