package optimizer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/annotations"
	"github.com/wbrown/janus-graph/graph/traversal"
)

type planCase struct {
	name  string
	cfg   graph.Config
	steps func() []traversal.Step
}

// planCases covers every rewrite rule. Each case is also an equivalence
// check in TestOptimizedPlansAreEquivalent.
var planCases = []planCase{
	{"scenario_a", graph.Config{}, func() []traversal.Step {
		return []traversal.Step{out("knows"), rng(0, 10)}
	}},
	{"scenario_b", graph.Config{}, func() []traversal.Step {
		return []traversal.Step{properties("name"), has("name", graph.Eq("bob"))}
	}},
	{"scenario_c", config(true, false, 0), func() []traversal.Step {
		return []traversal.Step{local(outE("knows"), has("weight", graph.Gt(0.5)), rng(0, 5))}
	}},
	{"rooted_edge_range", graph.Config{}, func() []traversal.Step {
		return []traversal.Step{v(1, 2), outE("knows"), has("weight", graph.Gt(0.5)), rng(0, 3)}
	}},
	{"vertex_prefetch", config(false, true, 100), func() []traversal.Step {
		return []traversal.Step{v(1), out("knows"), has("age", graph.Gt(int64(30))), values("name")}
	}},
	{"edge_vertex_fusion", config(false, true, 0), func() []traversal.Step {
		return []traversal.Step{v(1), outE("knows"), inV(), has("age", graph.Gt(int64(30)))}
	}},
	{"local_order_inlined", config(true, false, 0), func() []traversal.Step {
		return []traversal.Step{v(1), local(outE("knows"), orderBy("weight", true), rng(0, 2))}
	}},
	{"local_kept", graph.Config{}, func() []traversal.Step {
		return []traversal.Step{v(1), local(outE("knows"), rng(1, 3), inV())}
	}},
	{"local_untouched", graph.Config{}, func() []traversal.Step {
		return []traversal.Step{v(1), local(has("age", graph.Gt(1)), out("knows"))}
	}},
	{"local_identity_order", graph.Config{}, func() []traversal.Step {
		return []traversal.Step{v(1), local(outE("knows"), identity(), orderBy("weight", false))}
	}},
	{"global_order_kept", graph.Config{}, func() []traversal.Step {
		return []traversal.Step{v(1), outE("knows"), orderBy("weight", false), rng(0, 2)}
	}},
	{"nested_locals", config(true, false, 0), func() []traversal.Step {
		return []traversal.Step{v(1), local(out("knows"), local(outE("created"), rng(0, 1)))}
	}},
	{"keys_no_fold", graph.Config{}, func() []traversal.Step {
		return []traversal.Step{v(1), keys(), has(graph.KeyKey, graph.Eq("name"))}
	}},
	{"limited_edge_no_fusion", config(false, true, 100), func() []traversal.Step {
		return []traversal.Step{outE("knows"), rng(0, 2), inV(), has("age", graph.Gt(int64(30)))}
	}},
}

// extraCases add equivalence coverage without golden renderings
var extraCases = []planCase{
	{"both_edges_prefetch", config(true, true, 2), func() []traversal.Step {
		return []traversal.Step{v(), bothE("knows"), has("weight", graph.Gte(0.5)), inV(), has("age", graph.Lt(int64(33))), values("name")}
	}},
	{"top_prefetch_range", config(true, true, 3), func() []traversal.Step {
		return []traversal.Step{v(1, 4), out(), has("age", graph.Gt(int64(28))), rng(0, 2)}
	}},
	{"local_properties", config(true, false, 0), func() []traversal.Step {
		return []traversal.Step{v(), local(properties(), has(graph.KeyKey, graph.Eq("age")), orderBy(graph.KeyValue, true), rng(0, 1))}
	}},
	{"local_values_range", config(false, false, 0), func() []traversal.Step {
		return []traversal.Step{v(1, 2, 3), local(values("name", "age"), rng(1, 2))}
	}},
	{"global_range_offset", config(true, false, 0), func() []traversal.Step {
		return []traversal.Step{v(), out("knows"), rng(2, 4)}
	}},
	{"anonymous_filter_order", config(true, true, 0), func() []traversal.Step {
		return []traversal.Step{outE(), has("weight", graph.Gt(0.3)), orderBy("weight", true), inV(), values("name")}
	}},
	{"local_vertex_order_not_folded", config(true, true, 0), func() []traversal.Step {
		return []traversal.Step{v(1, 2), local(out("knows"), orderBy("age", true), rng(0, 1))}
	}},
	{"empty_after_folded_filter", config(true, false, 0), func() []traversal.Step {
		return []traversal.Step{v(1), outE("knows"), has("weight", graph.Gt(5.0))}
	}},
	{"empty_after_vertex_filter", config(true, true, 0), func() []traversal.Step {
		return []traversal.Step{v(1), out("knows"), has("age", graph.Gt(int64(100))), values("name")}
	}},
	{"deep_local_chain", config(true, true, 1), func() []traversal.Step {
		return []traversal.Step{v(), local(outE("knows"), has("weight", graph.Gt(0.5)), inV(), out("knows"), has("age", graph.Gt(int64(0))))}
	}},
}

func optimized(c planCase) *traversal.Plan {
	p := bound(c.cfg, c.steps()...)
	Optimize(p)
	return p
}

func TestOptimizedPlanGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, c := range planCases {
		t.Run(c.name, func(t *testing.T) {
			g.Assert(t, c.name, []byte(optimized(c).String()+"\n"))
		})
	}
}

func TestScenarios(t *testing.T) {
	t.Run("A", func(t *testing.T) {
		p := optimized(planCases[0])
		require.Equal(t, 1, p.Len())
		be, ok := p.At(0).(*traversal.BackendExpand)
		require.True(t, ok)
		assert.Equal(t, 10, be.Limit)
		assert.Equal(t, []string{"knows"}, be.Labels)
		assert.False(t, be.MultiKeyFetch)
	})

	t.Run("B", func(t *testing.T) {
		p := optimized(planCases[1])
		require.Equal(t, 1, p.Len())
		bp, ok := p.At(0).(*traversal.BackendProperties)
		require.True(t, ok)
		assert.Equal(t, []graph.HasContainer{graph.Has("name", graph.Eq("bob"))}, bp.Filters)
	})

	t.Run("C", func(t *testing.T) {
		p := optimized(planCases[2])
		require.Equal(t, 1, p.Len())
		be, ok := p.At(0).(*traversal.BackendExpand)
		require.True(t, ok, "block replaced by a bare step")
		assert.Equal(t, []graph.HasContainer{graph.Has("weight", graph.Gt(0.5))}, be.Filters)
		assert.Equal(t, 5, be.Limit)
		assert.True(t, be.MultiKeyFetch)
	})

	t.Run("D", func(t *testing.T) {
		for _, c := range append(append([]planCase(nil), planCases...), extraCases...) {
			h := graph.NewHandle("olap", config(true, true, 10))
			h.Mode = graph.ModeComputer
			p := traversal.NewPlan(c.steps()...).Bind(h)
			before := p.Steps()
			rendered := p.String()

			Optimize(p)

			assert.Equal(t, rendered, p.String(), c.name)
			require.Equal(t, len(before), p.Len())
			for i := range before {
				assert.Same(t, before[i], p.At(i), "%s step %d", c.name, i)
			}
		}
	})
}

func TestPrefetchRefusedUnderLimit(t *testing.T) {
	tests := []struct {
		name  string
		steps []traversal.Step
	}{
		{"EdgeThenVertex", []traversal.Step{outE("knows"), rng(0, 2), inV(), has("age", graph.Gt(int64(30)))}},
		{"Vertex", []traversal.Step{out("knows"), rng(0, 2), has("age", graph.Gt(int64(30)))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := annotations.NewCollector(nil)
			p := bound(config(false, true, 100), tt.steps...)
			Optimize(p, WithCollector(collector))

			assert.Equal(t, 2, traversal.PushdownOf(p.At(0)).Limit)
			assert.Empty(t, collector.Named(annotations.PrefetchTagged))
			p.Walk(func(_ *traversal.Plan, _ int, s traversal.Step) bool {
				_, fused := s.(*traversal.BackendEdgeVertex)
				assert.False(t, fused, "%s", p)
				return true
			})
		})
	}

	// without the limit the adjacent vertices are fused
	p := bound(config(false, true, 100), outE("knows"), inV(), has("age", graph.Gt(int64(30))))
	Optimize(p)
	assert.IsType(t, &traversal.BackendEdgeVertex{}, p.At(1))
}

func TestUnboundPlanIsUntouched(t *testing.T) {
	collector := annotations.NewCollector(nil)
	p := traversal.NewPlan(out("knows"), rng(0, 10))
	Optimize(p, WithCollector(collector))

	assert.IsType(t, &traversal.Expand{}, p.At(0))
	assert.Equal(t, 2, p.Len())
	skipped := collector.Named(annotations.OptimizerSkipped)
	require.Len(t, skipped, 1)
	assert.Equal(t, "unbound", skipped[0].Data["reason"])

	assert.NotPanics(t, func() { Optimize(nil) })
}

func TestComputerModeReportsSkip(t *testing.T) {
	collector := annotations.NewCollector(nil)
	h := graph.NewHandle("olap", graph.DefaultConfig())
	h.Mode = graph.ModeComputer
	Optimize(traversal.NewPlan(out()).Bind(h), WithCollector(collector))

	skipped := collector.Named(annotations.OptimizerSkipped)
	require.Len(t, skipped, 1)
	assert.Equal(t, "computer", skipped[0].Data["reason"])
	assert.Empty(t, collector.Named(annotations.OptimizerApplied))
}

func TestOptimizedPlansAreEquivalent(t *testing.T) {
	b := fixture(t)
	for _, c := range append(append([]planCase(nil), planCases...), extraCases...) {
		t.Run(c.name, func(t *testing.T) {
			original := bound(c.cfg, c.steps()...)
			opt := original.Clone()
			Optimize(opt)

			want := run(t, b, original)
			got := run(t, b, opt)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("%s changed results (-want +got):\n%s\noptimized: %s", original, diff, opt)
			}
		})
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	for _, c := range append(append([]planCase(nil), planCases...), extraCases...) {
		t.Run(c.name, func(t *testing.T) {
			p := optimized(c)
			first := p.String()
			Optimize(p)
			assert.Equal(t, first, p.String())
		})
	}
}

func TestFoldSafety(t *testing.T) {
	for _, c := range append(append([]planCase(nil), planCases...), extraCases...) {
		t.Run(c.name, func(t *testing.T) {
			p := bound(config(true, true, 50), c.steps()...)
			Optimize(p)
			require.NoError(t, CheckInvariants(p))
			p.Walk(func(_ *traversal.Plan, _ int, s traversal.Step) bool {
				if pd := traversal.PushdownOf(s); pd != nil && pd.EagerPrefetch {
					assert.False(t, pd.HasLimit(), "%s carries prefetch and a limit", s)
				}
				return true
			})
		})
	}
}

func TestInliningOnlySingleStepBlocks(t *testing.T) {
	countBlocks := func(p *traversal.Plan) int {
		n := 0
		p.Walk(func(_ *traversal.Plan, _ int, s traversal.Step) bool {
			if _, ok := s.(*traversal.PerElementBlock); ok {
				n++
			}
			return true
		})
		return n
	}

	tests := []struct {
		name       string
		steps      []traversal.Step
		wantBlocks int
	}{
		{"SingleStepAfterFolding", []traversal.Step{v(1), local(outE(), has("weight", graph.Gt(0.1)), rng(0, 2))}, 0},
		{"RangeWithOffsetRemains", []traversal.Step{v(1), local(outE(), rng(1, 2))}, 1},
		{"TwoSteps", []traversal.Step{v(1), local(out(), values("name"))}, 1},
		{"AlreadySingle", []traversal.Step{v(1), local(values("name"))}, 0},
		{"NotExpandFirst", []traversal.Step{v(1), local(rng(0, 1))}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := bound(config(true, false, 0), tt.steps...)
			Optimize(p)
			assert.Equal(t, tt.wantBlocks, countBlocks(p))
		})
	}
}

func TestMultiKeyTagsPreEnhancedSteps(t *testing.T) {
	pre := traversal.NewBackendExpand(out("knows"))
	p := bound(config(true, false, 0), v(1), pre)
	Optimize(p)
	assert.True(t, pre.MultiKeyFetch)
	assert.Same(t, pre, p.At(1))
}

func TestWithConfigOverridesHandle(t *testing.T) {
	p := bound(graph.Config{}, v(1), out("knows"))
	Optimize(p, WithConfig(config(true, false, 0)))
	assert.True(t, p.At(1).(*traversal.BackendExpand).MultiKeyFetch)
}

func TestOptimizeEvents(t *testing.T) {
	collector := annotations.NewCollector(nil)
	p := bound(config(true, false, 0), local(outE("knows"), has("weight", graph.Gt(0.5)), rng(0, 5)))
	Optimize(p, WithCollector(collector))

	filters := collector.Named(annotations.FoldFilter)
	require.Len(t, filters, 1)
	assert.Equal(t, 1, filters[0].Data["count"])

	ranges := collector.Named(annotations.FoldRange)
	require.Len(t, ranges, 1)
	assert.Equal(t, true, ranges[0].Data["removed"])
	assert.Equal(t, 5, ranges[0].Data["limit"])

	assert.Len(t, collector.Named(annotations.LocalInlined), 1)

	applied := collector.Named(annotations.OptimizerApplied)
	require.Len(t, applied, 1)
	assert.Equal(t, `local(outE("knows").has(weight.gt(0.5)).range(0,5))`, applied[0].Data["before"])
	assert.Equal(t, `outE("knows"){filter=weight.gt(0.5) limit=5 multikey}`, applied[0].Data["after"])
}

func TestStrategy(t *testing.T) {
	var s Strategy
	assert.Equal(t, "LocalQueryOptimizer", s.Name())
	assert.Equal(t, []string{"AdjacentFilterMerge"}, s.Priors())

	p := bound(graph.Config{}, out("knows"), rng(0, 10))
	s.Apply(p)
	assert.Equal(t, `out("knows"){limit=10}`, p.String())
}

func TestCheckInvariants(t *testing.T) {
	bad := traversal.NewBackendExpand(out())
	bad.SetPrefetch(10)
	bad.Limit = 4
	err := CheckInvariants(traversal.NewPlan(v(1), local(bad)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvariant)
	assert.Contains(t, err.Error(), "prefetch with folded limit 4")

	keysWithFilter := traversal.NewBackendProperties(keys())
	keysWithFilter.Filters = []graph.HasContainer{graph.Has(graph.KeyKey, graph.Eq("a"))}
	assert.ErrorIs(t, CheckInvariants(traversal.NewPlan(keysWithFilter)), ErrInvariant)

	assert.NoError(t, CheckInvariants(optimized(planCases[2])))
}
