// Package optimizer rewrites generic traversal plans into plans that use
// backend capabilities: batched multi-key reads, filter, order and limit
// pushdown, and eager property prefetch.
//
// File organization:
//   - optimizer.go: Optimize entry point and the Strategy wrapper
//   - limits.go: high-limit merge policy
//   - folder.go: filter, order and range folding rules
//   - rewrite.go: expansion and property rewrite passes
//   - batching.go: prefetch advisor
//   - local.go: per-element block unfolding
//   - invariants.go: structural checks on optimized plans
//
// Every rule has a do-nothing fallback, so Optimize never fails. A plan that
// is not bound to a graph, or whose graph runs on a graph-parallel computer,
// is returned untouched.
package optimizer

import (
	"time"

	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/annotations"
	"github.com/wbrown/janus-graph/graph/traversal"
)

// StrategyName identifies the optimizer to a strategy scheduler
const StrategyName = "LocalQueryOptimizer"

// PriorStrategy must run before this optimizer so adjacent filters arrive
// merged.
const PriorStrategy = "AdjacentFilterMerge"

// Option configures a single Optimize call
type Option func(*options)

type options struct {
	collector *annotations.Collector
	config    *graph.Config
}

// WithCollector reports every rewrite decision to c
func WithCollector(c *annotations.Collector) Option {
	return func(o *options) {
		o.collector = c
	}
}

// WithConfig overrides the configuration of the plan's graph
func WithConfig(cfg graph.Config) Option {
	return func(o *options) {
		o.config = &cfg
	}
}

// Optimize rewrites plan in place. Passes run in a fixed order:
// multi-key tagging of already enhanced steps, expansion rewrite,
// property rewrite, then local-block unfolding.
func Optimize(plan *traversal.Plan, opts ...Option) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if plan == nil || !plan.Bound() {
		o.collector.Note(annotations.OptimizerSkipped, map[string]interface{}{
			"reason": "unbound",
		})
		return
	}
	if plan.Graph.OnComputer() {
		o.collector.Note(annotations.OptimizerSkipped, map[string]interface{}{
			"reason": graph.ModeComputer.String(),
		})
		return
	}

	cfg := plan.Graph.Config
	if o.config != nil {
		cfg = *o.config
	}

	start := time.Now()
	var before string
	if o.collector != nil {
		before = plan.String()
	}

	p := &pass{
		multiKey:  cfg.MultiKeyFetchEnabled,
		prefetch:  cfg.EagerPropertyPrefetchEnabled,
		cacheHint: cfg.VertexCacheSizeHint,
		collector: o.collector,
	}
	p.tagMultiKey(plan)
	p.rewrite(plan, 0)

	if o.collector != nil {
		o.collector.AddTiming(annotations.OptimizerApplied, start, map[string]interface{}{
			"before":   before,
			"after":    plan.String(),
			"multikey": cfg.MultiKeyFetchEnabled,
			"prefetch": cfg.EagerPropertyPrefetchEnabled,
		})
	}
}

// Strategy adapts Optimize to a rule scheduler. The zero value is ready to
// use; Collector is optional.
type Strategy struct {
	Collector *annotations.Collector
}

// Name returns StrategyName
func (Strategy) Name() string {
	return StrategyName
}

// Priors lists the strategies that must run first
func (Strategy) Priors() []string {
	return []string{PriorStrategy}
}

// Apply optimizes plan in place
func (s Strategy) Apply(plan *traversal.Plan) {
	Optimize(plan, WithCollector(s.Collector))
}
