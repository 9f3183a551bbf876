package optimizer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/traversal"
)

// PlanCache memoizes optimized plans. Entries are keyed by the unoptimized
// plan's rendering together with the effective configuration and graph mode,
// so a configuration change never returns a stale rewrite.
type PlanCache struct {
	cache map[uint64]*cachedPlan
	mu    sync.RWMutex

	// Statistics
	hits   int64
	misses int64

	maxSize int
	ttl     time.Duration
}

type cachedPlan struct {
	plan      *traversal.Plan
	timestamp time.Time
}

// NewPlanCache creates a plan cache. Non-positive arguments select 1000
// entries and a five minute TTL.
func NewPlanCache(maxSize int, ttl time.Duration) *PlanCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PlanCache{
		cache:   make(map[uint64]*cachedPlan),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Optimize returns an optimized copy of plan bound to plan's graph. The input
// plan is not modified. A nil cache optimizes without caching.
func (c *PlanCache) Optimize(plan *traversal.Plan, opts ...Option) *traversal.Plan {
	out := plan.Clone()
	if c == nil || !plan.Bound() {
		Optimize(out, opts...)
		return out
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	cfg := plan.Graph.Config
	if o.config != nil {
		cfg = *o.config
	}
	key := cacheKey(plan, cfg)

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && time.Since(cached.timestamp) <= c.ttl {
		atomic.AddInt64(&c.hits, 1)
		hit := cached.plan.Clone()
		hit.Graph = plan.Graph
		return hit
	}
	atomic.AddInt64(&c.misses, 1)

	Optimize(out, opts...)
	c.set(key, out.Clone())
	return out
}

func (c *PlanCache) set(key uint64, plan *traversal.Plan) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, replace := c.cache[key]; !replace && len(c.cache) >= c.maxSize {
		c.evictExpired()
		if len(c.cache) >= c.maxSize {
			c.evictOldest()
		}
	}
	c.cache[key] = &cachedPlan{plan: plan, timestamp: time.Now()}
}

// Clear removes all cached plans and resets the statistics
func (c *PlanCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[uint64]*cachedPlan)
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
}

// Stats returns cache statistics
func (c *PlanCache) Stats() (hits, misses int64, size int) {
	if c == nil {
		return 0, 0, 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses), len(c.cache)
}

func cacheKey(plan *traversal.Plan, cfg graph.Config) uint64 {
	h := xxhash.New()
	fmt.Fprintf(h, "PLAN:%s;", plan.String())
	fmt.Fprintf(h, "MODE:%s;", plan.Graph.Mode)
	fmt.Fprintf(h, "MULTIKEY:%v;PREFETCH:%v;HINT:%d;",
		cfg.MultiKeyFetchEnabled, cfg.EagerPropertyPrefetchEnabled, cfg.VertexCacheSizeHint)
	return h.Sum64()
}

// evictExpired removes expired entries (must be called with lock held)
func (c *PlanCache) evictExpired() {
	now := time.Now()
	for key, cached := range c.cache {
		if now.Sub(cached.timestamp) > c.ttl {
			delete(c.cache, key)
		}
	}
}

// evictOldest removes the oldest entry (must be called with lock held)
func (c *PlanCache) evictOldest() {
	var oldestKey uint64
	var oldestTime time.Time
	first := true
	for key, cached := range c.cache {
		if first || cached.timestamp.Before(oldestTime) {
			oldestKey = key
			oldestTime = cached.timestamp
			first = false
		}
	}
	if !first {
		delete(c.cache, oldestKey)
	}
}
