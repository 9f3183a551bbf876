// Package annotations provides a clean, low-overhead annotation system for
// tracking optimizer decisions and execution metrics.
package annotations

import (
	"sync"
	"time"
)

// Event name constants following hierarchical naming pattern
const (
	// Optimizer lifecycle
	OptimizerSkipped = "optimizer/skipped"
	OptimizerApplied = "optimizer/applied"

	// Step rewrites
	RewriteExpand     = "rewrite/expand"
	RewriteProperties = "rewrite/properties"

	// Constraint folding
	FoldFilter = "fold/filter"
	FoldOrder  = "fold/order"
	FoldRange  = "fold/range"

	// Batching advisor
	BatchTagged    = "batch/tagged"
	PrefetchTagged = "prefetch/tagged"

	// Local-block unfolding
	LocalRewritten = "local/rewritten"
	LocalInlined   = "local/inlined"

	// Strategy scheduling
	StrategyApplied = "strategy/applied"

	// Execution
	ExecutionBegin    = "executor/begin"
	ExecutionComplete = "executor/complete"
	BatchDispatched   = "executor/batch.dispatched"
	PrefetchLoaded    = "executor/prefetch"

	// Errors
	ErrorBackend = "error/backend"
)

// Event represents a single annotation event.
type Event struct {
	Name    string                 // Event name using hierarchical constants above
	Start   time.Time              // Start timestamp
	End     time.Time              // End timestamp
	Latency time.Duration          // Duration (End - Start)
	Data    map[string]interface{} // Additional event-specific data
}

// Handler processes annotation events as they occur.
type Handler func(event Event)

// Collector accumulates events. A nil *Collector is valid and discards
// everything, so callers never need to guard against a missing collector.
type Collector struct {
	enabled bool
	handler Handler
	events  []Event
	mu      sync.Mutex
}

// NewCollector creates a new annotation collector. With a nil handler the
// collector still records events for later inspection.
func NewCollector(handler Handler) *Collector {
	return &Collector{
		enabled: true,
		handler: handler,
		events:  make([]Event, 0, 64),
	}
}

// Handler returns the underlying event handler.
func (c *Collector) Handler() Handler {
	if c == nil {
		return nil
	}
	return c.handler
}

// Add records a new event.
// Thread-safe for concurrent access.
func (c *Collector) Add(event Event) {
	if c == nil || !c.enabled {
		return
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()

	// Call handler outside the lock to avoid deadlocks
	if c.handler != nil {
		c.handler(event)
	}
}

// Note records an instantaneous event.
func (c *Collector) Note(name string, data map[string]interface{}) {
	if c == nil || !c.enabled {
		return
	}
	now := time.Now()
	c.Add(Event{Name: name, Start: now, End: now, Data: data})
}

// AddTiming records an event with timing information.
func (c *Collector) AddTiming(name string, start time.Time, data map[string]interface{}) {
	if c == nil || !c.enabled {
		return
	}

	end := time.Now()
	c.Add(Event{
		Name:    name,
		Start:   start,
		End:     end,
		Latency: end.Sub(start),
		Data:    data,
	})
}

// Events returns all collected events.
func (c *Collector) Events() []Event {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// Return a copy to avoid race conditions
	eventsCopy := make([]Event, len(c.events))
	copy(eventsCopy, c.events)
	return eventsCopy
}

// Named returns collected events with the given name, in order.
func (c *Collector) Named(name string) []Event {
	var out []Event
	for _, e := range c.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears the collector for reuse.
// Thread-safe for concurrent access.
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
}
