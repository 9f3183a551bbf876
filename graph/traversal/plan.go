package traversal

import (
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/wbrown/janus-graph/graph"
)

// Plan is an ordered, index-addressable step pipeline.
//
// A plan is owned by the query compiling it and is mutated only by the
// optimizer; passes hold the plan and an index, never a step back-reference,
// so replacing a step cannot leave a stale alias behind.
type Plan struct {
	// Graph is the live graph the plan is bound to (nil if unbound)
	Graph *graph.Handle

	steps []Step
}

// NewPlan creates an unbound plan
func NewPlan(steps ...Step) *Plan {
	return &Plan{steps: append([]Step(nil), steps...)}
}

// Bind attaches the plan to a graph and returns it
func (p *Plan) Bind(h *graph.Handle) *Plan {
	p.Graph = h
	return p
}

// Bound reports whether the plan is attached to a graph
func (p *Plan) Bound() bool {
	return p.Graph != nil
}

// Len returns the number of top-level steps
func (p *Plan) Len() int {
	return len(p.steps)
}

// At returns the step at index i, or nil when out of range
func (p *Plan) At(i int) Step {
	if i < 0 || i >= len(p.steps) {
		return nil
	}
	return p.steps[i]
}

// Steps returns a copy of the top-level step list
func (p *Plan) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Replace swaps the step at i
func (p *Plan) Replace(i int, s Step) {
	p.steps[i] = s
}

// Insert places s at index i, shifting later steps right
func (p *Plan) Insert(i int, s Step) {
	p.steps = append(p.steps, nil)
	copy(p.steps[i+1:], p.steps[i:])
	p.steps[i] = s
}

// Append adds s at the end
func (p *Plan) Append(s Step) {
	p.steps = append(p.steps, s)
}

// Remove deletes the step at i and returns it
func (p *Plan) Remove(i int) Step {
	s := p.steps[i]
	copy(p.steps[i:], p.steps[i+1:])
	p.steps[len(p.steps)-1] = nil
	p.steps = p.steps[:len(p.steps)-1]
	return s
}

// IndexOf returns the position of s (pointer identity), or -1
func (p *Plan) IndexOf(s Step) int {
	for i, st := range p.steps {
		if st == s {
			return i
		}
	}
	return -1
}

// NextNonIdentity returns the index of the first non-Identity step after i,
// or -1 when there is none.
func (p *Plan) NextNonIdentity(i int) int {
	for j := i + 1; j < len(p.steps); j++ {
		if _, ok := p.steps[j].(*Identity); !ok {
			return j
		}
	}
	return -1
}

// Anonymous reports whether the plan runs from a single start element
// rather than from a Vertices source.
func (p *Plan) Anonymous() bool {
	if len(p.steps) == 0 {
		return true
	}
	_, ok := p.steps[0].(*Vertices)
	return !ok
}

// String renders the plan in traversal syntax with pushdown annotations
func (p *Plan) String() string {
	parts := make([]string, len(p.steps))
	for i, s := range p.steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// Fingerprint hashes the plan's rendering, nested blocks included.
// Two plans with equal fingerprints are structurally identical.
func (p *Plan) Fingerprint() uint64 {
	return xxhash.Sum64String(p.String())
}

// Walk visits every step depth-first, descending into blocks after visiting
// the block itself. Returning false from fn stops the walk.
func (p *Plan) Walk(fn func(owner *Plan, index int, s Step) bool) bool {
	for i, s := range p.steps {
		if !fn(p, i, s) {
			return false
		}
		if b, ok := s.(*PerElementBlock); ok && b.Inner != nil {
			if !b.Inner.Walk(fn) {
				return false
			}
		}
	}
	return true
}
