// Package strategy schedules plan rewrite rules. Each rule names the rules
// that must run before it; Order turns those priors into a run order.
package strategy

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wbrown/janus-graph/graph/annotations"
	"github.com/wbrown/janus-graph/graph/optimizer"
	"github.com/wbrown/janus-graph/graph/traversal"
)

// ErrCycle is returned when priors form a cycle
var ErrCycle = errors.New("strategy priors form a cycle")

// Strategy is one plan rewrite rule
type Strategy interface {
	Name() string
	// Priors names the strategies that must be applied first
	Priors() []string
	Apply(plan *traversal.Plan)
}

// Default returns the standard rule set
func Default(collector *annotations.Collector) []Strategy {
	return []Strategy{
		optimizer.Strategy{Collector: collector},
		FilterMerge{},
	}
}

// Order sorts strategies so each runs after its priors. Ties keep input
// order. Priors naming unregistered strategies impose nothing.
func Order(list []Strategy) ([]Strategy, error) {
	index := make(map[string]int, len(list))
	for i, s := range list {
		index[s.Name()] = i
	}

	// Kahn's algorithm, always picking the earliest ready strategy
	indegree := make([]int, len(list))
	dependents := make([][]int, len(list))
	for i, s := range list {
		for _, prior := range s.Priors() {
			j, ok := index[prior]
			if !ok || j == i {
				continue
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	done := make([]bool, len(list))
	ordered := make([]Strategy, 0, len(list))
	for len(ordered) < len(list) {
		next := -1
		for i := range list {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var stuck []string
			for i, s := range list {
				if !done[i] {
					stuck = append(stuck, s.Name())
				}
			}
			return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(stuck, ", "))
		}
		done[next] = true
		ordered = append(ordered, list[next])
		for _, d := range dependents[next] {
			indegree[d]--
		}
	}
	return ordered, nil
}

// Apply orders list and applies each strategy to plan
func Apply(plan *traversal.Plan, list []Strategy, collector *annotations.Collector) error {
	ordered, err := Order(list)
	if err != nil {
		return err
	}
	for _, s := range ordered {
		start := time.Now()
		s.Apply(plan)
		collector.AddTiming(annotations.StrategyApplied, start, map[string]interface{}{
			"strategy": s.Name(),
		})
	}
	return nil
}
