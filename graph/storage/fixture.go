package storage

import (
	"fmt"
	"os"
	"sort"

	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/executor"
	"gopkg.in/yaml.v3"
)

// Fixture is a small graph described in YAML:
//
//	vertices:
//	  - {id: 1, label: person, properties: {name: alice, age: 30}}
//	edges:
//	  - {id: 10, label: knows, out: 1, in: 2, properties: {weight: 0.5}}
type Fixture struct {
	Vertices []FixtureVertex `yaml:"vertices"`
	Edges    []FixtureEdge   `yaml:"edges"`
}

// FixtureVertex is one vertex of a fixture
type FixtureVertex struct {
	ID         graph.ElementID `yaml:"id"`
	Label      string          `yaml:"label"`
	Properties map[string]any  `yaml:"properties"`
}

// FixtureEdge is one edge of a fixture
type FixtureEdge struct {
	ID         graph.ElementID `yaml:"id"`
	Label      string          `yaml:"label"`
	Out        graph.ElementID `yaml:"out"`
	In         graph.ElementID `yaml:"in"`
	Properties map[string]any  `yaml:"properties"`
}

// ParseFixture decodes a YAML fixture
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// LoadFixture reads and decodes a YAML fixture file
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// Populate writes every vertex, then every edge. Properties are written in
// key order; YAML integers become int64.
func (f *Fixture) Populate(w executor.Writer) error {
	for _, v := range f.Vertices {
		if err := w.AddVertex(v.ID, v.Label); err != nil {
			return fmt.Errorf("fixture vertex %d: %w", v.ID, err)
		}
		for _, p := range sortedProperties(v.Properties) {
			if err := w.SetProperty(v.ID, p.Key, p.Value); err != nil {
				return fmt.Errorf("fixture vertex %d: %w", v.ID, err)
			}
		}
	}
	for _, e := range f.Edges {
		edge := graph.Edge{
			ID:         e.ID,
			Label:      e.Label,
			OutV:       e.Out,
			InV:        e.In,
			Properties: sortedProperties(e.Properties),
		}
		if err := w.AddEdge(edge); err != nil {
			return fmt.Errorf("fixture edge %d: %w", e.ID, err)
		}
	}
	return nil
}

func sortedProperties(m map[string]any) []graph.Property {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	props := make([]graph.Property, len(keys))
	for i, k := range keys {
		v := m[k]
		if n, ok := v.(int); ok {
			v = int64(n)
		}
		props[i] = graph.Property{Key: k, Value: v}
	}
	return props
}
