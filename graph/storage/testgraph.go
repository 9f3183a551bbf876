package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/executor"
)

// TestGraphConfig specifies what kind of test graph to build
type TestGraphConfig struct {
	NumPeople   int    // Number of person vertices
	NumSoftware int    // Number of software vertices
	Fanout      int    // knows edges per person
	OutputPath  string // Where to store the database
}

// DefaultTestGraphConfig returns a small social graph for explain runs
// Size: 100 people × 5 knows + 100 created = 600 edges
func DefaultTestGraphConfig() TestGraphConfig {
	return TestGraphConfig{
		NumPeople:   100,
		NumSoftware: 10,
		Fanout:      5,
		OutputPath:  "testdata/social.db",
	}
}

// MediumTestGraphConfig returns a graph large enough to make batching visible
func MediumTestGraphConfig() TestGraphConfig {
	return TestGraphConfig{
		NumPeople:   10_000,
		NumSoftware: 200,
		Fanout:      20,
		OutputPath:  "testdata/social_medium.db",
	}
}

// LargeTestGraphConfig returns a graph for stress testing
func LargeTestGraphConfig() TestGraphConfig {
	return TestGraphConfig{
		NumPeople:   200_000,
		NumSoftware: 2_000,
		Fanout:      50,
		OutputPath:  "testdata/social_large.db",
	}
}

type testVertex struct {
	id    graph.ElementID
	label string
	props []graph.Property
}

// Person i has ID i+1; software j has ID NumPeople+j+1. Edge IDs follow.
func testVertices(cfg TestGraphConfig) []testVertex {
	out := make([]testVertex, 0, cfg.NumPeople+cfg.NumSoftware)
	for i := 0; i < cfg.NumPeople; i++ {
		id := graph.ElementID(i + 1)
		out = append(out, testVertex{id: id, label: "person", props: []graph.Property{
			{Owner: id, Key: "name", Value: fmt.Sprintf("person%04d", i)},
			{Owner: id, Key: "age", Value: int64(18 + (i*7)%60)},
		}})
	}
	langs := []string{"go", "java", "rust", "python"}
	for j := 0; j < cfg.NumSoftware; j++ {
		id := graph.ElementID(cfg.NumPeople + j + 1)
		out = append(out, testVertex{id: id, label: "software", props: []graph.Property{
			{Owner: id, Key: "name", Value: fmt.Sprintf("project%03d", j)},
			{Owner: id, Key: "lang", Value: langs[j%len(langs)]},
		}})
	}
	return out
}

// Person i knows persons i+1..i+Fanout (mod NumPeople) and created
// software i mod NumSoftware.
func testEdges(cfg TestGraphConfig) []graph.Edge {
	next := graph.ElementID(cfg.NumPeople + cfg.NumSoftware + 1)
	var out []graph.Edge
	for i := 0; i < cfg.NumPeople; i++ {
		from := graph.ElementID(i + 1)
		for k := 1; k <= cfg.Fanout && k < cfg.NumPeople; k++ {
			to := graph.ElementID((i+k)%cfg.NumPeople + 1)
			out = append(out, graph.Edge{ID: next, Label: "knows", OutV: from, InV: to,
				Properties: []graph.Property{
					{Key: "weight", Value: float64((i*3+k*7)%10) / 10},
					{Key: "since", Value: int64(2000 + (i+k)%20)},
				}})
			next++
		}
		if cfg.NumSoftware > 0 {
			to := graph.ElementID(cfg.NumPeople + i%cfg.NumSoftware + 1)
			out = append(out, graph.Edge{ID: next, Label: "created", OutV: from, InV: to,
				Properties: []graph.Property{{Key: "weight", Value: float64(i%5) / 4}}})
			next++
		}
	}
	return out
}

// PopulateTestGraph writes the generated graph to any writer
func PopulateTestGraph(w executor.Writer, cfg TestGraphConfig) error {
	for _, v := range testVertices(cfg) {
		if err := writeVertex(w, v); err != nil {
			return err
		}
	}
	for _, e := range testEdges(cfg) {
		if err := w.AddEdge(e); err != nil {
			return fmt.Errorf("failed to add edge %d: %w", e.ID, err)
		}
	}
	return nil
}

func writeVertex(w executor.Writer, v testVertex) error {
	if err := w.AddVertex(v.id, v.label); err != nil {
		return fmt.Errorf("failed to add vertex %d: %w", v.id, err)
	}
	for _, p := range v.props {
		if err := w.SetProperty(v.id, p.Key, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// BuildTestStore creates a pre-populated store at cfg.OutputPath, replacing
// any existing one
func BuildTestStore(cfg TestGraphConfig) (*GraphStore, error) {
	if err := os.RemoveAll(cfg.OutputPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove existing db: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	store, err := Open(cfg.OutputPath)
	if err != nil {
		return nil, err
	}

	// Badger rejects oversized transactions; commit in batches
	const batchSize = 2000

	vertices := testVertices(cfg)
	for start := 0; start < len(vertices); start += batchSize {
		end := min(start+batchSize, len(vertices))
		err := store.Update(func(w executor.Writer) error {
			for _, v := range vertices[start:end] {
				if err := writeVertex(w, v); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to commit vertices %d-%d: %w", start, end, err)
		}
	}

	edges := testEdges(cfg)
	for start := 0; start < len(edges); start += batchSize {
		end := min(start+batchSize, len(edges))
		err := store.Update(func(w executor.Writer) error {
			for _, e := range edges[start:end] {
				if err := w.AddEdge(e); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to commit edges %d-%d: %w", start, end, err)
		}
	}
	return store, nil
}

// OpenTestStore opens a pre-built test store
func OpenTestStore(path string) (*GraphStore, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("test store not found: %s (run BuildTestStore first)", path)
	}
	return Open(path)
}

// Stats counts what a store holds
type Stats struct {
	Vertices   int
	Edges      int
	Properties int
}

// Stats walks the key space once. Each edge is counted on its tail only.
func (s *GraphStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		n := 0
		for it.Rewind(); it.Valid(); it.Next() {
			if n++; n%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			key := it.Item().Key()
			switch key[0] {
			case prefixVertex:
				st.Vertices++
			case prefixProperty:
				st.Properties++
			case prefixEdge:
				if len(key) > 9 && key[9] == dirOut {
					st.Edges++
				}
			}
		}
		return nil
	})
	return st, err
}
