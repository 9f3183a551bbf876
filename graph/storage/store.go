// Package storage is a badger-backed graph backend.
//
// Layout:
//
//	v|id                  -> vertex label
//	p|id|key              -> encoded property value
//	e|vertex|dir|edgeID   -> encoded edge record
//
// Every edge is written twice, once under each endpoint, so adjacency in
// either direction is a single prefix scan. Adjacency and property queries
// are answered inside one read transaction with their filters, orders and
// limits applied during the scan.
package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/executor"
)

// GraphStore implements executor.Backend on BadgerDB
type GraphStore struct {
	db *badger.DB
}

var _ executor.Backend = (*GraphStore)(nil)

// Open opens or creates a store at path
func Open(path string) (*GraphStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable BadgerDB logs

	// Adjacency scans read small values; keep them in the LSM tree
	opts.ValueThreshold = 1 << 10
	opts.DetectConflicts = false

	return open(opts)
}

// OpenInMemory opens a store that lives only in memory
func OpenInMemory() (*GraphStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*GraphStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &GraphStore{db: db}, nil
}

// Close closes the store
func (s *GraphStore) Close() error {
	return s.db.Close()
}

// Update runs fn with a writer bound to a single transaction
func (s *GraphStore) Update(fn func(w executor.Writer) error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return fn(&txWriter{txn: txn})
	})
}

// AddVertex implements executor.Writer
func (s *GraphStore) AddVertex(id graph.ElementID, label string) error {
	return s.Update(func(w executor.Writer) error { return w.AddVertex(id, label) })
}

// SetProperty implements executor.Writer
func (s *GraphStore) SetProperty(id graph.ElementID, key string, value any) error {
	return s.Update(func(w executor.Writer) error { return w.SetProperty(id, key, value) })
}

// AddEdge implements executor.Writer
func (s *GraphStore) AddEdge(e graph.Edge) error {
	return s.Update(func(w executor.Writer) error { return w.AddEdge(e) })
}

// txWriter writes within one badger transaction
type txWriter struct {
	txn *badger.Txn
}

func (w *txWriter) AddVertex(id graph.ElementID, label string) error {
	if err := w.txn.Set(vertexKey(id), []byte(label)); err != nil {
		return fmt.Errorf("failed to write vertex %d: %w", id, err)
	}
	return nil
}

func (w *txWriter) SetProperty(id graph.ElementID, key string, value any) error {
	if err := w.requireVertex(id); err != nil {
		return fmt.Errorf("set %s on %d: %w", key, id, err)
	}
	v, err := encodeValue(value)
	if err != nil {
		return fmt.Errorf("set %s on %d: %w", key, id, err)
	}
	if err := w.txn.Set(propertyKey(id, key), v); err != nil {
		return fmt.Errorf("failed to write property %s on %d: %w", key, id, err)
	}
	return nil
}

func (w *txWriter) AddEdge(e graph.Edge) error {
	if err := w.requireVertex(e.OutV); err != nil {
		return fmt.Errorf("edge %d tail %d: %w", e.ID, e.OutV, err)
	}
	if err := w.requireVertex(e.InV); err != nil {
		return fmt.Errorf("edge %d head %d: %w", e.ID, e.InV, err)
	}
	record, err := encodeEdge(e)
	if err != nil {
		return err
	}
	if err := w.txn.Set(edgeKey(e.OutV, dirOut, e.ID), record); err != nil {
		return fmt.Errorf("failed to write edge %d: %w", e.ID, err)
	}
	if err := w.txn.Set(edgeKey(e.InV, dirIn, e.ID), record); err != nil {
		return fmt.Errorf("failed to write edge %d: %w", e.ID, err)
	}
	return nil
}

func (w *txWriter) requireVertex(id graph.ElementID) error {
	_, err := w.txn.Get(vertexKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return graph.ErrVertexNotFound
	}
	return err
}

// Vertices implements executor.Backend
func (s *GraphStore) Vertices(ctx context.Context, ids []graph.ElementID) ([]graph.Vertex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []graph.Vertex
	err := s.db.View(func(txn *badger.Txn) error {
		if len(ids) == 0 {
			return scan(txn, []byte{prefixVertex}, func(key, value []byte) (bool, error) {
				id := graph.ElementID(binary.BigEndian.Uint64(key[1:]))
				out = append(out, graph.Vertex{ID: id, Label: string(value)})
				return true, nil
			})
		}
		for _, id := range ids {
			item, err := txn.Get(vertexKey(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			label, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, graph.Vertex{ID: id, Label: string(label)})
		}
		return nil
	})
	return out, err
}

// Adjacent implements executor.Backend
func (s *GraphStore) Adjacent(ctx context.Context, v graph.ElementID, q graph.AdjacencyQuery) ([]graph.Edge, error) {
	res, err := s.MultiAdjacent(ctx, []graph.ElementID{v}, q)
	if err != nil {
		return nil, err
	}
	return res[v], nil
}

// MultiAdjacent implements executor.Backend. All vertices are read in one
// transaction.
func (s *GraphStore) MultiAdjacent(ctx context.Context, vs []graph.ElementID, q graph.AdjacencyQuery) (map[graph.ElementID][]graph.Edge, error) {
	out := make(map[graph.ElementID][]graph.Edge, len(vs))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, v := range vs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, done := out[v]; done {
				continue
			}
			edges, err := adjacent(txn, v, q)
			if err != nil {
				return fmt.Errorf("adjacency of %d: %w", v, err)
			}
			out[v] = edges
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// adjacent scans the edges of v. Without orders the scan stops once the
// limit is reached; otherwise the matches are sorted and then truncated.
func adjacent(txn *badger.Txn, v graph.ElementID, q graph.AdjacencyQuery) ([]graph.Edge, error) {
	var prefix []byte
	switch q.Direction {
	case graph.Out:
		prefix = edgeDirPrefix(v, dirOut)
	case graph.In:
		prefix = edgeDirPrefix(v, dirIn)
	default:
		prefix = edgePrefix(v)
	}

	early := len(q.Orders) == 0
	var matched []graph.Edge
	err := scan(txn, prefix, func(_, value []byte) (bool, error) {
		if early && len(matched) >= q.Limit {
			return false, nil
		}
		e, err := decodeEdge(value)
		if err != nil {
			return false, err
		}
		if !q.MatchesLabel(e.Label) || !graph.MatchAll(q.Filters, e, graph.InlineLookup) {
			return true, nil
		}
		matched = append(matched, e)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return q.Apply(matched), nil
}

// Properties implements executor.Backend
func (s *GraphStore) Properties(ctx context.Context, id graph.ElementID, q graph.PropertyQuery) ([]graph.Property, error) {
	res, err := s.MultiProperties(ctx, []graph.ElementID{id}, q)
	if err != nil {
		return nil, err
	}
	return res[id], nil
}

// MultiProperties implements executor.Backend
func (s *GraphStore) MultiProperties(ctx context.Context, ids []graph.ElementID, q graph.PropertyQuery) (map[graph.ElementID][]graph.Property, error) {
	out := make(map[graph.ElementID][]graph.Property, len(ids))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, done := out[id]; done {
				continue
			}
			props, err := properties(txn, id, q)
			if err != nil {
				return fmt.Errorf("properties of %d: %w", id, err)
			}
			out[id] = props
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func properties(txn *badger.Txn, id graph.ElementID, q graph.PropertyQuery) ([]graph.Property, error) {
	prefix := propertyPrefix(id)
	var all []graph.Property
	err := scan(txn, prefix, func(key, value []byte) (bool, error) {
		name := string(key[len(prefix):])
		if !q.MatchesKey(name) {
			return true, nil
		}
		v, err := decodeValue(value)
		if err != nil {
			return false, fmt.Errorf("property %s: %w", name, err)
		}
		all = append(all, graph.Property{Owner: id, Key: name, Value: v})
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return q.Apply(all), nil
}

// scan visits every key with prefix in order until fn returns false.
// Keys and values passed to fn are copies.
func scan(txn *badger.Txn, prefix []byte, fn func(key, value []byte) (bool, error)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		more, err := fn(item.KeyCopy(nil), value)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}
