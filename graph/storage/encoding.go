package storage

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/wbrown/janus-graph/graph"
)

// valueType tags an encoded property value
type valueType byte

const (
	typeString valueType = iota
	typeInt
	typeFloat
	typeBool
	typeTime
	typeBytes
	typeID
)

// Key prefixes. IDs are big-endian so keys sort numerically.
const (
	prefixVertex   byte = 'v'
	prefixProperty byte = 'p'
	prefixEdge     byte = 'e'
)

// Edge direction markers within an adjacency key. Out sorts before In, so
// a Both scan lists out-edges first.
const (
	dirOut byte = 0
	dirIn  byte = 1
)

// encodeValue serializes a property value as a type byte and payload
func encodeValue(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return append([]byte{byte(typeString)}, val...), nil
	case int:
		return encodeUint(typeInt, uint64(val)), nil
	case int32:
		return encodeUint(typeInt, uint64(val)), nil
	case int64:
		return encodeUint(typeInt, uint64(val)), nil
	case float32:
		return encodeUint(typeFloat, math.Float64bits(float64(val))), nil
	case float64:
		return encodeUint(typeFloat, math.Float64bits(val)), nil
	case bool:
		if val {
			return []byte{byte(typeBool), 1}, nil
		}
		return []byte{byte(typeBool), 0}, nil
	case time.Time:
		return encodeUint(typeTime, uint64(val.UnixNano())), nil
	case []byte:
		return append([]byte{byte(typeBytes)}, val...), nil
	case graph.ElementID:
		return encodeUint(typeID, uint64(val)), nil
	default:
		return nil, fmt.Errorf("cannot encode value type: %T", v)
	}
}

func encodeUint(t valueType, n uint64) []byte {
	buf := make([]byte, 9)
	buf[0] = byte(t)
	binary.BigEndian.PutUint64(buf[1:], n)
	return buf
}

// decodeValue reverses encodeValue. Integers decode as int64.
func decodeValue(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty value")
	}
	t, payload := valueType(data[0]), data[1:]
	switch t {
	case typeString:
		return string(payload), nil
	case typeBytes:
		return append([]byte(nil), payload...), nil
	case typeBool:
		if len(payload) != 1 {
			return nil, fmt.Errorf("bool value must be 1 byte, got %d", len(payload))
		}
		return payload[0] != 0, nil
	case typeInt, typeFloat, typeTime, typeID:
		if len(payload) != 8 {
			return nil, fmt.Errorf("value type %d must be 8 bytes, got %d", t, len(payload))
		}
		n := binary.BigEndian.Uint64(payload)
		switch t {
		case typeInt:
			return int64(n), nil
		case typeFloat:
			return math.Float64frombits(n), nil
		case typeTime:
			return time.Unix(0, int64(n)), nil
		default:
			return graph.ElementID(n), nil
		}
	default:
		return nil, fmt.Errorf("unknown value type: %d", t)
	}
}

func appendID(buf []byte, id graph.ElementID) []byte {
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}

func vertexKey(id graph.ElementID) []byte {
	return appendID([]byte{prefixVertex}, id)
}

func propertyPrefix(id graph.ElementID) []byte {
	return appendID([]byte{prefixProperty}, id)
}

func propertyKey(id graph.ElementID, key string) []byte {
	return append(propertyPrefix(id), key...)
}

func edgePrefix(v graph.ElementID) []byte {
	return appendID([]byte{prefixEdge}, v)
}

func edgeDirPrefix(v graph.ElementID, dir byte) []byte {
	return append(edgePrefix(v), dir)
}

func edgeKey(v graph.ElementID, dir byte, edge graph.ElementID) []byte {
	return appendID(edgeDirPrefix(v, dir), edge)
}

// encodeEdge serializes an edge record:
// label | outV | inV | property count | (key | value)*
// with uvarint lengths before every variable-size field.
func encodeEdge(e graph.Edge) ([]byte, error) {
	buf := binary.AppendUvarint(nil, uint64(len(e.Label)))
	buf = append(buf, e.Label...)
	buf = appendID(buf, e.ID)
	buf = appendID(buf, e.OutV)
	buf = appendID(buf, e.InV)
	buf = binary.AppendUvarint(buf, uint64(len(e.Properties)))
	for _, p := range e.Properties {
		v, err := encodeValue(p.Value)
		if err != nil {
			return nil, fmt.Errorf("edge %d property %s: %w", e.ID, p.Key, err)
		}
		buf = binary.AppendUvarint(buf, uint64(len(p.Key)))
		buf = append(buf, p.Key...)
		buf = binary.AppendUvarint(buf, uint64(len(v)))
		buf = append(buf, v...)
	}
	return buf, nil
}

func decodeEdge(data []byte) (graph.Edge, error) {
	r := &reader{data: data}
	var e graph.Edge
	e.Label = string(r.bytes())
	e.ID = graph.ElementID(r.uint64())
	e.OutV = graph.ElementID(r.uint64())
	e.InV = graph.ElementID(r.uint64())
	n := r.uvarint()
	for i := uint64(0); i < n && r.err == nil; i++ {
		key := string(r.bytes())
		raw := r.bytes()
		if r.err != nil {
			break
		}
		v, err := decodeValue(raw)
		if err != nil {
			return graph.Edge{}, fmt.Errorf("edge %d property %s: %w", e.ID, key, err)
		}
		e.Properties = append(e.Properties, graph.Property{Owner: e.ID, Key: key, Value: v})
	}
	if r.err != nil {
		return graph.Edge{}, fmt.Errorf("decode edge: %w", r.err)
	}
	return e, nil
}

// reader walks an encoded record, remembering the first error
type reader struct {
	data []byte
	err  error
}

var errShort = fmt.Errorf("record truncated")

func (r *reader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	n, size := binary.Uvarint(r.data)
	if size <= 0 {
		r.err = errShort
		return 0
	}
	r.data = r.data[size:]
	return n
}

func (r *reader) uint64() uint64 {
	if r.err != nil {
		return 0
	}
	if len(r.data) < 8 {
		r.err = errShort
		return 0
	}
	n := binary.BigEndian.Uint64(r.data)
	r.data = r.data[8:]
	return n
}

func (r *reader) bytes() []byte {
	n := r.uvarint()
	if r.err != nil {
		return nil
	}
	if uint64(len(r.data)) < n {
		r.err = errShort
		return nil
	}
	b := r.data[:n]
	r.data = r.data[n:]
	return b
}
