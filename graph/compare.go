package graph

import (
	"fmt"
	"strings"
	"time"
)

// CompareValues compares two property values and returns:
//
//	-1 if left < right
//	 0 if left == right
//	 1 if left > right
//
// Supported types are the ones the storage layer can encode: string, int,
// int64, uint64, float64, bool, time.Time and ElementID. Integers and floats
// compare numerically across types. nil sorts before any non-nil value.
func CompareValues(left, right any) int {
	if left == nil && right == nil {
		return 0
	}
	if left == nil {
		return -1
	}
	if right == nil {
		return 1
	}

	if id, ok := left.(ElementID); ok {
		left = uint64(id)
	}
	if id, ok := right.(ElementID); ok {
		right = uint64(id)
	}

	switch l := left.(type) {
	case int:
		return compareNumeric(float64(l), right)
	case int64:
		if r, ok := right.(int64); ok {
			return compareInt64s(l, r)
		}
		return compareNumeric(float64(l), right)
	case uint64:
		if r, ok := right.(uint64); ok {
			return compareUint64s(l, r)
		}
		return compareNumeric(float64(l), right)
	case float64:
		return compareNumeric(l, right)
	case string:
		if r, ok := right.(string); ok {
			return strings.Compare(l, r)
		}
		// String vs non-string: type mismatch
		return -1
	case bool:
		if r, ok := right.(bool); ok {
			if !l && r {
				return -1
			} else if l && !r {
				return 1
			}
			return 0
		}
		return -1
	case time.Time:
		if r, ok := right.(time.Time); ok {
			if l.Before(r) {
				return -1
			} else if l.After(r) {
				return 1
			}
			return 0
		}
		return -1
	}

	// Fall back to string comparison for unknown types
	return strings.Compare(fmt.Sprintf("%v", left), fmt.Sprintf("%v", right))
}

// ValuesEqual checks if two values are equal using CompareValues semantics.
// Values of unrelated types are never equal.
func ValuesEqual(a, b any) bool {
	if !comparableTypes(a, b) {
		return false
	}
	return CompareValues(a, b) == 0
}

// comparableTypes reports whether CompareValues gives a meaningful order
func comparableTypes(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if isNumeric(a) && isNumeric(b) {
		return true
	}
	switch a.(type) {
	case string:
		_, ok := b.(string)
		return ok
	case bool:
		_, ok := b.(bool)
		return ok
	case time.Time:
		_, ok := b.(time.Time)
		return ok
	}
	return fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int64, uint64, float64, ElementID:
		return true
	}
	return false
}

// compareNumeric compares a float64 with another numeric value
func compareNumeric(left float64, right any) int {
	switch r := right.(type) {
	case int:
		return compareFloats(left, float64(r))
	case int64:
		return compareFloats(left, float64(r))
	case uint64:
		return compareFloats(left, float64(r))
	case float64:
		return compareFloats(left, r)
	}
	// Non-numeric: type mismatch
	return -1
}

func compareInt64s(a, b int64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func compareUint64s(a, b uint64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func compareFloats(a, b float64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}
