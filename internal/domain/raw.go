package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// RawRecord is one source record before normalization. Values are primitives
// (string, float64, bool) or nil; keys may be missing.
type RawRecord map[string]any

// Get returns the value stored under key and whether the key was present.
func (r RawRecord) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[key]
	return v, ok
}

// String returns the value under key as text, "" when absent.
func (r RawRecord) String(key string) string {
	v, _ := r.Get(key)
	return Text(v)
}

// Number is an optional float: Valid is false when the value was absent or
// could not be parsed, so a parsed zero stays distinguishable from "missing".
type Number struct {
	Value float64
	Valid bool
}

func Some(v float64) Number { return Number{Value: v, Valid: true} }

// Truthy reports whether v would pass a loose boolean check: nil, "", false,
// zero and NaN are false, everything else is true.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0 && !math.IsNaN(float64(x))
	case int:
		return x != 0
	case int64:
		return x != 0
	}
	return true
}

// Text converts a primitive to its display form. Whole floats print without
// a fractional part.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return fmt.Sprint(v)
}

// Primitive folds driver and decoder values into the shapes RawRecord holds.
func Primitive(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	}
	return v
}
