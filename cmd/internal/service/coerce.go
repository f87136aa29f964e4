package service

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// coerceMillis reads a millisecond timestamp out of a loosely typed JSON
// value. Anything that is not a finite number within int64 range, or a
// string holding one, yields fallback.
func coerceMillis(v any, fallback int64) int64 {
	switch val := v.(type) {
	case nil, bool:
		return fallback
	case string:
		v = strings.TrimSpace(val)
		if v == "" {
			return fallback
		}
	}

	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return fallback
	}
	return int64(f)
}

// ParseSince reads the since query parameter, absent or non-numeric input
// means a full sync.
func ParseSince(raw string) int64 {
	return coerceMillis(raw, 0)
}

// coerceDeleted accepts booleans, 0/1 style numbers and "true"/"1" strings.
// Everything else is treated as not deleted.
func coerceDeleted(v any) bool {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) {
			return false
		}
	case string:
		v = strings.TrimSpace(val)
	}

	b, err := cast.ToBoolE(v)
	return err == nil && b
}
