package utils

import (
	"time"
)

func FormatEpoch(millis int64) string {
	return time.UnixMilli(millis).
		UTC().
		Format(time.RFC3339)
}

func NowUTC() int64 {
	return time.Now().
		UTC().
		UnixMilli()
}

// BoolToInt maps the tombstone flag to its stored 0/1 form.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
