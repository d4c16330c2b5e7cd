// package repositories provides the persistence layer for users and mood
// entries.
//
// Each repository owns its table and exposes the small set of operations the
// handlers need. All timestamps are stored as RFC 3339 UTC strings so
// lexicographic and chronological order agree.
package repositories

import "time"

// timeLayout is the storage format for timestamps.
const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
