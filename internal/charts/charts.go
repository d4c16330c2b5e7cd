// package charts derives the dashboard projections from a user's mood log.
//
// Both projections are pure functions over the entries returned by
// [repositories.MoodRepository.ListForUser] and produce parallel slices
// ready to hand to the chart script as JSON.
package charts

import (
	"time"

	"github.com/abray/moodfm/internal/models"
)

// labelLayout is the display format for time-series labels.
const labelLayout = time.RFC3339

// TimeSeries maps entries, in the order given, to parallel label and value
// slices for the line chart. Values come from the fixed ordinal scale;
// unknown moods chart at zero.
func TimeSeries(entries []models.MoodEntry) ([]string, []int) {
	labels := make([]string, 0, len(entries))
	values := make([]int, 0, len(entries))

	for _, entry := range entries {
		labels = append(labels, entry.Timestamp.UTC().Format(labelLayout))
		values = append(values, entry.Mood.Ordinal())
	}

	return labels, values
}

// Frequency groups entries by mood string and counts occurrences for the pie
// chart. Labels appear in order of first occurrence and counts sum to
// len(entries).
func Frequency(entries []models.MoodEntry) ([]string, []int) {
	labels := []string{}
	counts := []int{}
	index := map[models.Mood]int{}

	for _, entry := range entries {
		i, seen := index[entry.Mood]
		if !seen {
			index[entry.Mood] = len(labels)
			labels = append(labels, entry.Mood.String())
			counts = append(counts, 1)
			continue
		}
		counts[i]++
	}

	return labels, counts
}
