// package models defines the data model for the mood tracking web service
package models

import (
	"time"
)

// Mood is a short categorical label a user assigns to a log entry. The five
// known values carry a fixed ordinal used for charting; anything else is
// accepted as free text and charts at ordinal zero.
type Mood string

const (
	MoodHappy     Mood = "happy"
	MoodEnergetic Mood = "energetic"
	MoodCalm      Mood = "calm"
	MoodStressed  Mood = "stressed"
	MoodSad       Mood = "sad"
)

// KnownMoods lists the fixed mood set in descending ordinal order, for form
// rendering and validation hints.
var KnownMoods = []Mood{MoodHappy, MoodEnergetic, MoodCalm, MoodStressed, MoodSad}

var moodOrdinals = map[Mood]int{
	MoodHappy:     5,
	MoodEnergetic: 4,
	MoodCalm:      3,
	MoodStressed:  2,
	MoodSad:       1,
}

// Ordinal returns the fixed integer ranking of a mood for the time-series
// chart. Unrecognized moods rank zero; the resulting dip in the chart is
// intentional and tells the user the value was not one of the known five.
func (m Mood) Ordinal() int {
	return moodOrdinals[m]
}

// Known reports whether the mood belongs to the fixed set.
func (m Mood) Known() bool {
	_, ok := moodOrdinals[m]
	return ok
}

func (m Mood) String() string {
	return string(m)
}

// User represents a registered account. Rows are created on registration and
// never deleted; the password hash never leaves the repository layer except
// for verification.
type User struct {
	ID        int64
	Username  string
	PWHash    string
	CreatedAt time.Time
}

// MoodEntry is a single append-only row in a user's mood log.
type MoodEntry struct {
	ID        int64
	UserID    int64
	Mood      Mood
	Note      string
	Timestamp time.Time
}

// Track represents one playlist suggestion rendered on the playlist page.
type Track struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	URL    string `json:"url"`
}
