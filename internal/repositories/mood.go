package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/abray/moodfm/internal/models"
	"github.com/abray/moodfm/internal/shared"
)

// MoodRepository persists the append-only mood log. Entries are never
// mutated or deleted.
type MoodRepository struct {
	db *sql.DB
}

// NewMoodRepository creates a new [MoodRepository] with the given database
// connection.
func NewMoodRepository(db *sql.DB) *MoodRepository {
	return &MoodRepository{db: db}
}

// Append inserts a mood entry for the user and returns the new entry id.
// A zero timestamp is stamped with the current UTC time. The note may be
// empty.
func (r *MoodRepository) Append(userID int64, mood models.Mood, note string, ts time.Time) (int64, error) {
	if mood == "" {
		return 0, fmt.Errorf("mood is required: %w", shared.ErrInvalidInput)
	}
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	res, err := r.db.Exec(
		"INSERT INTO moods (user_id, mood, note, timestamp) VALUES (?, ?, ?, ?)",
		userID, mood.String(), note, formatTime(ts),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert mood entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted entry id: %w", err)
	}

	return id, nil
}

// ListForUser retrieves all mood entries for a user in ascending timestamp
// order. Users with no entries get an empty slice, not an error.
func (r *MoodRepository) ListForUser(userID int64) ([]models.MoodEntry, error) {
	query := `
		SELECT id, user_id, mood, note, timestamp
		FROM moods
		WHERE user_id = ?
		ORDER BY timestamp ASC, id ASC
	`
	return r.queryEntries(query, userID)
}

// RecentForUser retrieves up to limit entries for a user in descending
// timestamp order.
func (r *MoodRepository) RecentForUser(userID int64, limit int) ([]models.MoodEntry, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT id, user_id, mood, note, timestamp
		FROM moods
		WHERE user_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`
	return r.queryEntries(query, userID, limit)
}

func (r *MoodRepository) queryEntries(query string, args ...any) ([]models.MoodEntry, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mood entries: %w", err)
	}
	defer rows.Close()

	entries := []models.MoodEntry{}
	for rows.Next() {
		var (
			entry models.MoodEntry
			mood  string
			ts    string
		)

		if err := rows.Scan(&entry.ID, &entry.UserID, &mood, &entry.Note, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}

		entry.Mood = models.Mood(mood)
		entry.Timestamp, err = parseTime(ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse entry timestamp %q: %w", ts, err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}
