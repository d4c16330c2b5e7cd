package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/abray/moodfm/internal/models"
	"github.com/abray/moodfm/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newTestUserRepo(db *sql.DB) *UserRepository {
	// MinCost keeps the hashing fast; production uses the default cost.
	return &UserRepository{db: db, cost: bcrypt.MinCost}
}

func TestUserRepository(t *testing.T) {
	t.Run("Register", func(t *testing.T) {
		db := newTestDB(t)
		repo := newTestUserRepo(db)

		id, err := repo.Register("alice", "hunter2")
		if err != nil {
			t.Fatalf("expected registration to succeed, got %v", err)
		}
		if id == 0 {
			t.Error("expected a non-zero user id")
		}

		t.Run("Duplicate Username", func(t *testing.T) {
			_, err := repo.Register("alice", "another-password")
			if !errors.Is(err, shared.ErrUsernameTaken) {
				t.Errorf("expected ErrUsernameTaken, got %v", err)
			}

			var count int
			if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE username = 'alice'").Scan(&count); err != nil {
				t.Fatalf("failed to count users: %v", err)
			}
			if count != 1 {
				t.Errorf("expected exactly one row for alice, got %d", count)
			}
		})

		t.Run("Missing Fields", func(t *testing.T) {
			if _, err := repo.Register("", "pw"); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput for empty username, got %v", err)
			}
			if _, err := repo.Register("bob", ""); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput for empty password, got %v", err)
			}
		})
	})

	t.Run("Verify", func(t *testing.T) {
		db := newTestDB(t)
		repo := newTestUserRepo(db)

		id, err := repo.Register("carol", "s3cret")
		if err != nil {
			t.Fatalf("failed to register: %v", err)
		}

		t.Run("Correct Credentials", func(t *testing.T) {
			got, err := repo.Verify("carol", "s3cret")
			if err != nil {
				t.Fatalf("expected verification to succeed, got %v", err)
			}
			if got != id {
				t.Errorf("expected user id %d, got %d", id, got)
			}
		})

		t.Run("Wrong Password", func(t *testing.T) {
			if _, err := repo.Verify("carol", "wrong"); !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})

		t.Run("Unknown Username", func(t *testing.T) {
			if _, err := repo.Verify("nobody", "s3cret"); !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		db := newTestDB(t)
		repo := newTestUserRepo(db)

		id, err := repo.Register("dave", "pw12345")
		if err != nil {
			t.Fatalf("failed to register: %v", err)
		}

		user, err := repo.Get(id)
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if user.Username != "dave" {
			t.Errorf("expected username dave, got %s", user.Username)
		}

		t.Run("Missing User", func(t *testing.T) {
			if _, err := repo.Get(9999); !errors.Is(err, shared.ErrUserNotFound) {
				t.Errorf("expected ErrUserNotFound, got %v", err)
			}
		})
	})
}

func TestMoodRepository(t *testing.T) {
	db := newTestDB(t)
	users := newTestUserRepo(db)
	moods := NewMoodRepository(db)

	aliceID, err := users.Register("alice", "pw")
	if err != nil {
		t.Fatalf("failed to register alice: %v", err)
	}
	bobID, err := users.Register("bob", "pw")
	if err != nil {
		t.Fatalf("failed to register bob: %v", err)
	}

	t.Run("Append And List Round Trip", func(t *testing.T) {
		ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

		id, err := moods.Append(aliceID, models.MoodHappy, "sunny day", ts)
		if err != nil {
			t.Fatalf("failed to append entry: %v", err)
		}
		if id == 0 {
			t.Error("expected a non-zero entry id")
		}

		entries, err := moods.ListForUser(aliceID)
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}

		got := entries[0]
		if got.Mood != models.MoodHappy || got.Note != "sunny day" || !got.Timestamp.Equal(ts) {
			t.Errorf("round trip mismatch: %+v", got)
		}

		t.Run("Not Visible To Other Users", func(t *testing.T) {
			entries, err := moods.ListForUser(bobID)
			if err != nil {
				t.Fatalf("failed to list entries: %v", err)
			}
			if len(entries) != 0 {
				t.Errorf("expected bob's log to be empty, got %d entries", len(entries))
			}
		})
	})

	t.Run("Ascending Order", func(t *testing.T) {
		base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

		// Insert out of chronological order on purpose.
		for _, e := range []struct {
			mood models.Mood
			ts   time.Time
		}{
			{models.MoodSad, base.Add(2 * time.Hour)},
			{models.MoodCalm, base},
			{models.MoodStressed, base.Add(time.Hour)},
		} {
			if _, err := moods.Append(bobID, e.mood, "", e.ts); err != nil {
				t.Fatalf("failed to append: %v", err)
			}
		}

		entries, err := moods.ListForUser(bobID)
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}

		want := []models.Mood{models.MoodCalm, models.MoodStressed, models.MoodSad}
		if len(entries) != len(want) {
			t.Fatalf("expected %d entries, got %d", len(want), len(entries))
		}
		for i, mood := range want {
			if entries[i].Mood != mood {
				t.Errorf("position %d: expected %s, got %s", i, mood, entries[i].Mood)
			}
		}
	})

	t.Run("Recent Is Bounded And Descending", func(t *testing.T) {
		entries, err := moods.RecentForUser(bobID, 2)
		if err != nil {
			t.Fatalf("failed to list recent entries: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Mood != models.MoodSad || entries[1].Mood != models.MoodStressed {
			t.Errorf("expected newest first, got %s then %s", entries[0].Mood, entries[1].Mood)
		}
	})

	t.Run("Zero Timestamp Is Stamped", func(t *testing.T) {
		before := time.Now().UTC().Add(-time.Second)
		if _, err := moods.Append(aliceID, models.MoodEnergetic, "", time.Time{}); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
		after := time.Now().UTC().Add(time.Second)

		entries, err := moods.RecentForUser(aliceID, 1)
		if err != nil {
			t.Fatalf("failed to list recent entries: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		ts := entries[0].Timestamp
		if ts.Before(before) || ts.After(after) {
			t.Errorf("stamped timestamp %v outside expected window", ts)
		}
	})

	t.Run("Empty Mood Rejected", func(t *testing.T) {
		if _, err := moods.Append(aliceID, "", "", time.Time{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Missing User Rejected By Foreign Key", func(t *testing.T) {
		if _, err := moods.Append(424242, models.MoodHappy, "", time.Time{}); err == nil {
			t.Error("expected foreign key violation for unknown user")
		}
	})
}
