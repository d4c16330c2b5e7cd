package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/abray/moodfm/internal/models"
	"github.com/abray/moodfm/internal/shared"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the credential store: it persists username/password-hash
// pairs and is the only code that touches bcrypt.
type UserRepository struct {
	db   *sql.DB
	cost int
}

// NewUserRepository creates a new [UserRepository] with the given database
// connection, hashing passwords at the default bcrypt cost.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db, cost: bcrypt.DefaultCost}
}

// Register hashes the password and inserts a new user row, returning the new
// user id. A duplicate username surfaces as [shared.ErrUsernameTaken]; the
// UNIQUE constraint makes the check-and-insert atomic under concurrent
// registrations.
func (r *UserRepository) Register(username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, fmt.Errorf("username and password are required: %w", shared.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := r.db.Exec(
		"INSERT INTO users (username, pw_hash) VALUES (?, ?)",
		username, string(hash),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%q: %w", username, shared.ErrUsernameTaken)
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted user id: %w", err)
	}

	return id, nil
}

// Verify looks up the user by username and compares the password against the
// stored hash. An unknown username and a wrong password both return
// [shared.ErrInvalidCredentials] so callers cannot distinguish the two.
// bcrypt's comparison is constant-time.
func (r *UserRepository) Verify(username, password string) (int64, error) {
	var (
		id     int64
		pwHash string
	)

	err := r.db.QueryRow("SELECT id, pw_hash FROM users WHERE username = ?", username).Scan(&id, &pwHash)
	if err == sql.ErrNoRows {
		return 0, shared.ErrInvalidCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(pwHash), []byte(password)) != nil {
		return 0, shared.ErrInvalidCredentials
	}

	return id, nil
}

// Get retrieves a user by id. Session cookies carry only the id, so every
// authenticated request resolves it here.
func (r *UserRepository) Get(id int64) (*models.User, error) {
	var (
		user      models.User
		createdAt string
	)

	err := r.db.QueryRow(
		"SELECT id, username, pw_hash, created_at FROM users WHERE id = ?", id,
	).Scan(&user.ID, &user.Username, &user.PWHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("id %d: %w", id, shared.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if ts, err := parseTime(createdAt); err == nil {
		user.CreatedAt = ts
	}

	return &user, nil
}

// GetByUsername retrieves a user by username, for CLI lookups.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var id int64
	err := r.db.QueryRow("SELECT id FROM users WHERE username = ?", username).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%q: %w", username, shared.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return r.Get(id)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
