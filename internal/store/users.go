package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a valid bcrypt digest compared against when Authenticate is
// called with an unknown email, so that path costs roughly the same as a real
// comparison and the response cannot be used to probe which emails exist.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// User represents a row in the users table. PasswordHash is only populated
// inside Authenticate and never leaves the store.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// UserStore owns user records and password hashing.
type UserStore struct {
	db   *sqlx.DB
	cost int
}

// NewUserStore creates a UserStore hashing passwords at the given bcrypt cost.
// Cost 0 falls back to bcrypt.DefaultCost.
func NewUserStore(db *sqlx.DB, cost int) *UserStore {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserStore{db: db, cost: cost}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *UserStore) q(query string) string { return s.db.Rebind(query) }

// Create normalizes and validates the email, hashes the raw password, and
// inserts the record with role "user". The unique index on email turns a
// concurrent duplicate signup into ErrDuplicateEmail for exactly one loser.
func (s *UserStore) Create(ctx context.Context, email, rawPassword string) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateCredentials(email, rawPassword); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), id, email, string(hash), "user", now, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return &User{ID: id, Email: email, Role: "user", CreatedAt: now, UpdatedAt: now}, nil
}

// Authenticate looks up the user by normalized email and compares the raw
// password against the stored hash. Unknown email and wrong password both
// return ErrInvalidCredentials. On success the returned record has the hash
// blanked out.
func (s *UserStore) Authenticate(ctx context.Context, email, rawPassword string) (*User, error) {
	email = NormalizeEmail(email)

	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE email = ?`), email)
	if errors.Is(err, sql.ErrNoRows) {
		// Burn a comparison so the unknown-email path takes as long as a
		// wrong password.
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(rawPassword))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(rawPassword)); err != nil {
		return nil, ErrInvalidCredentials
	}

	u.PasswordHash = ""
	return &u, nil
}

// GetByID returns the user matching id without the password hash, or ErrNotFound.
func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`
		SELECT id, email, role, created_at, updated_at FROM users WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns the user matching the normalized email without the
// password hash, or ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`
		SELECT id, email, role, created_at, updated_at FROM users WHERE email = ?
	`), NormalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListAll returns all users ordered by email.
func (s *UserStore) ListAll(ctx context.Context) ([]*User, error) {
	var users []*User
	err := s.db.SelectContext(ctx, &users, `
		SELECT id, email, role, created_at, updated_at FROM users ORDER BY email ASC
	`)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateRole sets the role for the given user and returns the updated record.
func (s *UserStore) UpdateRole(ctx context.Context, id, role string) (*User, error) {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`),
		role, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, id)
}
