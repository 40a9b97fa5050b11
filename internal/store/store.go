package store

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when a user with the same normalized
	// email already exists.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrDuplicateLink is returned when the owner already has a link with
	// the same URL.
	ErrDuplicateLink = errors.New("url already exists")

	// ErrInvalidCredentials is returned by Authenticate for both an unknown
	// email and a wrong password. The two cases are deliberately not
	// distinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// isUniqueConstraintError checks whether err indicates a unique constraint violation.
// Works across SQLite, PostgreSQL, and MySQL.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}
