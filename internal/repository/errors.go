// Package repository implements persistence over database/sql. Sentinel
// values defined here let services distinguish failure cases without parsing
// driver errors; handlers translate them into the caller-visible taxonomy.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a referenced row does not exist (or is
// soft-deleted where the query excludes deleted rows).
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail and ErrDuplicateUsername surface unique-constraint
// violations on the users table. Handlers map them to HTTP 409.
var (
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
)

// isDuplicateKey detects MySQL error 1062 without importing driver internals.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
