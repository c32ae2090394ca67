// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is a single registered identity.
type Account struct {
	ID           uuid.UUID // Assigned by the store at creation, immutable afterwards.
	Email        string    // Canonical (see NormalizeEmail) login identifier, unique across accounts.
	PasswordHash string    `json:"-"` // Hasher output. Never the plaintext, never exposed.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountUpdate carries the mutable fields of an account.
// A nil field is left untouched; a non-nil field replaces the stored value wholesale.
type AccountUpdate struct {
	Email        *string
	PasswordHash *string
}

// IsEmpty reports whether the update would change nothing.
func (u AccountUpdate) IsEmpty() bool {
	return u.Email == nil && u.PasswordHash == nil
}

// NormalizeEmail canonicalizes an email for storage and lookup: surrounding
// whitespace is trimmed and the whole address is lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
