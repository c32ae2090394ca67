// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"identity/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for account persistence.
// This allows the application layer to handle specific outcomes without depending on database-specific errors.
var (
	// ErrAccountNotFound is returned when no account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned when a create or update would make two accounts share an email.
	ErrDuplicateEmail = errors.New("email already registered")
)

// AccountRepository is the account store the identity operations depend on.
//
// Implementations must enforce email uniqueness themselves and apply each
// mutation atomically with respect to it; callers add no locking of their own.
// Emails are passed in canonical form (entity.NormalizeEmail).
type AccountRepository interface {
	// Create persists a new account and returns it with its store-assigned ID.
	Create(ctx context.Context, email, passwordHash string) (*entity.Account, error)

	// FindByEmail retrieves a single account by its email address.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// FindByID retrieves a single account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// UpdateByID applies a partial update and returns the account as stored after the update.
	UpdateByID(ctx context.Context, id uuid.UUID, update entity.AccountUpdate) (*entity.Account, error)

	// DeleteByID removes the account and reports whether a record was actually removed.
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)

	// List returns accounts ordered by creation time.
	List(ctx context.Context, limit, offset int) ([]*entity.Account, error)
}
