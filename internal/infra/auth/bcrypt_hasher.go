// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"identity/config"
	"identity/internal/domain/service"
	"identity/internal/errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptMaxPasswordBytes is the input length bcrypt actually consumes.
const bcryptMaxPasswordBytes = 72

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt hasher using config.DefaultBcryptCost.
func NewBcryptHasher() service.PasswordHasher {
	return NewBcryptHasherWithCost(config.DefaultBcryptCost)
}

// NewBcryptHasherWithCost returns a bcrypt hasher with the given work factor,
// clamped to the range bcrypt accepts. Zero selects config.DefaultBcryptCost.
func NewBcryptHasherWithCost(cost int) service.PasswordHasher {
	if cost == 0 {
		cost = config.DefaultBcryptCost
	}
	cost = max(cost, bcrypt.MinCost)
	cost = min(cost, bcrypt.MaxCost)

	return &bcryptHasher{cost: cost}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", errors.WithStack(service.ErrPasswordTooLong)
		}

		return "", errors.Wrap(err, "bcrypt hash failed")
	}

	return string(bytes), nil
}

// Verify compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Verify(password, hash string) (bool, error) {
	// bcrypt ignores everything past 72 bytes; such a password was never hashable.
	if len(password) > bcryptMaxPasswordBytes {
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, errors.Wrapf(service.ErrMalformedHash, "bcrypt: %v", err)
	}
}
