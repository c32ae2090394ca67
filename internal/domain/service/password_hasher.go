// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

import "errors"

// ErrMalformedHash is returned by PasswordHasher.Verify when the stored hash cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// ErrPasswordTooLong is returned by PasswordHasher.Hash when the algorithm cannot take the whole input.
var ErrPasswordTooLong = errors.New("password exceeds the maximum supported length")

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	// Two calls with the same input return different strings that both verify.
	Hash(password string) (string, error)

	// Verify compares a plaintext password with a stored hash in constant time.
	// A hash that cannot be parsed yields false and ErrMalformedHash; it never verifies.
	Verify(password, hash string) (bool, error)
}
