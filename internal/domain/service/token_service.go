package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Token verification failures. Callers resolving a request context collapse all of them into anonymous.
var (
	ErrTokenMissing          = errors.New("token missing")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// ClaimEmail is the optional denormalized email claim.
const ClaimEmail = "email"

// Claims is the verified content of a bearer token.
type Claims struct {
	AccountID uuid.UUID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any // Non-registered claims other than email.
}

// TokenService issues and verifies signed, time-bounded bearer tokens.
type TokenService interface {
	// Issue signs a token bound to accountID. Extra claims are embedded as-is but cannot
	// override registered claims. A non-positive ttl falls back to the configured lifetime.
	Issue(accountID uuid.UUID, extraClaims map[string]any, ttl time.Duration) (string, error)

	// Verify checks signature and expiry and returns the bound claims.
	Verify(tokenString string) (*Claims, error)
}
