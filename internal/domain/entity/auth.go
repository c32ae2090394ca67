package entity

import "github.com/google/uuid"

// AuthContext is the request-scoped authentication state derived from the bearer token.
// The zero value is the anonymous context.
type AuthContext struct {
	AccountID     uuid.UUID
	Email         string
	authenticated bool
}

// Anonymous returns the context assigned when no valid identity could be established.
func Anonymous() AuthContext {
	return AuthContext{}
}

// Authenticated returns a context bound to the given account.
func Authenticated(accountID uuid.UUID, email string) AuthContext {
	return AuthContext{
		AccountID:     accountID,
		Email:         email,
		authenticated: true,
	}
}

// IsAuthenticated reports whether the context carries a verified identity.
func (a AuthContext) IsAuthenticated() bool {
	return a.authenticated && a.AccountID != uuid.Nil
}
