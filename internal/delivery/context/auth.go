package context

import (
	"context"

	"identity/internal/domain/entity"
)

// KeyAuth is the key for storing the resolved authentication context.
const KeyAuth ContextKey = "auth"

// WithAuth returns a new context carrying the request's authentication context.
func WithAuth(ctx context.Context, auth entity.AuthContext) context.Context {
	return context.WithValue(ctx, KeyAuth, auth)
}

// GetAuth returns the authentication context stored by the auth middleware.
// A context that never passed through the middleware is anonymous.
func GetAuth(ctx context.Context) entity.AuthContext {
	if auth, ok := ctx.Value(KeyAuth).(entity.AuthContext); ok {
		return auth
	}

	return entity.Anonymous()
}
