package auth

import (
	"context"

	"github.com/penblog/penblog/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityContextKey contextKey = "identity"

// ContextWithIdentity adds the caller identity to the context.
func ContextWithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the caller identity.
// Returns nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *model.Identity {
	identity, ok := ctx.Value(identityContextKey).(*model.Identity)
	if !ok {
		return nil
	}
	return identity
}

// UserIDFromContext returns the caller user ID or "" when anonymous.
func UserIDFromContext(ctx context.Context) string {
	if identity := IdentityFromContext(ctx); identity != nil {
		return identity.UserID
	}
	return ""
}
