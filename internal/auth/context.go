// ABOUTME: Authentication context for tracking identity through request handlers
// ABOUTME: Provides WithPrincipal/FromContext for propagating the caller via context

package auth

import (
	"context"
)

// Principal is the identity resolved from a valid API key.
type Principal struct {
	UserID         string
	OrganizationID string
	KeyID          string
}

// principalContextKey is the key type for storing a Principal in context.Context.
type principalContextKey struct{}

// WithPrincipal returns a new context with the Principal attached.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// FromContext retrieves the Principal from the context.
// The boolean is false if no principal is present.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
