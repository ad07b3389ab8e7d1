package auth

import (
	"context"

	"github.com/pkordes/rental-api/internal/domain"
)

type callerKey struct{}

// WithCaller returns a copy of ctx carrying the authenticated caller.
func WithCaller(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, callerKey{}, &u)
}

// CallerFromContext returns the authenticated caller, or nil for an
// anonymous request.
func CallerFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(callerKey{}).(*domain.User)
	return u
}
