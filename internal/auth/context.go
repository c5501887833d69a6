package auth

import (
	"context"

	"github.com/contentforge/contentforge/internal/user"
)

type userContextKey struct{}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext returns the authenticated user, or nil when the request
// was not authenticated.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(userContextKey{}).(*user.User)
	return u
}
