package auth

import (
	"context"

	"go-shop-manager/internal/apperr"
)

// Caller is the authenticated identity an operation runs on behalf of.
type Caller struct {
	UserID uint
	Role   string
}

type callerKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller stored in ctx, or ErrUnauthenticated.
func CallerFrom(ctx context.Context) (Caller, error) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	if !ok || c.UserID == 0 {
		return Caller{}, apperr.ErrUnauthenticated
	}
	return c, nil
}
