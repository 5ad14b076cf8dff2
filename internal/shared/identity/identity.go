// Package identity carries the signed-in principal through request contexts.
package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrUnauthenticated is returned when an operation requires a signed-in user and none is present.
var ErrUnauthenticated = errors.New("unauthenticated")

// Principal is the identity resolved by the identity provider for the current request.
type Principal struct {
	UserID string
	Email  string
}

// Anonymous reports whether the principal carries no user id.
func (p Principal) Anonymous() bool {
	return strings.TrimSpace(p.UserID) == ""
}

type principalKey struct{}

// WithPrincipal stores the principal on the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored on the context, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.Anonymous() {
		return Principal{}, false
	}
	return p, true
}

// Require returns the principal or ErrUnauthenticated.
func Require(ctx context.Context) (Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return Principal{}, ErrUnauthenticated
	}
	return p, nil
}
