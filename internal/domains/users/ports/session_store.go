package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore abstracts session/token persistence.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	// Lookup returns ErrSessionNotFound for unknown or expired tokens.
	Lookup(ctx context.Context, token string) (*domain.Session, error)
	// Delete removes every session of userID.
	Delete(ctx context.Context, userID string) error
	// Revoke removes the single session identified by token.
	Revoke(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) (int, error)
}

// SessionHook is notified when a user signs in or out. The notification dispatcher
// uses it to start and stop a user's subscriptions.
type SessionHook interface {
	Activate(ctx context.Context, userID string) error
	Deactivate(userID string)
}
