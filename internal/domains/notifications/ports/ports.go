package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/domain"
)

var (
	// ErrPetGone signals the pet referenced by an event no longer exists.
	ErrPetGone = errors.New("pet no longer exists")
	// ErrLookupUnavailable signals a lookup failed for a reason that may clear on retry.
	ErrLookupUnavailable = errors.New("lookup unavailable")
)

// Contact is how the pet owner can be reached.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// Lookups resolves the display data notifications are rendered with.
type Lookups interface {
	// PetName returns ErrPetGone when the pet does not exist.
	PetName(ctx context.Context, petID string) (string, error)
	OwnerContact(ctx context.Context, ownerID string) (Contact, error)
}

// Pusher delivers inbox changes to a user's connected clients. It must not block.
type Pusher interface {
	Push(userID string, snapshot domain.Snapshot)
}
