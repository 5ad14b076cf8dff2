package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
)

var (
	ErrNotFound = errors.New("adoption request not found")
	// ErrDuplicate reports a violation of the unique (pet, requester) key.
	ErrDuplicate = errors.New("adoption request already exists for pet and requester")
	// ErrStatusConflict reports a compare-and-set whose expected status no longer holds.
	ErrStatusConflict = errors.New("adoption request status changed concurrently")
	// ErrUnavailable wraps store failures that may succeed on retry.
	ErrUnavailable = errors.New("adoption request store unavailable")
)

// Repository persists adoption requests. Lists are ordered newest first.
// Every committed insert, update and delete is published as a change event.
type Repository interface {
	// Insert stores a new request, returning ErrDuplicate if (PetID, RequesterID) exists.
	Insert(ctx context.Context, request *domain.Request) (*domain.Request, error)
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	FindByPetAndRequester(ctx context.Context, petID, requesterID string) (*domain.Request, error)
	// CompareAndSetStatus changes the status only while it still equals from.
	CompareAndSetStatus(ctx context.Context, id string, from, to domain.Status, at time.Time) (*domain.Request, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Request, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*domain.Request, error)
	ListByPet(ctx context.Context, petID string) ([]*domain.Request, error)
	// DeleteByPet removes every request for the pet and reports how many went.
	DeleteByPet(ctx context.Context, petID string) (int, error)
}
