package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var ErrNotFound = errors.New("pet not found")

// Repository persists pet listings. Lists are ordered newest first.
type Repository interface {
	Save(ctx context.Context, pet *domain.Pet) (*projection.Projection[*domain.Pet], error)
	GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Pet], error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, criteria domain.Criteria) ([]*projection.Projection[*domain.Pet], error)
	ListByOwner(ctx context.Context, ownerID string) ([]*projection.Projection[*domain.Pet], error)
}

// RequestPurger removes the adoption requests that reference a pet.
// The adoption request store satisfies it.
type RequestPurger interface {
	DeleteByPet(ctx context.Context, petID string) (int, error)
}
