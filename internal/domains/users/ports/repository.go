package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
)

var ErrNotFound = errors.New("profile not found")

// ProfileRepository persists user profiles keyed by user id.
type ProfileRepository interface {
	Save(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
	GetByID(ctx context.Context, userID string) (*domain.Profile, error)
}
