package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

var _ ports.ProfileRepository = (*ProfileRepository)(nil)

// ProfileRepository keeps profiles in memory for demos/tests.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*domain.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: map[string]*domain.Profile{}}
}

func (r *ProfileRepository) Save(_ context.Context, profile *domain.Profile) (*domain.Profile, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.ID] = profile.Clone()
	return profile.Clone(), nil
}

func (r *ProfileRepository) GetByID(_ context.Context, userID string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return profile.Clone(), nil
}
