package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory implementation used for demos/tests.
type Repository struct {
	mu   sync.RWMutex
	pets map[string]*storedPet
	now  func() time.Time
}

type storedPet struct {
	pet      *domain.Pet
	metadata projection.Metadata
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{
		pets: map[string]*storedPet{},
		now:  time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now == nil {
		return
	}
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
}

// Save inserts or replaces a pet while maintaining metadata.
func (r *Repository) Save(_ context.Context, pet *domain.Pet) (*projection.Projection[*domain.Pet], error) {
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	timestamp := r.now().UTC()
	metadata := projection.Metadata{CreatedAt: timestamp, UpdatedAt: timestamp}
	if entry, ok := r.pets[pet.ID]; ok {
		metadata.CreatedAt = entry.metadata.CreatedAt
	}
	stored := &storedPet{pet: pet.Clone(), metadata: metadata}
	r.pets[pet.ID] = stored
	return projectionCopy(stored), nil
}

// GetByID fetches a pet if present.
func (r *Repository) GetByID(_ context.Context, id string) (*projection.Projection[*domain.Pet], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.pets[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

// Delete removes a pet.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.pets, id)
	return nil
}

// Search returns pets satisfying criteria, newest first.
func (r *Repository) Search(_ context.Context, criteria domain.Criteria) ([]*projection.Projection[*domain.Pet], error) {
	return r.collect(criteria.Matches), nil
}

// ListByOwner returns the owner's pets, newest first.
func (r *Repository) ListByOwner(_ context.Context, ownerID string) ([]*projection.Projection[*domain.Pet], error) {
	return r.collect(func(p *domain.Pet) bool { return p.OwnerID == ownerID }), nil
}

func (r *Repository) collect(keep func(*domain.Pet) bool) []*projection.Projection[*domain.Pet] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*projection.Projection[*domain.Pet], 0, len(r.pets))
	for _, entry := range r.pets {
		if keep(entry.pet) {
			list = append(list, projectionCopy(entry))
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].Metadata.CreatedAt, list[j].Metadata.CreatedAt
		if a.Equal(b) {
			return list[i].Entity.ID < list[j].Entity.ID
		}
		return a.After(b)
	})
	return list
}

func projectionCopy(entry *storedPet) *projection.Projection[*domain.Pet] {
	return projection.New(entry.pet.Clone(), entry.metadata.CreatedAt, entry.metadata.UpdatedAt)
}
