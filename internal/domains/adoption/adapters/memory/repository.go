package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/changefeed"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps adoption requests in memory and publishes every committed
// change to the configured feed.
type Repository struct {
	mu       sync.RWMutex
	requests map[string]*domain.Request
	byPair   map[string]string
	feed     changefeed.Publisher[domain.Request]
	now      func() time.Time
}

// NewRepository constructs an empty store. feed may be nil.
func NewRepository(feed changefeed.Publisher[domain.Request]) *Repository {
	return &Repository{
		requests: map[string]*domain.Request{},
		byPair:   map[string]string{},
		feed:     feed,
		now:      time.Now,
	}
}

// WithClock overrides the time source used to stamp change events.
func (r *Repository) WithClock(now func() time.Time) {
	if now == nil {
		return
	}
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
}

func pairKey(petID, requesterID string) string {
	return petID + "|" + requesterID
}

// Insert stores a new request, enforcing one request per pet and requester.
func (r *Repository) Insert(_ context.Context, request *domain.Request) (*domain.Request, error) {
	if request == nil || strings.TrimSpace(request.ID) == "" {
		return nil, errors.New("request id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(request.PetID, request.RequesterID)
	if _, exists := r.byPair[key]; exists {
		return nil, ports.ErrDuplicate
	}
	if _, exists := r.requests[request.ID]; exists {
		return nil, ports.ErrDuplicate
	}
	stored := request.Clone()
	r.requests[stored.ID] = stored
	r.byPair[key] = stored.ID
	r.publish(changefeed.Event[domain.Request]{Kind: changefeed.KindInsert, New: stored.Clone()})
	return stored.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.requests[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return stored.Clone(), nil
}

func (r *Repository) FindByPetAndRequester(_ context.Context, petID, requesterID string) (*domain.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPair[pairKey(petID, requesterID)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.requests[id].Clone(), nil
}

// CompareAndSetStatus applies the transition atomically under the write lock.
func (r *Repository) CompareAndSetStatus(_ context.Context, id string, from, to domain.Status, at time.Time) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.requests[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if stored.Status != from {
		return nil, ports.ErrStatusConflict
	}
	old := stored.Clone()
	stored.Status = to
	stored.UpdatedAt = at
	r.publish(changefeed.Event[domain.Request]{Kind: changefeed.KindUpdate, Old: old, New: stored.Clone()})
	return stored.Clone(), nil
}

func (r *Repository) ListByOwner(_ context.Context, ownerID string) ([]*domain.Request, error) {
	return r.filter(func(req *domain.Request) bool { return req.OwnerID == ownerID }), nil
}

func (r *Repository) ListByRequester(_ context.Context, requesterID string) ([]*domain.Request, error) {
	return r.filter(func(req *domain.Request) bool { return req.RequesterID == requesterID }), nil
}

func (r *Repository) ListByPet(_ context.Context, petID string) ([]*domain.Request, error) {
	return r.filter(func(req *domain.Request) bool { return req.PetID == petID }), nil
}

// DeleteByPet removes every request for petID, publishing one delete event each.
func (r *Repository) DeleteByPet(_ context.Context, petID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, stored := range r.requests {
		if stored.PetID != petID {
			continue
		}
		delete(r.requests, id)
		delete(r.byPair, pairKey(stored.PetID, stored.RequesterID))
		r.publish(changefeed.Event[domain.Request]{Kind: changefeed.KindDelete, Old: stored.Clone()})
		removed++
	}
	return removed, nil
}

func (r *Repository) filter(keep func(*domain.Request) bool) []*domain.Request {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Request, 0)
	for _, stored := range r.requests {
		if keep(stored) {
			list = append(list, stored.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// publish must be called with the write lock held so events leave in commit order.
func (r *Repository) publish(ev changefeed.Event[domain.Request]) {
	if r.feed == nil {
		return
	}
	ev.At = r.now().UTC()
	r.feed.Publish(ev)
}
