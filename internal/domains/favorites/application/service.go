package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/Apurer/pet-adoption-api/internal/domains/favorites/domain"
	"github.com/Apurer/pet-adoption-api/internal/platform/localstate"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

// Service is the favorites ledger. Each call loads the whole set from its slot
// and every mutation writes the whole set back.
type Service struct {
	store  localstate.Store
	scope  domain.Scope
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithScope selects per-user or deployment-wide favorites.
func WithScope(scope domain.Scope) Option {
	return func(s *Service) {
		if scope != "" {
			s.scope = scope
		}
	}
}

func NewService(store localstate.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		scope:  domain.ScopeUser,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		locks:  map[string]*sync.Mutex{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Scope() domain.Scope { return s.scope }

// List returns the favorites in the order they were added.
func (s *Service) List(ctx context.Context, userID string) ([]string, error) {
	key, err := s.key(userID)
	if err != nil {
		return nil, err
	}
	set, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return set.IDs(), nil
}

// Contains reports whether petID is a favorite.
func (s *Service) Contains(ctx context.Context, userID, petID string) (bool, error) {
	key, err := s.key(userID)
	if err != nil {
		return false, err
	}
	set, err := s.load(ctx, key)
	if err != nil {
		return false, err
	}
	return set.Contains(petID), nil
}

// Add bookmarks petID. added is false when it was already a favorite.
func (s *Service) Add(ctx context.Context, userID, petID string) (added bool, err error) {
	err = s.update(ctx, userID, petID, func(set *domain.Set) bool {
		added = set.Add(petID)
		return added
	})
	return added, err
}

// Remove drops petID. removed is false when it was not a favorite.
func (s *Service) Remove(ctx context.Context, userID, petID string) (removed bool, err error) {
	err = s.update(ctx, userID, petID, func(set *domain.Set) bool {
		removed = set.Remove(petID)
		return removed
	})
	return removed, err
}

func (s *Service) update(ctx context.Context, userID, petID string, fn func(*domain.Set) bool) error {
	if strings.TrimSpace(petID) == "" {
		return domain.ErrMissingPetID
	}
	key, err := s.key(userID)
	if err != nil {
		return err
	}
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	set, err := s.load(ctx, key)
	if err != nil {
		return err
	}
	if !fn(set) {
		return nil
	}
	blob, err := set.Encode()
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, key, blob); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, key string) (*domain.Set, error) {
	blob, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	if !ok {
		return domain.NewSet(), nil
	}
	set, err := domain.DecodeSet(blob)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "discarding corrupt favorites",
			slog.String("slot", key), slog.String("error", err.Error()))
	}
	return set, nil
}

func (s *Service) key(userID string) (string, error) {
	if s.scope == domain.ScopeUser && strings.TrimSpace(userID) == "" {
		return "", identity.ErrUnauthenticated
	}
	return s.scope.Key(userID), nil
}

func (s *Service) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}
