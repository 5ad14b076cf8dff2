package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/validation"
)

// DefaultSessionTTL provides the fallback TTL when none is configured.
const DefaultSessionTTL = 24 * time.Hour

// Service exposes user bounded context use cases.
type Service struct {
	profiles ports.ProfileRepository
	sessions ports.SessionStore
	hooks    []ports.SessionHook
	ttl      time.Duration
	now      func() time.Time
	newToken func() string
}

// Option customises the service.
type Option func(*Service)

// WithSessionTTL sets how long a sign-in stays valid.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSessionHooks registers components started on sign-in and stopped on sign-out.
func WithSessionHooks(hooks ...ports.SessionHook) Option {
	return func(s *Service) {
		for _, h := range hooks {
			if h != nil {
				s.hooks = append(s.hooks, h)
			}
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(profiles ports.ProfileRepository, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		profiles: profiles,
		sessions: sessions,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// GetProfile loads the profile of userID.
func (s *Service) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, identity.ErrUnauthenticated
	}
	return s.profiles.GetByID(ctx, userID)
}

// UpdateProfile validates and replaces the caller's profile, creating it if absent.
func (s *Service) UpdateProfile(ctx context.Context, input usertypes.UpdateProfileInput) (*domain.Profile, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, identity.ErrUnauthenticated
	}
	input.ContactEmail = strings.TrimSpace(input.ContactEmail)
	if err := validation.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	profile, err := s.profiles.GetByID(ctx, input.UserID)
	if errors.Is(err, ports.ErrNotFound) {
		profile, err = domain.NewProfile(input.UserID, "")
	}
	if err != nil {
		return nil, mapError(err)
	}
	if err := profile.Rename(input.Name); err != nil {
		return nil, mapError(err)
	}
	profile.UpdateContact(input.ContactEmail, input.ContactPhone, input.Location)
	return s.profiles.Save(ctx, profile)
}

// EnsureProfile returns the principal's profile, creating one seeded with the identity email.
func (s *Service) EnsureProfile(ctx context.Context, principal identity.Principal) (*domain.Profile, error) {
	if principal.Anonymous() {
		return nil, identity.ErrUnauthenticated
	}
	profile, err := s.profiles.GetByID(ctx, principal.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	profile, err = domain.NewProfile(principal.UserID, principal.Email)
	if err != nil {
		return nil, mapError(err)
	}
	return s.profiles.Save(ctx, profile)
}

// SignIn records a session for the principal and starts the session hooks.
func (s *Service) SignIn(ctx context.Context, principal identity.Principal) (*domain.Session, error) {
	if _, err := s.EnsureProfile(ctx, principal); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	session := domain.Session{
		Token:     s.newToken(),
		UserID:    principal.UserID,
		Email:     principal.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	for i, hook := range s.hooks {
		if err := hook.Activate(ctx, principal.UserID); err != nil {
			for _, started := range s.hooks[:i] {
				started.Deactivate(principal.UserID)
			}
			_ = s.sessions.Revoke(ctx, session.Token)
			return nil, fmt.Errorf("activate session: %w", err)
		}
	}
	return &session, nil
}

// SignOut stops the session hooks and deletes the user's sessions.
func (s *Service) SignOut(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return identity.ErrUnauthenticated
	}
	for _, hook := range s.hooks {
		hook.Deactivate(userID)
	}
	return s.sessions.Delete(ctx, userID)
}

// ResolveSession maps a session token back to its principal.
func (s *Service) ResolveSession(ctx context.Context, token string) (identity.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return identity.Principal{}, identity.ErrUnauthenticated
	}
	session, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return identity.Principal{}, identity.ErrUnauthenticated
		}
		return identity.Principal{}, err
	}
	if session.Expired(s.now()) {
		return identity.Principal{}, identity.ErrUnauthenticated
	}
	return identity.Principal{UserID: session.UserID, Email: session.Email}, nil
}

// PurgeExpiredSessions removes expired sessions. Use for housekeeping or cron.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int, error) {
	return s.sessions.PurgeExpired(ctx)
}

var _ ports.Service = (*Service)(nil)
