package ports

import (
	"context"

	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

// Service exposes user bounded context use cases to adapters.
type Service interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, input usertypes.UpdateProfileInput) (*domain.Profile, error)
	EnsureProfile(ctx context.Context, principal identity.Principal) (*domain.Profile, error)
	SignIn(ctx context.Context, principal identity.Principal) (*domain.Session, error)
	SignOut(ctx context.Context, userID string) error
	ResolveSession(ctx context.Context, token string) (identity.Principal, error)
	PurgeExpiredSessions(ctx context.Context) (int, error)
}
