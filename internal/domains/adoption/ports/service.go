package ports

import (
	"context"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoption/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
)

// Service defines the adoption use cases exposed to adapters.
type Service interface {
	SubmitRequest(ctx context.Context, input adoptiontypes.SubmitInput) (*domain.Request, error)
	SetRequestStatus(ctx context.Context, input adoptiontypes.StatusInput) (*domain.Request, error)
	GetRequest(ctx context.Context, input adoptiontypes.RequestIdentifier) (*domain.Request, error)
	ListReceived(ctx context.Context, ownerID string) ([]*domain.Request, error)
	ListSent(ctx context.Context, requesterID string) ([]*domain.Request, error)
}
