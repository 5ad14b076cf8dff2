package ports

import (
	"context"

	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
)

// Service defines the pets use cases exposed to adapters (inbound/driving port).
type Service interface {
	AddPet(ctx context.Context, input pettypes.AddPetInput) (*pettypes.PetProjection, error)
	UpdatePet(ctx context.Context, input pettypes.UpdatePetInput) (*pettypes.PetProjection, error)
	GetByID(ctx context.Context, input pettypes.PetIdentifier) (*pettypes.PetProjection, error)
	Browse(ctx context.Context, input pettypes.BrowsePetsInput) ([]*pettypes.PetProjection, error)
	ListByOwner(ctx context.Context, input pettypes.OwnerPetsInput) ([]*pettypes.PetProjection, error)
	// AuthorizeRemoval loads the pet and fails unless the acting user owns it.
	AuthorizeRemoval(ctx context.Context, input pettypes.RemovePetInput) (*pettypes.PetProjection, error)
	// Remove deletes the pet's adoption requests, then the pet.
	Remove(ctx context.Context, input pettypes.RemovePetInput) error
}
