// Package lookup resolves notification display data from the pets and users contexts.
package lookup

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/ports"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

type Lookups struct {
	pets  petports.Service
	users userports.Service
}

func New(pets petports.Service, users userports.Service) *Lookups {
	return &Lookups{pets: pets, users: users}
}

func (l *Lookups) PetName(ctx context.Context, petID string) (string, error) {
	proj, err := l.pets.GetByID(ctx, pettypes.PetIdentifier{ID: petID})
	switch {
	case errors.Is(err, petports.ErrNotFound):
		return "", fmt.Errorf("%w: %w", ports.ErrPetGone, err)
	case err != nil:
		return "", fmt.Errorf("%w: %w", ports.ErrLookupUnavailable, err)
	case proj == nil || proj.Entity == nil:
		return "", ports.ErrPetGone
	}
	return proj.Entity.Name, nil
}

func (l *Lookups) OwnerContact(ctx context.Context, ownerID string) (ports.Contact, error) {
	profile, err := l.users.GetProfile(ctx, ownerID)
	if err != nil {
		return ports.Contact{}, err
	}
	return ports.Contact{Name: profile.Name, Email: profile.ContactEmail, Phone: profile.ContactPhone}, nil
}

var _ ports.Lookups = (*Lookups)(nil)
