// Package petdirectory answers adoption's questions about listings by asking the pets context.
package petdirectory

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/ports"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

// Directory adapts the pets application port to ports.PetDirectory.
type Directory struct {
	pets petports.Service
}

func New(pets petports.Service) *Directory {
	return &Directory{pets: pets}
}

func (d *Directory) Lookup(ctx context.Context, petID string) (ports.PetSummary, error) {
	proj, err := d.pets.GetByID(ctx, pettypes.PetIdentifier{ID: petID})
	if err != nil {
		if errors.Is(err, petports.ErrNotFound) {
			return ports.PetSummary{}, fmt.Errorf("%w: %s", ports.ErrPetNotFound, petID)
		}
		return ports.PetSummary{}, fmt.Errorf("%w: %w", ports.ErrUnavailable, err)
	}
	if proj == nil || proj.Entity == nil {
		return ports.PetSummary{}, fmt.Errorf("%w: %s", ports.ErrPetNotFound, petID)
	}
	return ports.PetSummary{ID: proj.Entity.ID, OwnerID: proj.Entity.OwnerID, Name: proj.Entity.Name}, nil
}

var _ ports.PetDirectory = (*Directory)(nil)
