package pets

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

const (
	// PurgeAdoptionRequestsActivityName deletes every adoption request referencing a pet.
	PurgeAdoptionRequestsActivityName = "pets.activities.PurgeAdoptionRequests"
	// DeletePetActivityName deletes the listing itself.
	DeletePetActivityName = "pets.activities.DeletePet"
)

// Activities groups activities that operate on the pets bounded context.
// Ownership is checked before the workflow starts, so activities act on ids only.
type Activities struct {
	repo   petsports.Repository
	purger petsports.RequestPurger
}

// NewActivities wires the pets collaborators into the Temporal activities bundle.
func NewActivities(repo petsports.Repository, purger petsports.RequestPurger) *Activities {
	return &Activities{repo: repo, purger: purger}
}

// PurgeAdoptionRequests removes the pet's adoption requests and reports how many went.
func (a *Activities) PurgeAdoptionRequests(ctx context.Context, input petstypes.PetIdentifier) (int, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.purger == nil {
		logger.Error("purge activity not initialized", "petId", input.ID)
		return 0, errors.New("purge activity not initialized")
	}
	logger.Info("PurgeAdoptionRequests activity started", "petId", input.ID)
	removed, err := a.purger.DeleteByPet(ctx, input.ID)
	if err != nil {
		logger.Error("PurgeAdoptionRequests activity failed", "petId", input.ID, "error", err)
		return 0, err
	}
	logger.Info("PurgeAdoptionRequests activity completed", "petId", input.ID, "removed", removed)
	return removed, nil
}

// DeletePet removes the listing. A listing already gone counts as done so retries converge.
func (a *Activities) DeletePet(ctx context.Context, input petstypes.PetIdentifier) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.repo == nil {
		logger.Error("delete activity not initialized", "petId", input.ID)
		return errors.New("delete activity not initialized")
	}
	logger.Info("DeletePet activity started", "petId", input.ID)
	if err := a.repo.Delete(ctx, input.ID); err != nil {
		if errors.Is(err, petsports.ErrNotFound) {
			logger.Info("DeletePet found nothing to delete", "petId", input.ID)
			return nil
		}
		logger.Error("DeletePet activity failed", "petId", input.ID, "error", err)
		return err
	}
	logger.Info("DeletePet activity completed", "petId", input.ID)
	return nil
}
