package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petactivities "github.com/Apurer/pet-adoption-api/internal/platform/temporal/activities/pets"
)

// RunPetRemovalSequence purges the pet's adoption requests, then deletes the pet.
// The pet is never deleted while requests referencing it remain.
func RunPetRemovalSequence(ctx workflow.Context, input petstypes.PetIdentifier) (int, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("pet removal sequence started", "petId", input.ID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var removed int
	if err := workflow.ExecuteActivity(ctx, petactivities.PurgeAdoptionRequestsActivityName, input).Get(ctx, &removed); err != nil {
		logger.Error("pet removal sequence purge failed", "petId", input.ID, "error", err)
		return 0, err
	}
	logger.Info("pet removal sequence purged requests", "petId", input.ID, "removed", removed)

	if err := workflow.ExecuteActivity(ctx, petactivities.DeletePetActivityName, input).Get(ctx, nil); err != nil {
		logger.Error("pet removal sequence delete failed", "petId", input.ID, "error", err)
		return removed, err
	}
	logger.Info("pet removal sequence completed", "petId", input.ID)
	return removed, nil
}
