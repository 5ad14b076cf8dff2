package pets

import (
	"go.temporal.io/sdk/workflow"

	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/platform/temporal/sequences"
)

const (
	// PetRemovalWorkflowName is the public identifier for registering the workflow.
	PetRemovalWorkflowName = "pets.workflows.Removal"
	// PetRemovalTaskQueue is the queue consumed by the worker processing pet workflows.
	PetRemovalTaskQueue = "PET_REMOVAL"
)

// PetRemovalWorkflowInput identifies the listing to remove.
type PetRemovalWorkflowInput struct {
	PetID   string
	TraceID string
}

// PetRemovalWorkflowResult reports how many adoption requests were purged.
type PetRemovalWorkflowResult struct {
	PurgedRequests int
}

// PetRemovalWorkflow deletes a listing together with every adoption request for it.
func PetRemovalWorkflow(ctx workflow.Context, input PetRemovalWorkflowInput) (*PetRemovalWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("PetRemovalWorkflow started", withTraceID(input.TraceID, "petId", input.PetID)...)
	removed, err := sequences.RunPetRemovalSequence(ctx, petstypes.PetIdentifier{ID: input.PetID})
	if err != nil {
		logger.Error("PetRemovalWorkflow failed", withTraceID(input.TraceID, "petId", input.PetID, "error", err)...)
		return nil, err
	}
	logger.Info("PetRemovalWorkflow completed", withTraceID(input.TraceID, "petId", input.PetID, "purged", removed)...)
	return &PetRemovalWorkflowResult{PurgedRequests: removed}, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
