package pets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petactivities "github.com/Apurer/pet-adoption-api/internal/platform/temporal/activities/pets"
)

func newEnv(t *testing.T) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(PetRemovalWorkflow, workflow.RegisterOptions{Name: PetRemovalWorkflowName})
	activities := &petactivities.Activities{}
	env.RegisterActivityWithOptions(activities.PurgeAdoptionRequests, activity.RegisterOptions{Name: petactivities.PurgeAdoptionRequestsActivityName})
	env.RegisterActivityWithOptions(activities.DeletePet, activity.RegisterOptions{Name: petactivities.DeletePetActivityName})
	return env
}

func TestPetRemovalWorkflow_PurgesThenDeletes(t *testing.T) {
	env := newEnv(t)
	var order []string
	env.OnActivity(petactivities.PurgeAdoptionRequestsActivityName, mock.Anything, petstypes.PetIdentifier{ID: "pet-1"}).
		Return(func(context.Context, petstypes.PetIdentifier) (int, error) {
			order = append(order, "purge")
			return 3, nil
		})
	env.OnActivity(petactivities.DeletePetActivityName, mock.Anything, petstypes.PetIdentifier{ID: "pet-1"}).
		Return(func(context.Context, petstypes.PetIdentifier) error {
			order = append(order, "delete")
			return nil
		})

	env.ExecuteWorkflow(PetRemovalWorkflow, PetRemovalWorkflowInput{PetID: "pet-1"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result PetRemovalWorkflowResult
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, 3, result.PurgedRequests)
	require.Equal(t, []string{"purge", "delete"}, order)
}

func TestPetRemovalWorkflow_KeepsPetWhenPurgeFails(t *testing.T) {
	env := newEnv(t)
	env.OnActivity(petactivities.PurgeAdoptionRequestsActivityName, mock.Anything, mock.Anything).
		Return(0, errors.New("store unavailable"))
	deleted := false
	env.OnActivity(petactivities.DeletePetActivityName, mock.Anything, mock.Anything).
		Return(func(context.Context, petstypes.PetIdentifier) error {
			deleted = true
			return nil
		}).Maybe()

	env.ExecuteWorkflow(PetRemovalWorkflow, PetRemovalWorkflowInput{PetID: "pet-1"})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	require.False(t, deleted)
}
