package petdirectory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/ports"
	petmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
)

func TestLookup(t *testing.T) {
	pets := petapp.NewService(petmemory.NewRepository())
	name, species := "Rex", "dog"
	proj, err := pets.AddPet(context.Background(), pettypes.AddPetInput{
		OwnerID:          "owner-1",
		PetMutationInput: pettypes.PetMutationInput{Name: &name, Species: &species},
	})
	require.NoError(t, err)

	dir := New(pets)
	summary, err := dir.Lookup(context.Background(), proj.Entity.ID)
	require.NoError(t, err)
	require.Equal(t, ports.PetSummary{ID: proj.Entity.ID, OwnerID: "owner-1", Name: "Rex"}, summary)

	_, err = dir.Lookup(context.Background(), "missing")
	require.ErrorIs(t, err, ports.ErrPetNotFound)
}
