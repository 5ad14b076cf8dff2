package lookup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/ports"
	petmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	usermemory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
)

func TestLookups(t *testing.T) {
	ctx := context.Background()
	pets := petapp.NewService(petmemory.NewRepository())
	users := userapp.NewService(usermemory.NewProfileRepository(), usermemory.NewSessionStore())

	name, species := "Rex", "dog"
	proj, err := pets.AddPet(ctx, pettypes.AddPetInput{
		OwnerID:          "olga",
		PetMutationInput: pettypes.PetMutationInput{Name: &name, Species: &species},
	})
	require.NoError(t, err)
	_, err = users.UpdateProfile(ctx, usertypes.UpdateProfileInput{
		UserID: "olga", Name: "Olga", ContactEmail: "olga@example.com", ContactPhone: "555-0101",
	})
	require.NoError(t, err)

	l := New(pets, users)
	petName, err := l.PetName(ctx, proj.Entity.ID)
	require.NoError(t, err)
	require.Equal(t, "Rex", petName)

	_, err = l.PetName(ctx, "missing")
	require.ErrorIs(t, err, ports.ErrPetGone)

	contact, err := l.OwnerContact(ctx, "olga")
	require.NoError(t, err)
	require.Equal(t, ports.Contact{Name: "Olga", Email: "olga@example.com", Phone: "555-0101"}, contact)

	_, err = l.OwnerContact(ctx, "nobody")
	require.Error(t, err)
}
