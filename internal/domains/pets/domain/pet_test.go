package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPet_Invariants(t *testing.T) {
	_, err := NewPet("p1", "", "Rex", SpeciesDog)
	require.ErrorIs(t, err, ErrMissingOwner)

	_, err = NewPet("p1", "owner", "  ", SpeciesDog)
	require.ErrorIs(t, err, ErrEmptyName)

	_, err = NewPet("p1", "owner", "Rex", "dragon")
	require.ErrorIs(t, err, ErrInvalidSpecies)

	pet, err := NewPet("p1", "owner", " Rex ", "DOG")
	require.NoError(t, err)
	require.Equal(t, "Rex", pet.Name)
	require.Equal(t, SpeciesDog, pet.Species)
	require.Equal(t, DefaultMedicalInfo, pet.MedicalInfo)
	require.True(t, pet.OwnedBy("owner"))
	require.False(t, pet.OwnedBy(""))
}

func TestPet_ReplaceGoodWithNormalizes(t *testing.T) {
	pet, err := NewPet("p1", "owner", "Rex", SpeciesDog)
	require.NoError(t, err)
	pet.ReplaceGoodWith([]string{"Kids", "kids", " cats ", ""})
	require.Equal(t, []string{"kids", "cats"}, pet.GoodWith)
}

func TestCriteria_Matches(t *testing.T) {
	pet := &Pet{Name: "Biscuit", Breed: "Beagle", Location: "Austin, TX", Species: SpeciesDog, Size: SizeMedium}

	require.True(t, Criteria{}.Matches(pet))
	require.True(t, Criteria{Species: "all", Size: "all"}.Matches(pet))
	require.True(t, Criteria{Query: "beag"}.Matches(pet))
	require.True(t, Criteria{Query: "austin"}.Matches(pet))
	require.False(t, Criteria{Species: SpeciesCat}.Matches(pet))
	require.False(t, Criteria{Size: SizeLarge}.Matches(pet))
	require.False(t, Criteria{Query: "poodle"}.Matches(pet))
}
