package mapper

import (
	"time"

	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
)

// MutationPet captures inbound payloads for create/update flows while preserving field presence.
type MutationPet struct {
	Name        *string   `json:"name,omitempty"`
	Species     *string   `json:"species,omitempty"`
	Breed       *string   `json:"breed,omitempty"`
	AgeMonths   *int      `json:"ageMonths,omitempty"`
	Size        *string   `json:"size,omitempty"`
	Gender      *string   `json:"gender,omitempty"`
	Color       *string   `json:"color,omitempty"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	Location    *string   `json:"location,omitempty"`
	GoodWith    *[]string `json:"goodWith,omitempty"`
	MedicalInfo *string   `json:"medicalInfo,omitempty"`
	AdoptionFee *float64  `json:"adoptionFee,omitempty"`
}

// Pet is the HTTP representation of a listing.
type Pet struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Breed       string    `json:"breed,omitempty"`
	AgeMonths   int       `json:"ageMonths"`
	Size        string    `json:"size,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Color       string    `json:"color,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Location    string    `json:"location,omitempty"`
	GoodWith    []string  `json:"goodWith"`
	MedicalInfo string    `json:"medicalInfo"`
	AdoptionFee float64   `json:"adoptionFee"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// FromDomainPet maps a domain listing into a transport Pet.
func FromDomainPet(p *domain.Pet) Pet {
	goodWith := append([]string{}, p.GoodWith...)
	return Pet{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Species:     string(p.Species),
		Breed:       p.Breed,
		AgeMonths:   p.AgeMonths,
		Size:        string(p.Size),
		Gender:      string(p.Gender),
		Color:       p.Color,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Location:    p.Location,
		GoodWith:    goodWith,
		MedicalInfo: p.MedicalInfo,
		AdoptionFee: p.AdoptionFee,
	}
}

// ToMutationInput converts a mutation payload into an application mutation input while preserving field presence.
func ToMutationInput(model MutationPet) pettypes.PetMutationInput {
	input := pettypes.PetMutationInput{
		Name:        model.Name,
		Species:     model.Species,
		Breed:       model.Breed,
		AgeMonths:   model.AgeMonths,
		Size:        model.Size,
		Gender:      model.Gender,
		Color:       model.Color,
		Description: model.Description,
		ImageURL:    model.ImageURL,
		Location:    model.Location,
		MedicalInfo: model.MedicalInfo,
		AdoptionFee: model.AdoptionFee,
	}
	if model.GoodWith != nil {
		tags := append([]string{}, (*model.GoodWith)...)
		input.GoodWith = &tags
	}
	return input
}

// FromProjection maps a projection into a transport pet enriched with metadata.
func FromProjection(projection *pettypes.PetProjection) Pet {
	pet := FromDomainPet(projection.Entity)
	pet.CreatedAt = projection.Metadata.CreatedAt
	pet.UpdatedAt = projection.Metadata.UpdatedAt
	return pet
}

// FromProjectionList maps a slice of projections into transport pets with metadata.
func FromProjectionList(list []*pettypes.PetProjection) []Pet {
	result := make([]Pet, 0, len(list))
	for _, projection := range list {
		result = append(result, FromProjection(projection))
	}
	return result
}
