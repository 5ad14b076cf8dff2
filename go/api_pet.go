package adoptionserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pethttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/http/mapper"
	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

// PetAPI wires HTTP transport with the pets bounded context service and workflows.
type PetAPI struct {
	service   petsports.Service
	workflows petsports.WorkflowOrchestrator
}

// NewPetAPI creates a PetAPI backed by the provided service.
func NewPetAPI(service petsports.Service, workflows petsports.WorkflowOrchestrator) PetAPI {
	return PetAPI{service: service, workflows: workflows}
}

// Get /v1/pets
// Browse listings, optionally filtered by species, size and a free-text query
func (api *PetAPI) BrowsePets(c *gin.Context) {
	var input petstypes.BrowsePetsInput
	var ok bool
	if input.Species, ok = queryParam(c, "species"); !ok {
		return
	}
	if input.Size, ok = queryParam(c, "size"); !ok {
		return
	}
	if input.Query, ok = queryParam(c, "q"); !ok {
		return
	}
	result, err := api.service.Browse(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjectionList(result))
}

// Post /v1/pets
// List a pet for adoption
func (api *PetAPI) AddPet(c *gin.Context) {
	var payload pethttpmapper.MutationPet
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	input := petstypes.AddPetInput{
		OwnerID:          currentPrincipal(c).UserID,
		PetMutationInput: pethttpmapper.ToMutationInput(payload),
	}
	saved, err := api.service.AddPet(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pethttpmapper.FromProjection(saved))
}

// Get /v1/pets/:petId
// Find pet by ID
func (api *PetAPI) GetPetById(c *gin.Context) {
	id, ok := pathParam(c, "petId")
	if !ok {
		return
	}
	pet, err := api.service.GetByID(c.Request.Context(), petstypes.PetIdentifier{ID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjection(pet))
}

// Put /v1/pets/:petId
// Update a listing; only its owner may do so
func (api *PetAPI) UpdatePet(c *gin.Context) {
	id, ok := pathParam(c, "petId")
	if !ok {
		return
	}
	var payload pethttpmapper.MutationPet
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	input := petstypes.UpdatePetInput{
		ID:               id,
		ActingUserID:     currentPrincipal(c).UserID,
		PetMutationInput: pethttpmapper.ToMutationInput(payload),
	}
	updated, err := api.service.UpdatePet(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjection(updated))
}

// Delete /v1/pets/:petId
// Remove a listing together with its adoption requests
func (api *PetAPI) DeletePet(c *gin.Context) {
	id, ok := pathParam(c, "petId")
	if !ok {
		return
	}
	input := petstypes.RemovePetInput{ID: id, ActingUserID: currentPrincipal(c).UserID}
	var err error
	if api.workflows != nil {
		err = api.workflows.RemovePet(c.Request.Context(), input)
	} else {
		err = api.service.Remove(c.Request.Context(), input)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/me/pets
// List the caller's own listings
func (api *PetAPI) ListMyPets(c *gin.Context) {
	result, err := api.service.ListByOwner(c.Request.Context(), petstypes.OwnerPetsInput{OwnerID: currentPrincipal(c).UserID})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjectionList(result))
}
