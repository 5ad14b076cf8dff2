package adoptionserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	adoptionhttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/adoption/adapters/http/mapper"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoption/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoption/ports"
)

// AdoptionAPI exposes the adoption request engine.
type AdoptionAPI struct {
	service adoptionports.Service
}

// NewAdoptionAPI creates an AdoptionAPI backed by service.
func NewAdoptionAPI(service adoptionports.Service) AdoptionAPI {
	return AdoptionAPI{service: service}
}

// Post /v1/pets/:petId/adoption-requests
// Ask the pet's owner to adopt it
func (api *AdoptionAPI) SubmitRequest(c *gin.Context) {
	petID, ok := pathParam(c, "petId")
	if !ok {
		return
	}
	var payload adoptionhttpmapper.SubmitRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	input := adoptionhttpmapper.ToSubmitInput(petID, currentPrincipal(c).UserID, payload)
	created, err := api.service.SubmitRequest(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, adoptionhttpmapper.FromDomainRequest(created))
}

// Get /v1/adoption-requests/received
// Requests for the caller's pets, newest first
func (api *AdoptionAPI) ListReceived(c *gin.Context) {
	list, err := api.service.ListReceived(c.Request.Context(), currentPrincipal(c).UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromDomainRequests(list))
}

// Get /v1/adoption-requests/sent
// Requests the caller submitted, newest first
func (api *AdoptionAPI) ListSent(c *gin.Context) {
	list, err := api.service.ListSent(c.Request.Context(), currentPrincipal(c).UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromDomainRequests(list))
}

// Get /v1/adoption-requests/:requestId
func (api *AdoptionAPI) GetRequest(c *gin.Context) {
	id, ok := pathParam(c, "requestId")
	if !ok {
		return
	}
	request, err := api.service.GetRequest(c.Request.Context(), adoptiontypes.RequestIdentifier{
		ID:           id,
		ActingUserID: currentPrincipal(c).UserID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromDomainRequest(request))
}

// Post /v1/adoption-requests/:requestId/approve
func (api *AdoptionAPI) Approve(c *gin.Context) {
	api.decide(c, string(domain.StatusApproved))
}

// Post /v1/adoption-requests/:requestId/reject
func (api *AdoptionAPI) Reject(c *gin.Context) {
	api.decide(c, string(domain.StatusRejected))
}

// Patch /v1/adoption-requests/:requestId
// Move a pending request to the status named in the body
func (api *AdoptionAPI) SetStatus(c *gin.Context) {
	var payload adoptionhttpmapper.StatusUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	api.decide(c, payload.Status)
}

func (api *AdoptionAPI) decide(c *gin.Context, status string) {
	id, ok := pathParam(c, "requestId")
	if !ok {
		return
	}
	updated, err := api.service.SetRequestStatus(c.Request.Context(), adoptiontypes.StatusInput{
		RequestID:    id,
		Status:       status,
		ActingUserID: currentPrincipal(c).UserID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromDomainRequest(updated))
}
