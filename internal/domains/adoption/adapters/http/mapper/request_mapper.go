package mapper

import (
	"time"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoption/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
)

// SubmitRequest is the inbound payload for a new adoption request. The pet id comes from the path.
type SubmitRequest struct {
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone,omitempty"`
	Message      string `json:"message"`
}

// StatusUpdate is the inbound payload of PATCH /adoption-requests/:id.
type StatusUpdate struct {
	Status string `json:"status"`
}

// AdoptionRequest is the HTTP representation of a request.
type AdoptionRequest struct {
	ID           string    `json:"id"`
	PetID        string    `json:"petId"`
	RequesterID  string    `json:"requesterId"`
	OwnerID      string    `json:"ownerId"`
	Message      string    `json:"message"`
	ContactEmail string    `json:"contactEmail"`
	ContactPhone string    `json:"contactPhone,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ToSubmitInput combines the path pet id, the authenticated requester and the body.
func ToSubmitInput(petID, requesterID string, body SubmitRequest) adoptiontypes.SubmitInput {
	return adoptiontypes.SubmitInput{
		PetID:        petID,
		RequesterID:  requesterID,
		ContactEmail: body.ContactEmail,
		ContactPhone: body.ContactPhone,
		Message:      body.Message,
	}
}

func FromDomainRequest(r *domain.Request) AdoptionRequest {
	return AdoptionRequest{
		ID:           r.ID,
		PetID:        r.PetID,
		RequesterID:  r.RequesterID,
		OwnerID:      r.OwnerID,
		Message:      r.Message,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func FromDomainRequests(list []*domain.Request) []AdoptionRequest {
	out := make([]AdoptionRequest, 0, len(list))
	for _, r := range list {
		out = append(out, FromDomainRequest(r))
	}
	return out
}
