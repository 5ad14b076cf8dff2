package domain

import (
	"errors"
	"strings"
	"time"
)

// Status is the lifecycle state of an adoption request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var (
	ErrInvalidStatus  = errors.New("status must be approved or rejected")
	ErrTerminalStatus = errors.New("adoption request already decided")
	ErrMissingParty   = errors.New("pet, requester and owner are required")
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Decision reports whether s is a status an owner may set.
func (s Status) Decision() bool {
	return s == StatusApproved || s == StatusRejected
}

// Request is an expression of interest by RequesterID in adopting PetID.
// OwnerID is copied from the pet at submission time.
type Request struct {
	ID           string
	PetID        string
	RequesterID  string
	OwnerID      string
	Message      string
	ContactEmail string
	ContactPhone string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewRequest builds a pending request.
func NewRequest(id, petID, requesterID, ownerID, message, email, phone string, at time.Time) (*Request, error) {
	if strings.TrimSpace(petID) == "" || strings.TrimSpace(requesterID) == "" || strings.TrimSpace(ownerID) == "" {
		return nil, ErrMissingParty
	}
	return &Request{
		ID:           id,
		PetID:        petID,
		RequesterID:  requesterID,
		OwnerID:      ownerID,
		Message:      strings.TrimSpace(message),
		ContactEmail: strings.TrimSpace(email),
		ContactPhone: strings.TrimSpace(phone),
		Status:       StatusPending,
		CreatedAt:    at,
		UpdatedAt:    at,
	}, nil
}

// Decide moves a pending request to approved or rejected.
func (r *Request) Decide(status Status, at time.Time) error {
	if !status.Decision() {
		return ErrInvalidStatus
	}
	if r.Status != StatusPending {
		return ErrTerminalStatus
	}
	r.Status = status
	r.UpdatedAt = at
	return nil
}

// Involves reports whether userID is the owner or the requester.
func (r *Request) Involves(userID string) bool {
	return userID != "" && (r.OwnerID == userID || r.RequesterID == userID)
}

// Clone returns a copy safe to hand across layers.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

// StatusChange reports whether the update from old to new is a decision
// on a pending request.
func StatusChange(old, new *Request) bool {
	return old != nil && new != nil &&
		old.Status == StatusPending && new.Status.Decision()
}
