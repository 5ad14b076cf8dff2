package ports

import (
	"context"
	"errors"
)

var ErrPetNotFound = errors.New("pet not found")

// PetSummary is what the adoption context needs to know about a listing.
type PetSummary struct {
	ID      string
	OwnerID string
	Name    string
}

// PetDirectory resolves listings owned by the pets context.
type PetDirectory interface {
	// Lookup returns ErrPetNotFound when the pet does not exist.
	Lookup(ctx context.Context, petID string) (PetSummary, error)
}
