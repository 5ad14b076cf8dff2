package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid pet input")
	// ErrForbidden signals the acting user does not own the listing.
	ErrForbidden = errors.New("only the owner can modify this pet")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrMissingOwner) ||
		errors.Is(err, domain.ErrInvalidSpecies) ||
		errors.Is(err, domain.ErrInvalidSize) ||
		errors.Is(err, domain.ErrInvalidGender) ||
		errors.Is(err, domain.ErrInvalidAge) ||
		errors.Is(err, domain.ErrInvalidFee) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
