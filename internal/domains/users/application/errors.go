package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid profile input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrMissingUserID) ||
		errors.Is(err, domain.ErrNameTooLong) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
