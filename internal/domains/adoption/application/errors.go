package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/ports"
)

var (
	// ErrNotFound signals the referenced pet or request does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSelfAdoption signals a requester asked to adopt their own pet.
	ErrSelfAdoption = errors.New("you cannot adopt your own pet")
	// ErrDuplicateRequest signals the requester already holds a request for the pet.
	ErrDuplicateRequest = errors.New("you have already submitted a request for this pet")
	// ErrInvalidTransition signals the request is no longer pending.
	ErrInvalidTransition = errors.New("only pending requests can be approved or rejected")
	// ErrUnauthorized signals the acting user may not perform the operation.
	ErrUnauthorized = errors.New("only the pet owner can change this request")
	// ErrValidation signals malformed input; the wrapped error carries field messages.
	ErrValidation = errors.New("invalid adoption request")
	// ErrStoreUnavailable signals a transient store failure.
	ErrStoreUnavailable = errors.New("adoption store unavailable")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ports.ErrNotFound), errors.Is(err, ports.ErrPetNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, ports.ErrDuplicate):
		return fmt.Errorf("%w: %w", ErrDuplicateRequest, err)
	case errors.Is(err, ports.ErrStatusConflict), errors.Is(err, domain.ErrTerminalStatus):
		return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrMissingParty):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, ports.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}
