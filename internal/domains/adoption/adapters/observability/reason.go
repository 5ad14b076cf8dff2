package observability

import (
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/application"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

// reason buckets an engine error into a low-cardinality metric label.
func reason(err error) string {
	switch {
	case errors.Is(err, identity.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, application.ErrValidation):
		return "validation"
	case errors.Is(err, application.ErrNotFound):
		return "not_found"
	case errors.Is(err, application.ErrSelfAdoption):
		return "self_adoption"
	case errors.Is(err, application.ErrDuplicateRequest):
		return "duplicate"
	case errors.Is(err, application.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, application.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, application.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}
