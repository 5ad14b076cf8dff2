// Package errors provides RFC 7807 Problem Details for HTTP APIs.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail represents an RFC 7807 Problem Details response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithInstance returns a copy with the given instance URI.
func (p ProblemDetail) WithInstance(instance string) ProblemDetail {
	p.Instance = instance
	return p
}

// WithExtension returns a copy with an additional extension property.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

// Problem type URI references.
const (
	TypeValidation        = "/problems/validation-error"
	TypeNotFound          = "/problems/not-found"
	TypeConflict          = "/problems/conflict"
	TypeInternal          = "/problems/internal-error"
	TypeUnauthorized      = "/problems/unauthorized"
	TypeForbidden         = "/problems/forbidden"
	TypeBadRequest        = "/problems/bad-request"
	TypeSelfAdoption      = "/problems/self-adoption"
	TypeDuplicateRequest  = "/problems/duplicate-request"
	TypeInvalidTransition = "/problems/invalid-transition"
	TypeStoreUnavailable  = "/problems/store-unavailable"
)

var (
	ErrNotFound = ProblemDetail{
		Type:   TypeNotFound,
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}

	ErrValidation = ProblemDetail{
		Type:   TypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
	}

	ErrBadRequest = ProblemDetail{
		Type:   TypeBadRequest,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}

	ErrConflict = ProblemDetail{
		Type:   TypeConflict,
		Title:  "Conflict",
		Status: http.StatusConflict,
	}

	ErrInternal = ProblemDetail{
		Type:   TypeInternal,
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}

	// ErrUnauthorized is returned when no signed-in identity accompanies the request.
	ErrUnauthorized = ProblemDetail{
		Type:   TypeUnauthorized,
		Title:  "Unauthenticated",
		Status: http.StatusUnauthorized,
	}

	// ErrForbidden is returned when the signed-in user may not act on the resource.
	ErrForbidden = ProblemDetail{
		Type:   TypeForbidden,
		Title:  "Forbidden",
		Status: http.StatusForbidden,
	}

	ErrSelfAdoption = ProblemDetail{
		Type:   TypeSelfAdoption,
		Title:  "Cannot Adopt Own Pet",
		Status: http.StatusConflict,
	}

	ErrDuplicateRequest = ProblemDetail{
		Type:   TypeDuplicateRequest,
		Title:  "Duplicate Adoption Request",
		Status: http.StatusConflict,
	}

	ErrInvalidTransition = ProblemDetail{
		Type:   TypeInvalidTransition,
		Title:  "Invalid Status Transition",
		Status: http.StatusConflict,
	}

	ErrStoreUnavailable = ProblemDetail{
		Type:   TypeStoreUnavailable,
		Title:  "Store Unavailable",
		Status: http.StatusServiceUnavailable,
	}
)

// NewValidationProblem creates a validation error with field-level details.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	problem := ErrValidation
	if len(fieldErrors) > 0 {
		problem = problem.WithExtension("fields", fieldErrors)
	}
	return problem
}

// NewNotFoundProblem creates a not found error for a specific resource.
func NewNotFoundProblem(resourceType string, identifier any) ProblemDetail {
	return ErrNotFound.
		WithDetail(fmt.Sprintf("%s with identifier '%v' not found", resourceType, identifier)).
		WithExtension("resourceType", resourceType).
		WithExtension("identifier", identifier)
}
