package adoptionserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	adoptionapp "github.com/Apurer/pet-adoption-api/internal/domains/adoption/application"
	favoritesdomain "github.com/Apurer/pet-adoption-api/internal/domains/favorites/domain"
	notificationsapp "github.com/Apurer/pet-adoption-api/internal/domains/notifications/application"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	usersapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	usersports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/validation"
)

var responder = apierrors.NewResponder("",
	identityErrors,
	adoptionErrors,
	petErrors,
	userErrors,
	notificationErrors,
	favoriteErrors,
)

// respondProblem writes problem through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondServiceError maps an application error to its RFC 7807 response.
func respondServiceError(c *gin.Context, err error) {
	responder.RespondError(c, err)
}

func respondBindError(c *gin.Context, err error) {
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

func identityErrors(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, identity.ErrUnauthenticated) {
		return apierrors.ErrUnauthorized.WithDetail("sign in to continue"), true
	}
	return apierrors.ProblemDetail{}, false
}

func adoptionErrors(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, adoptionapp.ErrValidation):
		return validationProblem(err, adoptionapp.ErrValidation.Error()), true
	case errors.Is(err, adoptionapp.ErrSelfAdoption):
		return apierrors.ErrSelfAdoption.WithDetail(adoptionapp.ErrSelfAdoption.Error()), true
	case errors.Is(err, adoptionapp.ErrDuplicateRequest):
		return apierrors.ErrDuplicateRequest.WithDetail(adoptionapp.ErrDuplicateRequest.Error()), true
	case errors.Is(err, adoptionapp.ErrInvalidTransition):
		return apierrors.ErrInvalidTransition.WithDetail(adoptionapp.ErrInvalidTransition.Error()), true
	case errors.Is(err, adoptionapp.ErrUnauthorized):
		return apierrors.ErrForbidden.WithDetail(adoptionapp.ErrUnauthorized.Error()), true
	case errors.Is(err, adoptionapp.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("the pet or adoption request does not exist"), true
	case errors.Is(err, adoptionapp.ErrStoreUnavailable):
		return apierrors.ErrStoreUnavailable.WithDetail("please try again shortly"), true
	}
	return apierrors.ProblemDetail{}, false
}

func petErrors(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, petsports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(petsports.ErrNotFound.Error()), true
	case errors.Is(err, petsapp.ErrInvalidInput):
		return validationProblem(err, err.Error()), true
	case errors.Is(err, petsapp.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(petsapp.ErrForbidden.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func userErrors(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, usersports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(usersports.ErrNotFound.Error()), true
	case errors.Is(err, usersapp.ErrInvalidInput):
		return validationProblem(err, err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func notificationErrors(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, notificationsapp.ErrStateUnavailable), errors.Is(err, notificationsapp.ErrClosed):
		return apierrors.ErrStoreUnavailable.WithDetail(err.Error()), true
	case errors.Is(err, notificationsapp.ErrNotActive):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func favoriteErrors(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, favoritesdomain.ErrMissingPetID) {
		return apierrors.NewValidationProblem(map[string]string{"petId": "is required"}).WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func validationProblem(err error, detail string) apierrors.ProblemDetail {
	fields, _ := validation.Fields(err)
	return apierrors.NewValidationProblem(fields).WithDetail(detail)
}
