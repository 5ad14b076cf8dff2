package adoptionserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

// UserAPI wires sign-in sessions and profiles.
type UserAPI struct {
	service userports.Service
}

// NewUserAPI creates a UserAPI backed by the provided service.
func NewUserAPI(service userports.Service) UserAPI {
	return UserAPI{service: service}
}

// Post /v1/session
// Sign in: records a session and starts the caller's notification session
func (api *UserAPI) SignIn(c *gin.Context) {
	session, err := api.service.SignIn(c.Request.Context(), currentPrincipal(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromDomainSession(session))
}

// Delete /v1/session
// Sign out: tears down the caller's notification session and deletes their sessions
func (api *UserAPI) SignOut(c *gin.Context) {
	if err := api.service.SignOut(c.Request.Context(), currentPrincipal(c).UserID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/me/profile
func (api *UserAPI) GetProfile(c *gin.Context) {
	profile, err := api.service.EnsureProfile(c.Request.Context(), currentPrincipal(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainProfile(profile))
}

// Put /v1/me/profile
// Replace the caller's profile; owners' contact details appear in approval notifications
func (api *UserAPI) UpdateProfile(c *gin.Context) {
	var payload userhttpmapper.ProfileUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	input := userhttpmapper.ToUpdateProfileInput(currentPrincipal(c).UserID, payload)
	profile, err := api.service.UpdateProfile(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainProfile(profile))
}
