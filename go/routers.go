package adoptionserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Authenticated routes answer 401 when no principal accompanies the request.
	Authenticated bool
}

// ApiHandleFunctions groups the handlers of every API tag.
type ApiHandleFunctions struct {
	PetAPI          PetAPI
	AdoptionAPI     AdoptionAPI
	UserAPI         UserAPI
	NotificationAPI NotificationAPI
	FavoriteAPI     FavoriteAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, authenticator *Authenticator) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions, authenticator)
}

// NewRouterWithGinEngine adds the routes to an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, authenticator *Authenticator) *gin.Engine {
	if authenticator != nil {
		router.Use(authenticator.Middleware())
	}
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := []gin.HandlerFunc{route.HandlerFunc}
		if route.Authenticated {
			handlers = append([]gin.HandlerFunc{RequirePrincipal()}, handlers...)
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, handlers...)
		case http.MethodPost:
			router.POST(route.Pattern, handlers...)
		case http.MethodPut:
			router.PUT(route.Pattern, handlers...)
		case http.MethodPatch:
			router.PATCH(route.Pattern, handlers...)
		case http.MethodDelete:
			router.DELETE(route.Pattern, handlers...)
		}
	}
	return router
}

// DefaultHandleFunc is the default handler for not yet implemented routes.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Healthz", http.MethodGet, "/healthz", Healthz, false},

		{"BrowsePets", http.MethodGet, "/v1/pets", handleFunctions.PetAPI.BrowsePets, false},
		{"AddPet", http.MethodPost, "/v1/pets", handleFunctions.PetAPI.AddPet, true},
		{"GetPetById", http.MethodGet, "/v1/pets/:petId", handleFunctions.PetAPI.GetPetById, false},
		{"UpdatePet", http.MethodPut, "/v1/pets/:petId", handleFunctions.PetAPI.UpdatePet, true},
		{"DeletePet", http.MethodDelete, "/v1/pets/:petId", handleFunctions.PetAPI.DeletePet, true},
		{"ListMyPets", http.MethodGet, "/v1/me/pets", handleFunctions.PetAPI.ListMyPets, true},

		{"SubmitAdoptionRequest", http.MethodPost, "/v1/pets/:petId/adoption-requests", handleFunctions.AdoptionAPI.SubmitRequest, true},
		{"ListReceivedRequests", http.MethodGet, "/v1/adoption-requests/received", handleFunctions.AdoptionAPI.ListReceived, true},
		{"ListSentRequests", http.MethodGet, "/v1/adoption-requests/sent", handleFunctions.AdoptionAPI.ListSent, true},
		{"GetAdoptionRequest", http.MethodGet, "/v1/adoption-requests/:requestId", handleFunctions.AdoptionAPI.GetRequest, true},
		{"ApproveAdoptionRequest", http.MethodPost, "/v1/adoption-requests/:requestId/approve", handleFunctions.AdoptionAPI.Approve, true},
		{"RejectAdoptionRequest", http.MethodPost, "/v1/adoption-requests/:requestId/reject", handleFunctions.AdoptionAPI.Reject, true},
		{"SetAdoptionRequestStatus", http.MethodPatch, "/v1/adoption-requests/:requestId", handleFunctions.AdoptionAPI.SetStatus, true},

		{"SignIn", http.MethodPost, "/v1/session", handleFunctions.UserAPI.SignIn, true},
		{"SignOut", http.MethodDelete, "/v1/session", handleFunctions.UserAPI.SignOut, true},
		{"GetProfile", http.MethodGet, "/v1/me/profile", handleFunctions.UserAPI.GetProfile, true},
		{"UpdateProfile", http.MethodPut, "/v1/me/profile", handleFunctions.UserAPI.UpdateProfile, true},

		{"ListNotifications", http.MethodGet, "/v1/notifications", handleFunctions.NotificationAPI.List, true},
		{"UnreadCount", http.MethodGet, "/v1/notifications/unread-count", handleFunctions.NotificationAPI.UnreadCount, true},
		{"StreamNotifications", http.MethodGet, "/v1/notifications/stream", handleFunctions.NotificationAPI.Stream, true},
		{"MarkAllNotificationsRead", http.MethodPost, "/v1/notifications/read-all", handleFunctions.NotificationAPI.MarkAllAsRead, true},
		{"MarkNotificationRead", http.MethodPost, "/v1/notifications/:notificationId/read", handleFunctions.NotificationAPI.MarkAsRead, true},
		{"ClearNotification", http.MethodDelete, "/v1/notifications/:notificationId", handleFunctions.NotificationAPI.Clear, true},

		{"ListFavorites", http.MethodGet, "/v1/favorites", handleFunctions.FavoriteAPI.List, true},
		{"GetFavorite", http.MethodGet, "/v1/favorites/:petId", handleFunctions.FavoriteAPI.Get, true},
		{"AddFavorite", http.MethodPut, "/v1/favorites/:petId", handleFunctions.FavoriteAPI.Add, true},
		{"RemoveFavorite", http.MethodDelete, "/v1/favorites/:petId", handleFunctions.FavoriteAPI.Remove, true},
	}
}
