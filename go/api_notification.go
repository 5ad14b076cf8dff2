package adoptionserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/adapters/realtime"
	notificationsapp "github.com/Apurer/pet-adoption-api/internal/domains/notifications/application"
)

// NotificationAPI serves the caller's inbox. Each call activates the caller's
// notification session if sign-in happened on another replica or before a restart.
type NotificationAPI struct {
	manager        *notificationsapp.Manager
	hub            *realtime.Hub
	originPatterns []string
}

// NewNotificationAPI wires the dispatcher and the websocket hub.
func NewNotificationAPI(manager *notificationsapp.Manager, hub *realtime.Hub, originPatterns []string) NotificationAPI {
	return NotificationAPI{manager: manager, hub: hub, originPatterns: originPatterns}
}

func (api *NotificationAPI) session(c *gin.Context) (*notificationsapp.Session, bool) {
	session, err := api.manager.Ensure(c.Request.Context(), currentPrincipal(c).UserID)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return session, true
}

// Get /v1/notifications
// Newest first, with the unread count
func (api *NotificationAPI) List(c *gin.Context) {
	session, ok := api.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

// Get /v1/notifications/unread-count
func (api *NotificationAPI) UnreadCount(c *gin.Context) {
	session, ok := api.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"unreadCount": session.UnreadCount()})
}

// Post /v1/notifications/:notificationId/read
func (api *NotificationAPI) MarkAsRead(c *gin.Context) {
	id, ok := pathParam(c, "notificationId")
	if !ok {
		return
	}
	session, ok := api.session(c)
	if !ok {
		return
	}
	session.MarkAsRead(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}

// Post /v1/notifications/read-all
func (api *NotificationAPI) MarkAllAsRead(c *gin.Context) {
	session, ok := api.session(c)
	if !ok {
		return
	}
	session.MarkAllAsRead(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// Delete /v1/notifications/:notificationId
// Clearing an unknown id is a no-op
func (api *NotificationAPI) Clear(c *gin.Context) {
	id, ok := pathParam(c, "notificationId")
	if !ok {
		return
	}
	session, ok := api.session(c)
	if !ok {
		return
	}
	session.Clear(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}

// Get /v1/notifications/stream
// Websocket pushing {unreadCount, notifications} after every inbox change
func (api *NotificationAPI) Stream(c *gin.Context) {
	session, ok := api.session(c)
	if !ok {
		return
	}
	api.hub.Serve(c.Writer, c.Request, session.UserID(), session.Snapshot(), api.originPatterns)
}
