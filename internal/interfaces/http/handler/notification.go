package handler

import (
	"github.com/cortecaja/backend/internal/application/notification"
	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the caller's notification inbox
type NotificationHandler struct {
	BaseHandler
	notificationService *notification.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List godoc
// @ID           listNotifications
// @Summary      My notifications
// @Description  Notifications addressed to the authenticated user, newest first
// @Tags         notifications
// @Produce      json
// @Success      200 {object} APIResponse[[]notification.NotificationResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	_, userID, ok := caller(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	items, err := h.notificationService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, items, len(items))
}
