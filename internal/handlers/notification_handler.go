package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bloghive/internal/services"
)

type NotificationHandler struct {
	notes services.NotificationService
}

func NewNotificationHandler(notes services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notes: notes}
}

// @Summary      My notifications
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /api/user/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	list, err := h.notes.List(c.Request.Context(), getActor(c).UserID)
	if err != nil {
		writeError(c, "notifications][list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": list})
}

// @Summary      Mark notification read
// @Tags         Notifications
// @Security     BearerAuth
// @Param        id  path  int  true  "user notification id"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/user/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		badRequest(c, "Invalid notification ID")
		return
	}
	if err := h.notes.MarkRead(c.Request.Context(), getActor(c).UserID, id); err != nil {
		writeError(c, "notifications][read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification marked as read"})
}
