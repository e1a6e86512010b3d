package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bloghive/internal/services"
)

type AdminHandler struct {
	admin services.AdminService
	blogs services.BlogService
}

func NewAdminHandler(admin services.AdminService, blogs services.BlogService) *AdminHandler {
	return &AdminHandler{admin: admin, blogs: blogs}
}

type BanRequest struct {
	Action string `json:"action" binding:"required,oneof=ban unban"`
}

type SendNotificationRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description" binding:"required"`
	SendToAll     bool   `json:"sendToAll"`
	SelectedUsers []int  `json:"selectedUsers"`
}

// @Summary      List users
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "page"
// @Param        limit  query  int  false  "page size"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, p, err := h.admin.ListUsers(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		writeError(c, "admin][users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users, "pagination": p})
}

// @Summary      Ban or unban a user
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  int         true  "user id"
// @Param        body    body  BanRequest  true  "ban | unban"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/admin/users/{userId} [put]
func (h *AdminHandler) SetBan(c *gin.Context) {
	id, ok := pathID(c, "userId")
	if !ok {
		badRequest(c, "Invalid user ID")
		return
	}
	var req BanRequest
	if !bindJSON(c, "admin][ban", &req) {
		return
	}
	user, err := h.admin.SetBan(c.Request.Context(), id, req.Action)
	if err != nil {
		writeError(c, "admin][ban", err)
		return
	}
	msg := "User unbanned successfully"
	if user.Banned {
		msg = "User banned successfully"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg, "user": user})
}

// @Summary      Delete any post
// @Tags         Admin
// @Security     BearerAuth
// @Param        blogId  path  int  true  "post id"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/admin/blogs/{blogId} [delete]
func (h *AdminHandler) DeleteBlog(c *gin.Context) {
	id, ok := pathID(c, "blogId")
	if !ok {
		badRequest(c, "Invalid blog ID")
		return
	}
	actor := getActor(c)
	actor.IsAdmin = true
	if err := h.blogs.Delete(c.Request.Context(), actor, id); err != nil {
		writeError(c, "admin][delete-blog", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Blog post deleted successfully"})
}

// @Summary      Send a notification
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  SendNotificationRequest  true  "notification"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/admin/notifications/send [post]
func (h *AdminHandler) SendNotification(c *gin.Context) {
	var req SendNotificationRequest
	if !bindJSON(c, "admin][notify", &req) {
		return
	}
	res, err := h.admin.Broadcast(c.Request.Context(), services.BroadcastInput{
		Title:         req.Title,
		Description:   req.Description,
		SendToAll:     req.SendToAll,
		SelectedUsers: req.SelectedUsers,
	})
	if err != nil {
		writeError(c, "admin][notify", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Notification sent successfully",
		"notification":   res.Notification,
		"recipientCount": res.RecipientCount,
		"emailFailures":  res.EmailFailures,
	})
}
