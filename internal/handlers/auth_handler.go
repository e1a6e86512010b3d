package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bloghive/internal/services"
)

type AuthHandler struct {
	users        services.UserService
	verification services.VerificationService
}

func NewAuthHandler(users services.UserService, verification services.VerificationService) *AuthHandler {
	return &AuthHandler{users: users, verification: verification}
}

type AuthRequest struct {
	Action      string `json:"action"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
	UserID      int    `json:"userId"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// @Summary      Auth actions
// @Description  login, send-otp, verify-otp, forgot-password-send-otp, forgot-password-verify-otp, forgot-password-reset, delete-account
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      AuthRequest  true  "action and its fields"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Failure      403   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Failure      405   {object}  map[string]interface{}
// @Failure      429   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]interface{}
// @Router       /api/auth [post]
func (h *AuthHandler) Handle(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"success": false, "message": "Method not allowed"})
		return
	}

	var req AuthRequest
	if !bindJSON(c, "auth", &req) {
		return
	}

	switch strings.TrimSpace(req.Action) {
	case "":
		badRequest(c, "Action is required")
	case "login":
		h.login(c, req)
	case "send-otp":
		h.sendOTP(c, req)
	case "verify-otp":
		h.verifyOTP(c, req)
	case "forgot-password-send-otp":
		h.forgotSendOTP(c, req)
	case "forgot-password-verify-otp":
		h.forgotVerifyOTP(c, req)
	case "forgot-password-reset":
		h.forgotReset(c, req)
	case "delete-account":
		h.deleteAccount(c, req)
	default:
		badRequest(c, "Invalid action. Use: login, send-otp, verify-otp, forgot-password-send-otp, forgot-password-verify-otp, forgot-password-reset or delete-account")
	}
}

func (h *AuthHandler) login(c *gin.Context, req AuthRequest) {
	user, tokens, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, "auth][login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user":    user.Public(),
		"tokens":  tokens,
	})
}

func (h *AuthHandler) sendOTP(c *gin.Context, req AuthRequest) {
	if err := h.verification.SendSignupOTP(c.Request.Context(), req.Email, req.FullName, req.Password); err != nil {
		writeError(c, "auth][send-otp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP sent successfully", "email": strings.TrimSpace(req.Email)})
}

func (h *AuthHandler) verifyOTP(c *gin.Context, req AuthRequest) {
	user, err := h.verification.VerifySignupOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(c, "auth][verify-otp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account created successfully", "user": user.Public()})
}

func (h *AuthHandler) forgotSendOTP(c *gin.Context, req AuthRequest) {
	if err := h.verification.SendResetOTP(c.Request.Context(), req.Email); err != nil {
		writeError(c, "auth][forgot-password-send-otp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP sent successfully", "email": strings.TrimSpace(req.Email)})
}

func (h *AuthHandler) forgotVerifyOTP(c *gin.Context, req AuthRequest) {
	if err := h.verification.VerifyResetOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		writeError(c, "auth][forgot-password-verify-otp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP verified successfully"})
}

func (h *AuthHandler) forgotReset(c *gin.Context, req AuthRequest) {
	if err := h.verification.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		writeError(c, "auth][forgot-password-reset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successfully"})
}

func (h *AuthHandler) deleteAccount(c *gin.Context, req AuthRequest) {
	if err := h.users.DeleteAccount(c.Request.Context(), req.Email, req.Password, req.UserID); err != nil {
		writeError(c, "auth][delete-account", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account deleted successfully"})
}

// @Summary      Refresh tokens
// @Description  Rotates the refresh token and issues a new access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      RefreshRequest  true  "refresh token"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, "auth][refresh", &req) {
		return
	}
	user, tokens, err := h.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, "auth][refresh", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Token refreshed", "user": user.Public(), "tokens": tokens})
}
