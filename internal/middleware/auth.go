package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bloghive/internal/models"
	"bloghive/internal/services"
	"bloghive/internal/utils"
)

const (
	CtxUserID  = "user_id"
	CtxIsAdmin = "is_admin"
)

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "kind": "unauthorized", "message": msg})
}

// AccountLookup is the part of services.UserService the middleware needs.
type AccountLookup interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// AuthMiddleware checks the bearer token and reloads the account on every
// request, so a ban takes effect before the access token expires.
func AuthMiddleware(tokens services.TokenService, accounts AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		// let preflight through
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			unauthorized(c, "Missing or invalid Authorization header")
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		user, err := accounts.GetByID(c.Request.Context(), claims.UserID)
		switch {
		case errors.Is(err, services.ErrNotFound):
			unauthorized(c, "Account no longer exists")
			return
		case err != nil:
			se := services.Infra("account lookup", err)
			utils.Logger.WithError(se.Err).WithField("user_id", claims.UserID).Error("[auth] account lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "kind": se.Code, "message": se.Message})
			return
		case user.Banned:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "kind": services.ErrBanned.Code, "message": services.ErrBanned.Message})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// Actor reads the caller put into the context by AuthMiddleware.
func Actor(c *gin.Context) (services.Actor, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return services.Actor{}, false
	}
	id, _ := v.(int)
	isAdmin := c.GetBool(CtxIsAdmin)
	return services.Actor{UserID: id, IsAdmin: isAdmin}, id != 0
}
