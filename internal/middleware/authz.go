package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bloghive/internal/authz"
)

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CtxUserID); !exists {
			unauthorized(c, "Authentication required")
			return
		}
		if !authz.CanManageUsers(c.GetBool(CtxIsAdmin)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "kind": "forbidden", "message": "Admin access required"})
			return
		}
		c.Next()
	}
}
