package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context keys and role names set by the identity headers the api-gateway
// injects after verifying the caller's token.
const (
	UserContextKey = "userID"
	RoleContextKey = "role"
	AdminRole      = "admin"
	DriverRole     = "driver"
)

// AuthMiddleware trusts the X-User-ID / X-User-Role headers. The service
// only runs behind the gateway and is never publicly exposed.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		role := c.GetHeader("X-User-Role")

		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Set(UserContextKey, userID)
		c.Set(RoleContextKey, role)
		c.Next()
	}
}

// RequireRole rejects callers whose role header matches none of the given
// roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleContextKey)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		c.Abort()
	}
}
