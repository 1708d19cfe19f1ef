package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireAuth extracts the requester uid from "Authorization: Bearer <uid>"
// and stores it in the gin context. The token is trusted as-is; real
// verification lives in the identity layer in front of this service.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}
		c.Set("uid", strings.TrimSpace(parts[1]))
		c.Next()
	}
}
