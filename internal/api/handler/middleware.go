package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// RequireAuth validates the Bearer token and stores the user ID in the
// request context.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token missing"})
			return
		}

		userID, err := h.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token or expired"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// currentUserID reads the authenticated user set by RequireAuth.
func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
