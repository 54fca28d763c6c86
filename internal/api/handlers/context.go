package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tasklane/backend/internal/api/middleware"
)

// currentUserID returns the id stored by the auth middleware. It writes a 401
// and returns false when the request is unauthenticated.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}
