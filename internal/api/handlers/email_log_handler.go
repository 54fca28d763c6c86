package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tasklane/backend/internal/services"
)

type EmailLogHandler struct {
	service *services.EmailLogService
}

func NewEmailLogHandler(service *services.EmailLogService) *EmailLogHandler {
	return &EmailLogHandler{service: service}
}

// ListMine returns the email notifications queued or sent to the caller.
func (h *EmailLogHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	logs, err := h.service.ListForReceiver(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list email notifications"})
		return
	}
	c.JSON(http.StatusOK, logs)
}
