package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tasklane/backend/internal/api/middleware"
	"github.com/tasklane/backend/internal/services"
)

type EventHandler struct {
	notifier *services.Notifier
}

func NewEventHandler(notifier *services.Notifier) *EventHandler {
	return &EventHandler{notifier: notifier}
}

// Publish fans an activity event out to its receivers. The caller is recorded
// as the actor unless the body names one.
func (h *EventHandler) Publish(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ev := services.Event{TriggeredByID: userID}
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := ev.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.notifier.Notify(c.Request.Context(), ev)
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Warn("failed to deliver event")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to deliver event"})
		return
	}
	c.JSON(http.StatusAccepted, res)
}
