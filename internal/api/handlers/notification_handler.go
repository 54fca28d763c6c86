package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tasklane/backend/internal/models"
	"github.com/tasklane/backend/internal/services"
)

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List returns the caller's notifications in a workspace. Query params:
// read=true|false, archived=true, snoozed=true.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := services.NotificationFilter{
		WorkspaceID: c.Param("workspace_id"),
		Archived:    c.Query("archived") == "true",
		Snoozed:     c.Query("snoozed") == "true",
	}
	if raw := c.Query("read"); raw != "" {
		read, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "read must be true or false"})
			return
		}
		filter.Read = &read
	}

	notifications, err := h.service.List(userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	n, ok := h.inWorkspace(c, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, n)
}

// inWorkspace loads the caller's notification named by :id and answers 404
// unless it belongs to :workspace_id.
func (h *NotificationHandler) inWorkspace(c *gin.Context, userID string) (*models.Notification, bool) {
	n, err := h.service.Get(userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Failed to get notification")
		return nil, false
	}
	if n.WorkspaceID != c.Param("workspace_id") {
		h.writeError(c, services.ErrNotificationNotFound, "")
		return nil, false
	}
	return n, true
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(userID, c.Param("workspace_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_unread_notifications_count": count})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	updated, err := h.service.MarkAllRead(userID, c.Param("workspace_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark all notifications as read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": updated})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	h.mutate(c, h.service.MarkRead, "Notification marked as read")
}

func (h *NotificationHandler) MarkUnread(c *gin.Context) {
	h.mutate(c, h.service.MarkUnread, "Notification marked as unread")
}

func (h *NotificationHandler) Archive(c *gin.Context) {
	h.mutate(c, h.service.Archive, "Notification archived")
}

func (h *NotificationHandler) Unarchive(c *gin.Context) {
	h.mutate(c, h.service.Unarchive, "Notification unarchived")
}

func (h *NotificationHandler) Unsnooze(c *gin.Context) {
	h.mutate(c, h.service.Unsnooze, "Notification unsnoozed")
}

type SnoozeRequest struct {
	SnoozedTill time.Time `json:"snoozed_till" binding:"required"`
}

func (h *NotificationHandler) Snooze(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SnoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := h.inWorkspace(c, userID); !ok {
		return
	}
	if err := h.service.Snooze(userID, c.Param("id"), req.SnoozedTill); err != nil {
		h.writeError(c, err, "Failed to snooze notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification snoozed"})
}

func (h *NotificationHandler) mutate(c *gin.Context, op func(receiverID, id string) error, message string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if _, ok := h.inWorkspace(c, userID); !ok {
		return
	}
	if err := op(userID, c.Param("id")); err != nil {
		h.writeError(c, err, "Failed to update notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *NotificationHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidSnooze):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
