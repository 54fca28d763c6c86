package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tasklane/backend/internal/services"
)

type PreferenceHandler struct {
	service *services.PreferenceService
}

func NewPreferenceHandler(service *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: service}
}

func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	pref, err := h.service.Get(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notification preferences"})
		return
	}
	c.JSON(http.StatusOK, pref)
}

func (h *PreferenceHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var patch services.PreferencePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pref, err := h.service.Update(userID, patch)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification preferences"})
		return
	}
	c.JSON(http.StatusOK, pref)
}

type ScopedPreferenceRequest struct {
	ProjectID *string `json:"project_id"`
	services.PreferencePatch
}

// SetWorkspace upserts a workspace override, or a project override when the
// body names a project_id.
func (h *PreferenceHandler) SetWorkspace(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ScopedPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ProjectID != nil && *req.ProjectID == "" {
		req.ProjectID = nil
	}

	pref, err := h.service.SetScoped(userID, c.Param("workspace_id"), req.ProjectID, req.PreferencePatch)
	if err != nil {
		// unknown workspace or project ids fail the foreign key
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to save notification preferences"})
		return
	}
	c.JSON(http.StatusOK, pref)
}
