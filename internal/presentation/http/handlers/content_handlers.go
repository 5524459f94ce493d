package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/upskillhq/upskill-go/internal/application/services"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/performance"
	"github.com/upskillhq/upskill-go/internal/presentation/http/httpcache"
)

// ContentHandlers serves module content, client config and expert session
// listings.
type ContentHandlers struct {
	content     *services.ContentService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewContentHandlers(content *services.ContentService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ContentHandlers {
	return &ContentHandlers{
		content:     content,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetModuleContent handles GET /api/v1/modules/:id/content
func (h *ContentHandlers) GetModuleContent(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_module_content_request")
	defer marker.Complete()

	moduleID := c.Param("id")
	force := c.Query("refresh") == "true"

	content, err := h.content.ModuleContent(c.Request.Context(), moduleID, force)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusNotFound, gin.H{"error": "module content unavailable"})
		return
	}

	body, err := json.Marshal(content)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode module content"})
		return
	}
	httpcache.WriteJSON(c, body)
}

// GetClientConfig handles GET /api/v1/clients/:id/config
func (h *ContentHandlers) GetClientConfig(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_client_config_request")
	defer marker.Complete()

	clientID := c.Param("id")
	force := c.Query("refresh") == "true"

	cfg, err := h.content.ClientConfig(c.Request.Context(), clientID, force)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusNotFound, gin.H{"error": "client config unavailable"})
		return
	}

	body, err := json.Marshal(cfg)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode client config"})
		return
	}
	httpcache.WriteJSON(c, body)
}

// GetExpertSessions handles GET /api/v1/expert-sessions?clientId=
func (h *ContentHandlers) GetExpertSessions(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_expert_sessions_request")
	defer marker.Complete()

	clientID := c.Query("clientId")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientId is required"})
		return
	}
	force := c.Query("refresh") == "true"

	list, err := h.content.ExpertSessions(c.Request.Context(), clientID, force)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list expert sessions"})
		return
	}

	body, err := json.Marshal(list)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode expert sessions"})
		return
	}
	httpcache.WriteJSON(c, body)
}
