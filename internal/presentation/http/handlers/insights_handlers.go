package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/upskillhq/upskill-go/internal/application/services"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/performance"
	"github.com/upskillhq/upskill-go/internal/presentation/http/httpcache"
)

// InsightsHandlers serves the dashboard and product analytics endpoints.
// Responses carry an ETag so unchanged cached aggregates answer 304.
type InsightsHandlers struct {
	insights    *services.InsightsService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewInsightsHandlers(insights *services.InsightsService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *InsightsHandlers {
	return &InsightsHandlers{
		insights:    insights,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetDashboard handles GET /api/v1/analytics/dashboard?clientId=&limit=&offset=&refresh=
func (h *InsightsHandlers) GetDashboard(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_dashboard_request")
	defer marker.Complete()

	clientID := c.Query("clientId")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientId is required"})
		return
	}
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)
	force := c.Query("refresh") == "true"

	data, err := h.insights.ClientDashboard(c.Request.Context(), clientID, limit, offset, force)
	if err != nil {
		marker.SetError(err)
		h.logger.Analytics().Error("Dashboard request failed", "clientId", clientID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute dashboard"})
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode dashboard"})
		return
	}
	httpcache.WriteJSON(c, body)
}

// GetProductPerformance handles GET /api/v1/analytics/products/:id
func (h *InsightsHandlers) GetProductPerformance(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_product_performance_request")
	defer marker.Complete()

	productID := c.Param("id")
	force := c.Query("refresh") == "true"

	perf, err := h.insights.ProductPerformance(c.Request.Context(), productID, force)
	if err != nil {
		marker.SetError(err)
		h.logger.Analytics().Error("Product performance request failed", "productId", productID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute product performance"})
		return
	}

	body, err := json.Marshal(perf)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode product performance"})
		return
	}
	httpcache.WriteJSON(c, body)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
