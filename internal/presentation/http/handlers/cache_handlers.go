package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/interfaces"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/metrics"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/performance"
)

// CacheHandlers exposes the admin cache surface: stats, manual cleanup and
// manual invalidation.
type CacheHandlers struct {
	collector   *metrics.Collector
	invalidator interfaces.Invalidator
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewCacheHandlers(collector *metrics.Collector, invalidator interfaces.Invalidator, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CacheHandlers {
	return &CacheHandlers{
		collector:   collector,
		invalidator: invalidator,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetCacheStats handles GET /api/v1/cache/stats
func (h *CacheHandlers) GetCacheStats(c *gin.Context) {
	stats, err := h.collector.CacheStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to collect cache stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// PostCacheCleanup handles POST /api/v1/cache/cleanup
func (h *CacheHandlers) PostCacheCleanup(c *gin.Context) {
	marker := h.perfTracker.StartOperation("manual_cache_cleanup")
	defer marker.Complete()

	removed, err := h.collector.CleanupExpired(c.Request.Context())
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cache cleanup failed"})
		return
	}

	h.logger.Cache().Info("Manual cache cleanup completed", "removed", removed)
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// PostCacheInvalidate handles POST /api/v1/cache/invalidate
func (h *CacheHandlers) PostCacheInvalidate(c *gin.Context) {
	var req struct {
		EntityType string `json:"entityType" binding:"required"`
		EntityID   string `json:"entityId" binding:"required"`
		Operation  string `json:"operation" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	removed := h.invalidator.CascadeInvalidation(c.Request.Context(), req.EntityType, req.EntityID, req.Operation)
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
