package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/upskillhq/upskill-go/internal/application/services"
	"github.com/upskillhq/upskill-go/internal/infrastructure/media"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/performance"
)

// MediaHandlers manages product cover uploads and their webp renditions.
type MediaHandlers struct {
	processor   *media.CoverProcessor
	catalog     *services.CatalogService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewMediaHandlers(processor *media.CoverProcessor, catalog *services.CatalogService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *MediaHandlers {
	return &MediaHandlers{
		processor:   processor,
		catalog:     catalog,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// UploadCover handles POST /api/v1/media/covers
func (h *MediaHandlers) UploadCover(c *gin.Context) {
	marker := h.perfTracker.StartOperation("upload_cover")
	defer marker.Complete()

	var req struct {
		ProductID string `json:"productId" binding:"required"`
		Image     string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	marker.AddMetadata("productId", req.ProductID)

	result, err := h.processor.ProcessCoverImage(req.Image, req.ProductID)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "failed to process cover image"})
		return
	}

	previous, err := h.catalog.SetProductCover(c.Request.Context(), req.ProductID, &result.OriginalPath)
	if err != nil {
		marker.SetError(err)
		if cleanupErr := h.processor.DeleteCoverImage(result.OriginalPath); cleanupErr != nil {
			h.logger.System().Warn("Failed to clean up orphaned cover", "path", result.OriginalPath, "error", cleanupErr.Error())
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to attach cover to product"})
		return
	}

	if previous != nil && *previous != result.OriginalPath {
		if err := h.processor.DeleteCoverImage(*previous); err != nil {
			h.logger.System().Warn("Failed to remove previous cover", "path", *previous, "error", err.Error())
		}
	}

	c.JSON(http.StatusCreated, result)
}

// DeleteCover handles DELETE /api/v1/media/covers/:productId
func (h *MediaHandlers) DeleteCover(c *gin.Context) {
	productID := c.Param("productId")

	previous, err := h.catalog.SetProductCover(c.Request.Context(), productID, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to detach cover from product"})
		return
	}
	if previous != nil {
		if err := h.processor.DeleteCoverImage(*previous); err != nil {
			h.logger.System().Warn("Failed to remove cover files", "path", *previous, "error", err.Error())
		}
	}
	c.Status(http.StatusNoContent)
}
