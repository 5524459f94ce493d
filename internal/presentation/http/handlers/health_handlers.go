package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/persistence/database"
)

// HealthHandlers serves liveness and database status endpoints.
type HealthHandlers struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

func NewHealthHandlers(db *database.DB, logger *logging.ChanneledLogger) *HealthHandlers {
	return &HealthHandlers{db: db, logger: logger}
}

// GetHealth handles GET /api/v1/health
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// GetDatabaseStatus handles GET /api/v1/db/status
func (h *HealthHandlers) GetDatabaseStatus(c *gin.Context) {
	start := time.Now()

	if err := h.db.Ping(); err != nil {
		h.logger.System().Error("Database status check failed", "error", err.Error())
		c.JSON(http.StatusOK, gin.H{
			"status":       "unavailable",
			"error":        err.Error(),
			"responseTime": time.Since(start).String(),
		})
		return
	}

	stats := h.db.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"openConns":    stats.OpenConnections,
		"inUse":        stats.InUse,
		"idle":         stats.Idle,
		"responseTime": time.Since(start).String(),
	})
}
