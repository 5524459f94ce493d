package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/upskillhq/upskill-go/internal/application/services"
	"github.com/upskillhq/upskill-go/internal/domain/repositories"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/performance"
)

const interviewProcessTimeout = 5 * time.Minute

// InterviewHandlers exposes interview submission and status polling. The
// service is nil when no transcription credentials are configured, in which
// case submission responds 503.
type InterviewHandlers struct {
	interviews  *services.InterviewService
	repo        repositories.InterviewRepository
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewInterviewHandlers(interviews *services.InterviewService, repo repositories.InterviewRepository, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *InterviewHandlers {
	return &InterviewHandlers{
		interviews:  interviews,
		repo:        repo,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// SubmitInterview handles POST /api/v1/interviews
func (h *InterviewHandlers) SubmitInterview(c *gin.Context) {
	if h.interviews == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "interview grading is not configured"})
		return
	}

	var req struct {
		StudentID string `json:"studentId" binding:"required"`
		ModuleID  string `json:"moduleId" binding:"required"`
		AudioURL  string `json:"audioUrl" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interview, err := h.interviews.Submit(c.Request.Context(), req.StudentID, req.ModuleID, req.AudioURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit interview"})
		return
	}

	// Transcription and grading run past the request lifetime.
	go func(id string) {
		ctx, cancel := context.WithTimeout(context.Background(), interviewProcessTimeout)
		defer cancel()
		if err := h.interviews.Process(ctx, id); err != nil {
			h.logger.Interview().Error("Interview processing failed", "interviewId", id, "error", err.Error())
		}
	}(interview.ID)

	c.JSON(http.StatusAccepted, interview)
}

// GetInterview handles GET /api/v1/interviews/:id
func (h *InterviewHandlers) GetInterview(c *gin.Context) {
	id := c.Param("id")
	interview, err := h.repo.FindByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load interview"})
		return
	}
	if interview == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "interview not found"})
		return
	}
	c.JSON(http.StatusOK, interview)
}
