package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/upskillhq/upskill-go/internal/application/services"
	"github.com/upskillhq/upskill-go/internal/domain/entities/learning"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/performance"
)

// CatalogHandlers exposes the admin write surface for the learning catalog.
type CatalogHandlers struct {
	catalog     *services.CatalogService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewCatalogHandlers(catalog *services.CatalogService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CatalogHandlers {
	return &CatalogHandlers{
		catalog:     catalog,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// --- clients ---

// CreateClient handles POST /api/v1/catalog/clients
func (h *CatalogHandlers) CreateClient(c *gin.Context) {
	var client learning.Client
	if err := c.ShouldBindJSON(&client); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateClient(c.Request.Context(), &client); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create client"})
		return
	}
	c.JSON(http.StatusCreated, client)
}

// UpdateClient handles PUT /api/v1/catalog/clients/:id
func (h *CatalogHandlers) UpdateClient(c *gin.Context) {
	var client learning.Client
	if err := c.ShouldBindJSON(&client); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client.ID = c.Param("id")
	if err := h.catalog.UpdateClient(c.Request.Context(), &client); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update client"})
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateClientConfig handles PUT /api/v1/catalog/clients/:id/config
func (h *CatalogHandlers) UpdateClientConfig(c *gin.Context) {
	var cfg learning.ClientConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg.ClientID = c.Param("id")
	if err := h.catalog.UpdateClientConfig(c.Request.Context(), &cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update client config"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// DeleteClient handles DELETE /api/v1/catalog/clients/:id
func (h *CatalogHandlers) DeleteClient(c *gin.Context) {
	if err := h.catalog.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete client"})
		return
	}
	c.Status(http.StatusNoContent)
}

// --- products ---

// CreateProduct handles POST /api/v1/catalog/products
func (h *CatalogHandlers) CreateProduct(c *gin.Context) {
	var product learning.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateProduct(c.Request.Context(), &product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/catalog/products/:id
func (h *CatalogHandlers) UpdateProduct(c *gin.Context) {
	var product learning.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product.ID = c.Param("id")
	if err := h.catalog.UpdateProduct(c.Request.Context(), &product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/catalog/products/:id
func (h *CatalogHandlers) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}
	c.Status(http.StatusNoContent)
}

// --- modules ---

// CreateModule handles POST /api/v1/catalog/modules
func (h *CatalogHandlers) CreateModule(c *gin.Context) {
	var module learning.Module
	if err := c.ShouldBindJSON(&module); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateModule(c.Request.Context(), &module); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create module"})
		return
	}
	c.JSON(http.StatusCreated, module)
}

// UpdateModule handles PUT /api/v1/catalog/modules/:id
func (h *CatalogHandlers) UpdateModule(c *gin.Context) {
	var module learning.Module
	if err := c.ShouldBindJSON(&module); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	module.ID = c.Param("id")
	if err := h.catalog.UpdateModule(c.Request.Context(), &module); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update module"})
		return
	}
	c.JSON(http.StatusOK, module)
}

// DeleteModule handles DELETE /api/v1/catalog/modules/:id
func (h *CatalogHandlers) DeleteModule(c *gin.Context) {
	if err := h.catalog.DeleteModule(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete module"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportModules handles POST /api/v1/catalog/modules/import
func (h *CatalogHandlers) ImportModules(c *gin.Context) {
	var req struct {
		Modules []*learning.Module `json:"modules" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.catalog.ImportModules(c.Request.Context(), req.Modules)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "imported": stored})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"imported": stored})
}

// --- students ---

// CreateStudent handles POST /api/v1/catalog/students
func (h *CatalogHandlers) CreateStudent(c *gin.Context) {
	var req struct {
		learning.Student
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateStudent(c.Request.Context(), &req.Student, req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create student"})
		return
	}
	c.JSON(http.StatusCreated, req.Student)
}

// SetStudentStatus handles PUT /api/v1/catalog/students/:id/status
func (h *CatalogHandlers) SetStudentStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,oneof=active inactive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.SetStudentStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update student status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// --- enrollments ---

// CreateEnrollment handles POST /api/v1/catalog/enrollments
func (h *CatalogHandlers) CreateEnrollment(c *gin.Context) {
	var req struct {
		StudentID string `json:"studentId" binding:"required"`
		ModuleID  string `json:"moduleId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enrollment, err := h.catalog.Enroll(c.Request.Context(), req.StudentID, req.ModuleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create enrollment"})
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

// UpdateEnrollmentProgress handles PUT /api/v1/catalog/enrollments/:id/progress
func (h *CatalogHandlers) UpdateEnrollmentProgress(c *gin.Context) {
	var req struct {
		StudentID string  `json:"studentId" binding:"required"`
		Progress  float64 `json:"progress" binding:"min=0,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.UpdateEnrollmentProgress(c.Request.Context(), c.Param("id"), req.StudentID, req.Progress); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update progress"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": req.Progress})
}

// --- expert sessions ---

// CreateExpertSession handles POST /api/v1/catalog/expert-sessions
func (h *CatalogHandlers) CreateExpertSession(c *gin.Context) {
	var session learning.ExpertSession
	if err := c.ShouldBindJSON(&session); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateExpertSession(c.Request.Context(), &session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create expert session"})
		return
	}
	c.JSON(http.StatusCreated, session)
}

// UpdateExpertSession handles PUT /api/v1/catalog/expert-sessions/:id
func (h *CatalogHandlers) UpdateExpertSession(c *gin.Context) {
	var session learning.ExpertSession
	if err := c.ShouldBindJSON(&session); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session.ID = c.Param("id")
	if err := h.catalog.UpdateExpertSession(c.Request.Context(), &session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update expert session"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteExpertSession handles DELETE /api/v1/catalog/expert-sessions/:id
func (h *CatalogHandlers) DeleteExpertSession(c *gin.Context) {
	if err := h.catalog.DeleteExpertSession(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete expert session"})
		return
	}
	c.Status(http.StatusNoContent)
}
