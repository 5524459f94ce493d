// Package routes wires HTTP endpoints to their handlers.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/upskillhq/upskill-go/internal/application/container"
	"github.com/upskillhq/upskill-go/internal/presentation/http/handlers"
	"github.com/upskillhq/upskill-go/internal/presentation/http/middleware"
	"github.com/upskillhq/upskill-go/pkg/config"
)

// SetupRoutes configures the gin router with all application routes.
func SetupRoutes(c *container.Container) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())

	authHandlers := handlers.NewAuthHandlers(c.AuthService, c.Logger, c.PerfTracker)
	healthHandlers := handlers.NewHealthHandlers(c.DB, c.Logger)
	insightsHandlers := handlers.NewInsightsHandlers(c.InsightsService, c.Logger, c.PerfTracker)
	contentHandlers := handlers.NewContentHandlers(c.ContentService, c.Logger, c.PerfTracker)
	catalogHandlers := handlers.NewCatalogHandlers(c.CatalogService, c.Logger, c.PerfTracker)
	interviewHandlers := handlers.NewInterviewHandlers(c.InterviewService, c.Interviews, c.Logger, c.PerfTracker)
	mediaHandlers := handlers.NewMediaHandlers(c.CoverProcessor, c.CatalogService, c.Logger, c.PerfTracker)
	cacheHandlers := handlers.NewCacheHandlers(c.Collector, c.Invalidation(), c.Logger, c.PerfTracker)
	opsHandlers := handlers.NewOpsHandlers(c.Broadcaster, c.Logger)

	// Cover originals and renditions are served straight off disk.
	router.Static("/media", config.MediaPath)

	api := router.Group("/api/v1")
	api.POST("/auth/login", authHandlers.Login)
	api.GET("/health", healthHandlers.GetHealth)
	api.GET("/db/status", healthHandlers.GetDatabaseStatus)

	// Read surface and interview submission require a valid token.
	authed := api.Group("")
	authed.Use(middleware.AdminAuthMiddleware())
	{
		authed.GET("/analytics/dashboard", insightsHandlers.GetDashboard)
		authed.GET("/analytics/products/:id", insightsHandlers.GetProductPerformance)
		authed.GET("/modules/:id/content", contentHandlers.GetModuleContent)
		authed.GET("/clients/:id/config", contentHandlers.GetClientConfig)
		authed.GET("/expert-sessions", contentHandlers.GetExpertSessions)

		authed.POST("/interviews", interviewHandlers.SubmitInterview)
		authed.GET("/interviews/:id", interviewHandlers.GetInterview)
	}

	// Write surface is admin-only.
	admin := authed.Group("")
	admin.Use(middleware.RequireRole("admin"))
	{
		catalog := admin.Group("/catalog")
		catalog.POST("/clients", catalogHandlers.CreateClient)
		catalog.PUT("/clients/:id", catalogHandlers.UpdateClient)
		catalog.PUT("/clients/:id/config", catalogHandlers.UpdateClientConfig)
		catalog.DELETE("/clients/:id", catalogHandlers.DeleteClient)

		catalog.POST("/products", catalogHandlers.CreateProduct)
		catalog.PUT("/products/:id", catalogHandlers.UpdateProduct)
		catalog.DELETE("/products/:id", catalogHandlers.DeleteProduct)

		catalog.POST("/modules", catalogHandlers.CreateModule)
		catalog.POST("/modules/import", catalogHandlers.ImportModules)
		catalog.PUT("/modules/:id", catalogHandlers.UpdateModule)
		catalog.DELETE("/modules/:id", catalogHandlers.DeleteModule)

		catalog.POST("/students", catalogHandlers.CreateStudent)
		catalog.PUT("/students/:id/status", catalogHandlers.SetStudentStatus)

		catalog.POST("/enrollments", catalogHandlers.CreateEnrollment)
		catalog.PUT("/enrollments/:id/progress", catalogHandlers.UpdateEnrollmentProgress)

		catalog.POST("/expert-sessions", catalogHandlers.CreateExpertSession)
		catalog.PUT("/expert-sessions/:id", catalogHandlers.UpdateExpertSession)
		catalog.DELETE("/expert-sessions/:id", catalogHandlers.DeleteExpertSession)

		admin.POST("/media/covers", mediaHandlers.UploadCover)
		admin.DELETE("/media/covers/:productId", mediaHandlers.DeleteCover)

		admin.GET("/cache/stats", cacheHandlers.GetCacheStats)
		admin.POST("/cache/cleanup", cacheHandlers.PostCacheCleanup)
		admin.POST("/cache/invalidate", cacheHandlers.PostCacheInvalidate)

		admin.GET("/ops/ws", opsHandlers.HandleOpsSocket)
	}

	return router
}
