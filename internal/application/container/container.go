// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"

	"github.com/upskillhq/upskill-go/internal/application/services"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/interfaces"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/invalidation"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/manager"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/metrics"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/store"
	"github.com/upskillhq/upskill-go/internal/infrastructure/email"
	"github.com/upskillhq/upskill-go/internal/infrastructure/media"
	"github.com/upskillhq/upskill-go/internal/infrastructure/messaging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/performance"
	"github.com/upskillhq/upskill-go/internal/infrastructure/persistence/database"
	learningrepo "github.com/upskillhq/upskill-go/internal/infrastructure/persistence/learning"
	"github.com/upskillhq/upskill-go/internal/infrastructure/transcription"
	"github.com/upskillhq/upskill-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies.
type Container struct {
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker

	DB           *database.DB
	CacheStore   store.Store
	CacheManager *manager.Manager
	Invalidator  *invalidation.Engine
	Collector    *metrics.Collector
	Broadcaster  *messaging.OpsBroadcaster

	Clients     *learningrepo.ClientRepository
	Products    *learningrepo.ProductRepository
	Modules     *learningrepo.ModuleRepository
	Students    *learningrepo.StudentRepository
	Enrollments *learningrepo.EnrollmentRepository
	Sessions    *learningrepo.ExpertSessionRepository
	Interviews  *learningrepo.InterviewRepository
	Relations   *learningrepo.RelationRepository
	Activity    *learningrepo.ActivityRepository
	Insights    *learningrepo.InsightsRepository

	InsightsService  *services.InsightsService
	ContentService   *services.ContentService
	CatalogService   *services.CatalogService
	InterviewService *services.InterviewService
	AuthService      *services.AuthService
	CacheWarmer      *services.CacheWarmer

	CoverProcessor *media.CoverProcessor
	EmailService   email.Service
}

// NewContainer wires every singleton. External integrations (email,
// transcription) are optional: with no API key configured the dependent
// features degrade gracefully instead of failing startup.
func NewContainer(db *database.DB, logger *logging.ChanneledLogger) (*Container, error) {
	perfTracker := performance.NewTracker(config.SlowQueryThreshold, logger)

	cacheStore := store.NewSQLStore(db.DB, logger)
	cacheManager := manager.NewManager(cacheStore, config.CacheWriteQueueSize, logger)
	collector := metrics.NewCollector(cacheStore, logger)
	broadcaster := messaging.NewOpsBroadcaster(collector, logger)

	clients := learningrepo.NewClientRepository(db.DB, logger)
	products := learningrepo.NewProductRepository(db.DB, logger)
	modules := learningrepo.NewModuleRepository(db.DB, logger)
	students := learningrepo.NewStudentRepository(db.DB, logger)
	enrollments := learningrepo.NewEnrollmentRepository(db.DB, logger)
	sessions := learningrepo.NewExpertSessionRepository(db.DB, logger)
	interviews := learningrepo.NewInterviewRepository(db.DB, logger)
	relations := learningrepo.NewRelationRepository(db.DB, logger)
	activity := learningrepo.NewActivityRepository(db.DB, logger)
	insightsRepo := learningrepo.NewInsightsRepository(db.DB, logger)

	invalidator := invalidation.NewEngine(cacheStore, relations, logger, broadcaster)

	var emailService email.Service
	if config.ResendAPIKey != "" {
		svc, err := email.NewService()
		if err != nil {
			return nil, fmt.Errorf("failed to create email service: %w", err)
		}
		emailService = svc
	} else {
		logger.Startup().Warn("RESEND_API_KEY not set, email delivery disabled")
	}

	var transcriptionService transcription.Service
	if config.AssemblyAIKey != "" {
		client, err := transcription.NewClient(config.AssemblyAIKey, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create transcription client: %w", err)
		}
		transcriptionService = client
	} else {
		logger.Startup().Warn("ASSEMBLYAI_API_KEY not set, interview grading disabled")
	}

	insightsService := services.NewInsightsService(cacheManager, insightsRepo, logger, perfTracker)
	contentService := services.NewContentService(cacheManager, modules, clients, sessions, logger, perfTracker)
	catalogService := services.NewCatalogService(clients, products, modules, students, enrollments, sessions, activity, invalidator, emailService, logger)

	var interviewService *services.InterviewService
	if transcriptionService != nil {
		interviewService = services.NewInterviewService(interviews, students, modules, activity, transcriptionService, emailService, invalidator, logger, perfTracker)
	}

	warmer := services.NewCacheWarmer(clients, insightsService, contentService, broadcaster, logger)

	return &Container{
		Logger:      logger,
		PerfTracker: perfTracker,

		DB:           db,
		CacheStore:   cacheStore,
		CacheManager: cacheManager,
		Invalidator:  invalidator,
		Collector:    collector,
		Broadcaster:  broadcaster,

		Clients:     clients,
		Products:    products,
		Modules:     modules,
		Students:    students,
		Enrollments: enrollments,
		Sessions:    sessions,
		Interviews:  interviews,
		Relations:   relations,
		Activity:    activity,
		Insights:    insightsRepo,

		InsightsService:  insightsService,
		ContentService:   contentService,
		CatalogService:   catalogService,
		InterviewService: interviewService,
		AuthService:      services.NewAuthService(logger),
		CacheWarmer:      warmer,

		CoverProcessor: media.NewCoverProcessor(config.MediaPath),
		EmailService:   emailService,
	}, nil
}

// Invalidation exposes the invalidator behind its interface for handlers.
func (c *Container) Invalidation() interfaces.Invalidator {
	return c.Invalidator
}
