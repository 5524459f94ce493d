// Package services contains the application-level use cases that sit between
// the HTTP handlers and the infrastructure layer.
package services

import (
	"context"
	"time"

	"github.com/upskillhq/upskill-go/internal/domain/entities/insights"
	"github.com/upskillhq/upskill-go/internal/domain/repositories"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/manager"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/performance"
)

// InsightsService serves the dashboard and product analytics aggregates
// through the read-through cache. The repository computation only runs on a
// cold or forced fetch.
type InsightsService struct {
	cache       *manager.Manager
	insights    repositories.InsightsRepository
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewInsightsService(cache *manager.Manager, insightsRepo repositories.InsightsRepository, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *InsightsService {
	return &InsightsService{
		cache:       cache,
		insights:    insightsRepo,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

func (s *InsightsService) ClientDashboard(ctx context.Context, clientID string, limit, offset int, force bool) (*insights.DashboardData, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("client_dashboard")
	defer marker.Complete()
	marker.AddMetadata("clientId", clientID)

	data, err := s.cache.ClientDashboard(ctx, clientID, limit, offset, force, func(ctx context.Context) (*insights.DashboardData, error) {
		return s.insights.ComputeDashboard(clientID, limit, offset)
	})
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	s.logger.Analytics().Debug("Dashboard served", "clientId", clientID, "duration", time.Since(start))
	return data, nil
}

func (s *InsightsService) ProductPerformance(ctx context.Context, productID string, force bool) (*insights.ProductPerformance, error) {
	marker := s.perfTracker.StartOperation("product_performance")
	defer marker.Complete()
	marker.AddMetadata("productId", productID)

	perf, err := s.cache.ProductPerformance(ctx, productID, force, func(ctx context.Context) (*insights.ProductPerformance, error) {
		return s.insights.ComputeProductPerformance(productID)
	})
	if err != nil {
		marker.SetError(err)
		return nil, err
	}
	return perf, nil
}
