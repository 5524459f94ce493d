package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/upskillhq/upskill-go/internal/domain/repositories"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/pkg/config"
)

// WarmingPublisher receives a notification when a warming pass completes.
type WarmingPublisher interface {
	PublishWarming(operation string, duration time.Duration)
}

// defaultDashboardPage mirrors the page size the UI requests first, so the
// warmed entry is the one the first request will hit.
const defaultDashboardPage = 20

// CacheWarmer pre-populates the dashboard and config entries for every
// client at startup. Warming failures are logged and skipped; a client with
// a broken aggregate must not block the others.
type CacheWarmer struct {
	clients   repositories.ClientRepository
	insights  *InsightsService
	content   *ContentService
	publisher WarmingPublisher
	logger    *logging.ChanneledLogger
}

func NewCacheWarmer(clients repositories.ClientRepository, insights *InsightsService, content *ContentService, publisher WarmingPublisher, logger *logging.ChanneledLogger) *CacheWarmer {
	return &CacheWarmer{
		clients:   clients,
		insights:  insights,
		content:   content,
		publisher: publisher,
		logger:    logger,
	}
}

// WarmStartup fans out over all clients with bounded concurrency.
func (w *CacheWarmer) WarmStartup(ctx context.Context) error {
	start := time.Now()

	clients, err := w.clients.FindAll()
	if err != nil {
		return err
	}
	if len(clients) == 0 {
		w.logger.Startup().Info("Cache warming skipped, no clients")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.WarmerConcurrency)

	for _, client := range clients {
		clientID := client.ID
		g.Go(func() error {
			if _, err := w.insights.ClientDashboard(gctx, clientID, defaultDashboardPage, 0, false); err != nil {
				w.logger.Startup().Warn("Dashboard warm failed", "clientId", clientID, "error", err.Error())
			}
			if _, err := w.content.ClientConfig(gctx, clientID, false); err != nil {
				w.logger.Startup().Warn("Config warm failed", "clientId", clientID, "error", err.Error())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	duration := time.Since(start)
	w.logger.Startup().Info("Cache warming complete", "clients", len(clients), "duration", duration)
	if w.publisher != nil {
		w.publisher.PublishWarming("startup_warm", duration)
	}
	return nil
}
