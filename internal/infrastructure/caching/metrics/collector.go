// Package metrics aggregates cache hit-count analytics for the admin API
// and the cleanup worker.
package metrics

import (
	"context"
	"fmt"

	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/interfaces"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/store"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
)

var _ interfaces.StatsCollector = (*Collector)(nil)

const topEntriesLimit = 10

// Collector is a read-only aggregation layer over the cache store.
type Collector struct {
	store  store.Store
	logger *logging.ChanneledLogger
}

func NewCollector(s store.Store, logger *logging.ChanneledLogger) *Collector {
	return &Collector{store: s, logger: logger}
}

// CacheStats returns store metrics, the top entries by hit count and the
// derived hit-rate percentage.
func (c *Collector) CacheStats(ctx context.Context) (map[string]any, error) {
	m, err := c.store.Metrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect cache metrics: %w", err)
	}

	top, err := c.store.TopEntries(ctx, topEntriesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to collect top cache entries: %w", err)
	}

	return map[string]any{
		"metrics":        m,
		"topEntries":     top,
		"hitRatePercent": HitRatePercent(m),
	}, nil
}

// CleanupExpired sweeps expired entries out of the store.
func (c *Collector) CleanupExpired(ctx context.Context) (int, error) {
	count, err := c.store.ExpireSweep(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired cache entries: %w", err)
	}
	if c.logger != nil {
		c.logger.Cache().Info("Expired cache entries removed", "count", count)
	}
	return count, nil
}

// HitRatePercent is the share of entries that have been read at least once.
func HitRatePercent(m store.Metrics) float64 {
	if m.TotalEntries == 0 {
		return 0
	}
	return float64(m.ReusedEntries) / float64(m.TotalEntries) * 100
}
