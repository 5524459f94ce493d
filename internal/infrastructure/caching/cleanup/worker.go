// Package cleanup provides background worker
package cleanup

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/interfaces"
)

// Publisher receives cleanup events for the ops feed. Optional.
type Publisher interface {
	PublishCleanup(removed int, duration time.Duration)
}

// Worker runs the periodic expired-entry sweep against the cache store.
type Worker struct {
	stats     interfaces.StatsCollector
	config    *Config
	publisher Publisher
}

// NewWorker creates a new cleanup worker with injected configuration
func NewWorker(stats interfaces.StatsCollector, config *Config, publisher Publisher) *Worker {
	return &Worker{
		stats:     stats,
		config:    config,
		publisher: publisher,
	}
}

// Start begins the cleanup worker routine, using the configured interval
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	log.Printf("Cache cleanup worker started (interval: %v, verbose: %v)",
		w.config.CleanupInterval, w.config.VerboseReporting)

	for {
		select {
		case <-ctx.Done():
			log.Println("Cache cleanup worker stopping...")
			return
		case <-ticker.C:
			w.performCleanup(ctx)
		}
	}
}

// performCleanup executes one sweep and reports what it removed.
func (w *Worker) performCleanup(ctx context.Context) {
	start := time.Now()
	reporter := NewReporter(w.stats)

	if w.config.VerboseReporting {
		reporter.LogStage("PERIODIC CACHE CLEANUP")
		fmt.Print(reporter.GenerateCacheReport(ctx))
	}

	removed, err := w.stats.CleanupExpired(ctx)
	if err != nil {
		reporter.LogError("Cache cleanup sweep failed", err)
		return
	}

	duration := time.Since(start)
	if removed > 0 {
		reporter.LogSuccess("Cache cleanup finished: %d expired entries removed in %v", removed, duration)
	} else if w.config.VerboseReporting {
		reporter.LogInfo("Cache cleanup completed - no expired entries found (%v)", duration)
	}

	if w.publisher != nil {
		w.publisher.PublishCleanup(removed, duration)
	}
}
