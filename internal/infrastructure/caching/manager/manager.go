// Package manager provides the read-through cache orchestration layer.
// Lookups degrade to direct computation under any store failure; the
// request path never blocks on cache writes.
package manager

import (
	"context"
	"encoding/json"
	"time"

	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/interfaces"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/store"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
)

// Interface assertion to ensure Manager implements the cache contract.
var _ interfaces.Cache = (*Manager)(nil)

// Manager wraps a Store with read-through semantics and a bounded
// background writer for fire-and-forget set/hit-count updates.
type Manager struct {
	store  store.Store
	writer *writer
	logger *logging.ChanneledLogger
}

// NewManager creates a cache manager over the given store. queueSize bounds
// the background write queue; writes beyond the bound are dropped and logged.
func NewManager(s store.Store, queueSize int, logger *logging.ChanneledLogger) *Manager {
	if logger != nil {
		logger.Cache().Info("Initializing cache manager", "queueSize", queueSize)
	}
	return &Manager{
		store:  s,
		writer: newWriter(s, queueSize, logger),
		logger: logger,
	}
}

// Get is a passthrough lookup. Store failures read as a miss.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, bool) {
	return m.store.Get(ctx, key)
}

// Set writes through to the store synchronously. Failures are logged and
// swallowed; callers never observe them.
func (m *Manager) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string) {
	if err := m.store.Set(ctx, key, value, ttl, tags); err != nil && m.logger != nil {
		m.logger.Cache().Warn("Cache set failed", "key", key, "error", err.Error())
	}
}

// WithCache returns the cached value for key when one is live, otherwise
// runs producer and schedules the result for background storage. The
// producer's result is authoritative; its error is the only error callers
// ever see. Concurrent cold misses for the same key all run the producer.
func (m *Manager) WithCache(ctx context.Context, key string, producer func(context.Context) ([]byte, error), opts interfaces.CacheOptions) ([]byte, error) {
	start := time.Now()

	if !opts.ForceRefresh {
		if value, ok := m.store.Get(ctx, key); ok {
			m.writer.enqueueHit(key)
			if m.logger != nil {
				m.logger.LogCacheOperation("with_cache", key, true, time.Since(start))
			}
			return value, nil
		}
	}

	fresh, err := producer(ctx)
	if err != nil {
		return nil, err
	}

	m.writer.enqueueSet(key, fresh, opts.TTL, opts.Tags)
	if m.logger != nil {
		m.logger.LogCacheOperation("with_cache", key, false, time.Since(start))
	}
	return fresh, nil
}

// Drain blocks until every scheduled background write has been applied or
// ctx expires.
func (m *Manager) Drain(ctx context.Context) error {
	return m.writer.drain(ctx)
}

// Close drains the writer and stops its goroutine.
func (m *Manager) Close(ctx context.Context) error {
	err := m.writer.drain(ctx)
	m.writer.stop()
	return err
}

// Fetch is the typed read-through helper: it wraps Manager.WithCache with
// JSON (un)marshalling. A cached payload that fails to decode is treated
// as a miss and recomputed.
func Fetch[T any](ctx context.Context, m *Manager, key string, opts interfaces.CacheOptions, producer func(context.Context) (T, error)) (T, error) {
	var zero T

	if !opts.ForceRefresh {
		if raw, ok := m.store.Get(ctx, key); ok {
			var cached T
			if err := json.Unmarshal(raw, &cached); err == nil {
				m.writer.enqueueHit(key)
				return cached, nil
			}
			if m.logger != nil {
				m.logger.Cache().Warn("Cached payload failed to decode, recomputing", "key", key)
			}
		}
	}

	fresh, err := producer(ctx)
	if err != nil {
		return zero, err
	}

	raw, err := json.Marshal(fresh)
	if err != nil {
		if m.logger != nil {
			m.logger.Cache().Warn("Failed to encode value for caching, skipping store", "key", key, "error", err.Error())
		}
		return fresh, nil
	}

	m.writer.enqueueSet(key, raw, opts.TTL, opts.Tags)
	return fresh, nil
}
