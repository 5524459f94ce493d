// Package interfaces defines the cache operation contracts consumed by
// services and handlers.
package interfaces

import (
	"context"
	"time"
)

// CacheOptions carries the per-call knobs for read-through lookups.
type CacheOptions struct {
	TTL          time.Duration
	Tags         []string
	ForceRefresh bool
}

// Cache is the read-through orchestration surface. Get converts every store
// failure into a miss; Set failures are logged, never returned.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string)
	WithCache(ctx context.Context, key string, producer func(context.Context) ([]byte, error), opts CacheOptions) ([]byte, error)

	// Drain blocks until all scheduled background writes have been applied
	// or ctx expires. Used at shutdown and in tests.
	Drain(ctx context.Context) error
}

// EntityOperation names one domain write for invalidation purposes.
type EntityOperation struct {
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	Operation  string `json:"operation"`
}

// Invalidator propagates domain writes into tag deletions. All methods
// return the number of entries removed; failures are logged and surface
// as 0, since staleness is TTL-bounded and never a correctness violation.
type Invalidator interface {
	CascadeInvalidation(ctx context.Context, entityType, entityID, operation string) int
	BulkInvalidation(ctx context.Context, operations []EntityOperation) int
	ConditionalInvalidation(ctx context.Context, entityType, entityID string, conditions map[string]any) int
}

// StatsCollector aggregates hit-count analytics for the admin API and the
// cleanup worker.
type StatsCollector interface {
	CacheStats(ctx context.Context) (map[string]any, error)
	CleanupExpired(ctx context.Context) (int, error)
}

type CacheTTL time.Duration

const (
	TTL1Minute   CacheTTL = CacheTTL(time.Minute)
	TTL5Minutes  CacheTTL = CacheTTL(5 * time.Minute)
	TTL10Minutes CacheTTL = CacheTTL(10 * time.Minute)
	TTL15Minutes CacheTTL = CacheTTL(15 * time.Minute)
	TTL1Hour     CacheTTL = CacheTTL(time.Hour)
	TTL24Hours   CacheTTL = CacheTTL(24 * time.Hour)
)
