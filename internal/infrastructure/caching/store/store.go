// Package store provides the persistence contract for the tag-indexed
// read-through cache and its backing implementations.
package store

import (
	"context"
	"time"
)

// Store abstracts the durable medium behind the cache. Any backend with
// TTL and tag-filtering support satisfies it. Values are opaque bytes;
// serialization belongs to the caller.
type Store interface {
	// Get returns the entry only while it is live. A logically expired
	// but not-yet-swept entry behaves as absent.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set upserts an entry unconditionally. Last writer wins.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string) error

	// DeleteByTags removes every entry whose tag set intersects tags and
	// returns the number removed. No match is not an error.
	DeleteByTags(ctx context.Context, tags []string) (int, error)

	// IncrementHit bumps the hit counter for key. Best-effort.
	IncrementHit(ctx context.Context, key string) error

	// ExpireSweep removes all entries whose expiry has passed. Safe to
	// call concurrently and repeatedly.
	ExpireSweep(ctx context.Context) (int, error)

	// Metrics reports aggregate counts over the current entry set.
	Metrics(ctx context.Context) (Metrics, error)

	// TopEntries returns the n entries with the highest hit counts,
	// descending.
	TopEntries(ctx context.Context, n int) ([]EntryStat, error)
}

// Metrics aggregates entry counts for analytics and the admin stats API.
type Metrics struct {
	TotalEntries    int            `json:"totalEntries"`
	ReusedEntries   int            `json:"reusedEntries"`
	ExpiredEntries  int            `json:"expiredEntries"`
	HitDistribution map[string]int `json:"hitDistribution"`
}

// EntryStat describes one cache entry for the top-N hit report.
type EntryStat struct {
	Key       string    `json:"key"`
	HitCount  int64     `json:"hitCount"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// distributionBucket maps a hit count onto the coarse histogram used by
// Metrics.HitDistribution.
func distributionBucket(hits int64) string {
	switch {
	case hits == 0:
		return "0"
	case hits <= 10:
		return "1-10"
	case hits <= 100:
		return "11-100"
	default:
		return "100+"
	}
}
