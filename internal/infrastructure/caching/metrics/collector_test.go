package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/store"
)

func TestCacheStatsHitRate(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	c := NewCollector(s, nil)

	s.Set(ctx, "a", []byte("v"), time.Minute, nil)
	s.Set(ctx, "b", []byte("v"), time.Minute, nil)
	s.Set(ctx, "c", []byte("v"), time.Minute, nil)
	s.Set(ctx, "d", []byte("v"), time.Minute, nil)
	s.IncrementHit(ctx, "a")

	stats, err := c.CacheStats(ctx)
	if err != nil {
		t.Fatalf("cacheStats failed: %v", err)
	}

	rate, ok := stats["hitRatePercent"].(float64)
	if !ok {
		t.Fatalf("missing hitRatePercent in %v", stats)
	}
	if rate != 25 {
		t.Fatalf("expected 25%%, got %v", rate)
	}

	top, ok := stats["topEntries"].([]store.EntryStat)
	if !ok || len(top) == 0 || top[0].Key != "a" {
		t.Fatalf("expected a as hottest entry, got %v", stats["topEntries"])
	}
}

func TestHitRatePercentEmptyStore(t *testing.T) {
	if got := HitRatePercent(store.Metrics{}); got != 0 {
		t.Fatalf("expected 0 for empty store, got %v", got)
	}
}

func TestCleanupExpired(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	c := NewCollector(s, nil)

	s.Set(ctx, "dead", []byte("v"), -time.Second, nil)
	s.Set(ctx, "live", []byte("v"), time.Minute, nil)

	count, err := c.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 swept, got %d", count)
	}
}
