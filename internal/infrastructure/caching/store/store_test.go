package store

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Set(ctx, "k1", []byte("v1"), time.Minute, []string{"a"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	v, ok := s.Get(ctx, "k1")
	if !ok {
		t.Fatal("expected hit for live entry")
	}
	if !bytes.Equal(v, []byte("v1")) {
		t.Fatalf("expected v1, got %q", v)
	}
}

func TestMemoryStoreLazyExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// Already-expired entry must behave as absent even before any sweep.
	if err := s.Set(ctx, "k1", []byte("v1"), -time.Second, []string{"a"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if _, ok := s.Get(ctx, "k1"); ok {
		t.Fatal("expected expired entry to be absent")
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.Set(ctx, "k1", []byte("old"), time.Minute, []string{"a"})
	s.Set(ctx, "k1", []byte("new"), time.Minute, []string{"b"})

	v, ok := s.Get(ctx, "k1")
	if !ok || !bytes.Equal(v, []byte("new")) {
		t.Fatalf("expected new, got %q (ok=%v)", v, ok)
	}

	// Replacement is whole-entry: the old tag no longer matches.
	count, err := s.DeleteByTags(ctx, []string{"a"})
	if err != nil {
		t.Fatalf("deleteByTags failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 removals for stale tag, got %d", count)
	}
}

func TestMemoryStoreTagSelectivity(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.Set(ctx, "k1", []byte("v"), time.Minute, []string{"clients", "client:c1"})
	s.Set(ctx, "k2", []byte("v"), time.Minute, []string{"clients", "client:c2"})
	s.Set(ctx, "k3", []byte("v"), time.Minute, []string{"products"})

	count, err := s.DeleteByTags(ctx, []string{"client:c1", "missing"})
	if err != nil {
		t.Fatalf("deleteByTags failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 removal, got %d", count)
	}

	if _, ok := s.Get(ctx, "k1"); ok {
		t.Fatal("k1 should have been removed")
	}
	if _, ok := s.Get(ctx, "k2"); !ok {
		t.Fatal("k2 should have survived")
	}
	if _, ok := s.Get(ctx, "k3"); !ok {
		t.Fatal("k3 should have survived")
	}
}

func TestMemoryStoreDeleteByTagsNoMatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	count, err := s.DeleteByTags(ctx, []string{"nothing"})
	if err != nil {
		t.Fatalf("expected no error on empty match, got %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0, got %d", count)
	}
}

func TestMemoryStoreSweepIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.Set(ctx, "dead1", []byte("v"), -time.Second, nil)
	s.Set(ctx, "dead2", []byte("v"), -time.Second, nil)
	s.Set(ctx, "live", []byte("v"), time.Minute, nil)

	count, err := s.ExpireSweep(ctx)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 swept, got %d", count)
	}

	count, err = s.ExpireSweep(ctx)
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 on repeat sweep, got %d", count)
	}

	if _, ok := s.Get(ctx, "live"); !ok {
		t.Fatal("live entry should survive the sweep")
	}
}

func TestMemoryStoreMetrics(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.Set(ctx, "hot", []byte("v"), time.Minute, nil)
	s.Set(ctx, "cold", []byte("v"), time.Minute, nil)
	s.Set(ctx, "dead", []byte("v"), -time.Second, nil)

	s.IncrementHit(ctx, "hot")
	s.IncrementHit(ctx, "hot")

	m, err := s.Metrics(ctx)
	if err != nil {
		t.Fatalf("metrics failed: %v", err)
	}
	if m.TotalEntries != 3 {
		t.Fatalf("expected 3 total, got %d", m.TotalEntries)
	}
	if m.ReusedEntries != 1 {
		t.Fatalf("expected 1 reused, got %d", m.ReusedEntries)
	}
	if m.ExpiredEntries != 1 {
		t.Fatalf("expected 1 expired, got %d", m.ExpiredEntries)
	}
	if m.HitDistribution["1-10"] != 1 {
		t.Fatalf("expected one entry in 1-10 bucket, got %d", m.HitDistribution["1-10"])
	}
	if m.HitDistribution["0"] != 2 {
		t.Fatalf("expected two entries in 0 bucket, got %d", m.HitDistribution["0"])
	}
}

func TestMemoryStoreTopEntries(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.Set(ctx, "a", []byte("v"), time.Minute, nil)
	s.Set(ctx, "b", []byte("v"), time.Minute, nil)
	s.Set(ctx, "c", []byte("v"), time.Minute, nil)

	for i := 0; i < 3; i++ {
		s.IncrementHit(ctx, "b")
	}
	s.IncrementHit(ctx, "c")

	top, err := s.TopEntries(ctx, 2)
	if err != nil {
		t.Fatalf("topEntries failed: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].Key != "b" || top[0].HitCount != 3 {
		t.Fatalf("expected b with 3 hits first, got %s with %d", top[0].Key, top[0].HitCount)
	}
	if top[1].Key != "c" || top[1].HitCount != 1 {
		t.Fatalf("expected c with 1 hit second, got %s with %d", top[1].Key, top[1].HitCount)
	}
}

func TestMemoryStoreIncrementHitMissingKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.IncrementHit(ctx, "ghost"); err != nil {
		t.Fatalf("increment on missing key must be best-effort, got %v", err)
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"a", "b", "a", "", "c", "b"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
