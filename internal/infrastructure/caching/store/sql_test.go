package store

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := []string{
		`CREATE TABLE cache_entries (key TEXT PRIMARY KEY, value TEXT NOT NULL, hit_count INTEGER NOT NULL DEFAULT 0, expires_at TIMESTAMP NOT NULL, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
		`CREATE TABLE cache_tags (key TEXT NOT NULL, tag TEXT NOT NULL, PRIMARY KEY (key, tag))`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to create schema: %v", err)
		}
	}
	return db
}

func TestSQLStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(newTestDB(t), nil)

	if err := s.Set(ctx, "k1", []byte(`{"n":1}`), time.Minute, []string{"a", "b"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	v, ok := s.Get(ctx, "k1")
	if !ok {
		t.Fatal("expected hit")
	}
	if !bytes.Equal(v, []byte(`{"n":1}`)) {
		t.Fatalf("unexpected value %q", v)
	}
}

func TestSQLStoreExpiredBehavesAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(newTestDB(t), nil)

	if err := s.Set(ctx, "k1", []byte("v"), -time.Second, nil); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, ok := s.Get(ctx, "k1"); ok {
		t.Fatal("expired entry must read as absent")
	}
}

func TestSQLStoreTagDeleteResolvesThroughTagTable(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(newTestDB(t), nil)

	s.Set(ctx, "dash", []byte("v"), time.Minute, []string{"clients", "client:c1", "dashboards"})
	s.Set(ctx, "perf", []byte("v"), time.Minute, []string{"products", "product:p1"})
	s.Set(ctx, "conf", []byte("v"), time.Minute, []string{"clients", "client:c2", "config"})

	count, err := s.DeleteByTags(ctx, []string{"client:c1", "product:p1"})
	if err != nil {
		t.Fatalf("deleteByTags failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 removals, got %d", count)
	}

	if _, ok := s.Get(ctx, "conf"); !ok {
		t.Fatal("conf should have survived")
	}

	// Tag rows for the removed keys must be gone too.
	var orphans int
	db := s.db
	if err := db.QueryRow(`SELECT COUNT(*) FROM cache_tags WHERE key IN ('dash','perf')`).Scan(&orphans); err != nil {
		t.Fatalf("failed to count tag rows: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("expected orphaned tag rows to be pruned, found %d", orphans)
	}
}

func TestSQLStoreSetReplacesTags(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(newTestDB(t), nil)

	s.Set(ctx, "k1", []byte("v1"), time.Minute, []string{"old"})
	s.Set(ctx, "k1", []byte("v2"), time.Minute, []string{"new"})

	count, err := s.DeleteByTags(ctx, []string{"old"})
	if err != nil {
		t.Fatalf("deleteByTags failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("stale tag matched %d entries", count)
	}

	count, err = s.DeleteByTags(ctx, []string{"new"})
	if err != nil {
		t.Fatalf("deleteByTags failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected replacement tag to match, got %d", count)
	}
}

func TestSQLStoreHitCountAndTopEntries(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(newTestDB(t), nil)

	s.Set(ctx, "a", []byte("v"), time.Minute, nil)
	s.Set(ctx, "b", []byte("v"), time.Minute, nil)

	for i := 0; i < 5; i++ {
		if err := s.IncrementHit(ctx, "a"); err != nil {
			t.Fatalf("incrementHit failed: %v", err)
		}
	}

	top, err := s.TopEntries(ctx, 1)
	if err != nil {
		t.Fatalf("topEntries failed: %v", err)
	}
	if len(top) != 1 || top[0].Key != "a" || top[0].HitCount != 5 {
		t.Fatalf("unexpected top entries: %+v", top)
	}

	m, err := s.Metrics(ctx)
	if err != nil {
		t.Fatalf("metrics failed: %v", err)
	}
	if m.TotalEntries != 2 || m.ReusedEntries != 1 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestSQLStoreExpireSweep(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(newTestDB(t), nil)

	s.Set(ctx, "dead", []byte("v"), -time.Second, []string{"t"})
	s.Set(ctx, "live", []byte("v"), time.Minute, []string{"t"})

	count, err := s.ExpireSweep(ctx)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 swept, got %d", count)
	}

	count, err = s.ExpireSweep(ctx)
	if err != nil || count != 0 {
		t.Fatalf("sweep must be idempotent, got count=%d err=%v", count, err)
	}

	if _, ok := s.Get(ctx, "live"); !ok {
		t.Fatal("live entry should survive the sweep")
	}
}
