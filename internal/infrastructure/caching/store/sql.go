package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
)

// Interface assertion to ensure SQLStore satisfies the Store contract.
var _ Store = (*SQLStore)(nil)

// SQLStore persists cache entries in the cache_entries/cache_tags tables of
// the application database (libsql in production, sqlite3 locally).
type SQLStore struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

// NewSQLStore creates a SQL-backed cache store over an open connection.
func NewSQLStore(db *sql.DB, logger *logging.ChanneledLogger) *SQLStore {
	return &SQLStore{db: db, logger: logger}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool) {
	start := time.Now()

	var value []byte
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if err != nil {
		if err != sql.ErrNoRows && s.logger != nil {
			s.logger.Cache().Warn("Cache read failed", "key", key, "error", err.Error())
		}
		return nil, false
	}

	if !time.Now().UTC().Before(expiresAt) {
		return nil, false
	}

	if s.logger != nil {
		s.logger.LogCacheOperation("get", key, true, time.Since(start))
	}
	return value, true
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string) error {
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cache set transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, hit_count, expires_at, created_at)
		 VALUES (?, ?, 0, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, hit_count = 0,
		 expires_at = excluded.expires_at, created_at = excluded.created_at`,
		key, value, expiresAt, now)
	if err != nil {
		return fmt.Errorf("failed to upsert cache entry %s: %w", key, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cache_tags WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to clear tags for %s: %w", key, err)
	}
	for _, tag := range dedupe(tags) {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO cache_tags (key, tag) VALUES (?, ?)`, key, tag); err != nil {
			return fmt.Errorf("failed to tag cache entry %s with %s: %w", key, tag, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache set for %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) DeleteByTags(ctx context.Context, tags []string) (int, error) {
	tags = dedupe(tags)
	if len(tags) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(tags))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(tags))
	for i, t := range tags {
		args[i] = t
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tag delete transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM cache_entries WHERE key IN
			(SELECT DISTINCT key FROM cache_tags WHERE tag IN (%s))`, placeholders),
		args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache entries by tags: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM cache_tags WHERE key NOT IN (SELECT key FROM cache_entries)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prune orphaned cache tags: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit tag delete: %w", err)
	}

	count, _ := res.RowsAffected()
	return int(count), nil
}

func (s *SQLStore) IncrementHit(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE cache_entries SET hit_count = hit_count + 1 WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to increment hit count for %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) ExpireSweep(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin sweep transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired cache entries: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM cache_tags WHERE key NOT IN (SELECT key FROM cache_entries)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prune orphaned cache tags: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sweep: %w", err)
	}

	count, _ := res.RowsAffected()
	return int(count), nil
}

func (s *SQLStore) Metrics(ctx context.Context) (Metrics, error) {
	now := time.Now().UTC()
	m := Metrics{HitDistribution: make(map[string]int)}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN hit_count > 0 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0)
		 FROM cache_entries`, now,
	).Scan(&m.TotalEntries, &m.ReusedEntries, &m.ExpiredEntries)
	if err != nil {
		return Metrics{}, fmt.Errorf("failed to compute cache metrics: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT hit_count FROM cache_entries`)
	if err != nil {
		return Metrics{}, fmt.Errorf("failed to read hit counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hits int64
		if err := rows.Scan(&hits); err != nil {
			return Metrics{}, fmt.Errorf("failed to scan hit count: %w", err)
		}
		m.HitDistribution[distributionBucket(hits)]++
	}
	if err := rows.Err(); err != nil {
		return Metrics{}, fmt.Errorf("failed to iterate hit counts: %w", err)
	}

	return m, nil
}

func (s *SQLStore) TopEntries(ctx context.Context, n int) ([]EntryStat, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, hit_count, expires_at FROM cache_entries
		 ORDER BY hit_count DESC, key ASC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query top cache entries: %w", err)
	}
	defer rows.Close()

	var stats []EntryStat
	for rows.Next() {
		var stat EntryStat
		if err := rows.Scan(&stat.Key, &stat.HitCount, &stat.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry stat: %w", err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate top cache entries: %w", err)
	}

	return stats, nil
}

// dedupe collapses duplicate tags while preserving first-seen order.
func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
