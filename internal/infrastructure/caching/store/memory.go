package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

type memoryEntry struct {
	value     []byte
	tags      map[string]struct{}
	hitCount  int64
	createdAt time.Time
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded in-process backend with the same observable
// semantics as SQLStore. Used for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

// NewMemoryStore creates an empty in-memory cache store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || !time.Now().UTC().Before(entry.expiresAt) {
		return nil, false
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, true
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration, tags []string) error {
	now := time.Now().UTC()

	tagSet := make(map[string]struct{}, len(tags))
	for _, tag := range dedupe(tags) {
		tagSet[tag] = struct{}{}
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	s.entries[key] = &memoryEntry{
		value:     stored,
		tags:      tagSet,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) DeleteByTags(_ context.Context, tags []string) (int, error) {
	tags = dedupe(tags)
	if len(tags) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key, entry := range s.entries {
		for _, tag := range tags {
			if _, ok := entry.tags[tag]; ok {
				delete(s.entries, key)
				count++
				break
			}
		}
	}
	return count, nil
}

func (s *MemoryStore) IncrementHit(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok {
		entry.hitCount++
	}
	return nil
}

func (s *MemoryStore) ExpireSweep(_ context.Context) (int, error) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) Metrics(_ context.Context) (Metrics, error) {
	now := time.Now().UTC()

	s.mu.RLock()
	defer s.mu.RUnlock()

	m := Metrics{HitDistribution: make(map[string]int)}
	for _, entry := range s.entries {
		m.TotalEntries++
		if entry.hitCount > 0 {
			m.ReusedEntries++
		}
		if !now.Before(entry.expiresAt) {
			m.ExpiredEntries++
		}
		m.HitDistribution[distributionBucket(entry.hitCount)]++
	}
	return m, nil
}

func (s *MemoryStore) TopEntries(_ context.Context, n int) ([]EntryStat, error) {
	if n <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	stats := make([]EntryStat, 0, len(s.entries))
	for key, entry := range s.entries {
		stats = append(stats, EntryStat{
			Key:       key,
			HitCount:  entry.hitCount,
			ExpiresAt: entry.expiresAt,
		})
	}
	s.mu.RUnlock()

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].HitCount != stats[j].HitCount {
			return stats[i].HitCount > stats[j].HitCount
		}
		return stats[i].Key < stats[j].Key
	})

	if len(stats) > n {
		stats = stats[:n]
	}
	return stats, nil
}
