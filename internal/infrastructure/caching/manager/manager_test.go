package manager

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/upskillhq/upskill-go/internal/domain/entities/insights"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/interfaces"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/store"
)

//
// ================= FAILING BACKING STORE =================
//

type failingStore struct{}

func (f *failingStore) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (f *failingStore) Set(context.Context, string, []byte, time.Duration, []string) error {
	return errors.New("store unavailable")
}
func (f *failingStore) DeleteByTags(context.Context, []string) (int, error) {
	return 0, errors.New("store unavailable")
}
func (f *failingStore) IncrementHit(context.Context, string) error {
	return errors.New("store unavailable")
}
func (f *failingStore) ExpireSweep(context.Context) (int, error) {
	return 0, errors.New("store unavailable")
}
func (f *failingStore) Metrics(context.Context) (store.Metrics, error) {
	return store.Metrics{}, errors.New("store unavailable")
}
func (f *failingStore) TopEntries(context.Context, int) ([]store.EntryStat, error) {
	return nil, errors.New("store unavailable")
}

func newTestManager(s store.Store) *Manager {
	return NewManager(s, 64, nil)
}

func TestWithCacheProducerRunsOncePerTTL(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(store.NewMemoryStore())

	var calls int32
	producer := func(context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("expensive"), nil
	}
	opts := interfaces.CacheOptions{TTL: 5 * time.Minute, Tags: []string{"clients", "client:c1"}}

	v, err := m.WithCache(ctx, "dash:c1", producer, opts)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if !bytes.Equal(v, []byte("expensive")) {
		t.Fatalf("unexpected value %q", v)
	}

	// The fresh value is stored in the background; settle before rereading.
	if err := m.Drain(ctx); err != nil {
		t.Fatalf("drain failed: %v", err)
	}

	v, err = m.WithCache(ctx, "dash:c1", producer, opts)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if !bytes.Equal(v, []byte("expensive")) {
		t.Fatalf("unexpected cached value %q", v)
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected producer to run once, ran %d times", got)
	}
}

func TestWithCacheForceRefresh(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(store.NewMemoryStore())

	var calls int32
	producer := func(context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("v"), nil
	}
	opts := interfaces.CacheOptions{TTL: time.Minute}

	m.WithCache(ctx, "k", producer, opts)
	m.Drain(ctx)

	opts.ForceRefresh = true
	m.WithCache(ctx, "k", producer, opts)

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected forced refresh to rerun producer, ran %d times", got)
	}
}

func TestWithCacheDegradesOnTotalStoreFailure(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(&failingStore{})

	v, err := m.WithCache(ctx, "k", func(context.Context) ([]byte, error) {
		return []byte("fresh"), nil
	}, interfaces.CacheOptions{TTL: time.Minute})
	if err != nil {
		t.Fatalf("expected degradation to direct computation, got %v", err)
	}
	if !bytes.Equal(v, []byte("fresh")) {
		t.Fatalf("expected producer result, got %q", v)
	}

	if err := m.Drain(ctx); err != nil {
		t.Fatalf("drain failed: %v", err)
	}
}

func TestWithCacheProducerErrorPropagates(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(store.NewMemoryStore())

	boom := errors.New("query failed")
	_, err := m.WithCache(ctx, "k", func(context.Context) ([]byte, error) {
		return nil, boom
	}, interfaces.CacheOptions{TTL: time.Minute})
	if !errors.Is(err, boom) {
		t.Fatalf("expected producer error, got %v", err)
	}

	// A failed production must not poison the cache.
	if _, ok := m.Get(ctx, "k"); ok {
		t.Fatal("no entry should exist after producer failure")
	}
}

func TestWithCacheHitCountEventuallyIncrements(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	m := newTestManager(s)

	producer := func(context.Context) ([]byte, error) { return []byte("v"), nil }
	opts := interfaces.CacheOptions{TTL: time.Minute}

	m.WithCache(ctx, "k", producer, opts)
	m.Drain(ctx)

	for i := 0; i < 3; i++ {
		m.WithCache(ctx, "k", producer, opts)
	}
	m.Drain(ctx)

	top, err := s.TopEntries(ctx, 1)
	if err != nil {
		t.Fatalf("topEntries failed: %v", err)
	}
	if len(top) != 1 || top[0].HitCount != 3 {
		t.Fatalf("expected 3 hits after drain, got %+v", top)
	}
}

func TestWithCacheConcurrentColdMisses(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(store.NewMemoryStore())

	// Two callers racing on the same cold key both execute the producer.
	// There is deliberately no single-flight protection.
	var calls int32
	release := make(chan struct{})
	producer := func(context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte("v"), nil
	}
	opts := interfaces.CacheOptions{TTL: time.Minute}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.WithCache(ctx, "cold", producer, opts)
		}()
	}

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&calls) < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected both callers to reach the producer, got %d", atomic.LoadInt32(&calls))
		default:
			time.Sleep(time.Millisecond)
		}
	}
	close(release)
	wg.Wait()
}

func TestSetFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(&failingStore{})

	// Must not panic or surface the store error.
	m.Set(ctx, "k", []byte("v"), time.Minute, []string{"t"})
}

func TestFetchTypedRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(store.NewMemoryStore())

	var calls int32
	producer := func(context.Context) (*insights.DashboardData, error) {
		atomic.AddInt32(&calls, 1)
		return &insights.DashboardData{ClientID: "c1", ActiveStudents: 42}, nil
	}

	first, err := m.ClientDashboard(ctx, "c1", 10, 0, false, producer)
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	m.Drain(ctx)

	second, err := m.ClientDashboard(ctx, "c1", 10, 0, false, producer)
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}

	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected one producer call, got %d", calls)
	}
	if first.ActiveStudents != second.ActiveStudents || second.ClientID != "c1" {
		t.Fatalf("cached payload mismatch: %+v vs %+v", first, second)
	}
}

func TestFetchUndecodablePayloadRecomputes(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	m := newTestManager(s)

	s.Set(ctx, ModuleContentKey("m1"), []byte("{not json"), time.Minute, ModuleContentTags("m1"))

	var calls int32
	got, err := m.ModuleContent(ctx, "m1", false, func(context.Context) (*insights.ModuleContent, error) {
		atomic.AddInt32(&calls, 1)
		return &insights.ModuleContent{ModuleID: "m1"}, nil
	})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected recomputation on decode failure, calls=%d", calls)
	}
	if got.ModuleID != "m1" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestKeySchemes(t *testing.T) {
	if got := DashboardKey("c1", 10, 20); got != "clients_dashboard:c1:10:20" {
		t.Fatalf("unexpected dashboard key %q", got)
	}
	if got := ProductPerformanceKey("p1"); got != "product_performance:p1" {
		t.Fatalf("unexpected product key %q", got)
	}
	if got := ClientConfigKey("c1"); got != "client_config:c1" {
		t.Fatalf("unexpected config key %q", got)
	}
}

func TestWriterQueueFullDropsInsteadOfBlocking(t *testing.T) {
	ctx := context.Background()
	m := NewManager(store.NewMemoryStore(), 1, nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			m.writer.enqueueHit("k")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue must never block the caller")
	}
	m.Drain(ctx)
}
