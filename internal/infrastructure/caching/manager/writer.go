package manager

import (
	"context"
	"sync"
	"time"

	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/store"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
)

type taskKind int

const (
	taskSet taskKind = iota
	taskHit
)

type writeTask struct {
	kind  taskKind
	key   string
	value []byte
	ttl   time.Duration
	tags  []string
}

// writer applies background cache writes through a bounded queue consumed
// by a single goroutine. Enqueueing never blocks; a full queue drops the
// task with a log line rather than slowing the request path.
type writer struct {
	store   store.Store
	tasks   chan writeTask
	pending sync.WaitGroup
	done    chan struct{}
	logger  *logging.ChanneledLogger
}

func newWriter(s store.Store, queueSize int, logger *logging.ChanneledLogger) *writer {
	if queueSize <= 0 {
		queueSize = 1
	}
	w := &writer{
		store:  s,
		tasks:  make(chan writeTask, queueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go w.run()
	return w
}

func (w *writer) run() {
	for {
		select {
		case task := <-w.tasks:
			w.apply(task)
		case <-w.done:
			// Drain what is already queued before exiting.
			for {
				select {
				case task := <-w.tasks:
					w.apply(task)
				default:
					return
				}
			}
		}
	}
}

func (w *writer) apply(task writeTask) {
	defer w.pending.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch task.kind {
	case taskSet:
		if err := w.store.Set(ctx, task.key, task.value, task.ttl, task.tags); err != nil && w.logger != nil {
			w.logger.Cache().Warn("Background cache set failed", "key", task.key, "error", err.Error())
		}
	case taskHit:
		if err := w.store.IncrementHit(ctx, task.key); err != nil && w.logger != nil {
			w.logger.Cache().Warn("Hit count update failed", "key", task.key, "error", err.Error())
		}
	}
}

func (w *writer) enqueueSet(key string, value []byte, ttl time.Duration, tags []string) {
	w.enqueue(writeTask{kind: taskSet, key: key, value: value, ttl: ttl, tags: tags})
}

func (w *writer) enqueueHit(key string) {
	w.enqueue(writeTask{kind: taskHit, key: key})
}

func (w *writer) enqueue(task writeTask) {
	w.pending.Add(1)
	select {
	case w.tasks <- task:
	default:
		w.pending.Done()
		if w.logger != nil {
			w.logger.Cache().Warn("Cache write queue full, dropping task", "key", task.key)
		}
	}
}

// drain waits for all accepted tasks to be applied or ctx to expire.
func (w *writer) drain(ctx context.Context) error {
	waited := make(chan struct{})
	go func() {
		w.pending.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *writer) stop() {
	close(w.done)
}
