// Package performance provides lightweight operation timing for request
// handlers and background workers.
package performance

import (
	"fmt"
	"sync"
	"time"

	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
)

// Marker represents a single performance measurement for an operation
type Marker struct {
	Operation string         `json:"operation"`
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
	Duration  time.Duration  `json:"duration"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	completed bool

	tracker *Tracker
}

// Complete marks the operation as finished and records final metrics.
func (m *Marker) Complete() {
	if m.completed {
		return
	}

	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.completed = true

	if m.tracker != nil {
		m.tracker.record(m)
	}
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err != nil {
		m.Error = err.Error()
		m.Success = false
	}
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// Tracker aggregates completed markers and surfaces slow operations.
type Tracker struct {
	mu            sync.RWMutex
	recent        []*Marker
	maxRecent     int
	totalsByOp    map[string]*opTotals
	slowThreshold time.Duration
	logger        *logging.ChanneledLogger
	started       time.Time
}

type opTotals struct {
	Count    int64
	Failures int64
	Total    time.Duration
	Max      time.Duration
}

// NewTracker creates a performance tracker. slowThreshold governs which
// completed operations get logged to the slow-query channel.
func NewTracker(slowThreshold time.Duration, logger *logging.ChanneledLogger) *Tracker {
	return &Tracker{
		maxRecent:     1000,
		totalsByOp:    make(map[string]*opTotals),
		slowThreshold: slowThreshold,
		logger:        logger,
		started:       time.Now().UTC(),
	}
}

// StartOperation creates a marker for an operation in flight.
func (t *Tracker) StartOperation(operation string) *Marker {
	return &Marker{
		Operation: operation,
		StartTime: time.Now(),
		Success:   true,
		tracker:   t,
	}
}

func (t *Tracker) record(m *Marker) {
	t.mu.Lock()
	totals, ok := t.totalsByOp[m.Operation]
	if !ok {
		totals = &opTotals{}
		t.totalsByOp[m.Operation] = totals
	}
	totals.Count++
	totals.Total += m.Duration
	if m.Duration > totals.Max {
		totals.Max = m.Duration
	}
	if !m.Success {
		totals.Failures++
	}

	t.recent = append(t.recent, m)
	if len(t.recent) > t.maxRecent {
		t.recent = t.recent[len(t.recent)-t.maxRecent:]
	}
	t.mu.Unlock()

	if t.logger != nil && t.slowThreshold > 0 && m.Duration > t.slowThreshold {
		t.logger.Perf().Warn("Slow operation",
			"operation", m.Operation,
			"duration", m.Duration,
			"success", m.Success,
		)
	}
}

// Summary returns aggregated timings per operation.
func (t *Tracker) Summary() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ops := make(map[string]any, len(t.totalsByOp))
	for op, totals := range t.totalsByOp {
		avg := time.Duration(0)
		if totals.Count > 0 {
			avg = totals.Total / time.Duration(totals.Count)
		}
		ops[op] = map[string]any{
			"count":    totals.Count,
			"failures": totals.Failures,
			"avg":      avg.String(),
			"max":      totals.Max.String(),
		}
	}

	return map[string]any{
		"uptime":     time.Since(t.started).String(),
		"operations": ops,
	}
}

// String implements fmt.Stringer for debug logging.
func (t *Tracker) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fmt.Sprintf("Tracker{operations: %d, recent: %d}", len(t.totalsByOp), len(t.recent))
}
