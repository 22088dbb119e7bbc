package sync

import (
	"sync"
	"time"
)

// Report accumulates per-action counters across a batch. Safe for use
// from concurrent row workers.
type Report struct {
	mu       sync.Mutex
	started  time.Time
	counters map[Action]int
	failures int
}

// NewReport starts an empty report.
func NewReport() *Report {
	return &Report{started: time.Now(), counters: make(map[Action]int)}
}

// Count records one row outcome.
func (r *Report) Count(action Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[action]++
}

// CountFailure records a row that errored outside the decision path
// (store failure, malformed row).
func (r *Report) CountFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
}

// Summary snapshots the report for persistence and logging.
type Summary struct {
	StartedAt time.Time
	Duration  time.Duration
	Counters  map[string]int
	Failures  int
	Total     int
}

// Summarize freezes the current counters into a summary.
func (r *Report) Summarize() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	counters := make(map[string]int, len(r.counters))
	total := r.failures
	for action, n := range r.counters {
		counters[string(action)] = n
		total += n
	}
	return Summary{
		StartedAt: r.started,
		Duration:  time.Since(r.started),
		Counters:  counters,
		Failures:  r.failures,
		Total:     total,
	}
}
