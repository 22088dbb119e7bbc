package repository

import (
	"time"

	"github.com/google/uuid"
)

// SyncReportRecord is one persisted batch reconciliation summary.
type SyncReportRecord struct {
	ID         uuid.UUID
	StartedAt  time.Time
	DurationMS int64
	Counters   map[string]int
	Failures   int
	Total      int
	CreatedAt  time.Time
}
