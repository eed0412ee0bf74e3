package ingestion

import (
	"time"

	"github.com/poiesic/profindex/upsert"
)

// SkippedRow records a row that produced no unit.
type SkippedRow struct {
	Source string
	Line   int
	Reason error
}

// Report summarizes one ingestion run.
type Report struct {
	RunID      string
	Namespace  string
	StartedAt  time.Time
	FinishedAt time.Time

	Rows       int // rows read from all sources
	Professors int // professor units produced
	Reviews    int // review units produced
	Embedded   int // vectors returned by the embedding provider
	Collisions int // units replaced by a later unit with the same id

	Skipped []SkippedRow
	// Conflicts are repeated professor rows whose professor data was dropped
	// because it differed from the unit already emitted.
	Conflicts []SkippedRow
	Upsert    *upsert.Report
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// OK reports whether every batch that was submitted was written.
func (r *Report) OK() bool {
	return r.Upsert == nil || r.Upsert.OK()
}
