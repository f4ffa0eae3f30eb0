// Package store persists RunSummary/Issue history to PostgreSQL, the
// [EXPANSION] "history store" of SPEC_FULL.md §6. Nothing in this
// package participates in spec.md's trait/event contract directly — it
// is wired in as a plan.Observer, a passive tap on the already-dispatched
// event stream, grounded on the teacher's services/search_cache.go
// (database/sql + lib/pq, one service struct wrapping a *sql.DB).
package store

import (
	"context"
	"time"

	"paratest/issue"
	"paratest/plan"
)

// Filter narrows a Query to a time window and row count, the minimal
// shape a history consumer (reportserver, a CLI "show past runs"
// subcommand) needs.
type Filter struct {
	Since time.Time
	Until time.Time
	Limit int
}

// Record is one persisted run: its summary plus every issue recorded
// during it, joined back in by RunID on Query.
type Record struct {
	Summary plan.RunSummary
	Issues  []issue.Issue
}

// History is the storage-agnostic interface plan's Observer wiring
// depends on (SPEC_FULL.md §6: "store.History interface"). PostgresHistory
// is its only implementation; the interface exists so cmd/paratest-demo
// can wire a no-op or in-memory stand-in without touching plan.
type History interface {
	// Record persists summary and every issue observed during its run.
	Record(ctx context.Context, summary plan.RunSummary, issues []issue.Issue) error
	// Query returns past runs matching filter, most recent first.
	Query(ctx context.Context, filter Filter) ([]Record, error)
}
