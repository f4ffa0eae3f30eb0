package plan

import (
	"sync"

	"github.com/google/uuid"

	"paratest/clock"
	"paratest/event"
)

// RunSummary is the value plan.PlanRunner.Run returns, per spec.md §6's
// run(plan, configuration, handler) -> RunSummary contract.
type RunSummary struct {
	ID        uuid.UUID
	StartedAt clock.Instant
	EndedAt   clock.Instant
	Passed    int
	Failed    int
	Skipped   int
	Cancelled bool
}

// Observer is a passive tap receiving every Event after the configured
// Handler has already processed it — spec.md's closed trait/event
// contract never lets a non-trait collaborator filter or rewrite what a
// test observes, so store.Recorder and reportserver.Server are
// built on this narrower interface instead of event.Handler.
type Observer func(ev event.Event)

// outcomeAccumulator tallies leaf-test results across however many
// goroutines plan.PlanRunner's scheduler fans a run out across.
type outcomeAccumulator struct {
	mu                       sync.Mutex
	passed, failed, skipped int
}

func (a *outcomeAccumulator) recordSkipped(n int) {
	a.mu.Lock()
	a.skipped += n
	a.mu.Unlock()
}

func (a *outcomeAccumulator) recordLeaf(passed bool) {
	a.mu.Lock()
	if passed {
		a.passed++
	} else {
		a.failed++
	}
	a.mu.Unlock()
}

// recordOutcomeN attributes the same pass/fail outcome to n leaf tests at
// once, used when a suite short-circuits (skip or prepare failure) before
// ever visiting its contained tests individually — spec.md §8's "no
// double-record" property is about a single test's own issue, not about
// whether a whole skipped subtree still surfaces in RunSummary's totals.
func (a *outcomeAccumulator) recordOutcomeN(passed bool, n int) {
	a.mu.Lock()
	if passed {
		a.passed += n
	} else {
		a.failed += n
	}
	a.mu.Unlock()
}

func (a *outcomeAccumulator) counts() (passed, failed, skipped int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.passed, a.failed, a.skipped
}
