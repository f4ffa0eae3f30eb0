package store

import (
	"context"
	"log"
	"sync"
	"time"

	"paratest/event"
	"paratest/issue"
	"paratest/plan"
)

// Recorder adapts a History into a plan.Observer: it accumulates every
// issue_recorded event for the run in progress and, on run_ended,
// persists the run's summary alongside them. Persisting happens off the
// dispatch goroutine with a bounded timeout, mirroring the teacher's
// search_cache pattern of firing background work
// (go func() { ctx, cancel := context.WithTimeout(...); ... }()) rather
// than blocking whatever goroutine is driving the test run.
type Recorder struct {
	history History
	timeout time.Duration

	mu     sync.Mutex
	issues []issue.Issue
}

// NewRecorder builds a Recorder over history with a 30 second persist
// timeout, the same bound the teacher uses for its own background
// cache-cleanup goroutine.
func NewRecorder(history History) *Recorder {
	return &Recorder{history: history, timeout: 30 * time.Second}
}

// Observe implements plan.Observer.
func (r *Recorder) Observe(ev event.Event) {
	switch ev.Kind {
	case event.KindIssueRecorded:
		if iss, ok := ev.Payload.(issue.Issue); ok {
			r.mu.Lock()
			r.issues = append(r.issues, iss)
			r.mu.Unlock()
		}
	case event.KindRunEnded:
		summary, ok := ev.Payload.(plan.RunSummary)
		if !ok {
			return
		}
		r.mu.Lock()
		issues := make([]issue.Issue, len(r.issues))
		copy(issues, r.issues)
		r.issues = nil
		r.mu.Unlock()

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
			defer cancel()
			if err := r.history.Record(ctx, summary, issues); err != nil {
				log.Printf("store: failed to persist run %s: %v", summary.ID, err)
			}
		}()
	}
}

// AsObserver adapts r to plan.Observer's function signature.
func (r *Recorder) AsObserver() plan.Observer {
	return r.Observe
}
