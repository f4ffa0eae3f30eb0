package plan

import (
	"sync/atomic"

	"paratest/event"
	"paratest/issue"
)

// failureTracker observes issue_recorded events flowing past the point
// in the Bus chain where it is installed and records whether any of them
// is_failure. Installing it as the base frame for a test's own Bus —
// below any IssueHandlingTrait scope that test's effective traits go on
// to install — means it only ever sees issues that survive whatever
// filtering those traits apply, which is exactly spec.md §4.6 step 6's
// "no issue with is_failure was recorded for this test and its
// descendants": a suppressed issue never reaches here at all.
type failureTracker struct {
	failed atomic.Bool
}

func (t *failureTracker) wrap(outer event.Handler) event.Handler {
	return func(ev event.Event) {
		if ev.Kind == event.KindIssueRecorded {
			if iss, ok := ev.Payload.(issue.Issue); ok && iss.IsFailure() {
				t.failed.Store(true)
			}
		}
		outer(ev)
	}
}
