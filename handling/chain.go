// Package handling implements the issue-handling chain of spec.md §4.3:
// a per-scope transform/filter stack installed as event-bus frames.
package handling

import (
	"paratest/event"
	"paratest/issue"
)

// Transform rewrites or suppresses a recorded issue. Returning (issue,
// true) forwards the (possibly rewritten) issue to the outer handler;
// returning (_, false) suppresses it entirely.
type Transform func(issue.Issue) (issue.Issue, bool)

// Install returns an event.Bus frame that intercepts KindIssueRecorded
// events with transform and passes every other event kind through
// unchanged, per spec.md §4.3. Composition is automatic: calling Install
// again on the resulting Bus layers another frame on top, and because
// each frame closes over the *current* outer handler at install time,
// evaluation for a given issue runs innermost-to-outermost — the frame
// installed last (innermost trait scope) runs first.
//
// The outer handler is invoked from inside transform's own call when it
// forwards, which is what makes "the transform closure runs under the
// outer handler's event configuration" true (spec.md §4.3): any issue
// transform itself records, by calling issue.Record from within
// transform, is posted to a Bus whose top handler is `outer` — strictly
// outside this frame — which is exactly what prevents infinite recursion.
func Install(bus event.Bus, transform Transform) event.Bus {
	return bus.WithFrame(func(outer event.Handler) event.Handler {
		return func(ev event.Event) {
			if ev.Kind != event.KindIssueRecorded {
				outer(ev)
				return
			}
			iss, ok := ev.Payload.(issue.Issue)
			if !ok {
				outer(ev)
				return
			}
			rewritten, keep := transform(iss)
			if !keep {
				return
			}
			ev.Payload = rewritten
			outer(ev)
		}
	})
}
