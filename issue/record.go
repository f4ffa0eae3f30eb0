package issue

import (
	"context"

	"paratest/clock"
	"paratest/event"
)

// Record posts iss as a KindIssueRecorded event onto the Event Bus
// current on ctx, stamping whatever origin (test/test case) was pushed
// onto ctx by the runner. This is spec.md §6's Issue::record(...): the
// body-facing entry point a test uses to record something notable
// without returning an error from the body (which would end the test
// case rather than continue past the observation).
func Record(ctx context.Context, iss Issue) {
	o := currentOrigin(ctx)
	event.Current(ctx).Post(event.Event{
		Kind:       event.KindIssueRecorded,
		Instant:    clock.System{}.Now(),
		TestID:     o.testID,
		TestCaseID: o.testCaseID,
		Payload:    iss,
	})
}

// RecordError is spec.md §6's Issue::record_error(e): it builds an
// error_caught issue from err (customized per err's Customizer, exactly
// as a thrown error is at the end of a test case) and records it against
// the current test, without ending the test body.
func RecordError(ctx context.Context, err error, loc event.SourceLocation) {
	Record(ctx, Customize(New(err, loc), err))
}

// WithKnownIssue implements spec.md §6's with_known_issue(comment, body)
// scope: every issue body records is marked is_known=true before it
// reaches the Bus that was current outside this scope, per the §3
// invariant is_failure = (severity == error) && !is_known. comment may
// be empty. If body completes without recording anything, the known
// marker went unredeemed, and a known_issue_not_recorded issue is raised
// against the outer Bus in its place — this one is never itself marked
// known, so a stale with_known_issue block surfaces as a real failure.
func WithKnownIssue(ctx context.Context, comment string, body func(context.Context) error) error {
	recorded := false
	known := event.Current(ctx).WithFrame(func(outer event.Handler) event.Handler {
		return func(ev event.Event) {
			if ev.Kind == event.KindIssueRecorded {
				if iss, ok := ev.Payload.(Issue); ok {
					recorded = true
					ev.Payload = iss.WithKnown()
				}
			}
			outer(ev)
		}
	})

	err := body(event.Push(ctx, known))

	if !recorded {
		Record(ctx, Issue{
			Kind:     KindKnownIssueNotRecord,
			Severity: SeverityError,
			Comments: commentSlice(comment),
		})
	}

	return err
}

func commentSlice(comment string) []string {
	if comment == "" {
		return nil
	}
	return []string{comment}
}

// ctxKey is unexported so only this package can populate ctx's origin.
type ctxKey struct{}

type origin struct {
	testID     string
	testCaseID string
}

// PushOrigin returns a context carrying (testID, testCaseID) as the
// origin Record/RecordError stamp onto a posted Event, the same per-task
// context-stack convention config.Push and event.Push use. The runner
// calls this immediately before invoking a test body.
func PushOrigin(ctx context.Context, testID, testCaseID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, origin{testID: testID, testCaseID: testCaseID})
}

func currentOrigin(ctx context.Context) origin {
	if o, ok := ctx.Value(ctxKey{}).(origin); ok {
		return o
	}
	return origin{}
}
