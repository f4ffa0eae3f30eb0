package plan

import (
	"context"

	"paratest/event"
	"paratest/issue"
	"paratest/trait"
)

func (r *PlanRunner) postStep(ctx context.Context, kind event.Kind, test *trait.TestDescriptor, outcome *event.Outcome) {
	ev := event.Event{Kind: kind, TestID: test.ID}
	if outcome != nil {
		ev.Payload = *outcome
	}
	r.post(ctx, ev)
}

func (r *PlanRunner) postCase(ctx context.Context, kind event.Kind, test *trait.TestDescriptor, tc *trait.TestCase, payload any) {
	r.post(ctx, event.Event{Kind: kind, TestID: test.ID, TestCaseID: tc.ID, Payload: payload})
}

func (r *PlanRunner) postIssue(ctx context.Context, test *trait.TestDescriptor, tc *trait.TestCase, iss issue.Issue) {
	ev := event.Event{Kind: event.KindIssueRecorded, TestID: test.ID, Payload: iss}
	if tc != nil {
		ev.TestCaseID = tc.ID
	}
	r.post(ctx, ev)
}

func (r *PlanRunner) postSkip(ctx context.Context, test *trait.TestDescriptor, reason string, loc event.SourceLocation) {
	r.post(ctx, event.Event{
		Kind:   event.KindTestSkipped,
		TestID: test.ID,
		Payload: event.SkipInfo{
			Comment:        reason,
			SourceLocation: loc,
		},
	})
}
