package plan

import (
	"context"
	"errors"

	"paratest/condition"
	"paratest/event"
	"paratest/issue"
	"paratest/trait"
)

// runDescriptor implements spec.md §4.6's per-Step loop:
//  1. emit plan_step_started
//  2. if the step's action is skip, emit test_skipped and return
//  3. run prepare across the effective trait list; a Skip short-circuits
//     to (2); any other error is recorded as error_caught and the test
//     is marked failed with no body run
//  4/5. recurse into children (suite) or run the test function (leaf),
//     wrapped in the suite-granularity scope providers (tc == nil) a
//     non-recursive TestScoping trait installs via run_with_scopes —
//     function-granularity providers are entered inside runTestFunction
//  6. emit plan_step_ended(outcome)
func (r *PlanRunner) runDescriptor(ctx context.Context, step *Step, inheritedRecursive []trait.Trait, inheritedMode trait.SerializationMode, acc *outcomeAccumulator) {
	test := step.Test
	r.postStep(ctx, event.KindPlanStepStarted, test, nil)

	switch step.Action {
	case ActionSkip:
		r.postSkip(ctx, test, step.SkipReason, test.SourceLocation)
		acc.recordSkipped(countLeaves(step))
		return
	case ActionRecordIssue:
		r.postIssue(ctx, test, nil, step.Issue)
		outcome := event.Outcome{Passed: !step.Issue.IsFailure()}
		r.postStep(ctx, event.KindPlanStepEnded, test, &outcome)
		acc.recordOutcomeN(outcome.Passed, countLeaves(step))
		return
	}

	effective := trait.EffectiveTraits(inheritedRecursive, test.Traits)
	ownMode := effectiveSerializationMode(effective, inheritedMode)

	tracker := &failureTracker{}
	ctx = event.Push(ctx, event.Current(ctx).WithFrame(tracker.wrap))

	for _, t := range effective {
		if !t.HasPrepare() {
			continue
		}
		if err := t.Prepare(ctx, test); err != nil {
			var skip condition.Skip
			if errors.As(err, &skip) {
				r.postSkip(ctx, test, skip.Comment, skip.SourceLocation)
				acc.recordSkipped(countLeaves(step))
				return
			}
			iss := issue.Customize(issue.New(err, test.SourceLocation), err)
			r.postIssue(ctx, test, nil, iss)
			outcome := event.Outcome{Passed: !tracker.failed.Load()}
			r.postStep(ctx, event.KindPlanStepEnded, test, &outcome)
			acc.recordOutcomeN(outcome.Passed, countLeaves(step))
			return
		}
	}

	if test.IsSuite {
		recursiveChildren := trait.RecursiveSuiteTraits(effective)
		providers := trait.Providers(test, nil, effective)
		if err := trait.RunWithScopes(ctx, test, nil, providers, func(ctx context.Context) error {
			r.runChildren(ctx, step, recursiveChildren, ownMode, acc)
			return nil
		}); err != nil {
			iss := issue.Customize(issue.New(err, test.SourceLocation), err)
			r.postIssue(ctx, test, nil, iss)
		}
	} else {
		r.runTestFunction(ctx, test, effective, ownMode)
	}

	outcome := event.Outcome{Passed: !tracker.failed.Load()}
	r.postStep(ctx, event.KindPlanStepEnded, test, &outcome)
	if !test.IsSuite {
		acc.recordLeaf(outcome.Passed)
	}
}

// countLeaves counts the test functions in step's subtree (step itself,
// if it is not a suite; a suite with no children counts as one) — used
// to attribute a suite-level skip or
// prepare failure, which never visits its children individually, to
// however many leaf tests it would otherwise have run.
func countLeaves(step *Step) int {
	if !step.Test.IsSuite {
		return 1
	}
	if len(step.Children) == 0 {
		return 1
	}
	n := 0
	for _, c := range step.Children {
		n += countLeaves(c)
	}
	return n
}
