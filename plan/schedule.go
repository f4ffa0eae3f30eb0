package plan

import (
	"context"

	"paratest/config"
	"paratest/event"
	"paratest/issue"
	"paratest/scheduler"
	"paratest/timelimit"
	"paratest/trait"
)

// runChildren implements spec.md §4.4's scheduling policy for a suite's
// contained tests: build a schedule of concurrent/barrier Items — a
// .serialized(.globally) test goes through scheduler.Global() instead of
// any WorkGroup slot, a .serialized(.locally) test (or parallelization
// disabled entirely) becomes a Barrier, and everything else batches
// behind the configured pool — then run it on a WorkGroup scoped to this
// one suite.
func (r *PlanRunner) runChildren(ctx context.Context, parent *Step, inheritedRecursive []trait.Trait, inheritedMode trait.SerializationMode, acc *outcomeAccumulator) {
	cfg := config.Current(ctx)
	group := scheduler.NewWorkGroup()
	items := make([]scheduler.Item, 0, len(parent.Children))

	for _, childStep := range parent.Children {
		childStep := childStep
		mode := effectiveSerializationMode(trait.EffectiveTraits(inheritedRecursive, childStep.Test.Traits), inheritedMode)
		run := func(ctx context.Context) error {
			r.runDescriptor(ctx, childStep, inheritedRecursive, inheritedMode, acc)
			return nil
		}
		items = append(items, scheduleItem(mode, cfg, r.pool, run))
	}

	group.RunSchedule(ctx, items)
}

// scheduleItem picks the scheduler.Item shape for one unit of work (a
// sibling test within a suite, or a test case within a parameterized
// function) per spec.md §4.4 steps 1-2.
func scheduleItem(mode trait.SerializationMode, cfg *config.Configuration, pool *scheduler.Serializer, run func(ctx context.Context) error) scheduler.Item {
	switch {
	case mode == trait.SerializationGlobal:
		return scheduler.Item{Run: func(ctx context.Context) error {
			return scheduler.Global().Run(ctx, run)
		}}
	case mode == trait.SerializationLocal:
		return scheduler.Item{IsBarrier: true, Run: run}
	case !cfg.Parallelization.Enabled:
		return scheduler.Item{IsBarrier: true, Run: run}
	default:
		return scheduler.Item{Run: func(ctx context.Context) error {
			return pool.Run(ctx, run)
		}}
	}
}

// runTestFunction implements spec.md §4.6 steps 4-5 for a leaf test: the
// function-granularity scope providers (tc == nil) wrap the whole
// test_started/test_ended pair and the cases loop inside it, then every
// Test Case the function yields gets its own case-granularity providers
// and scheduling, the same way runChildren schedules suite siblings
// (spec.md §4.4 applies uniformly at both granularities).
func (r *PlanRunner) runTestFunction(ctx context.Context, test *trait.TestDescriptor, effective []trait.Trait, mode trait.SerializationMode) {
	var inherited []timelimit.Minutes
	for _, t := range effective {
		if t.HasTimeLimit() {
			inherited = append(inherited, t.TimeLimitMinutes())
		}
	}
	cfg := config.Current(ctx)
	limit := timelimit.Compute(inherited, cfg.TimeLimit.Default, cfg.TimeLimit.Granularity, cfg.TimeLimit.Maximum)

	providers := trait.Providers(test, nil, effective)
	err := trait.RunWithScopes(ctx, test, nil, providers, func(ctx context.Context) error {
		r.postStep(ctx, event.KindTestStarted, test, nil)

		var cases []*trait.TestCase
		for c := range trait.Cases(test) {
			cases = append(cases, c)
		}

		group := scheduler.NewWorkGroup()
		items := make([]scheduler.Item, 0, len(cases))
		for _, c := range cases {
			c := c
			run := func(ctx context.Context) error {
				return r.runCase(ctx, test, c, effective, limit)
			}
			items = append(items, scheduleItem(mode, cfg, r.pool, run))
		}
		group.RunSchedule(ctx, items)

		r.postStep(ctx, event.KindTestEnded, test, nil)
		return nil
	})
	if err != nil {
		iss := issue.Customize(issue.New(err, test.SourceLocation), err)
		r.postIssue(ctx, test, nil, iss)
	}
}

// runCase runs exactly one Test Case: build its scope providers, enforce
// its time limit around the scoped body, and record whatever it threw as
// an issue unless it is the ExpectationFailed sentinel (spec.md §7, §8's
// "no double-record" property — the issue it wraps was already posted by
// the failing #require itself).
func (r *PlanRunner) runCase(ctx context.Context, test *trait.TestDescriptor, tc *trait.TestCase, effective []trait.Trait, limit timelimit.Minutes) error {
	r.postCase(ctx, event.KindTestCaseStarted, test, tc, nil)

	providers := trait.Providers(test, tc, effective)
	timedOut := false
	bodyErr := timelimit.Enforce(ctx, r.clk, limit, func(comp issue.TimeLimitComponents) {
		timedOut = true
		r.postIssue(ctx, test, tc, issue.Issue{
			Kind:           issue.KindTimeLimitExceeded,
			Severity:       issue.SeverityError,
			SourceLocation: test.SourceLocation,
			TimeLimit:      comp,
		})
	}, func(ctx context.Context) error {
		return trait.RunWithScopes(ctx, test, tc, providers, func(ctx context.Context) error {
			return test.Body(issue.PushOrigin(ctx, test.ID, tc.ID), tc)
		})
	})

	if bodyErr != nil && !issue.IsExpectationFailed(bodyErr) {
		iss := issue.Customize(issue.New(bodyErr, test.SourceLocation), bodyErr)
		r.postIssue(ctx, test, tc, iss)
	}

	passed := bodyErr == nil && !timedOut
	r.postCase(ctx, event.KindTestCaseEnded, test, tc, event.Outcome{Passed: passed})
	return nil
}
