// Package timelimit implements spec.md §4.5's time-limit enforcement:
// per-test duration computation (minimum of inherited limits and the
// configured default, rounded up and clamped) and the watcher-task race
// against the test body.
package timelimit

import (
	"context"
	"time"

	"paratest/clock"
	"paratest/issue"
)

// Minutes is a duration expressed in whole minutes only — spec.md §4.5:
// "the API rejects finer granularity at compile time". Go has no
// compile-time duration-unit checking, so Minutes is the idiomatic
// stand-in: a TimeLimitTrait can only be constructed from a whole number
// of minutes, never a time.Duration directly.
type Minutes int

// Duration converts m to a time.Duration.
func (m Minutes) Duration() time.Duration {
	return time.Duration(m) * time.Minute
}

// Compute applies spec.md §4.5's three-step rule: take the minimum across
// every inherited TimeLimitTrait and the configured default, round up to
// a multiple of granularity, then clamp to max (if max > 0).
func Compute(inherited []Minutes, defaultLimit Minutes, granularity Minutes, max Minutes) Minutes {
	limit := defaultLimit
	for _, m := range inherited {
		if limit == 0 || (m > 0 && m < limit) {
			limit = m
		}
	}
	if limit <= 0 {
		return 0 // no limit configured anywhere
	}
	if granularity > 1 {
		if rem := limit % granularity; rem != 0 {
			limit += granularity - rem
		}
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}

// Enforce runs body under a deadline of limit, racing a watcher against
// it per spec.md §4.5:
//   - if the watcher's sleep completes first, onExceeded is called with
//     the components of limit and body's goroutine is abandoned
//     (cooperatively cancelled via ctx; Go has no forced termination of
//     user code, matching spec.md §9's "no forced termination").
//   - if body completes first, the watcher never fires.
//
// Enforce returns body's error when body finishes first. On timeout it
// returns nil and discards whatever body later returns, so the only issue
// for that case is the one onExceeded records; the caller
// (plan.PlanRunner) tracks the timeout through onExceeded.
func Enforce(ctx context.Context, clk clock.Clock, limit Minutes, onExceeded func(issue.TimeLimitComponents), body func(ctx context.Context) error) error {
	if limit <= 0 {
		return body(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deadline := clk.Now().Add(limit.Duration())
	resultCh := make(chan error, 1)
	go func() {
		resultCh <- body(ctx)
	}()

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	watchDone := make(chan error, 1)
	go func() {
		watchDone <- clk.SleepUntil(watchCtx, deadline)
	}()

	select {
	case err := <-resultCh:
		stopWatch()
		return err
	case werr := <-watchDone:
		if werr != nil {
			// the watch was cancelled alongside the body; body already
			// won the race via ctx cancellation ordering above, so just
			// wait for it.
			return <-resultCh
		}
		onExceeded(components(limit))
		cancel()
		<-resultCh // drain; body observes ctx.Done() cooperatively
		return nil
	}
}

func components(m Minutes) issue.TimeLimitComponents {
	total := time.Duration(m) * time.Minute
	return issue.TimeLimitComponents{
		Minutes: int(total / time.Minute),
		Seconds: int((total % time.Minute) / time.Second),
	}
}
