package traits

import "paratest/timelimit"

// TimeLimitTrait contributes a per-test duration in whole minutes
// (spec.md §4.5). It carries no prepare hook and no scope of its own;
// plan.PlanRunner reads every effective trait's TimeLimitMinutes (via the
// trait.TimeLimiter probe) to compute the combined limit before entering
// the time-limit scope, since the minimum-across-inherited-traits rule
// must be resolved before timelimit.Enforce can be called.
type TimeLimitTrait struct {
	Minutes timelimit.Minutes
}

// NewTimeLimitTrait builds a TimeLimitTrait contributing minutes.
func NewTimeLimitTrait(minutes timelimit.Minutes) TimeLimitTrait {
	return TimeLimitTrait{Minutes: minutes}
}

// TimeLimitMinutes implements trait.TimeLimiter.
func (t TimeLimitTrait) TimeLimitMinutes() timelimit.Minutes { return t.Minutes }
