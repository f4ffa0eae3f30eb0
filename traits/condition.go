// Package traits implements spec.md §2's Trait Implementations row: the
// stock traits (ConditionTrait, TimeLimitTrait, ParallelizationTrait,
// Bug, Comment, Tag, IssueHandlingTrait, AttachmentSavingTrait) built on
// top of the generic trait/condition/timelimit/handling/scheduler
// packages.
package traits

import (
	"context"

	"paratest/condition"
	"paratest/trait"
)

// ConditionTrait wraps a condition.Trait expression as a prepare hook:
// it evaluates the condition and, if it does not hold, returns the
// resulting condition.Skip as the prepare error, which plan.PlanRunner
// recognizes and turns into a skip action (spec.md §4.6 step 3).
type ConditionTrait struct {
	Condition condition.Trait
	recursive bool
}

// NewConditionTrait builds a ConditionTrait evaluating c.
func NewConditionTrait(c condition.Trait) ConditionTrait {
	return ConditionTrait{Condition: c}
}

// Recursive returns a copy of c marked as a recursive suite trait
// (spec.md §4.1): applied to the suite itself and, independently, to
// every test it contains.
func (c ConditionTrait) Recursive() ConditionTrait {
	c.recursive = true
	return c
}

// Prepare implements trait.Preparer.
func (c ConditionTrait) Prepare(ctx context.Context, test *trait.TestDescriptor) error {
	ok, skip, err := condition.Evaluate(ctx, c.Condition)
	if err != nil {
		return err
	}
	if !ok {
		return skip
	}
	return nil
}

// IsRecursive implements trait.Suite.
func (c ConditionTrait) IsRecursive() bool { return c.recursive }
