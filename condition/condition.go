// Package condition implements the condition evaluator described in
// spec.md §4.2: enabled/disabled predicates and a small AND/OR expression
// DSL that evaluates both sides concurrently but reports only the first
// failing side's Skip, per the "short-circuit at the reporting layer"
// rule.
package condition

import (
	"context"

	"paratest/event"
)

// Skip is the non-error control signal produced when a condition
// evaluates to false (spec.md §7). It is consumed by the plan runner and
// turned into a test_skipped event; it never surfaces as an
// issue_recorded event.
type Skip struct {
	Comment        string
	SourceLocation event.SourceLocation
}

func (s Skip) Error() string {
	if s.Comment != "" {
		return "skip: " + s.Comment
	}
	return "skip"
}

// Predicate is an async boolean condition. Context cancellation is a
// cancellation point, per spec.md §5.
type Predicate func(ctx context.Context) (bool, error)

// Leaf is a single ConditionTrait: a predicate (or an unconditional
// boolean, wrapped as a constant Predicate), plus the comment and source
// location attached to the Skip it produces if it evaluates false.
type Leaf struct {
	Predicate      Predicate
	IsInverted     bool
	Comment        string
	SourceLocation event.SourceLocation
}

// Static returns a Leaf whose predicate is the constant value v —
// the "unconditional boolean" form of ConditionTrait from spec.md §4.2.
func Static(v bool, comment string, loc event.SourceLocation) Leaf {
	return Leaf{
		Predicate:      func(context.Context) (bool, error) { return v, nil },
		Comment:        comment,
		SourceLocation: loc,
	}
}

// Trait is the grouped-condition expression tree: Leaf(ConditionTrait) |
// And(Trait, Trait) | Or(Trait, Trait), per spec.md §4.2.
type Trait interface {
	// evaluate returns whether the condition holds and, if not, the Skip
	// to report. Implementations evaluate concurrently where they have
	// more than one child.
	evaluate(ctx context.Context) (bool, Skip, error)
}

// And builds an And(a, b) node. Precedence/associativity of the `&&`
// operator in the host DSL is left to callers composing Trait values;
// And itself is simply left-associative by construction.
func And(a, b Trait) Trait {
	return andNode{a: a, b: b}
}

// Or builds an Or(a, b) node.
func Or(a, b Trait) Trait {
	return orNode{a: a, b: b}
}

// Evaluate runs t and returns whether it holds. If it does not, ok is
// false and skip carries the comment/location to report, selected per
// spec.md §4.2's left-preference rule.
func Evaluate(ctx context.Context, t Trait) (ok bool, skip Skip, err error) {
	return t.evaluate(ctx)
}

func (l Leaf) evaluate(ctx context.Context) (bool, Skip, error) {
	v, err := l.Predicate(ctx)
	if err != nil {
		return false, Skip{}, err
	}
	if l.IsInverted {
		v = !v
	}
	if v {
		return true, Skip{}, nil
	}
	return false, Skip{Comment: l.Comment, SourceLocation: l.SourceLocation}, nil
}

type andNode struct{ a, b Trait }

func (n andNode) evaluate(ctx context.Context) (bool, Skip, error) {
	aOK, aSkip, bOK, bSkip, err := evaluateBothSides(ctx, n.a, n.b)
	if err != nil {
		return false, Skip{}, err
	}
	result := aOK && bOK
	if result {
		return true, Skip{}, nil
	}
	if !aOK {
		return false, aSkip, nil
	}
	return false, bSkip, nil
}

type orNode struct{ a, b Trait }

func (n orNode) evaluate(ctx context.Context) (bool, Skip, error) {
	aOK, aSkip, bOK, bSkip, err := evaluateBothSides(ctx, n.a, n.b)
	if err != nil {
		return false, Skip{}, err
	}
	result := aOK || bOK
	if result {
		return true, Skip{}, nil
	}
	// Neither side held; spec.md §4.2 prefers the left side's Skip.
	_ = bSkip
	return false, aSkip, nil
}

// evaluateBothSides runs a and b concurrently, per spec.md §4.2 ("evaluate
// both concurrently"), and returns both outcomes. The first error from
// either side wins.
func evaluateBothSides(ctx context.Context, a, b Trait) (aOK bool, aSkip Skip, bOK bool, bSkip Skip, err error) {
	type result struct {
		ok   bool
		skip Skip
		err  error
	}
	aCh := make(chan result, 1)
	bCh := make(chan result, 1)

	go func() {
		ok, skip, err := a.evaluate(ctx)
		aCh <- result{ok, skip, err}
	}()
	go func() {
		ok, skip, err := b.evaluate(ctx)
		bCh <- result{ok, skip, err}
	}()

	ra, rb := <-aCh, <-bCh
	if ra.err != nil {
		return false, Skip{}, false, Skip{}, ra.err
	}
	if rb.err != nil {
		return false, Skip{}, false, Skip{}, rb.err
	}
	return ra.ok, ra.skip, rb.ok, rb.skip, nil
}
