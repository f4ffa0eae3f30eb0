// Package trait implements the trait/scope-provision model of spec.md
// §4.1: TestTrait/SuiteTrait protocols, trait erasure, and the
// outer-to-inner scope nesting algorithm.
package trait

import (
	"context"

	"paratest/timelimit"
)

// ScopeProvider wraps a test invocation with setup/teardown. It is the
// erased form of spec.md §3's "scope_provider(test, case?) -> async
// provide_scope(test, case?, body) closure".
type ScopeProvider interface {
	ProvideScope(ctx context.Context, test *TestDescriptor, tc *TestCase, body func(context.Context) error) error
}

// ScopeProviderFunc adapts a plain function to ScopeProvider.
type ScopeProviderFunc func(ctx context.Context, test *TestDescriptor, tc *TestCase, body func(context.Context) error) error

// ProvideScope implements ScopeProvider.
func (f ScopeProviderFunc) ProvideScope(ctx context.Context, test *TestDescriptor, tc *TestCase, body func(context.Context) error) error {
	return f(ctx, test, tc, body)
}

// Preparer is implemented by concrete trait types with a prepare hook,
// run once per test before any scope is entered (spec.md §3/§4.6).
type Preparer interface {
	Prepare(ctx context.Context, test *TestDescriptor) error
}

// Scoper is implemented by concrete trait types that provide a scope.
// test is always non-nil; tc is nil when providers are being computed at
// suite granularity (spec.md §4.1's case=None).
type Scoper interface {
	ScopeProvider(test *TestDescriptor, tc *TestCase) ScopeProvider
}

// Commenter is implemented by concrete trait types carrying comments.
type Commenter interface {
	Comments() []string
}

// Suite is implemented by concrete trait types that only apply to suites.
// IsRecursive decides whether the trait is also applied once per
// contained test (true) or once for the whole suite (false), per
// spec.md §4.1.
type Suite interface {
	IsRecursive() bool
}

// TimeLimiter is implemented by concrete trait types that contribute a
// time-limit minutes value (spec.md §4.5's TimeLimitTrait). It is a data
// probe rather than a behavior probe like Preparer/Scoper/Commenter/Suite,
// because the effective limit is the minimum across every inherited
// TimeLimitTrait and the configured default, computed once before any
// scope is entered — a TimeLimitTrait can't enforce its own limit from
// inside a ScopeProvider without losing that combination step.
type TimeLimiter interface {
	TimeLimitMinutes() timelimit.Minutes
}

// SerializationMode is the scheduling constraint a ParallelizationTrait
// contributes, per spec.md §4.4 step 1-2.
type SerializationMode int

const (
	// SerializationNone imposes no constraint; the test schedules
	// normally per configuration.
	SerializationNone SerializationMode = iota
	// SerializationLocal forces the test onto a barrier within its
	// containing WorkGroup (".serialized(.locally)").
	SerializationLocal
	// SerializationGlobal forces the test onto the process-wide
	// scheduler.Global() serializer (".serialized(.globally)").
	SerializationGlobal
)

// Serializing is implemented by concrete trait types that constrain how
// a test is scheduled (spec.md §4.4's ParallelizationTrait). Like
// TimeLimiter this is a data probe: the scheduling decision is made once,
// outside any scope, by combining every inherited trait's mode.
type Serializing interface {
	SerializationMode() SerializationMode
}

// Trait is the erased, storable form of a concrete trait value. A
// TestDescriptor's Traits field holds these; concrete trait types
// (traits.ConditionTrait, traits.TimeLimitTrait, ...) are erased into one
// via Erase when attached to a descriptor. Keeping concrete types
// un-erased everywhere else lets grouped conditions compose with
// type-safe And/Or operators (condition.Trait) before ever touching this
// package — see spec.md §9's "erase only when stored on a Test
// Descriptor".
type Trait struct {
	name          string
	prepare       func(ctx context.Context, test *TestDescriptor) error
	scopeProvider func(test *TestDescriptor, tc *TestCase) ScopeProvider
	comments      []string
	isSuiteTrait  bool
	isRecursive   bool
	hasTimeLimit  bool
	timeLimit     timelimit.Minutes
	serialization SerializationMode
}

// Erase builds the erased vtable for a concrete trait value v by probing
// it against Preparer/Scoper/Commenter/Suite. name is used only for
// diagnostics (e.g. a failed-prepare error message).
func Erase(name string, v any) Trait {
	t := Trait{name: name}
	if p, ok := v.(Preparer); ok {
		t.prepare = p.Prepare
	}
	if s, ok := v.(Scoper); ok {
		t.scopeProvider = s.ScopeProvider
	}
	if c, ok := v.(Commenter); ok {
		t.comments = c.Comments()
	}
	if st, ok := v.(Suite); ok {
		t.isSuiteTrait = true
		t.isRecursive = st.IsRecursive()
	}
	if tl, ok := v.(TimeLimiter); ok {
		t.hasTimeLimit = true
		t.timeLimit = tl.TimeLimitMinutes()
	}
	if sz, ok := v.(Serializing); ok {
		t.serialization = sz.SerializationMode()
	}
	return t
}

// Name returns the diagnostic name given to Erase, e.g. "ConditionTrait".
func (t Trait) Name() string { return t.name }

// Comments returns the trait's attached comments, possibly empty.
func (t Trait) Comments() []string { return t.comments }

// IsSuiteTrait reports whether the underlying concrete trait implements
// Suite (i.e. applies only to suites).
func (t Trait) IsSuiteTrait() bool { return t.isSuiteTrait }

// IsRecursive reports whether a suite trait is also applied to each
// contained test. Meaningless (always false) for non-suite traits.
func (t Trait) IsRecursive() bool { return t.isRecursive }

// HasPrepare reports whether the underlying trait has a prepare hook.
func (t Trait) HasPrepare() bool { return t.prepare != nil }

// Prepare invokes the underlying prepare hook, or returns nil if there is
// none.
func (t Trait) Prepare(ctx context.Context, test *TestDescriptor) error {
	if t.prepare == nil {
		return nil
	}
	return t.prepare(ctx, test)
}

// HasScopeProvider reports whether the underlying trait can provide a
// scope at all (independent of whether it returns nil for this
// particular test/case).
func (t Trait) HasScopeProvider() bool { return t.scopeProvider != nil }

// ScopeProviderFor returns the ScopeProvider the underlying trait
// supplies for (test, tc), or nil.
func (t Trait) ScopeProviderFor(test *TestDescriptor, tc *TestCase) ScopeProvider {
	if t.scopeProvider == nil {
		return nil
	}
	return t.scopeProvider(test, tc)
}

// HasTimeLimit reports whether the underlying trait implements
// TimeLimiter.
func (t Trait) HasTimeLimit() bool { return t.hasTimeLimit }

// TimeLimitMinutes returns the underlying trait's contributed minutes
// value, or 0 if it does not implement TimeLimiter.
func (t Trait) TimeLimitMinutes() timelimit.Minutes { return t.timeLimit }

// SerializationMode returns the underlying trait's contributed
// scheduling constraint, or SerializationNone if it does not implement
// Serializing.
func (t Trait) SerializationMode() SerializationMode { return t.serialization }
