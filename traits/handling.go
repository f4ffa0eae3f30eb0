package traits

import (
	"context"

	"paratest/event"
	"paratest/handling"
	"paratest/trait"
)

// IssueHandlingTrait installs a handling.Transform as a scope around the
// test it's attached to, per spec.md §4.3: issues recorded inside the
// scope pass through transform before reaching whatever Bus was current
// outside it.
type IssueHandlingTrait struct {
	Transform handling.Transform
}

// NewIssueHandlingTrait builds an IssueHandlingTrait from transform.
func NewIssueHandlingTrait(transform handling.Transform) IssueHandlingTrait {
	return IssueHandlingTrait{Transform: transform}
}

// ScopeProvider implements trait.Scoper.
func (h IssueHandlingTrait) ScopeProvider(test *trait.TestDescriptor, tc *trait.TestCase) trait.ScopeProvider {
	return trait.ScopeProviderFunc(func(ctx context.Context, test *trait.TestDescriptor, tc *trait.TestCase, body func(context.Context) error) error {
		filtered := handling.Install(event.Current(ctx), h.Transform)
		return body(event.Push(ctx, filtered))
	})
}
