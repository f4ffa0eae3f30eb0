// Package plan implements the plan runner of spec.md §4.6: the main loop
// that walks a Plan (a tree of Test Descriptors annotated with an action),
// drives each test through prepare/scope/execute, and reduces the event
// stream into a RunSummary.
package plan

import (
	"paratest/issue"
	"paratest/trait"
)

// Action is one of spec.md §3's three annotations a Plan attaches to
// every node in the tree: run the node normally, skip it with a reason
// already known before the run starts, or record a pre-computed issue
// against it without ever running its body (e.g. a discovery-time
// collection error).
type Action int

const (
	ActionRun Action = iota
	ActionSkip
	ActionRecordIssue
)

// Step is one node of a Plan: a Test Descriptor plus the action to take
// for it, built once at the start of a run per spec.md §3. A trait's
// prepare hook may still mutate a run step to a skip at execution time
// (spec.md §4.6 step 3); Action here only covers decisions made before
// the run begins.
type Step struct {
	Test       *trait.TestDescriptor
	Action     Action
	SkipReason string
	Issue      issue.Issue
	Children   []*Step
}

// Plan is the tree PlanRunner.Run executes.
type Plan struct {
	Root *Step
}

// Build constructs a Plan whose every node defaults to ActionRun,
// mirroring root's Test Descriptor tree one-to-one. Callers (typically a
// discovery collaborator) may mutate the returned tree's Actions before
// passing it to PlanRunner.Run — e.g. to mark a test ActionSkip because
// a CLI filter excluded it, or ActionRecordIssue because discovery itself
// failed to construct it.
func Build(root *trait.TestDescriptor) *Plan {
	return &Plan{Root: buildStep(root)}
}

func buildStep(test *trait.TestDescriptor) *Step {
	step := &Step{Test: test, Action: ActionRun}
	for _, child := range test.Children {
		step.Children = append(step.Children, buildStep(child))
	}
	return step
}
