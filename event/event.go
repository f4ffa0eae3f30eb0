// Package event implements the synchronous event bus described in
// spec.md §2 and §4.3: a per-scope, immutable stack of handlers that
// trait scopes can replace for the duration of their scope without ever
// mutating shared state.
package event

import (
	"paratest/clock"
)

// Kind identifies the shape of an Event's payload.
type Kind string

const (
	KindRunStarted        Kind = "run_started"
	KindTestDiscovered    Kind = "test_discovered"
	KindPlanStepStarted   Kind = "plan_step_started"
	KindPlanStepEnded     Kind = "plan_step_ended"
	KindTestStarted       Kind = "test_started"
	KindTestEnded         Kind = "test_ended"
	KindTestCaseStarted   Kind = "test_case_started"
	KindTestCaseEnded     Kind = "test_case_ended"
	KindIssueRecorded     Kind = "issue_recorded"
	KindValueAttached     Kind = "value_attached"
	KindTestSkipped       Kind = "test_skipped"
	KindRunEnded          Kind = "run_ended"
)

// Event is the value type the Bus fans out. Payload holds kind-specific
// data (an issue.Issue for KindIssueRecorded, a SkipInfo for
// KindTestSkipped, and so on); it is typed loosely here because the core
// never needs to branch on anything but Kind plus the payload its own
// traits attached.
type Event struct {
	Kind       Kind
	Instant    clock.Instant
	TestID     string
	TestCaseID string
	Payload    any
}

// SkipInfo is the payload of a KindTestSkipped event.
type SkipInfo struct {
	Comment        string
	SourceLocation SourceLocation
}

// Outcome is the payload of a KindPlanStepEnded or KindTestEnded event.
type Outcome struct {
	Passed bool
}

// SourceLocation is opaque to the core beyond carrying display data; the
// actual introspection to produce one is an external collaborator's job
// per spec.md §1.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}
