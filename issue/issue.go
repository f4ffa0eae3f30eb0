// Package issue defines the typed issue taxonomy described in spec.md
// §3: records produced when something fails or a noteworthy condition
// arises during a test.
package issue

import (
	"fmt"

	"paratest/event"
)

// Kind identifies the category of an Issue, per spec.md §3.
type Kind string

const (
	KindExpectationFailed   Kind = "expectation_failed"
	KindConfirmationFailed  Kind = "confirmation_failed"
	KindErrorCaught         Kind = "error_caught"
	KindTimeLimitExceeded   Kind = "time_limit_exceeded"
	KindSystem              Kind = "system"
	KindAPIMisused          Kind = "api_misused"
	KindKnownIssueNotRecord Kind = "known_issue_not_recorded"
	KindUnconditional       Kind = "unconditional"
	KindValueAttached       Kind = "value_attached"
)

// Severity is the severity of an Issue. Only Error severity can fail a
// test; Warning issues are informational.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// TimeLimitComponents breaks a time_limit_exceeded issue's configured
// limit into the same (minutes, seconds) shape a user-facing "exceeded
// its N minute time limit" message would render.
type TimeLimitComponents struct {
	Minutes int
	Seconds int
}

// Attachment is the payload of a value_attached issue (spec.md §3's
// Issue.kind = value_attached). Path is populated by an external
// collaborator that performs the actual file write — file I/O is
// explicitly out of scope for this module (spec.md §1) — and is empty
// until one does.
type Attachment struct {
	Name  string
	Value any
	Path  string
}

// Issue is an immutable record of something notable observed during a
// test, per spec.md §3.
type Issue struct {
	Kind           Kind
	Severity       Severity
	Comments       []string
	SourceLocation event.SourceLocation
	Backtrace      []string
	IsKnown        bool

	// Set only for KindTimeLimitExceeded.
	TimeLimit TimeLimitComponents
	// Set only for KindValueAttached.
	Attachment Attachment
	// The underlying error, for KindErrorCaught/KindSystem/KindAPIMisused.
	Cause error
}

// IsFailure implements spec.md §3's invariant:
// is_failure = (severity == error) && !is_known.
func (i Issue) IsFailure() bool {
	return i.Severity == SeverityError && !i.IsKnown
}

// Error implements the error interface so an Issue can itself be
// returned/wrapped by collaborators that want to treat it as a Go error
// (e.g. propagating it through an errgroup.Group in scheduler).
func (i Issue) Error() string {
	if i.Cause != nil {
		return fmt.Sprintf("%s: %v", i.Kind, i.Cause)
	}
	if len(i.Comments) > 0 {
		return fmt.Sprintf("%s: %s", i.Kind, i.Comments[0])
	}
	return string(i.Kind)
}

// Unwrap exposes Cause for errors.Is/errors.As.
func (i Issue) Unwrap() error {
	return i.Cause
}

// WithKnown returns a copy of i marked is_known=true, used by
// with_known_issue (spec.md §6) to mark every issue recorded within its
// scope.
func (i Issue) WithKnown() Issue {
	i.IsKnown = true
	return i
}

// New constructs an error_caught issue wrapping err, the default shape
// for any error thrown from a test body that isn't otherwise
// customizable (spec.md §7).
func New(err error, loc event.SourceLocation) Issue {
	return Issue{
		Kind:           KindErrorCaught,
		Severity:       SeverityError,
		SourceLocation: loc,
		Cause:          err,
	}
}

// Customizer is implemented by errors that know how to rewrite the issue
// recorded on their behalf (spec.md §7's "errors carrying a
// customize(issue) -> issue hook"). errors.AppError implements this.
type Customizer interface {
	CustomizeIssue(Issue) Issue
}

// Customize applies err's Customizer hook to base if err implements one,
// otherwise returns base unchanged.
func Customize(base Issue, err error) Issue {
	if c, ok := err.(Customizer); ok {
		return c.CustomizeIssue(base)
	}
	return base
}
