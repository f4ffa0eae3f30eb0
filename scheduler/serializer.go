// Package scheduler implements the work scheduler of spec.md §4.4: a
// bounded-concurrency Serializer and a single-coordinator WorkGroup with
// barrier semantics.
package scheduler

import (
	"context"
	"math"

	"golang.org/x/sync/semaphore"
)

// Unbounded is the max_width value meaning "no concurrency limit" —
// spec.md §4.4's "usize::MAX if unbounded".
const Unbounded = 0

// Serializer is the actor-like admission queue of spec.md §4.4: it admits
// up to maxWidth concurrent work items; excess callers suspend in FIFO
// order until a slot frees up. maxWidth = 1 gives strict serial
// execution; this is how both the default pool and the process-wide
// Global serializer are built, only differing in width.
//
// Adapted from the teacher's Engine.Parallel (tests/framework/runner/
// engine.go), which hand-rolled the same admission pattern with a
// buffered `chan struct{}` semaphore; here it is built on
// golang.org/x/sync/semaphore so the FIFO-waiter guarantee and
// cancellation-aware Acquire come from the library rather than from a
// channel whose ordering Go does not actually guarantee.
type Serializer struct {
	sem   *semaphore.Weighted
	width int64
}

// NewSerializer creates a Serializer admitting up to maxWidth concurrent
// work items. maxWidth <= 0 means Unbounded.
func NewSerializer(maxWidth int) *Serializer {
	width := int64(maxWidth)
	if width <= 0 {
		width = math.MaxInt64
	}
	return &Serializer{sem: semaphore.NewWeighted(width), width: width}
}

// MaxWidth returns the configured concurrency width.
func (s *Serializer) MaxWidth() int64 { return s.width }

// Run acquires a slot (blocking until one is free or ctx is cancelled)
// and runs fn, releasing the slot when fn returns.
func (s *Serializer) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)
	return fn(ctx)
}

var globalSerializer = NewSerializer(1)

// Global returns the process-wide serializer used for
// .serialized(.globally) tests, per spec.md §4.4: "the test runs on the
// global serializer (effective max_width = 1) instead of the default
// pool". It is a package-level singleton because global serialization
// must order *every* so-tagged test across the whole run, not just within
// one suite's WorkGroup.
func Global() *Serializer { return globalSerializer }
