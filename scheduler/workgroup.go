package scheduler

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// WorkGroup is the single-coordinator scheduler described in spec.md
// §4.4 and §9: it runs items in declaration order and supports barriers.
// Concurrent items scheduled back to back batch into a "slice" and run in
// parallel with each other; a barrier is its own slice and only starts
// once every earlier slice has finished, and nothing scheduled after it
// may start until it completes.
//
// The zero value is not usable; use NewWorkGroup.
type WorkGroup struct {
	mu      sync.Mutex
	cond    *sync.Cond
	active  int
	barrier bool
}

// NewWorkGroup creates a ready-to-use WorkGroup.
func NewWorkGroup() *WorkGroup {
	g := &WorkGroup{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Concurrent runs fn as part of a concurrent slice. It blocks only while
// a barrier is pending or running (spec.md §4.4: "a concurrent item waits
// only if a barrier is pending"); otherwise it proceeds immediately and
// may run alongside other Concurrent calls.
//
// A failure in fn is returned to the caller and does not cancel any
// sibling Concurrent/Barrier call — per spec.md §7, errors are localized
// to the test under which they occur.
func (g *WorkGroup) Concurrent(ctx context.Context, fn func(ctx context.Context) error) error {
	g.mu.Lock()
	for g.barrier {
		g.cond.Wait()
	}
	g.active++
	g.mu.Unlock()

	err := fn(ctx)

	g.mu.Lock()
	g.active--
	if g.active == 0 {
		g.cond.Broadcast()
	}
	g.mu.Unlock()
	return err
}

// Barrier runs fn only after every slice scheduled before it has
// finished, and holds off every slice scheduled after it until fn
// returns. Per spec.md §4.4: "when scheduled, a barrier captures a
// continuation and waits if any other item is already scheduled" — here
// that "other item" is specifically a prior, still-pending barrier; a
// second Barrier call queues behind the first.
func (g *WorkGroup) Barrier(ctx context.Context, fn func(ctx context.Context) error) error {
	g.mu.Lock()
	for g.barrier {
		g.cond.Wait()
	}
	g.barrier = true
	for g.active > 0 {
		g.cond.Wait()
	}
	g.mu.Unlock()

	err := fn(ctx)

	g.mu.Lock()
	g.barrier = false
	g.cond.Broadcast()
	g.mu.Unlock()
	return err
}

// Item is one entry in a schedule passed to RunSchedule: either a
// concurrent work item or a barrier.
type Item struct {
	IsBarrier bool
	Run       func(ctx context.Context) error
}

// RunSchedule runs items in declaration order, batching consecutive
// non-barrier items into one concurrent slice (fanned out with
// errgroup.Group, joined before the next barrier or the end of the
// schedule) and running each barrier item alone once its slice's
// predecessors have finished. It returns the first non-nil error
// encountered, if any, but — matching spec.md §7's propagation policy —
// one item's error never prevents its siblings in the same slice from
// running to completion.
func (g *WorkGroup) RunSchedule(ctx context.Context, items []Item) error {
	var slice []Item
	var firstErr error

	runSlice := func() {
		if len(slice) == 0 {
			return
		}
		var eg errgroup.Group
		for _, it := range slice {
			it := it
			eg.Go(func() error { return g.Concurrent(ctx, it.Run) })
		}
		if err := eg.Wait(); err != nil && firstErr == nil {
			firstErr = err
		}
		slice = nil
	}

	for _, it := range items {
		if it.IsBarrier {
			runSlice()
			if err := g.Barrier(ctx, it.Run); err != nil && firstErr == nil {
				firstErr = err
			}
			continue
		}
		slice = append(slice, it)
	}
	runSlice()

	return firstErr
}
