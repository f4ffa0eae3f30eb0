package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWorkGroup_BarrierWaitsForEarlierSlice matches spec.md §8 property 5:
// in a schedule [c1, c2, barrier, c3], c3 starts strictly after both c1
// and c2 complete.
func TestWorkGroup_BarrierWaitsForEarlierSlice(t *testing.T) {
	wg := NewWorkGroup()

	var mu sync.Mutex
	var log []string
	record := func(s string) {
		mu.Lock()
		log = append(log, s)
		mu.Unlock()
	}

	items := []Item{
		{Run: func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			record("c1-end")
			return nil
		}},
		{Run: func(ctx context.Context) error {
			time.Sleep(15 * time.Millisecond)
			record("c2-end")
			return nil
		}},
		{IsBarrier: true, Run: func(ctx context.Context) error {
			record("barrier")
			return nil
		}},
		{Run: func(ctx context.Context) error {
			record("c3-start")
			return nil
		}},
	}

	err := wg.RunSchedule(context.Background(), items)
	require.NoError(t, err)

	require.Equal(t, []string{"c1-end", "c2-end", "barrier", "c3-start"}, log)
}

func TestWorkGroup_ConcurrentItemsOverlap(t *testing.T) {
	wg := NewWorkGroup()
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(2)

	done := make(chan error, 2)
	go func() {
		done <- wg.Concurrent(context.Background(), func(ctx context.Context) error {
			started.Done()
			<-release
			return nil
		})
	}()
	go func() {
		done <- wg.Concurrent(context.Background(), func(ctx context.Context) error {
			started.Done()
			<-release
			return nil
		})
	}()

	waitDone := make(chan struct{})
	go func() {
		started.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-time.After(time.Second):
		t.Fatal("concurrent items did not overlap")
	}
	close(release)
	<-done
	<-done
}

func TestWorkGroup_BarrierBlocksLaterConcurrent(t *testing.T) {
	wg := NewWorkGroup()
	barrierStarted := make(chan struct{})
	releaseBarrier := make(chan struct{})

	go func() {
		_ = wg.Barrier(context.Background(), func(ctx context.Context) error {
			close(barrierStarted)
			<-releaseBarrier
			return nil
		})
	}()
	<-barrierStarted

	concurrentDone := make(chan struct{})
	go func() {
		_ = wg.Concurrent(context.Background(), func(ctx context.Context) error {
			close(concurrentDone)
			return nil
		})
	}()

	select {
	case <-concurrentDone:
		t.Fatal("concurrent item ran while barrier was pending")
	case <-time.After(20 * time.Millisecond):
	}

	close(releaseBarrier)
	select {
	case <-concurrentDone:
	case <-time.After(time.Second):
		t.Fatal("concurrent item never ran after barrier finished")
	}
}

func TestWorkGroup_OneItemErrorDoesNotAbortSiblings(t *testing.T) {
	wg := NewWorkGroup()
	var ran int32 = 0
	var mu sync.Mutex
	items := []Item{
		{Run: func(ctx context.Context) error { return assertErr }},
		{Run: func(ctx context.Context) error {
			mu.Lock()
			ran++
			mu.Unlock()
			return nil
		}},
	}

	err := wg.RunSchedule(context.Background(), items)
	require.Error(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int32(1), ran)
}

var assertErr = &sentinelErr{"boom"}

type sentinelErr struct{ msg string }

func (e *sentinelErr) Error() string { return e.msg }
