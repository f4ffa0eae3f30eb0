package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemClock_SleepUntilPast(t *testing.T) {
	c := System{}
	err := c.SleepUntil(context.Background(), c.Now().Add(-time.Minute))
	require.NoError(t, err)
}

func TestSystemClock_SleepUntilCancelled(t *testing.T) {
	c := System{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.SleepUntil(ctx, c.Now().Add(time.Hour))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFakeClock_AdvanceWakesWaiter(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)

	deadline := f.Now().Add(5 * time.Second)
	done := make(chan error, 1)
	go func() {
		done <- f.SleepUntil(context.Background(), deadline)
	}()

	f.Advance(2 * time.Second)
	select {
	case <-done:
		t.Fatal("waiter woke before deadline")
	case <-time.After(20 * time.Millisecond):
	}

	f.Advance(3 * time.Second)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter did not wake after deadline")
	}
}

func TestFakeClock_DeadlineAlreadyPassed(t *testing.T) {
	f := NewFake(time.Now())
	past := f.Now().Add(-time.Second)
	require.NoError(t, f.SleepUntil(context.Background(), past))
}

func TestInstant_SubBeforeAfter(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)
	a := f.Now()
	f.Advance(time.Minute)
	b := f.Now()

	assert.Equal(t, time.Minute, b.Sub(a))
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
}
