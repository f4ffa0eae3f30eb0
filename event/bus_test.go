package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paratest/clock"
)

func TestBus_PostReachesTopHandler(t *testing.T) {
	var got []Event
	bus := NewBus(func(ev Event) { got = append(got, ev) })

	bus.Post(Event{Kind: KindRunStarted})

	require.Len(t, got, 1)
	assert.Equal(t, KindRunStarted, got[0].Kind)
}

func TestBus_WithFrameCanForward(t *testing.T) {
	var outerSaw []Event
	outerBus := NewBus(func(ev Event) { outerSaw = append(outerSaw, ev) })

	var innerSaw []Event
	innerBus := outerBus.WithFrame(func(outer Handler) Handler {
		return func(ev Event) {
			innerSaw = append(innerSaw, ev)
			outer(ev)
		}
	})

	innerBus.Post(Event{Kind: KindIssueRecorded})

	assert.Len(t, innerSaw, 1)
	assert.Len(t, outerSaw, 1)
}

func TestBus_WithFrameCanSuppress(t *testing.T) {
	var outerSaw []Event
	outerBus := NewBus(func(ev Event) { outerSaw = append(outerSaw, ev) })

	innerBus := outerBus.WithFrame(func(outer Handler) Handler {
		return func(ev Event) {
			// suppress everything: never call outer.
		}
	})

	innerBus.Post(Event{Kind: KindIssueRecorded, Instant: clock.System{}.Now()})

	assert.Empty(t, outerSaw)
}

func TestBus_PushIsIndependentOfOriginal(t *testing.T) {
	var a, b []Event
	base := NewBus(func(ev Event) { a = append(a, ev) })
	pushed := base.Push(func(ev Event) { b = append(b, ev) })

	base.Post(Event{Kind: KindRunStarted})
	pushed.Post(Event{Kind: KindRunEnded})

	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
}

func TestCurrent_DefaultsToNoOpHandler(t *testing.T) {
	bus := Current(context.Background())
	assert.NotPanics(t, func() { bus.Post(Event{Kind: KindRunStarted}) })
}

func TestPushAndCurrent_RoundTrips(t *testing.T) {
	var got []Event
	bus := NewBus(func(ev Event) { got = append(got, ev) })

	ctx := Push(context.Background(), bus)
	Current(ctx).Post(Event{Kind: KindTestStarted})

	require.Len(t, got, 1)
	assert.Equal(t, KindTestStarted, got[0].Kind)
}

func TestPushAndCurrent_DerivedContextDoesNotMutateParent(t *testing.T) {
	var outerSaw, innerSaw []Event
	outerBus := NewBus(func(ev Event) { outerSaw = append(outerSaw, ev) })
	ctx := Push(context.Background(), outerBus)

	innerBus := Current(ctx).WithFrame(func(outer Handler) Handler {
		return func(ev Event) { innerSaw = append(innerSaw, ev); outer(ev) }
	})
	inner := Push(ctx, innerBus)

	Current(inner).Post(Event{Kind: KindIssueRecorded})
	assert.Len(t, innerSaw, 1)
	assert.Len(t, outerSaw, 1)

	Current(ctx).Post(Event{Kind: KindRunEnded})
	assert.Len(t, outerSaw, 2, "posting on the original ctx must not go through the inner frame")
	assert.Len(t, innerSaw, 1)
}
