package metacontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookBus_OnReceivesEveryEmission(t *testing.T) {
	t.Parallel()
	b := newHookBus("ctx-test")
	var received []Event
	b.On(EventLaneCreated, func(e Event) { received = append(received, e) })

	b.Emit(context.Background(), EventLaneCreated, LaneCreatedPayload{LaneID: "l1"})
	b.Emit(context.Background(), EventLaneCreated, LaneCreatedPayload{LaneID: "l2"})

	require.Len(t, received, 2)
	assert.Equal(t, "l1", received[0].Payload.(LaneCreatedPayload).LaneID)
	assert.Equal(t, "l2", received[1].Payload.(LaneCreatedPayload).LaneID)
}

func TestHookBus_OnceFiresExactlyOnceThenSelfRemoves(t *testing.T) {
	t.Parallel()
	b := newHookBus("ctx-test")
	count := 0
	b.Once(EventLaneCreated, func(Event) { count++ })

	b.Emit(context.Background(), EventLaneCreated, LaneCreatedPayload{})
	b.Emit(context.Background(), EventLaneCreated, LaneCreatedPayload{})

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, b.ListenerCount(EventLaneCreated))
}

func TestHookBus_OnAnyReceivesEveryEventName(t *testing.T) {
	t.Parallel()
	b := newHookBus("ctx-test")
	var names []EventName
	b.OnAny(func(e Event) { names = append(names, e.Name) })

	b.Emit(context.Background(), EventLaneCreated, nil)
	b.Emit(context.Background(), EventArchiveCreated, nil)

	assert.Equal(t, []EventName{EventLaneCreated, EventArchiveCreated}, names)
}

func TestHookBus_OffRemovesOnlyTheGivenListener(t *testing.T) {
	t.Parallel()
	b := newHookBus("ctx-test")
	calledA, calledB := false, false
	idA := b.On(EventLaneCreated, func(Event) { calledA = true })
	b.On(EventLaneCreated, func(Event) { calledB = true })

	require.True(t, b.Off(idA))
	b.Emit(context.Background(), EventLaneCreated, nil)

	assert.False(t, calledA)
	assert.True(t, calledB)
}

func TestHookBus_OffAllClearsListenersForName(t *testing.T) {
	t.Parallel()
	b := newHookBus("ctx-test")
	calls := 0
	b.On(EventLaneCreated, func(Event) { calls++ })
	b.OffAll(EventLaneCreated)
	b.Emit(context.Background(), EventLaneCreated, nil)
	assert.Equal(t, 0, calls)
}

func TestHookBus_PanickingListenerDoesNotStopOthersOrPropagate(t *testing.T) {
	t.Parallel()
	b := newHookBus("ctx-test")
	secondRan := false
	b.On(EventLaneCreated, func(Event) { panic("boom") })
	b.On(EventLaneCreated, func(Event) { secondRan = true })

	assert.NotPanics(t, func() {
		b.Emit(context.Background(), EventLaneCreated, nil)
	})
	assert.True(t, secondRan, "a panicking listener must not prevent later listeners from running")
}
