package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishReachesSubscriber(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	unsub, ch := bus.Subscribe(KindJobStarted)
	defer unsub()

	bus.Publish(Event{Kind: KindJobStarted, JobID: "job-1", ActorID: "worker-1"})

	select {
	case got := <-ch:
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, KindJobStarted, got.Kind)
		assert.Equal(t, "job-1", got.JobID)
		assert.Equal(t, "worker-1", got.ActorID)
		assert.False(t, got.OccurredAt.IsZero(), "bus stamps missing timestamps")
	case <-time.After(time.Second):
		t.Fatal("expected event on subscription channel")
	}
}

func TestBus_KindsAreIsolated(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	unsub, ch := bus.Subscribe(KindJobCompleted)
	defer unsub()

	bus.Publish(Event{Kind: KindJobCanceled, JobID: "job-1"})

	select {
	case e := <-ch:
		t.Fatalf("unexpected event %q for unrelated kind", e.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_PublishNeverBlocks(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	unsub, ch := bus.Subscribe(KindWorkerLocationUpdated)
	defer unsub()

	// Nobody reads ch; the buffer fills and the rest drop.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*4; i++ {
			bus.Publish(Event{Kind: KindWorkerLocationUpdated, JobID: "job-1"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	unsub, ch := bus.Subscribe(KindJobAssigned)

	unsub()

	_, open := <-ch
	assert.False(t, open, "channel should be closed after unsubscribe")

	// Unsubscribing twice is harmless.
	unsub()

	// Publishing after unsubscribe reaches nobody and does not panic.
	bus.Publish(Event{Kind: KindJobAssigned, JobID: "job-1"})
}

func TestBus_StopAll(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	_, first := bus.Subscribe(KindJobAssigned)
	_, second := bus.Subscribe(KindJobCompleted)

	bus.StopAll()

	_, open := <-first
	assert.False(t, open)
	_, open = <-second
	assert.False(t, open)

	// Subscriptions after shutdown come back pre-closed.
	_, ch := bus.Subscribe(KindJobPosted)
	_, open = <-ch
	require.False(t, open)
}
