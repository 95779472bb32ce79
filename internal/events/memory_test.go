// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus() *MemoryBus {
	return NewMemoryBus(MemoryBusConfig{HistoryMaxEvents: 100, HistoryMaxAge: time.Hour})
}

func TestMatchPattern(t *testing.T) {
	assert.True(t, MatchPattern("instance.crashed", "*"))
	assert.True(t, MatchPattern("instance.crashed", "instance.crashed"))
	assert.True(t, MatchPattern("instance.crashed", "instance.*"))
	assert.True(t, MatchPattern("profile.activated", "*.activated"))
	assert.False(t, MatchPattern("instance.crashed", "session.*"))
	assert.False(t, MatchPattern("instance.crashed", ""))
	assert.False(t, MatchPattern("", "*"))
}

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	var received atomic.Int32
	_, err := bus.Subscribe("instance.*", func(ctx context.Context, e Event) error {
		received.Add(1)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), Event{Type: EventInstanceCrashed}))
	require.NoError(t, bus.Publish(context.Background(), Event{Type: EventSessionArranged}))

	assert.Equal(t, int32(1), received.Load())
}

func TestMemoryBus_FillsIDAndTimestamp(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	var got Event
	bus.Subscribe("*", func(ctx context.Context, e Event) error {
		got = e
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), Event{Type: EventInstanceLaunched}))
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	var received atomic.Int32
	id, err := bus.Subscribe("*", func(ctx context.Context, e Event) error {
		received.Add(1)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Unsubscribe(id))
	assert.ErrorIs(t, bus.Unsubscribe(id), ErrSubscriptionNotFound)

	bus.Publish(context.Background(), Event{Type: EventInstanceLaunched})
	assert.Equal(t, int32(0), received.Load())
}

func TestMemoryBus_SubscribeAsync(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	done := make(chan Event, 1)
	_, err := bus.SubscribeAsync("session.*", func(ctx context.Context, e Event) error {
		done <- e
		return nil
	}, 10)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), Event{Type: EventSessionStarted}))

	select {
	case e := <-done:
		assert.Equal(t, EventSessionStarted, e.Type)
	case <-time.After(time.Second):
		t.Fatal("async handler never ran")
	}
}

func TestMemoryBus_History(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	bus.Publish(context.Background(), Event{Type: EventInstanceLaunched})
	bus.Publish(context.Background(), Event{Type: EventInstanceCrashed})
	bus.Publish(context.Background(), Event{Type: EventSessionArranged})

	all, err := bus.History(Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	crashes, err := bus.History(Filter{Types: []string{EventInstanceCrashed}})
	require.NoError(t, err)
	assert.Len(t, crashes, 1)

	limited, err := bus.History(Filter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	// Limit keeps the newest events.
	assert.Equal(t, EventSessionArranged, limited[1].Type)
}

func TestMemoryBus_HistoryCap(t *testing.T) {
	bus := NewMemoryBus(MemoryBusConfig{HistoryMaxEvents: 5, HistoryMaxAge: time.Hour})
	defer bus.Close()

	for i := 0; i < 10; i++ {
		bus.Publish(context.Background(), Event{Type: EventInstanceLaunched})
	}

	all, err := bus.History(Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestMemoryBus_Closed(t *testing.T) {
	bus := newTestBus()
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close()) // idempotent

	assert.ErrorIs(t, bus.Publish(context.Background(), Event{Type: "x"}), ErrBusClosed)
	_, err := bus.Subscribe("*", func(ctx context.Context, e Event) error { return nil })
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestMemoryBus_HandlerPanicDoesNotCrash(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	bus.Subscribe("*", func(ctx context.Context, e Event) error {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), Event{Type: EventInstanceCrashed})
	})
}
