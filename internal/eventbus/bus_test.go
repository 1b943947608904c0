package eventbus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestBus_FanOut verifies every subscriber receives a published event.
func TestBus_FanOut(t *testing.T) {
	t.Parallel()

	bus := New()

	first, unsubFirst := bus.Subscribe(1)
	defer unsubFirst()

	second, unsubSecond := bus.Subscribe(1)
	defer unsubSecond()

	bus.Publish(Event{Type: EventPermissionResult, Data: true})

	for _, ch := range []<-chan Event{first, second} {
		e := <-ch
		require.Equal(t, EventPermissionResult, e.Type)
		require.Equal(t, true, e.Data)
		require.False(t, e.Time.IsZero())
	}
}

// TestBus_DropsWhenFull ensures Publish does not block on a full subscriber.
func TestBus_DropsWhenFull(t *testing.T) {
	t.Parallel()

	bus := New()

	ch, unsubscribe := bus.Subscribe(1)
	defer unsubscribe()

	bus.Publish(Event{Type: EventPermissionResult, Data: true})
	bus.Publish(Event{Type: EventPermissionResult, Data: false})

	require.Len(t, ch, 1)
	require.Equal(t, true, (<-ch).Data)
}

// TestBus_Unsubscribe checks that unsubscribing closes the channel and is idempotent.
func TestBus_Unsubscribe(t *testing.T) {
	t.Parallel()

	bus := New()

	ch, unsubscribe := bus.Subscribe(0)
	require.Equal(t, defaultBuffer, cap(ch))

	unsubscribe()
	unsubscribe()

	_, ok := <-ch
	require.False(t, ok)

	bus.Publish(Event{Type: EventPermissionResult})
}
