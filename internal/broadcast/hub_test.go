package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishReachesTripSubscribers(t *testing.T) {
	h := NewHub()

	ch1, cancel1 := h.Subscribe(7)
	defer cancel1()
	ch2, cancel2 := h.Subscribe(7)
	defer cancel2()
	other, cancelOther := h.Subscribe(8)
	defer cancelOther()

	h.Publish(7)

	ev := <-ch1
	assert.Equal(t, "seat_update", ev.Type)
	assert.Equal(t, uint64(7), ev.TripID)

	ev = <-ch2
	assert.Equal(t, uint64(7), ev.TripID)

	select {
	case ev := <-other:
		t.Fatalf("subscriber of trip 8 received event for trip %d", ev.TripID)
	default:
	}
}

func TestHubCancelRemovesSubscriber(t *testing.T) {
	h := NewHub()

	ch, cancel := h.Subscribe(3)
	require.Equal(t, 1, h.Subscribers(3))

	cancel()
	assert.Equal(t, 0, h.Subscribers(3))

	// Channel is closed after cancel.
	_, ok := <-ch
	assert.False(t, ok)

	// Cancel is safe to call more than once.
	cancel()
}

func TestHubPublishSkipsFullSubscriber(t *testing.T) {
	h := NewHub()

	_, cancel := h.Subscribe(1)
	defer cancel()

	// Overrun the subscriber buffer.  Publish must never block even
	// though nobody is draining the channel.
	for i := 0; i < subscriberBuffer*3; i++ {
		h.Publish(1)
	}
}

func TestHubPublishWithoutSubscribers(t *testing.T) {
	h := NewHub()
	h.Publish(42)
	assert.Equal(t, 0, h.Subscribers(42))
}
