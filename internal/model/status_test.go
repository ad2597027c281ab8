package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusPending, StatusExpired))
	assert.True(t, CanTransition(StatusConfirmed, StatusCancelled))

	// PENDING cannot be cancelled, only confirmed bookings can.
	assert.False(t, CanTransition(StatusPending, StatusCancelled))
	assert.False(t, CanTransition(StatusConfirmed, StatusPending))
	assert.False(t, CanTransition(StatusConfirmed, StatusExpired))

	// Terminal states go nowhere.
	assert.False(t, CanTransition(StatusExpired, StatusConfirmed))
	assert.False(t, CanTransition(StatusCancelled, StatusPending))

	// Unknown statuses never transition.
	assert.False(t, CanTransition(BookingStatus("REFUNDED"), StatusCancelled))
}

func TestValidStatus(t *testing.T) {
	for _, s := range []BookingStatus{StatusPending, StatusConfirmed, StatusExpired, StatusCancelled} {
		assert.True(t, ValidStatus(s), string(s))
	}
	assert.False(t, ValidStatus(BookingStatus("HELD")))
}

func TestLive(t *testing.T) {
	assert.True(t, StatusPending.Live())
	assert.True(t, StatusConfirmed.Live())
	assert.False(t, StatusExpired.Live())
	assert.False(t, StatusCancelled.Live())
}
