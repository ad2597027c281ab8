package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeatGrid(t *testing.T) {
	seats := DefaultSeatGrid(7)
	require.Len(t, seats, 60)

	byNumber := make(map[string]Seat, len(seats))
	for _, s := range seats {
		assert.Equal(t, uint64(7), s.TripID)
		_, dup := byNumber[s.SeatNumber]
		assert.False(t, dup, "duplicate seat number %s", s.SeatNumber)
		byNumber[s.SeatNumber] = s
	}

	// The first two lower rows are ladies seats at the ladies fare.
	l1a := byNumber["L1A"]
	assert.Equal(t, "lower", l1a.Deck)
	assert.Equal(t, "ladies", l1a.SeatType)
	assert.Equal(t, int64(ladiesPriceCents), l1a.PriceCents)

	// Lower rows past the ladies section are standard.
	l3b := byNumber["L3B"]
	assert.Equal(t, "standard", l3b.SeatType)
	assert.Equal(t, int64(standardPriceCents), l3b.PriceCents)

	// Column three on the lower deck is the aisle.
	for _, s := range seats {
		if s.Deck == "lower" {
			assert.NotEqual(t, uint32(3), s.Col, "seat %s sits in the aisle", s.SeatNumber)
		}
	}

	// The whole upper deck is sleeper berths.
	u10c := byNumber["U10C"]
	assert.Equal(t, "upper", u10c.Deck)
	assert.Equal(t, "sleeper", u10c.SeatType)
	assert.Equal(t, int64(sleeperPriceCents), u10c.PriceCents)
}
