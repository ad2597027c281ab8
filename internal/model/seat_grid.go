package model

import "fmt"

// Default coach layout.  The lower deck has ten rows of three seater
// seats with an aisle gap where column three would be; the upper deck
// has ten rows of three sleeper berths.  The first two lower rows are
// reserved for women travelling alone.
const (
	gridRows           = 10
	ladiesRows         = 2
	standardPriceCents = 50000
	ladiesPriceCents   = 55000
	sleeperPriceCents  = 80000
)

// lowerCols maps physical columns to seat letters.  Column three is
// the aisle and has no seat.
var lowerCols = map[uint32]string{1: "A", 2: "B", 4: "C"}

var upperCols = map[uint32]string{1: "A", 2: "B", 3: "C"}

// DefaultSeatGrid builds the standard 60-seat double decker layout
// for a new trip.  Seat numbers are deterministic ("L1A".."L10C" and
// "U1A".."U10C") so the same layout renders identically everywhere.
func DefaultSeatGrid(tripID uint64) []Seat {
	seats := make([]Seat, 0, 2*gridRows*3)
	for row := uint32(1); row <= gridRows; row++ {
		for col := uint32(1); col <= 4; col++ {
			letter, ok := lowerCols[col]
			if !ok {
				continue
			}
			seatType := "standard"
			price := int64(standardPriceCents)
			features := []string{"charging_point"}
			if row <= ladiesRows {
				seatType = "ladies"
				price = ladiesPriceCents
				features = append(features, "ladies_only")
			}
			seats = append(seats, Seat{
				TripID:     tripID,
				SeatNumber: fmt.Sprintf("L%d%s", row, letter),
				Deck:       "lower",
				Row:        row,
				Col:        col,
				SeatType:   seatType,
				PriceCents: price,
				Features:   features,
			})
		}
	}
	for row := uint32(1); row <= gridRows; row++ {
		for col := uint32(1); col <= 3; col++ {
			seats = append(seats, Seat{
				TripID:     tripID,
				SeatNumber: fmt.Sprintf("U%d%s", row, upperCols[col]),
				Deck:       "upper",
				Row:        row,
				Col:        col,
				SeatType:   "sleeper",
				PriceCents: sleeperPriceCents,
				Features:   []string{"charging_point", "reading_light", "curtain"},
			})
		}
	}
	return seats
}
