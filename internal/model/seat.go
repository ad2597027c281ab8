package model

// Seat describes one physical seat on a trip's vehicle.  Seats are
// created in bulk when a trip is created and are immutable after
// that: they are never deleted and never change price or position.
// Availability is not stored on the seat; it is derived from live
// bookings and active seat locks.
//
// Fields:
//  ID         – primary key identifier.
//  TripID     – trip to which this seat belongs.
//  SeatNumber – label shown to passengers (e.g. "L3A", "U1B").
//  Deck       – "lower" or "upper".
//  Row        – row position within the deck.
//  Col        – column position within the deck.
//  SeatType   – fare class (standard, ladies, sleeper).
//  PriceCents – unit price in cents.
//  Features   – extra features (power outlet, reading light, ...).
type Seat struct {
	ID         uint64   `json:"id"`          // seats.id
	TripID     uint64   `json:"trip_id"`     // seats.trip_id
	SeatNumber string   `json:"seat_number"` // seats.seat_number
	Deck       string   `json:"deck"`        // seats.deck
	Row        uint32   `json:"row"`         // seats.row
	Col        uint32   `json:"col"`         // seats.col
	SeatType   string   `json:"seat_type"`   // seats.seat_type
	PriceCents int64    `json:"price_cents"` // seats.price_cents
	Features   []string `json:"features"`    // seats.features (comma separated in DB)
}
