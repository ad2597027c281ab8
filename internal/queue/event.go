// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking is successfully confirmed.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64   `json:"booking_id"`
	TripID           uint64   `json:"trip_id"`
	HolderID         string   `json:"holder_id"`
	OperatorName     string   `json:"operator_name"`
	Source           string   `json:"source"`
	Destination      string   `json:"destination"`
	DepartureTime    string   `json:"departure_time"`
	SeatNumbers      []string `json:"seats"`
	PassengerName    string   `json:"passenger_name"`
	TotalAmountCents int64    `json:"total_amount_cents"`
	ConfirmedAt      string   `json:"confirmed_at"`
}
