package model

import "time"

// SeatNotification records a subscriber's interest in a currently
// booked seat becoming free.  At most one unsent row exists per
// (trip, seat number, email); duplicate subscribe requests succeed
// without creating another row.  Once marked notified a row never
// fires again, even if the seat is released a second time.
type SeatNotification struct {
	ID         uint64    `json:"id"`          // seat_notifications.id
	TripID     uint64    `json:"trip_id"`     // seat_notifications.trip_id
	SeatNumber string    `json:"seat_number"` // seat_notifications.seat_number (normalized upper case)
	Email      string    `json:"email"`       // seat_notifications.email (normalized lower case)
	Notified   bool      `json:"notified"`    // seat_notifications.notified
	CreatedAt  time.Time `json:"created_at"`  // seat_notifications.created_at
}
