package model

import "time"

// Booking is the unit of commitment: one or more seats on a trip,
// reserved atomically under a single idempotency key.  A booking is
// created PENDING with a short hold-expiry and is immutable once
// created except for its status and the timestamps that accompany
// status changes; the seat set never changes.
//
// HolderID is nullable because the original flow allows booking
// before authentication completes; the passenger record then carries
// the contact details.
//
// Fields:
//  ID              – primary key identifier.
//  TripID          – trip being booked.
//  HolderID        – opaque principal id, nil for anonymous holds.
//  SeatIDs         – seats reserved under this booking, ascending.
//  Status          – PENDING, CONFIRMED, EXPIRED or CANCELLED.
//  TotalAmountCents – server-computed sum of seat prices.
//  IdempotencyKey  – caller-supplied key; unique across bookings.
//  Passenger       – validated passenger record, optional.
//  ExpiresAt       – hold deadline; set only while PENDING.
//  ConfirmedAt     – when the booking was confirmed.
//  CreatedAt       – creation timestamp.
type Booking struct {
	ID               uint64        `json:"id"`
	TripID           uint64        `json:"trip_id"`
	HolderID         *string       `json:"holder_id,omitempty"`
	SeatIDs          []uint64      `json:"seat_ids"`
	Status           BookingStatus `json:"status"`
	TotalAmountCents int64         `json:"total_amount_cents"`
	IdempotencyKey   string        `json:"idempotency_key"`
	Passenger        *Passenger    `json:"passenger,omitempty"`
	ExpiresAt        *time.Time    `json:"expires_at,omitempty"`
	ConfirmedAt      *time.Time    `json:"confirmed_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Passenger is the explicit, validated form of the loose passenger
// blob the clients send.  Required fields are enforced at the HTTP
// boundary before a booking transaction starts.
type Passenger struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Gender   string `json:"gender"`
	IDType   string `json:"id_type,omitempty"`
	IDNumber string `json:"id_number,omitempty"`
}
