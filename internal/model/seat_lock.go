package model

import "time"

// SeatLock is an advisory, time-boxed claim on one seat of one trip.
// At most one active (non-expired) lock may exist per (trip, seat)
// pair, and it is exclusively owned by its holder.  Locks exist to
// keep two users from filling in passenger details for the same seat
// at the same time; the authoritative exclusivity guarantee comes
// from the booking transaction, not from locks.
//
// Expired locks are treated as absent by every read (queries filter
// on expires_at) and are physically reaped by the expiry worker.
//
// Fields:
//  ID        – primary key identifier.
//  TripID    – trip the locked seat belongs to.
//  SeatID    – seat being locked.
//  HolderID  – opaque principal id of the lock owner.
//  ExpiresAt – when the lock lapses.
//  CreatedAt – when the lock was first granted.
type SeatLock struct {
	ID        uint64    `json:"id"`         // seat_locks.id
	TripID    uint64    `json:"trip_id"`    // seat_locks.trip_id
	SeatID    uint64    `json:"seat_id"`    // seat_locks.seat_id
	HolderID  string    `json:"holder_id"`  // seat_locks.holder_id
	ExpiresAt time.Time `json:"expires_at"` // seat_locks.expires_at
	CreatedAt time.Time `json:"created_at"` // seat_locks.created_at
}

// MaskHolder obscures a holder id for display to other users, keeping
// only the first four characters.  Lock listings never expose full
// principal ids.
func MaskHolder(holderID string) string {
	if len(holderID) <= 4 {
		return holderID + "****"
	}
	return holderID[:4] + "****"
}
