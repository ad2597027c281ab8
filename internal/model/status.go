package model

// BookingStatus is the closed set of states a booking moves through.
// Transitions outside the table below are rejected regardless of what
// a caller asks for.
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"   // created, awaiting confirmation, hold-expiry ticking
	StatusConfirmed BookingStatus = "CONFIRMED" // finalized by the holder
	StatusExpired   BookingStatus = "EXPIRED"   // hold lapsed before confirmation; terminal
	StatusCancelled BookingStatus = "CANCELLED" // cancelled after confirmation; terminal
)

// transitions is the explicit state machine: PENDING may become
// CONFIRMED or EXPIRED, CONFIRMED may become CANCELLED, and the two
// terminal states go nowhere.
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusExpired},
	StatusConfirmed: {StatusCancelled},
	StatusExpired:   {},
	StatusCancelled: {},
}

// CanTransition reports whether moving a booking from one status to
// another is legal.  Unknown statuses never transition anywhere.
func CanTransition(from, to BookingStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is one of the four known statuses.
func ValidStatus(s BookingStatus) bool {
	_, ok := transitions[s]
	return ok
}

// Live reports whether a booking in this status still occupies its
// seats.  Only PENDING and CONFIRMED bookings count toward the
// exclusivity invariant; EXPIRED and CANCELLED seats are free again.
func (s BookingStatus) Live() bool {
	return s == StatusPending || s == StatusConfirmed
}
