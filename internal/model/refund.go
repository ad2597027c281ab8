package model

import "time"

// Refund records the outcome of cancelling a confirmed booking.
// Exactly one refund exists per cancelled booking and it is never
// mutated after creation.
type Refund struct {
	ID          uint64    `json:"id"`           // refunds.id
	BookingID   uint64    `json:"booking_id"`   // refunds.booking_id (unique)
	AmountCents int64     `json:"amount_cents"` // refunds.amount_cents
	Currency    string    `json:"currency"`     // refunds.currency
	Status      string    `json:"status"`       // refunds.status
	Reason      string    `json:"reason"`       // refunds.reason
	ProcessedAt time.Time `json:"processed_at"` // refunds.processed_at
}

// Refund tier boundaries in hours before departure.  Boundary values
// belong to the more generous tier: cancelling exactly 24 hours out
// earns the full-refund tier, exactly 2 hours out the partial tier.
const (
	nonRefundableWindowHours = 2
	partialRefundWindowHours = 24
)

// ComputeRefund applies the time-tiered cancellation policy and
// returns the refund amount in cents along with a human-readable
// reason.  Less than two hours before departure nothing is refunded;
// inside a day half the fare less the flat fee comes back; beyond
// that the full fare less the fee.  The result never goes negative.
func ComputeRefund(totalCents, feeCents int64, hoursUntilDeparture float64) (int64, string) {
	switch {
	case hoursUntilDeparture < nonRefundableWindowHours:
		return 0, "Non-refundable (less than 2 hours before departure)"
	case hoursUntilDeparture < partialRefundWindowHours:
		amount := totalCents/2 - feeCents
		if amount < 0 {
			amount = 0
		}
		return amount, "Partial refund (less than 24 hours before departure)"
	default:
		amount := totalCents - feeCents
		if amount < 0 {
			amount = 0
		}
		return amount, "Full refund (more than 24 hours before departure)"
	}
}
