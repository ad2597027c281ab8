package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hvugvjn/smart-ticket/internal/model"
)

// BookingDetail is a booking enriched with trip, seat and refund
// information, returned by ListByHolder for the "my bookings" view.
type BookingDetail struct {
	ID               uint64               `json:"id"`
	TripID           uint64               `json:"trip_id"`
	Status           model.BookingStatus  `json:"status"`
	TotalAmountCents int64                `json:"total_amount_cents"`
	OperatorName     string               `json:"operator_name"`
	Source           string               `json:"source"`
	Destination      string               `json:"destination"`
	DepartureTime    string               `json:"departure_time"`
	ArrivalTime      string               `json:"arrival_time"`
	ExpiresAt        *string              `json:"expires_at,omitempty"`
	ConfirmedAt      *string              `json:"confirmed_at,omitempty"`
	CreatedAt        string               `json:"created_at"`
	Seats            []BookingSeatDetail  `json:"seats"`
	Refund           *model.Refund        `json:"refund,omitempty"`
}

// BookingSeatDetail is one seat line item within a BookingDetail.
type BookingSeatDetail struct {
	SeatID     uint64 `json:"seat_id"`
	SeatNumber string `json:"seat_number"`
	Deck       string `json:"deck"`
	PriceCents int64  `json:"price_cents"`
}

// ListByHolder returns all bookings created by the given holder along
// with trip, seat and refund details, newest first.  Seats and
// refunds for the whole page are fetched with one IN query each
// rather than per booking.
func (r *BookingRepo) ListByHolder(ctx context.Context, holderID string) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.trip_id, b.status, b.total_amount_cents,
	                  t.operator_name, t.source, t.destination, t.departure_time, t.arrival_time,
	                  b.expires_at, b.confirmed_at, b.created_at
	           FROM bookings b
	           JOIN trips t ON t.id = b.trip_id
	           WHERE b.holder_id = ?
	           ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, holderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d BookingDetail
		var status string
		var departure, arrival, created time.Time
		var expiresAt, confirmedAt sql.NullTime
		if err := rows.Scan(
			&d.ID, &d.TripID, &status, &d.TotalAmountCents,
			&d.OperatorName, &d.Source, &d.Destination, &departure, &arrival,
			&expiresAt, &confirmedAt, &created,
		); err != nil {
			return nil, err
		}
		d.Status = model.BookingStatus(status)
		d.DepartureTime = departure.UTC().Format(time.RFC3339)
		d.ArrivalTime = arrival.UTC().Format(time.RFC3339)
		d.CreatedAt = created.UTC().Format(time.RFC3339)
		if expiresAt.Valid {
			iso := expiresAt.Time.UTC().Format(time.RFC3339)
			d.ExpiresAt = &iso
		}
		if confirmedAt.Valid {
			iso := confirmedAt.Time.UTC().Format(time.RFC3339)
			d.ConfirmedAt = &iso
		}
		d.Seats = []BookingSeatDetail{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}

	ids := make([]interface{}, 0, len(details))
	ph := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		ph = append(ph, "?")
	}
	seatQ := `SELECT bs.booking_id, bs.seat_id, s.seat_number, s.deck, bs.price_cents
	          FROM booking_seats bs
	          JOIN seats s ON s.id = bs.seat_id
	          WHERE bs.booking_id IN (` + strings.Join(ph, ",") + `)
	          ORDER BY bs.booking_id, bs.seat_id`
	srows, err := r.db.QueryContext(ctx, seatQ, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bid uint64
		var s BookingSeatDetail
		if err := srows.Scan(&bid, &s.SeatID, &s.SeatNumber, &s.Deck, &s.PriceCents); err != nil {
			return nil, err
		}
		if idx, ok := index[bid]; ok {
			details[idx].Seats = append(details[idx].Seats, s)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}

	refundQ := `SELECT id, booking_id, amount_cents, currency, status, reason, processed_at
	            FROM refunds WHERE booking_id IN (` + strings.Join(ph, ",") + `)`
	rrows, err := r.db.QueryContext(ctx, refundQ, ids...)
	if err != nil {
		return nil, err
	}
	defer rrows.Close()
	for rrows.Next() {
		var rf model.Refund
		if err := rrows.Scan(&rf.ID, &rf.BookingID, &rf.AmountCents, &rf.Currency, &rf.Status, &rf.Reason, &rf.ProcessedAt); err != nil {
			return nil, err
		}
		if idx, ok := index[rf.BookingID]; ok {
			refund := rf
			details[idx].Refund = &refund
		}
	}
	if err := rrows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
