package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/hvugvjn/smart-ticket/internal/model"
)

// SeatRepo provides data access to the seats table.  Seats are
// created in bulk alongside their trip and are immutable afterwards;
// the only in-transaction operation is the FOR UPDATE row lock that
// serializes concurrent booking attempts on overlapping seat sets.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the provided database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

const seatColumns = `id, trip_id, seat_number, deck, seat_row, seat_col, seat_type, price_cents, features`

func scanSeat(row interface{ Scan(...interface{}) error }) (*model.Seat, error) {
	var s model.Seat
	var features string
	err := row.Scan(&s.ID, &s.TripID, &s.SeatNumber, &s.Deck, &s.Row, &s.Col, &s.SeatType, &s.PriceCents, &features)
	if err != nil {
		return nil, err
	}
	s.Features = splitCSV(features)
	return &s, nil
}

// CreateBulk inserts multiple seats in a single statement.  It is
// called once per trip, right after the trip row is created.  Passing
// an empty slice has no effect and returns nil.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (trip_id, seat_number, deck, seat_row, seat_col, seat_type, price_cents, features) VALUES `
	args := make([]interface{}, 0, len(seats)*8)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args, s.TripID, s.SeatNumber, s.Deck, s.Row, s.Col, s.SeatType, s.PriceCents, joinCSV(s.Features))
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// ListByTrip returns every seat of a trip ordered by deck, row and
// column so the client can render the grid deterministically.
func (r *SeatRepo) ListByTrip(ctx context.Context, tripID uint64) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats WHERE trip_id = ? ORDER BY deck, seat_row, seat_col`
	rows, err := r.db.QueryContext(ctx, q, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// GetByIDs returns the seats with the given ids, in ascending id
// order.  Missing ids are simply absent from the result; callers
// compare lengths when existence matters.
func (r *SeatRepo) GetByIDs(ctx context.Context, seatIDs []uint64) ([]model.Seat, error) {
	if len(seatIDs) == 0 {
		return []model.Seat{}, nil
	}
	q := `SELECT ` + seatColumns + ` FROM seats WHERE id IN (` + placeholders(len(seatIDs)) + `) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, idArgs(seatIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSeats(rows)
}

// LockByIDsTx row-locks the requested seats of a trip with
// SELECT ... FOR UPDATE and returns them in ascending id order.  The
// ascending order is load-bearing: every booking transaction acquires
// its row locks in the same order, which prevents circular waits
// between two transactions requesting overlapping seat sets.  The
// returned slice may be shorter than the request when ids do not
// exist or belong to a different trip.
func (r *SeatRepo) LockByIDsTx(ctx context.Context, tx *sql.Tx, tripID uint64, seatIDs []uint64) ([]model.Seat, error) {
	if len(seatIDs) == 0 {
		return []model.Seat{}, nil
	}
	q := `SELECT ` + seatColumns + ` FROM seats WHERE trip_id = ? AND id IN (` +
		placeholders(len(seatIDs)) + `) ORDER BY id FOR UPDATE`
	args := append([]interface{}{tripID}, idArgs(seatIDs)...)
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSeats(rows)
}

func collectSeats(rows *sql.Rows) ([]model.Seat, error) {
	seats := make([]model.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// placeholders builds a "?, ?, ?" list of length n for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []uint64) []interface{} {
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

// SortIDs returns a defensive ascending copy of the given seat ids.
// Booking requests are normalized through this before any row locks
// are taken.
func SortIDs(ids []uint64) []uint64 {
	out := make([]uint64, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
