package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hvugvjn/smart-ticket/internal/model"
)

// BookingRepo provides data access to the bookings and booking_seats
// tables.  Bookings are the single locus of truth for the exclusivity
// invariant: a seat is free exactly when it appears in no live
// (CONFIRMED, or PENDING and not yet past its hold-expiry) booking.
// All timestamp fields are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning bookings, seats and locks.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// querier abstracts *sql.DB and *sql.Tx so read helpers can serve
// both transactional and plain callers.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const bookingColumns = `id, trip_id, holder_id, status, total_amount_cents, idempotency_key,
	passenger_name, passenger_phone, passenger_gender, passenger_id_type, passenger_id_number,
	expires_at, confirmed_at, created_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*model.Booking, error) {
	var b model.Booking
	var holderID, pName, pPhone, pGender, pIDType, pIDNumber sql.NullString
	var expiresAt, confirmedAt sql.NullTime
	var status string
	err := row.Scan(
		&b.ID, &b.TripID, &holderID, &status, &b.TotalAmountCents, &b.IdempotencyKey,
		&pName, &pPhone, &pGender, &pIDType, &pIDNumber,
		&expiresAt, &confirmedAt, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	if holderID.Valid {
		h := holderID.String
		b.HolderID = &h
	}
	if pName.Valid || pPhone.Valid {
		b.Passenger = &model.Passenger{
			Name:     pName.String,
			Phone:    pPhone.String,
			Gender:   pGender.String,
			IDType:   pIDType.String,
			IDNumber: pIDNumber.String,
		}
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		b.ExpiresAt = &t
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		b.ConfirmedAt = &t
	}
	return &b, nil
}

func (r *BookingRepo) loadSeatIDs(ctx context.Context, q querier, bookingID uint64) ([]uint64, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT seat_id FROM booking_seats WHERE booking_id = ? ORDER BY seat_id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seatIDs := make([]uint64, 0)
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		seatIDs = append(seatIDs, sid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seatIDs, nil
}

// GetByIdempotencyKey returns the booking previously created under
// the given key, or nil when the key has never been used.  Retried
// client requests hit this before any transaction starts and get the
// original booking back unchanged.
func (r *BookingRepo) GetByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE idempotency_key = ?`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.SeatIDs, err = r.loadSeatIDs(ctx, r.db, b.ID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetByID returns a booking with its seat ids, or sql.ErrNoRows.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	b.SeatIDs, err = r.loadSeatIDs(ctx, r.db, b.ID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// BookedSeatIDsTx returns, within the booking transaction, every seat
// id referenced by a live booking on the trip.  The PENDING filter on
// expires_at is the lazy half of hold reclamation: a pending booking
// whose deadline has passed stops occupying its seats immediately,
// before the sweep flips its status.
func (r *BookingRepo) BookedSeatIDsTx(ctx context.Context, tx *sql.Tx, tripID uint64) ([]uint64, error) {
	return bookedSeatIDs(ctx, tx, tripID)
}

// BookedSeatIDs is the non-transactional variant used by seat-map reads.
func (r *BookingRepo) BookedSeatIDs(ctx context.Context, tripID uint64) ([]uint64, error) {
	return bookedSeatIDs(ctx, r.db, tripID)
}

func bookedSeatIDs(ctx context.Context, q querier, tripID uint64) ([]uint64, error) {
	const query = `SELECT bs.seat_id
	               FROM booking_seats bs
	               JOIN bookings b ON b.id = bs.booking_id
	               WHERE bs.trip_id = ?
	                 AND (b.status = 'CONFIRMED'
	                      OR (b.status = 'PENDING' AND b.expires_at > UTC_TIMESTAMP()))
	               ORDER BY bs.seat_id`
	rows, err := q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		ids = append(ids, sid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// CreateTx inserts a new booking and its booking_seats rows within
// the caller's transaction, populating the generated ID on the
// record.  The caller must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking, seatPrices map[uint64]int64) error {
	const q = `INSERT INTO bookings
		(trip_id, holder_id, status, total_amount_cents, idempotency_key,
		 passenger_name, passenger_phone, passenger_gender, passenger_id_type, passenger_id_number,
		 expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var holderID interface{}
	if b.HolderID != nil {
		holderID = *b.HolderID
	}
	var pName, pPhone, pGender, pIDType, pIDNumber interface{}
	if b.Passenger != nil {
		pName, pPhone, pGender = b.Passenger.Name, b.Passenger.Phone, b.Passenger.Gender
		pIDType, pIDNumber = b.Passenger.IDType, b.Passenger.IDNumber
	}
	var expiresAt interface{}
	if b.ExpiresAt != nil {
		expiresAt = b.ExpiresAt.UTC().Format("2006-01-02 15:04:05")
	}
	res, err := tx.ExecContext(ctx, q,
		b.TripID, holderID, string(b.Status), b.TotalAmountCents, b.IdempotencyKey,
		pName, pPhone, pGender, pIDType, pIDNumber, expiresAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.CreatedAt = time.Now().UTC()

	if len(b.SeatIDs) == 0 {
		return nil
	}
	seatQ := `INSERT INTO booking_seats (booking_id, trip_id, seat_id, price_cents) VALUES `
	args := make([]interface{}, 0, len(b.SeatIDs)*4)
	for i, sid := range b.SeatIDs {
		if i > 0 {
			seatQ += ","
		}
		seatQ += "(?, ?, ?, ?)"
		args = append(args, b.ID, b.TripID, sid, seatPrices[sid])
	}
	_, err = tx.ExecContext(ctx, seatQ, args...)
	return err
}

// Confirm transitions a PENDING booking to CONFIRMED, clearing the
// hold-expiry and stamping the confirmation time.  Confirming an
// already-CONFIRMED booking is a no-op success so client retries
// after a lost response never fail.  Any other starting state returns
// ErrInvalidState.  The returned bool reports whether this call
// performed the transition.
func (r *BookingRepo) Confirm(ctx context.Context, id uint64) (*model.Booking, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ? FOR UPDATE`, id).Scan(&status)
	if err != nil {
		return nil, false, err
	}
	current := model.BookingStatus(status)
	if current == model.StatusConfirmed {
		committed = true
		if err := tx.Commit(); err != nil {
			return nil, false, err
		}
		b, err := r.GetByID(ctx, id)
		return b, false, err
	}
	if !model.CanTransition(current, model.StatusConfirmed) {
		return nil, false, ErrInvalidState
	}
	const upd = `UPDATE bookings
	             SET status = 'CONFIRMED', confirmed_at = UTC_TIMESTAMP(), expires_at = NULL
	             WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, id); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	committed = true
	b, err := r.GetByID(ctx, id)
	return b, true, err
}

// GetForUpdateTx loads a booking with its seat ids inside the
// caller's transaction, row-locking the booking so a concurrent
// cancel of the same booking serializes behind this one.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	b, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	b.SeatIDs, err = r.loadSeatIDs(ctx, tx, b.ID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateStatusTx writes a new status for a booking within the
// caller's transaction.  Callers are expected to have validated the
// transition against the state machine first.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.BookingStatus) error {
	_, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, string(status), id)
	return err
}

// ExpirePending flips every PENDING booking whose hold-expiry is in
// the past to EXPIRED in one set-based update, and returns the
// distinct trip ids that were affected together with the number of
// rows changed.  The update only touches rows whose deadline has
// passed, so running it concurrently from several instances is
// harmless.
func (r *BookingRepo) ExpirePending(ctx context.Context) ([]uint64, int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT trip_id FROM bookings
		 WHERE status = 'PENDING' AND expires_at <= UTC_TIMESTAMP()`)
	if err != nil {
		return nil, 0, err
	}
	var tripIDs []uint64
	for rows.Next() {
		var id uint64
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return nil, 0, scanErr
		}
		tripIDs = append(tripIDs, id)
	}
	if err = rows.Close(); err != nil {
		return nil, 0, err
	}
	if len(tripIDs) == 0 {
		committed = true
		return nil, 0, tx.Commit()
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'EXPIRED'
		 WHERE status = 'PENDING' AND expires_at <= UTC_TIMESTAMP()`)
	if err != nil {
		return nil, 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	committed = true
	return tripIDs, n, nil
}
