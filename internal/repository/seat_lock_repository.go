package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hvugvjn/smart-ticket/internal/model"
)

// SeatLockRepo provides data access to the seat_locks table.  Locks
// are advisory: every read filters on expires_at so an expired row is
// indistinguishable from an absent one, and the expiry worker reaps
// the dead rows to bound table growth.  All timestamps are UTC.
type SeatLockRepo struct {
	db *sql.DB
}

// NewSeatLockRepo returns a new SeatLockRepo bound to the provided database.
func NewSeatLockRepo(db *sql.DB) *SeatLockRepo { return &SeatLockRepo{db: db} }

// Acquire grants or refreshes a lock on one seat for one holder.  If
// an active lock exists for a different holder, a LockHeldError with
// the masked current holder is returned.  If the same holder already
// holds the seat, the expiry is pushed out in place rather than
// inserting a duplicate.  The check and write run inside one short
// transaction so two racing acquires cannot both insert.
func (r *SeatLockRepo) Acquire(ctx context.Context, tripID, seatID uint64, holderID string, ttl time.Duration) (*model.SeatLock, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const sel = `SELECT id, trip_id, seat_id, holder_id, expires_at, created_at
	             FROM seat_locks
	             WHERE trip_id = ? AND seat_id = ? AND expires_at > UTC_TIMESTAMP()
	             FOR UPDATE`
	var existing model.SeatLock
	err = tx.QueryRowContext(ctx, sel, tripID, seatID).Scan(
		&existing.ID, &existing.TripID, &existing.SeatID, &existing.HolderID, &existing.ExpiresAt, &existing.CreatedAt,
	)
	expiresAt := time.Now().UTC().Add(ttl)
	switch {
	case err == nil && existing.HolderID != holderID:
		return nil, &LockHeldError{HeldBy: model.MaskHolder(existing.HolderID), ExpiresAt: existing.ExpiresAt}
	case err == nil:
		// Same holder re-requesting: renew in place.
		const upd = `UPDATE seat_locks SET expires_at = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, upd, expiresAt.Format("2006-01-02 15:04:05"), existing.ID); err != nil {
			return nil, err
		}
		existing.ExpiresAt = expiresAt
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		committed = true
		return &existing, nil
	case errors.Is(err, sql.ErrNoRows):
		// Stale rows for this pair may still exist; clear them before
		// inserting so the (trip, seat) uniqueness constraint holds.
		if _, err := tx.ExecContext(ctx, `DELETE FROM seat_locks WHERE trip_id = ? AND seat_id = ?`, tripID, seatID); err != nil {
			return nil, err
		}
		const ins = `INSERT INTO seat_locks (trip_id, seat_id, holder_id, expires_at) VALUES (?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, ins, tripID, seatID, holderID, expiresAt.Format("2006-01-02 15:04:05"))
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		committed = true
		return &model.SeatLock{
			ID:        uint64(id),
			TripID:    tripID,
			SeatID:    seatID,
			HolderID:  holderID,
			ExpiresAt: expiresAt,
			CreatedAt: time.Now().UTC(),
		}, nil
	default:
		return nil, err
	}
}

// Release removes the holder's lock on a seat.  It returns false with
// ErrForbidden when an active lock exists but belongs to a different
// holder, and false with no error when there is nothing to release.
func (r *SeatLockRepo) Release(ctx context.Context, tripID, seatID uint64, holderID string) (bool, error) {
	const sel = `SELECT holder_id FROM seat_locks
	             WHERE trip_id = ? AND seat_id = ? AND expires_at > UTC_TIMESTAMP()`
	var currentHolder string
	err := r.db.QueryRowContext(ctx, sel, tripID, seatID).Scan(&currentHolder)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if currentHolder != holderID {
		return false, ErrForbidden
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM seat_locks WHERE trip_id = ? AND seat_id = ? AND holder_id = ?`,
		tripID, seatID, holderID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListActive returns all non-expired locks for a trip.
func (r *SeatLockRepo) ListActive(ctx context.Context, tripID uint64) ([]model.SeatLock, error) {
	const q = `SELECT id, trip_id, seat_id, holder_id, expires_at, created_at
	           FROM seat_locks
	           WHERE trip_id = ? AND expires_at > UTC_TIMESTAMP()
	           ORDER BY seat_id`
	rows, err := r.db.QueryContext(ctx, q, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	locks := make([]model.SeatLock, 0)
	for rows.Next() {
		var l model.SeatLock
		if err := rows.Scan(&l.ID, &l.TripID, &l.SeatID, &l.HolderID, &l.ExpiresAt, &l.CreatedAt); err != nil {
			return nil, err
		}
		locks = append(locks, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return locks, nil
}

// ConflictingSeatsTx returns, within the booking transaction, the
// subset of the requested seats that carry an active lock held by a
// principal other than holderID.  holderID may be empty for
// anonymous bookings, in which case every active lock conflicts.
func (r *SeatLockRepo) ConflictingSeatsTx(ctx context.Context, tx *sql.Tx, tripID uint64, seatIDs []uint64, holderID string) ([]uint64, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	q := `SELECT seat_id FROM seat_locks
	      WHERE trip_id = ? AND seat_id IN (` + placeholders(len(seatIDs)) + `)
	        AND expires_at > UTC_TIMESTAMP() AND holder_id <> ?
	      ORDER BY seat_id`
	args := append([]interface{}{tripID}, idArgs(seatIDs)...)
	args = append(args, holderID)
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var conflicting []uint64
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		conflicting = append(conflicting, sid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return conflicting, nil
}

// DeleteForHolderSeatsTx removes the holder's own locks on the given
// seats.  A successful booking supersedes the advisory locks, so this
// runs in the booking transaction right after the booking row is
// inserted.  Locks the holder has on seats outside the booked set are
// deliberately left untouched.
func (r *SeatLockRepo) DeleteForHolderSeatsTx(ctx context.Context, tx *sql.Tx, tripID uint64, seatIDs []uint64, holderID string) error {
	if len(seatIDs) == 0 || holderID == "" {
		return nil
	}
	q := `DELETE FROM seat_locks
	      WHERE trip_id = ? AND holder_id = ? AND seat_id IN (` + placeholders(len(seatIDs)) + `)`
	args := append([]interface{}{tripID, holderID}, idArgs(seatIDs)...)
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// ReapExpired physically deletes expired lock rows and returns the
// distinct trip ids that had at least one lock reaped, so the caller
// can ping the broadcaster once per trip.
func (r *SeatLockRepo) ReapExpired(ctx context.Context) ([]uint64, int64, error) {
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
		`SELECT DISTINCT trip_id FROM seat_locks WHERE expires_at <= UTC_TIMESTAMP()`)
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
	res, err := tx.ExecContext(ctx, `DELETE FROM seat_locks WHERE expires_at <= UTC_TIMESTAMP()`)
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
