package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hvugvjn/smart-ticket/internal/model"
)

// RefundRepo provides data access to the refunds table.  A refund row
// is written exactly once, inside the cancellation transaction, and
// never mutated afterwards.
type RefundRepo struct {
	db *sql.DB
}

// NewRefundRepo returns a new RefundRepo bound to the given database.
func NewRefundRepo(db *sql.DB) *RefundRepo { return &RefundRepo{db: db} }

// CreateTx inserts the refund within the caller's transaction and
// populates the generated ID and ProcessedAt.  The UNIQUE constraint
// on booking_id guarantees at most one refund per booking even if a
// cancellation is somehow retried.
func (r *RefundRepo) CreateTx(ctx context.Context, tx *sql.Tx, rf *model.Refund) error {
	const q = `INSERT INTO refunds (booking_id, amount_cents, currency, status, reason, processed_at)
	           VALUES (?, ?, ?, ?, ?, UTC_TIMESTAMP())`
	res, err := tx.ExecContext(ctx, q, rf.BookingID, rf.AmountCents, rf.Currency, rf.Status, rf.Reason)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rf.ID = uint64(id)
	rf.ProcessedAt = time.Now().UTC()
	return nil
}

// GetByBookingID returns the refund for a booking, or nil when the
// booking has never been cancelled.
func (r *RefundRepo) GetByBookingID(ctx context.Context, bookingID uint64) (*model.Refund, error) {
	const q = `SELECT id, booking_id, amount_cents, currency, status, reason, processed_at
	           FROM refunds WHERE booking_id = ?`
	var rf model.Refund
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(
		&rf.ID, &rf.BookingID, &rf.AmountCents, &rf.Currency, &rf.Status, &rf.Reason, &rf.ProcessedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rf, nil
}
