package repository

import (
	"context"
	"database/sql"

	"github.com/hvugvjn/smart-ticket/internal/model"
)

// SeatNotificationRepo provides data access to the seat_notifications
// table.  It backs the subscription registry: rows are created on
// subscribe, read unsent on seat release, and flipped to notified at
// most once each.
type SeatNotificationRepo struct {
	db *sql.DB
}

// NewSeatNotificationRepo returns a repo bound to the given database.
func NewSeatNotificationRepo(db *sql.DB) *SeatNotificationRepo {
	return &SeatNotificationRepo{db: db}
}

// ExistsUnsent reports whether an unsent subscription already exists
// for this (trip, seat number, email).  Inputs are expected to be
// normalized by the caller (seat upper-cased, email lower-cased).
func (r *SeatNotificationRepo) ExistsUnsent(ctx context.Context, tripID uint64, seatNumber, email string) (bool, error) {
	const q = `SELECT COUNT(*) FROM seat_notifications
	           WHERE trip_id = ? AND seat_number = ? AND email = ? AND notified = 0`
	var n int
	if err := r.db.QueryRowContext(ctx, q, tripID, seatNumber, email).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a new unsent subscription and populates its ID.
func (r *SeatNotificationRepo) Create(ctx context.Context, sn *model.SeatNotification) error {
	const q = `INSERT INTO seat_notifications (trip_id, seat_number, email, notified) VALUES (?, ?, ?, 0)`
	res, err := r.db.ExecContext(ctx, q, sn.TripID, sn.SeatNumber, sn.Email)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sn.ID = uint64(id)
	return nil
}

// FindUnsent returns every subscription for the given seat that has
// not yet been notified.
func (r *SeatNotificationRepo) FindUnsent(ctx context.Context, tripID uint64, seatNumber string) ([]model.SeatNotification, error) {
	const q = `SELECT id, trip_id, seat_number, email, notified, created_at
	           FROM seat_notifications
	           WHERE trip_id = ? AND seat_number = ? AND notified = 0
	           ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, tripID, seatNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	subs := make([]model.SeatNotification, 0)
	for rows.Next() {
		var sn model.SeatNotification
		var notified int
		if err := rows.Scan(&sn.ID, &sn.TripID, &sn.SeatNumber, &sn.Email, &notified, &sn.CreatedAt); err != nil {
			return nil, err
		}
		sn.Notified = notified != 0
		subs = append(subs, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

// MarkSent flips a subscription to notified.  The notified filter in
// the WHERE clause makes the operation idempotent: a row that has
// already fired is never updated again.
func (r *SeatNotificationRepo) MarkSent(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE seat_notifications SET notified = 1 WHERE id = ? AND notified = 0`, id)
	return err
}
