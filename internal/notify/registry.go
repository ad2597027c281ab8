package notify

import (
	"context"
	"log"
	"strings"

	"github.com/hvugvjn/smart-ticket/internal/model"
)

// SubscriptionStore is the persistence the registry needs.  It is
// satisfied by repository.SeatNotificationRepo.
type SubscriptionStore interface {
	ExistsUnsent(ctx context.Context, tripID uint64, seatNumber, email string) (bool, error)
	Create(ctx context.Context, sn *model.SeatNotification) error
	FindUnsent(ctx context.Context, tripID uint64, seatNumber string) ([]model.SeatNotification, error)
	MarkSent(ctx context.Context, id uint64) error
}

// Registry records interest in booked seats and fires at most one
// notification per subscription when the seat frees up.
type Registry struct {
	store    SubscriptionStore
	notifier Notifier
}

// NewRegistry builds a registry over the given store and notifier.
func NewRegistry(store SubscriptionStore, notifier Notifier) *Registry {
	return &Registry{store: store, notifier: notifier}
}

// NormalizeSeatNumber canonicalizes a seat label the way subscriptions
// are stored: trimmed and upper-cased.
func NormalizeSeatNumber(seatNumber string) string {
	return strings.ToUpper(strings.TrimSpace(seatNumber))
}

// Subscribe records that email wants to know when the seat frees up.
// The call is idempotent: when an unsent subscription already exists
// for the same (trip, seat, email), it succeeds without creating a
// second row and reports created=false.
func (r *Registry) Subscribe(ctx context.Context, tripID uint64, seatNumber, email string) (created bool, err error) {
	seatNumber = NormalizeSeatNumber(seatNumber)
	email = strings.ToLower(strings.TrimSpace(email))
	exists, err := r.store.ExistsUnsent(ctx, tripID, seatNumber, email)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	sn := &model.SeatNotification{TripID: tripID, SeatNumber: seatNumber, Email: email}
	if err := r.store.Create(ctx, sn); err != nil {
		return false, err
	}
	return true, nil
}

// NotifyReleased fires pending subscriptions for a seat that just
// became free.  Each subscription is marked sent only after its
// delivery attempt succeeded; a failed delivery leaves the row unsent
// and a sent row never fires again.  Returns the number of
// notifications delivered.
func (r *Registry) NotifyReleased(ctx context.Context, trip *model.Trip, seatNumber string) int {
	seatNumber = NormalizeSeatNumber(seatNumber)
	subs, err := r.store.FindUnsent(ctx, trip.ID, seatNumber)
	if err != nil {
		log.Printf("notify: loading subscriptions for trip=%d seat=%s failed: %v", trip.ID, seatNumber, err)
		return 0
	}
	sent := 0
	for _, sn := range subs {
		payload := map[string]string{
			"seat_number": seatNumber,
			"source":      trip.Source,
			"destination": trip.Destination,
		}
		if err := r.notifier.Send(ctx, sn.Email, KindSeatAvailable, payload); err != nil {
			log.Printf("notify: seat available email to %s failed: %v", sn.Email, err)
			continue
		}
		if err := r.store.MarkSent(ctx, sn.ID); err != nil {
			log.Printf("notify: marking subscription %d sent failed: %v", sn.ID, err)
			continue
		}
		sent++
	}
	return sent
}
