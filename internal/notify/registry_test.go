package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvugvjn/smart-ticket/internal/model"
)

type fakeStore struct {
	subs   []model.SeatNotification
	nextID uint64
}

func (s *fakeStore) ExistsUnsent(_ context.Context, tripID uint64, seatNumber, email string) (bool, error) {
	for _, sn := range s.subs {
		if sn.TripID == tripID && sn.SeatNumber == seatNumber && sn.Email == email && !sn.Notified {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) Create(_ context.Context, sn *model.SeatNotification) error {
	s.nextID++
	sn.ID = s.nextID
	s.subs = append(s.subs, *sn)
	return nil
}

func (s *fakeStore) FindUnsent(_ context.Context, tripID uint64, seatNumber string) ([]model.SeatNotification, error) {
	var out []model.SeatNotification
	for _, sn := range s.subs {
		if sn.TripID == tripID && sn.SeatNumber == seatNumber && !sn.Notified {
			out = append(out, sn)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkSent(_ context.Context, id uint64) error {
	for i := range s.subs {
		if s.subs[i].ID == id {
			s.subs[i].Notified = true
		}
	}
	return nil
}

type fakeNotifier struct {
	sent []string
	fail map[string]bool
}

func (n *fakeNotifier) Send(_ context.Context, contact, _ string, _ map[string]string) error {
	if n.fail[contact] {
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, contact)
	return nil
}

func TestSubscribeNormalizesAndDeduplicates(t *testing.T) {
	store := &fakeStore{}
	reg := NewRegistry(store, &fakeNotifier{})

	created, err := reg.Subscribe(context.Background(), 1, " l1a ", " Rider@Example.COM ")
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, store.subs, 1)
	assert.Equal(t, "L1A", store.subs[0].SeatNumber)
	assert.Equal(t, "rider@example.com", store.subs[0].Email)

	// Same subscription in a different spelling is a no-op.
	created, err = reg.Subscribe(context.Background(), 1, "l1a", "RIDER@example.com")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, store.subs, 1)

	// A different email for the same seat is a new subscription.
	created, err = reg.Subscribe(context.Background(), 1, "L1A", "other@example.com")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, store.subs, 2)
}

func TestNotifyReleasedFiresAtMostOnce(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	reg := NewRegistry(store, notifier)
	trip := &model.Trip{ID: 1, Source: "Bengaluru", Destination: "Chennai"}

	_, err := reg.Subscribe(context.Background(), 1, "L1A", "rider@example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, reg.NotifyReleased(context.Background(), trip, "L1A"))
	assert.Equal(t, []string{"rider@example.com"}, notifier.sent)

	// The seat freeing up again must not re-fire a sent subscription.
	assert.Equal(t, 0, reg.NotifyReleased(context.Background(), trip, "L1A"))
	assert.Len(t, notifier.sent, 1)
}

func TestNotifyReleasedKeepsFailedDeliveriesUnsent(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{fail: map[string]bool{"down@example.com": true}}
	reg := NewRegistry(store, notifier)
	trip := &model.Trip{ID: 2, Source: "Pune", Destination: "Mumbai"}

	_, err := reg.Subscribe(context.Background(), 2, "U3B", "down@example.com")
	require.NoError(t, err)
	_, err = reg.Subscribe(context.Background(), 2, "U3B", "up@example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, reg.NotifyReleased(context.Background(), trip, "U3B"))
	assert.Equal(t, []string{"up@example.com"}, notifier.sent)

	// The failed recipient is still pending for a later release.
	notifier.fail = nil
	assert.Equal(t, 1, reg.NotifyReleased(context.Background(), trip, "U3B"))
	assert.Equal(t, []string{"up@example.com", "down@example.com"}, notifier.sent)
}
