package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeExpirer struct {
	trips []uint64
	count int64
	err   error
	calls int
}

func (f *fakeExpirer) ExpirePending(context.Context) ([]uint64, int64, error) {
	f.calls++
	return f.trips, f.count, f.err
}

type fakeReaper struct {
	trips []uint64
	count int64
	err   error
	calls int
}

func (f *fakeReaper) ReapExpired(context.Context) ([]uint64, int64, error) {
	f.calls++
	return f.trips, f.count, f.err
}

type fakeHub struct {
	published []uint64
}

func (f *fakeHub) Publish(tripID uint64) { f.published = append(f.published, tripID) }

func TestSweepSignalsEachTouchedTripOnce(t *testing.T) {
	expirer := &fakeExpirer{trips: []uint64{1, 2}, count: 3}
	reaper := &fakeReaper{trips: []uint64{2, 5}, count: 4}
	hub := &fakeHub{}

	NewReclaimer(expirer, reaper, hub, time.Minute).Sweep(context.Background())

	assert.ElementsMatch(t, []uint64{1, 2, 5}, hub.published)
}

func TestSweepContinuesPastExpiryError(t *testing.T) {
	expirer := &fakeExpirer{err: errors.New("deadlock")}
	reaper := &fakeReaper{trips: []uint64{9}, count: 1}
	hub := &fakeHub{}

	NewReclaimer(expirer, reaper, hub, time.Minute).Sweep(context.Background())

	assert.Equal(t, 1, reaper.calls)
	assert.Equal(t, []uint64{9}, hub.published)
}

func TestSweepQuietWhenNothingChanged(t *testing.T) {
	hub := &fakeHub{}
	NewReclaimer(&fakeExpirer{}, &fakeReaper{}, hub, time.Minute).Sweep(context.Background())
	assert.Empty(t, hub.published)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	expirer := &fakeExpirer{}
	reaper := &fakeReaper{}
	rec := NewReclaimer(expirer, reaper, &fakeHub{}, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rec.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reclaimer did not stop after cancel")
	}
	assert.Greater(t, expirer.calls, 0)
}

func TestNewReclaimerDefaultsInterval(t *testing.T) {
	rec := NewReclaimer(&fakeExpirer{}, &fakeReaper{}, &fakeHub{}, 0)
	assert.Equal(t, DefaultSweepInterval, rec.interval)
}
