// Package worker holds the background reclamation loop.  Reads of
// availability already ignore stale rows through their WHERE clauses;
// the worker exists so stale state is also physically cleared and so
// viewers watching a seat map hear about seats coming back.
package worker

import (
	"context"
	"log"
	"time"
)

// DefaultSweepInterval is how often the reclaimer runs when no
// interval is configured.
const DefaultSweepInterval = 10 * time.Second

// BookingExpirer flips overdue PENDING bookings to EXPIRED and
// reports the distinct trips that changed.
type BookingExpirer interface {
	ExpirePending(ctx context.Context) ([]uint64, int64, error)
}

// LockReaper deletes advisory seat locks whose TTL has passed and
// reports the distinct trips that changed.
type LockReaper interface {
	ReapExpired(ctx context.Context) ([]uint64, int64, error)
}

// Broadcaster pings seat-map viewers of a trip.
type Broadcaster interface {
	Publish(tripID uint64)
}

// Reclaimer periodically expires overdue holds and reaps stale seat
// locks, then signals the affected trips once per sweep.
type Reclaimer struct {
	bookings BookingExpirer
	locks    LockReaper
	hub      Broadcaster
	interval time.Duration
}

// NewReclaimer builds a reclaimer.  A non-positive interval falls back
// to DefaultSweepInterval.
func NewReclaimer(bookings BookingExpirer, locks LockReaper, hub Broadcaster, interval time.Duration) *Reclaimer {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Reclaimer{bookings: bookings, locks: locks, hub: hub, interval: interval}
}

// Run sweeps on a ticker until the context is canceled.  It is meant
// to be started as a goroutine from main.
func (r *Reclaimer) Run(ctx context.Context) {
	log.Printf("[Reclaimer] Started, sweeping every %s", r.interval)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("[Reclaimer] Stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep performs one reclamation pass.  Errors are logged and the
// pass continues; a failed sweep is retried on the next tick.  Each
// affected trip is signaled once even when both the expiry and the
// reap touched it.
func (r *Reclaimer) Sweep(ctx context.Context) {
	touched := make(map[uint64]struct{})

	trips, n, err := r.bookings.ExpirePending(ctx)
	if err != nil {
		log.Printf("[Reclaimer] Expiring pending bookings failed: %v", err)
	} else if n > 0 {
		log.Printf("[Reclaimer] Expired %d pending booking(s)", n)
		for _, id := range trips {
			touched[id] = struct{}{}
		}
	}

	trips, n, err = r.locks.ReapExpired(ctx)
	if err != nil {
		log.Printf("[Reclaimer] Reaping seat locks failed: %v", err)
	} else if n > 0 {
		log.Printf("[Reclaimer] Reaped %d expired seat lock(s)", n)
		for _, id := range trips {
			touched[id] = struct{}{}
		}
	}

	for id := range touched {
		r.hub.Publish(id)
	}
}
