// Package broadcast implements the per-trip availability fan-out.
// Each trip is a topic; viewers of that trip's seat map subscribe and
// receive a lightweight "something changed, refetch" signal whenever
// a booking, lock or expiry mutates availability.  Delivery is
// best-effort: a subscriber that misses an event reconciles with a
// full seat-map read on reconnect.
package broadcast

import "sync"

// Event is the signal fanned out to subscribers.  It deliberately
// carries no diff; clients refetch the seat map on receipt.
type Event struct {
	Type   string `json:"type"`
	TripID uint64 `json:"trip_id,omitempty"`
}

// subscriber channels are buffered a few events deep; a consumer that
// falls further behind than that starts losing events rather than
// blocking publishers.
const subscriberBuffer = 4

// Hub owns the subscriber sets for every trip topic.  Subscribers are
// added on connect and always removed on disconnect through the
// returned cancel function, so the hub never retains a dead
// connection.
type Hub struct {
	mu   sync.RWMutex
	subs map[uint64]map[chan Event]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]map[chan Event]struct{})}
}

// Subscribe registers interest in one trip's availability changes.
// It returns the event channel and a cancel function that must be
// called exactly once when the consumer goes away; cancel removes the
// subscriber and closes the channel.
func (h *Hub) Subscribe(tripID uint64) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	set, ok := h.subs[tripID]
	if !ok {
		set = make(map[chan Event]struct{})
		h.subs[tripID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if set, ok := h.subs[tripID]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, tripID)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish signals every current subscriber of the trip.  Sends are
// non-blocking: a subscriber whose buffer is full is skipped, never
// waited on, so a slow consumer cannot stall the booking path.
func (h *Hub) Publish(tripID uint64) {
	ev := Event{Type: "seat_update", TripID: tripID}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[tripID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers reports the current subscriber count for a trip.
func (h *Hub) Subscribers(tripID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[tripID])
}
