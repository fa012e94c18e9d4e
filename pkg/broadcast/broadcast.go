// Package broadcast fans scan events out to live subscribers.
//
// Delivery is best-effort: a failing subscriber is skipped, a subscriber
// connecting mid-scan only sees events produced after it connected, and
// there is no replay buffer. The registry is the only state shared across
// concurrently running scan jobs.
package broadcast

import (
	"sync"

	"github.com/dorkscan/dorkscan/pkg/events"
)

// Subscriber receives broadcast events. Send may fail; the broadcaster
// swallows the error and continues with the remaining subscribers.
type Subscriber interface {
	Send(ev events.Event) error
}

// Broadcaster is a concurrency-safe subscriber registry with best-effort
// fan-out. The zero value is not usable; call New.
type Broadcaster struct {
	mu   sync.RWMutex
	subs []Subscriber
}

// New creates an empty broadcaster.
func New() *Broadcaster {
	return &Broadcaster{}
}

// Connect registers a subscriber. Registering the same subscriber twice is
// a no-op.
func (b *Broadcaster) Connect(s Subscriber) {
	if s == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.subs {
		if existing == s {
			return
		}
	}
	b.subs = append(b.subs, s)
}

// Disconnect removes a subscriber. Idempotent: removing an unknown
// subscriber is a no-op.
func (b *Broadcaster) Disconnect(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.subs {
		if existing == s {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Count returns the number of registered subscribers.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Broadcast delivers the event to every registered subscriber in
// registration order. Individual Send failures are ignored. Broadcasting
// with zero subscribers is a no-op.
//
// The subscriber list is snapshotted first so a subscriber may call
// Disconnect from within Send without deadlocking.
func (b *Broadcaster) Broadcast(ev events.Event) {
	b.mu.RLock()
	snapshot := make([]Subscriber, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.RUnlock()

	for _, s := range snapshot {
		_ = s.Send(ev)
	}
}
