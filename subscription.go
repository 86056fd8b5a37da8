package mediabridge

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultSubscriptionBuffer is the channel capacity used by
// Session.Subscribe. Sixteen events absorb a normal burst (state change plus
// the flag/duration updates that follow a load) without letting a stalled
// consumer hold stale data.
const DefaultSubscriptionBuffer = 16

// Subscription is one consumer's independent, ordered delivery queue of
// mapped events.
//
// Delivery is bounded with newest-wins semantics: when the buffer is full
// the oldest buffered event is evicted in favor of the incoming one. Event
// freshness matters more than completeness for the consumers this serves.
// Within one subscription, delivery order always equals engine emission
// order; evictions remove events, they never reorder them.
//
// The Events channel is closed when the subscription is cancelled or when
// the owning session is torn down, so `for range sub.Events()` terminates.
type Subscription struct {
	id     uuid.UUID
	events chan Event

	mu     sync.Mutex
	closed bool

	delivered atomic.Uint64
	evicted   atomic.Uint64

	unregister func(uuid.UUID)
	closeOnce  sync.Once
}

func newSubscription(buffer int, unregister func(uuid.UUID)) *Subscription {
	return &Subscription{
		id:         uuid.New(),
		events:     make(chan Event, buffer),
		unregister: unregister,
	}
}

// ID returns the opaque subscription id.
func (s *Subscription) ID() uuid.UUID {
	return s.id
}

// Events returns the receive side of the subscription's queue.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close cancels the subscription: delivery stops immediately and the Events
// channel is closed. Idempotent, safe to call concurrently with delivery
// and with session teardown.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		if s.unregister != nil {
			s.unregister(s.id)
		}
		s.mu.Lock()
		s.closed = true
		close(s.events)
		s.mu.Unlock()
	})
}

// finish closes the channel without unregistering; used by the broadcaster
// during invalidate, after the registry is already gone.
func (s *Subscription) finish() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.events)
		s.mu.Unlock()
	})
}

// push delivers one event with the evict-oldest policy. Called from the
// engine's thread; it must never block. The subscription mutex serializes
// pushes against Close, so a send on a closed channel is impossible.
func (s *Subscription) push(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	select {
	case s.events <- ev:
		s.delivered.Add(1)
		return
	default:
	}

	// Buffer full: evict the oldest entry, then retry. The consumer may
	// have drained concurrently, in which case the eviction select misses
	// and the retry simply succeeds.
	select {
	case <-s.events:
		s.evicted.Add(1)
	default:
	}

	select {
	case s.events <- ev:
		s.delivered.Add(1)
	default:
		// Unreachable while the push mutex is held: only the consumer
		// removes entries, so after the eviction there is room. Kept so a
		// future policy change cannot turn this into a blocking send.
		s.evicted.Add(1)
	}
}

// stats returns the subscription's delivery counters.
func (s *Subscription) stats() SubscriptionStats {
	return SubscriptionStats{
		Delivered: s.delivered.Load(),
		Evicted:   s.evicted.Load(),
	}
}
