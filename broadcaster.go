package mediabridge

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// sessionEventKinds are the kinds the broadcaster attaches for. Completion
// kinds are excluded: those belong to one-shot operations which attach their
// own listeners.
var sessionEventKinds = []EventKind{
	EventStateChanged,
	EventMediaChanged,
	EventBufferingChanged,
	EventTimeChanged,
	EventPositionChanged,
	EventLengthChanged,
	EventSeekableChanged,
	EventPausableChanged,
	EventTrackAdded,
	EventTrackDeleted,
	EventTrackUpdated,
	EventTitleChanged,
	EventChapterChanged,
	EventVolumeChanged,
	EventMuteChanged,
	EventRecordingChanged,
	EventSnapshotTaken,
	EventProgramAdded,
	EventProgramDeleted,
	EventProgramSelected,
	EventProgramUpdated,
	EventEncounteredError,
	EventScrambledChanged,
}

// SubscriptionStats tracks delivery metrics for a single subscription.
type SubscriptionStats struct {
	// Delivered is the number of events placed into the subscription buffer.
	Delivered uint64

	// Evicted is the number of buffered events discarded to make room for
	// newer ones.
	Evicted uint64
}

// BroadcasterStats contains global and per-subscription delivery metrics.
type BroadcasterStats struct {
	// Published is the number of mapped events fanned out.
	Published uint64

	// Dropped is the number of raw records with no mapped representation.
	Dropped uint64

	// Subscriptions contains the per-subscription breakdown, keyed by
	// subscription id.
	Subscriptions map[uuid.UUID]SubscriptionStats
}

// broadcaster owns the attach/detach lifecycle for one handle's event
// manager and fans every mapped event out to the registered subscriptions.
//
// Registration bookkeeping is guarded by a short RWMutex; fan-out iterates
// a snapshot taken under the read lock so delivery never runs while holding
// registration exclusively. Registration changes made during a fan-out are
// observed on the next raw event.
type broadcaster struct {
	em EventManager

	mu   sync.RWMutex
	subs map[uuid.UUID]*Subscription

	tokens      []ListenerToken
	invalidated atomic.Bool

	published atomic.Uint64
	dropped   atomic.Uint64
}

func newBroadcaster(em EventManager) *broadcaster {
	return &broadcaster{
		em:   em,
		subs: make(map[uuid.UUID]*Subscription),
	}
}

// attach registers the raw-event trampoline for every session event kind.
// Called once at session construction, before any subscriber exists.
func (b *broadcaster) attach() {
	for _, kind := range sessionEventKinds {
		b.tokens = append(b.tokens, b.em.Attach(kind, b.onRawEvent))
	}
}

// onRawEvent is the native callback trampoline. It runs on a thread owned
// by the engine, at any time, with no reentrancy assumptions, and must
// never block: mapping is pure and per-subscription delivery is bounded
// non-blocking.
func (b *broadcaster) onRawEvent(rec NativeEvent) {
	ev, ok := mapNative(rec)
	if !ok {
		b.dropped.Add(1)
		slog.Debug("bridge: raw event has no mapping, dropped", "kind", rec.Kind)
		return
	}

	b.published.Add(1)

	b.mu.RLock()
	snapshot := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		snapshot = append(snapshot, s)
	}
	b.mu.RUnlock()

	for _, s := range snapshot {
		s.push(ev)
	}
}

// subscribe creates and registers a new bounded subscription.
func (b *broadcaster) subscribe(buffer int) (*Subscription, error) {
	if buffer <= 0 {
		buffer = DefaultSubscriptionBuffer
	}

	s := newSubscription(buffer, b.remove)

	b.mu.Lock()
	defer b.mu.Unlock()

	// Checked under the registry lock so a concurrent invalidate cannot
	// register a subscription it will never close.
	if b.invalidated.Load() {
		return nil, ErrSessionClosed
	}

	b.subs[s.id] = s
	return s, nil
}

// remove unregisters one subscription; a no-op after invalidate.
func (b *broadcaster) remove(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// invalidate tears the broadcaster down: detach every native listener, then
// close every outstanding subscription so blocked consumers unblock and
// their iteration ends. Exactly one call does real work; every subsequent
// or concurrent call is a no-op. This guards against the two independent
// teardown triggers (explicit Close plus owner teardown) racing.
//
// Detach calls are infallible by contract and always run strictly before
// the owner releases the handle.
func (b *broadcaster) invalidate() {
	if !b.invalidated.CompareAndSwap(false, true) {
		return
	}

	for _, token := range b.tokens {
		b.em.Detach(token)
	}
	b.tokens = nil

	b.mu.Lock()
	remaining := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		remaining = append(remaining, s)
	}
	b.subs = make(map[uuid.UUID]*Subscription)
	b.mu.Unlock()

	for _, s := range remaining {
		s.finish()
	}

	slog.Debug("bridge: broadcaster invalidated",
		"subscriptions_closed", len(remaining),
		"events_published", b.published.Load(),
	)
}

// stats returns a point-in-time snapshot of delivery metrics.
func (b *broadcaster) stats() BroadcasterStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := BroadcasterStats{
		Published:     b.published.Load(),
		Dropped:       b.dropped.Load(),
		Subscriptions: make(map[uuid.UUID]SubscriptionStats, len(b.subs)),
	}
	for id, s := range b.subs {
		out.Subscriptions[id] = s.stats()
	}
	return out
}
