package mediabridge

import (
	"fmt"
	"log/slog"
)

// reducerBuffer is the reducer subscription's channel capacity. Larger than
// the consumer default: the reducer is a fast in-process fold and evicting
// its events costs state fidelity, not just freshness.
const reducerBuffer = 64

// Session wraps one engine handle behind the reactive surface of this
// module: an event subscription API, a continuously updated playback state
// snapshot, and cancellable one-shot requests.
//
// The handle and its event manager are exclusively owned by the session.
// The broadcaster and reducer are internal collaborators with no
// independent lifetime; they never outlive the session.
type Session struct {
	handle      Handle
	broadcaster *broadcaster
	reducer     *reducer
	guard       lifecycleGuard
}

// NewSession adopts an engine handle. The session takes ownership: the
// caller must not touch the handle directly afterwards, and must call
// Close to return it to the engine.
func NewSession(h Handle) (*Session, error) {
	if h == nil {
		return nil, ErrNilHandle
	}

	s := &Session{
		handle:      h,
		broadcaster: newBroadcaster(h.Events()),
		reducer:     newReducer(h),
	}
	s.broadcaster.attach()

	// The reducer is just another subscriber; it holds no special position
	// in the fan-out beyond its larger buffer.
	sub, err := s.broadcaster.subscribe(reducerBuffer)
	if err != nil {
		// Unreachable on a freshly created broadcaster; kept for the
		// invariant rather than the path.
		return nil, err
	}
	go s.reducer.run(sub)

	slog.Debug("bridge: session created")
	return s, nil
}

// Subscribe creates an independent, ordered event subscription with the
// default buffer. Any number of subscriptions may exist concurrently; none
// observes another's backlog. The subscription must be closed by the caller
// unless the session is closed first.
func (s *Session) Subscribe() (*Subscription, error) {
	return s.broadcaster.subscribe(DefaultSubscriptionBuffer)
}

// SubscribeBuffer is Subscribe with an explicit buffer capacity.
func (s *Session) SubscribeBuffer(buffer int) (*Subscription, error) {
	return s.broadcaster.subscribe(buffer)
}

// State returns a copy of the current playback state snapshot.
func (s *Session) State() PlaybackState {
	return s.reducer.Snapshot()
}

// Stats returns a snapshot of event delivery metrics.
func (s *Session) Stats() BroadcasterStats {
	return s.broadcaster.stats()
}

// Load swaps new media into the session. The state machine resets to idle
// first, which is also the only way out of the error phase.
func (s *Session) Load(target string) error {
	if !s.guard.enter() {
		return ErrSessionClosed
	}
	defer s.guard.leave()

	s.reducer.reset()
	if err := s.handle.Open(target); err != nil {
		return fmt.Errorf("open media: %w", err)
	}
	return nil
}

// Play starts or resumes playback.
func (s *Session) Play() error {
	if !s.guard.enter() {
		return ErrSessionClosed
	}
	defer s.guard.leave()
	return s.handle.Play()
}

// Pause pauses playback.
func (s *Session) Pause() error {
	if !s.guard.enter() {
		return ErrSessionClosed
	}
	defer s.guard.leave()
	return s.handle.Pause()
}

// Stop stops playback.
func (s *Session) Stop() error {
	if !s.guard.enter() {
		return ErrSessionClosed
	}
	defer s.guard.leave()
	return s.handle.Stop()
}

// Close tears the session down and returns the handle to the engine.
//
// Ordering, run synchronously by the single caller that wins the guard:
//  1. invalidate the broadcaster: detach every native listener and close
//     every subscription (consumers unblock, iteration ends)
//  2. nudge in-flight one-shot requests with the native stop calls and
//     wait for their completion callbacks to resolve them
//  3. wait for the reducer goroutine to drain and exit
//  4. release the handle
//
// No component therefore touches the handle after release. Close is
// idempotent: concurrent and repeated calls return immediately without
// doing work.
func (s *Session) Close() error {
	if !s.guard.beginShutdown() {
		return nil
	}

	s.broadcaster.invalidate()

	// Best-effort abort for pending one-shots; their adapters resolve when
	// the engine emits the post-stop completion events.
	s.handle.StopParse()
	s.handle.StopThumbnail()
	s.guard.wait()

	<-s.reducer.done

	s.handle.Release()
	slog.Debug("bridge: session closed")
	return nil
}
