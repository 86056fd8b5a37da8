// Package mediabridge wraps a callback-driven native media engine handle
// behind a reactive, cancellation-aware interface.
//
// # Core Philosophy
//
// "Evict the oldest, keep the newest. Freshness > Completeness."
//
// Engine callbacks arrive on a thread the engine owns and must never be
// blocked. Every mapped event is fanned out to all current subscriptions
// with a bounded newest-wins buffer: a stalled consumer loses its oldest
// backlog, never the engine's time.
//
// # Quick Start
//
//	session, err := mediabridge.NewSession(handle)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	// Independent event consumers
//	sub, _ := session.Subscribe()
//	defer sub.Close()
//	go func() {
//	    for ev := range sub.Events() {
//	        // react to mediabridge.PhaseChanged, TimeChanged, ...
//	    }
//	}()
//
//	// Continuously updated snapshot
//	state := session.State()
//	fmt.Println(state.Phase, state.Elapsed)
//
//	// Cancellable one-shot requests
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	meta, err := session.ParseMetadata(ctx, mediabridge.ParseOptions{Network: true})
//
// # Architecture
//
// Raw engine events flow through a single trampoline into the broadcaster,
// which maps them to the closed Event set and fans them out. One internal
// subscription feeds the state reducer, the only writer of the PlaybackState
// snapshot; any number of external subscriptions observe the same stream in
// the same relative order. One-shot requests (metadata parse, thumbnail)
// bypass the broadcaster: each attaches its own single-fire completion
// listener and resolves exactly once.
//
// # Teardown
//
// Session.Close is idempotent and strictly ordered: all native listeners
// are detached and all subscriptions closed first, in-flight one-shot
// requests are nudged with the engine's stop calls and awaited, the reducer
// drains, and only then is the handle released. Nothing in this package
// touches the handle after release.
//
// # Cancellation
//
// Cancelling a one-shot request forwards the engine's stop call but does
// not synthesize a local result: the engine still emits a completion event
// (typically with a timeout status) after a stop, and that event is what
// resolves the call. Cancelling a subscription stops delivery immediately.
//
// # Thread Safety
//
// All exported methods are safe for concurrent use. The raw-event ingestion
// path is safe to call from any thread at any time.
package mediabridge
