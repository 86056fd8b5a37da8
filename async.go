package mediabridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// completion carries the translated outcome of a one-shot request.
type completion[T any] struct {
	value T
	err   error
}

// awaitCompletion bridges a one-shot native request into a blocking,
// cancellation-aware call.
//
// The pending operation is an explicit little state machine: pending (no
// callback seen), resumed (first matching callback won the CAS), detached
// (listener removed). The single-resume guard is enforced here, not by
// trusting the engine to call back exactly once.
//
// Sequence:
//  1. attach a single-fire listener for kind
//  2. invoke issue; an immediate rejection detaches and returns at once
//  3. block until the first matching callback fires, translate it via
//     complete, detach, and return
//
// Cancellation: if ctx is cancelled mid-flight, abort is invoked as a
// best-effort native stop for the request, but the call still resolves only
// when the real completion callback arrives. The engine emits a completion
// event, carrying a timeout/aborted status, after a stop request; there is
// deliberately no synthesized local cancellation result.
func awaitCompletion[T any](
	ctx context.Context,
	em EventManager,
	kind EventKind,
	issue func() error,
	complete func(NativeEvent) (T, error),
	abort func(),
) (T, error) {
	var zero T

	// Buffered so the engine-thread trampoline never blocks on a caller
	// that has not reached the receive yet.
	resultCh := make(chan completion[T], 1)
	var resumed atomic.Bool

	token := em.Attach(kind, func(rec NativeEvent) {
		// One-shot: a second callback for the same kind loses the CAS and
		// never reaches this operation again.
		if !resumed.CompareAndSwap(false, true) {
			return
		}
		value, err := complete(rec)
		resultCh <- completion[T]{value: value, err: err}
	})

	if err := issue(); err != nil {
		em.Detach(token)
		return zero, fmt.Errorf("issue request: %w", err)
	}

	select {
	case out := <-resultCh:
		em.Detach(token)
		return out.value, out.err

	case <-ctx.Done():
		abort()
		slog.Debug("bridge: operation cancelled, awaiting native completion",
			"kind", kind,
			"cause", ctx.Err(),
		)
		// Resumption is still driven by the real completion signal.
		out := <-resultCh
		em.Detach(token)
		return out.value, out.err
	}
}
