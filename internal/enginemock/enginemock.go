// Package enginemock provides a scripted in-process engine implementing the
// mediabridge native boundary. Tests and the probe tool drive it by emitting
// raw event records; it checks the ownership contract by panicking on any
// use after Release.
package enginemock

import (
	"fmt"
	"sync"

	"github.com/visiona/mediabridge"
)

// Engine is a scriptable stand-in for an engine-owned media session. It
// implements both mediabridge.Handle and mediabridge.EventManager.
//
// Emit dispatches synchronously on the calling goroutine, which stands in
// for the engine's internal thread: run it from a separate goroutine to
// model true engine-thread delivery, or inline for deterministic tests.
type Engine struct {
	mu        sync.Mutex
	listeners map[mediabridge.EventKind]map[mediabridge.ListenerToken]mediabridge.EventHandler
	kinds     map[mediabridge.ListenerToken]mediabridge.EventKind
	nextToken mediabridge.ListenerToken
	released  bool

	tracks map[mediabridge.TrackKind][]mediabridge.Track
	meta   mediabridge.Metadata

	openErr  error
	parseErr error
	thumbErr error

	attachCalls        int
	detachCalls        int
	openCalls          int
	playCalls          int
	pauseCalls         int
	stopCalls          int
	stopParseCalls     int
	stopThumbnailCalls int
	parseInFlight      bool
	thumbnailInFlight  bool

	// OnStopParse and OnStopThumbnail run after the corresponding stop call
	// is recorded, outside the engine lock. Assign them before first use to
	// model an engine that emits an aborted completion after a stop.
	OnStopParse     func()
	OnStopThumbnail func()

	// OnRequestParse and OnRequestThumbnail run after an accepted request is
	// recorded, outside the engine lock. Assign them before first use to
	// script the completion event.
	OnRequestParse     func()
	OnRequestThumbnail func()
}

// New creates an idle mock engine.
func New() *Engine {
	return &Engine{
		listeners: make(map[mediabridge.EventKind]map[mediabridge.ListenerToken]mediabridge.EventHandler),
		kinds:     make(map[mediabridge.ListenerToken]mediabridge.EventKind),
		tracks:    make(map[mediabridge.TrackKind][]mediabridge.Track),
	}
}

func (e *Engine) checkLive(op string) {
	if e.released {
		panic(fmt.Sprintf("enginemock: %s after Release", op))
	}
}

// Events implements mediabridge.Handle.
func (e *Engine) Events() mediabridge.EventManager { return e }

// Attach implements mediabridge.EventManager.
func (e *Engine) Attach(kind mediabridge.EventKind, handler mediabridge.EventHandler) mediabridge.ListenerToken {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkLive("Attach")

	e.nextToken++
	token := e.nextToken
	if e.listeners[kind] == nil {
		e.listeners[kind] = make(map[mediabridge.ListenerToken]mediabridge.EventHandler)
	}
	e.listeners[kind][token] = handler
	e.kinds[token] = kind
	e.attachCalls++
	return token
}

// Detach implements mediabridge.EventManager. Detaching an unknown token
// panics: the bridge contract is retain-once, release-exactly-once.
func (e *Engine) Detach(token mediabridge.ListenerToken) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkLive("Detach")

	kind, ok := e.kinds[token]
	if !ok {
		panic("enginemock: Detach of unknown or already-detached token")
	}
	delete(e.kinds, token)
	delete(e.listeners[kind], token)
	e.detachCalls++
}

// Emit delivers one raw record to every listener attached for its kind.
// Handlers run on the calling goroutine, serially, outside the engine lock.
func (e *Engine) Emit(rec mediabridge.NativeEvent) {
	e.mu.Lock()
	e.checkLive("Emit")
	handlers := make([]mediabridge.EventHandler, 0, len(e.listeners[rec.Kind]))
	for _, h := range e.listeners[rec.Kind] {
		handlers = append(handlers, h)
	}
	switch rec.Kind {
	case mediabridge.EventParseCompleted:
		e.parseInFlight = false
	case mediabridge.EventThumbnailCompleted:
		e.thumbnailInFlight = false
	}
	e.mu.Unlock()

	for _, h := range handlers {
		h(rec)
	}
}

// Open implements mediabridge.Handle.
func (e *Engine) Open(string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkLive("Open")
	e.openCalls++
	return e.openErr
}

// Play implements mediabridge.Handle.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkLive("Play")
	e.playCalls++
	return nil
}

// Pause implements mediabridge.Handle.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkLive("Pause")
	e.pauseCalls++
	return nil
}

// Stop implements mediabridge.Handle.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkLive("Stop")
	e.stopCalls++
	return nil
}

// RequestParse implements mediabridge.Handle.
func (e *Engine) RequestParse(mediabridge.ParseOptions) error {
	e.mu.Lock()
	e.checkLive("RequestParse")
	if e.parseErr != nil {
		defer e.mu.Unlock()
		return e.parseErr
	}
	e.parseInFlight = true
	hook := e.OnRequestParse
	e.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

// StopParse implements mediabridge.Handle.
func (e *Engine) StopParse() {
	e.mu.Lock()
	e.checkLive("StopParse")
	e.stopParseCalls++
	hook := e.OnStopParse
	inFlight := e.parseInFlight
	e.mu.Unlock()

	if hook != nil && inFlight {
		hook()
	}
}

// RequestThumbnail implements mediabridge.Handle.
func (e *Engine) RequestThumbnail(mediabridge.ThumbnailOptions) error {
	e.mu.Lock()
	e.checkLive("RequestThumbnail")
	if e.thumbErr != nil {
		defer e.mu.Unlock()
		return e.thumbErr
	}
	e.thumbnailInFlight = true
	hook := e.OnRequestThumbnail
	e.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

// StopThumbnail implements mediabridge.Handle.
func (e *Engine) StopThumbnail() {
	e.mu.Lock()
	e.checkLive("StopThumbnail")
	e.stopThumbnailCalls++
	hook := e.OnStopThumbnail
	inFlight := e.thumbnailInFlight
	e.mu.Unlock()

	if hook != nil && inFlight {
		hook()
	}
}

// Tracks implements mediabridge.Handle.
func (e *Engine) Tracks(kind mediabridge.TrackKind) []mediabridge.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkLive("Tracks")
	return append([]mediabridge.Track(nil), e.tracks[kind]...)
}

// Metadata implements mediabridge.Handle.
func (e *Engine) Metadata() mediabridge.Metadata {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkLive("Metadata")
	return e.meta
}

// Release implements mediabridge.Handle. Any further call panics, which is
// how tests catch detach-after-release or query-after-release bugs. Release
// itself panics if listeners are still attached: the bridge must detach
// everything first.
func (e *Engine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkLive("Release")
	if len(e.kinds) != 0 {
		panic(fmt.Sprintf("enginemock: Release with %d listeners still attached", len(e.kinds)))
	}
	e.released = true
}

// SetTracks scripts the track list returned for one kind.
func (e *Engine) SetTracks(kind mediabridge.TrackKind, tracks []mediabridge.Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tracks[kind] = tracks
}

// SetMetadata scripts the metadata record.
func (e *Engine) SetMetadata(meta mediabridge.Metadata) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta = meta
}

// FailOpen makes Open return err.
func (e *Engine) FailOpen(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.openErr = err
}

// FailParse makes RequestParse reject immediately with err.
func (e *Engine) FailParse(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.parseErr = err
}

// FailThumbnail makes RequestThumbnail reject immediately with err.
func (e *Engine) FailThumbnail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.thumbErr = err
}

// AttachedListeners returns the number of currently attached listeners.
func (e *Engine) AttachedListeners() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.kinds)
}

// DetachCalls returns the number of Detach calls so far.
func (e *Engine) DetachCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detachCalls
}

// StopParseCalls returns the number of StopParse calls so far.
func (e *Engine) StopParseCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopParseCalls
}

// StopThumbnailCalls returns the number of StopThumbnail calls so far.
func (e *Engine) StopThumbnailCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopThumbnailCalls
}

// ParseInFlight reports whether a parse request is awaiting completion.
func (e *Engine) ParseInFlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.parseInFlight
}

// Released reports whether the handle has been returned to the engine.
func (e *Engine) Released() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.released
}
