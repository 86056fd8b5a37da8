package mediabridge

import "time"

// EventKind identifies a class of raw engine event. The set mirrors the
// engine's own event enumeration; the mapper decides which kinds have a
// language-level representation.
type EventKind int

const (
	EventStateChanged EventKind = iota
	EventMediaChanged
	EventBufferingChanged
	EventTimeChanged
	EventPositionChanged
	EventLengthChanged
	EventSeekableChanged
	EventPausableChanged
	EventTrackAdded
	EventTrackDeleted
	EventTrackUpdated
	EventTitleChanged
	EventChapterChanged
	EventVolumeChanged
	EventMuteChanged
	EventRecordingChanged
	EventSnapshotTaken
	EventProgramAdded
	EventProgramDeleted
	EventProgramSelected
	EventProgramUpdated
	EventEncounteredError
	// EventScrambledChanged has no language-level representation and is
	// dropped by the mapper. It stays attached so the drop path is exercised
	// against a real engine, not just in tests.
	EventScrambledChanged
	EventParseCompleted
	EventThumbnailCompleted
)

// NativeState is the engine's playback state code as carried in a
// state-changed event. Values follow the engine's enumeration.
type NativeState int

const (
	StateNothing NativeState = iota
	StateOpening
	StateBuffering
	StatePlaying
	StatePaused
	StateStopping
	StateStopped
	StateError
)

// CompletionStatus is the engine's status code for one-shot request
// completions (parse, thumbnail).
type CompletionStatus int

const (
	StatusSkipped CompletionStatus = iota + 1
	StatusFailed
	StatusTimedOut
	StatusDone
)

// TrackKind identifies an elementary stream category.
type TrackKind int

const (
	TrackAudio TrackKind = iota
	TrackVideo
	TrackSubtitle
)

// String returns a human-readable label for the track kind.
func (k TrackKind) String() string {
	switch k {
	case TrackAudio:
		return "audio"
	case TrackVideo:
		return "video"
	case TrackSubtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// NativeEvent is the raw engine event record as delivered by the engine's
// event manager. It is a flat tagged union: Kind selects which payload
// fields are meaningful. All fields carry native units (milliseconds,
// 0-100 buffering scale, integer flags); unit normalization happens in the
// mapper, never downstream.
type NativeEvent struct {
	Kind EventKind

	State      NativeState // EventStateChanged
	TimeMS     int64       // EventTimeChanged
	Position   float64     // EventPositionChanged, 0.0-1.0
	DurationMS int64       // EventLengthChanged
	Buffering  float64     // EventBufferingChanged, 0-100
	Flag       int         // seekable/pausable/mute/recording, 0 or 1

	TrackKind TrackKind // track events
	TrackID   string

	Title     int
	Chapter   int
	Volume    float64
	ProgramID int

	Status CompletionStatus // parse/thumbnail completion
	Image  []byte           // thumbnail completion payload
	Path   string           // snapshot/recording path

	Message string // EventEncounteredError description
}

// EventHandler receives raw engine events. Handlers are invoked on a thread
// owned by the engine; they must not block and must not assume any
// particular goroutine.
type EventHandler func(NativeEvent)

// ListenerToken identifies one attachment on an EventManager. The manager
// retains the handler once at Attach and releases it exactly once at Detach;
// a token must not be detached twice.
type ListenerToken uint64

// EventManager is the engine's per-handle event registration surface.
//
// Implementations must guarantee:
//   - Attach never fails (mirrors the engine contract)
//   - Detach is unreachable after the handle is released; the session
//     enforces detach-before-release ordering, not the manager
//   - handlers for one handle are invoked serially in emission order
type EventManager interface {
	Attach(kind EventKind, handler EventHandler) ListenerToken
	Detach(token ListenerToken)
}

// Track describes one elementary stream as reported by the engine.
type Track struct {
	ID          string
	Kind        TrackKind
	Codec       string
	Language    string
	Description string
}

// Metadata is the record produced by a completed metadata parse.
type Metadata struct {
	Title       string
	Artist      string
	Album       string
	Genre       string
	ArtworkURL  string
	TrackNumber int
}

// ParseOptions controls a metadata parse request.
type ParseOptions struct {
	// Network allows the engine to fetch remote resources while parsing.
	Network bool
	// Timeout is forwarded to the engine; on expiry the completion event
	// carries StatusTimedOut.
	Timeout time.Duration
}

// ThumbnailOptions controls a thumbnail generation request.
type ThumbnailOptions struct {
	// Position is the media position to snapshot, as a 0.0-1.0 fraction.
	Position float64
	Width    uint
	Height   uint
	// Timeout is forwarded to the engine; on expiry the completion event
	// carries StatusTimedOut.
	Timeout time.Duration
}

// Thumbnail is the image produced by a completed thumbnail request.
type Thumbnail struct {
	Data []byte
}

// Handle is the opaque engine-owned media session this module adapts.
//
// The handle and its event manager are exclusively owned by the
// mediabridge.Session that wraps them. No method may be called after
// Release; the session's teardown ordering guarantees that structurally.
type Handle interface {
	// Events returns the handle's event manager.
	Events() EventManager

	// Open loads new media into the handle. Errors are issue-time
	// rejections; asynchronous failures arrive as engine events.
	Open(target string) error

	// Play, Pause and Stop are imperative control calls translated
	// directly to the engine.
	Play() error
	Pause() error
	Stop() error

	// RequestParse starts an asynchronous metadata parse. A non-nil error
	// is an immediate rejection; otherwise exactly one EventParseCompleted
	// follows, even after StopParse.
	RequestParse(opts ParseOptions) error

	// StopParse aborts an in-flight parse request, best effort. The
	// completion event still fires, carrying an aborted/timeout status.
	StopParse()

	// RequestThumbnail starts asynchronous thumbnail generation, with the
	// same completion contract as RequestParse.
	RequestThumbnail(opts ThumbnailOptions) error

	// StopThumbnail aborts an in-flight thumbnail request, best effort.
	StopThumbnail()

	// Tracks synchronously queries the current track list for one kind.
	Tracks(kind TrackKind) []Track

	// Metadata synchronously queries the parsed metadata record.
	Metadata() Metadata

	// Release returns the handle to the engine. The session calls this
	// exactly once, strictly after every listener has been detached.
	Release()
}
