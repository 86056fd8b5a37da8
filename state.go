package mediabridge

import (
	"sync"
	"time"
)

// Phase is the mutually exclusive top-level playback state.
type Phase int

const (
	// PhaseIdle indicates no media is loaded, or media was just reloaded.
	PhaseIdle Phase = iota

	// PhaseOpening indicates the engine is opening media.
	PhaseOpening

	// PhaseBuffering indicates pre-roll buffering. Only surfaced before the
	// current load first reaches PhasePlaying; later buffer-fill events are
	// telemetry and never thrash the phase.
	PhaseBuffering

	// PhasePlaying indicates active playback.
	PhasePlaying

	// PhasePaused indicates playback is paused and resumable.
	PhasePaused

	// PhaseStopping indicates the engine is winding playback down.
	PhaseStopping

	// PhaseStopped indicates playback ended; elapsed time and position are
	// reset to zero on entry.
	PhaseStopped

	// PhaseError is terminal for the session until new media is loaded.
	PhaseError
)

// String returns a human-readable label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseOpening:
		return "opening"
	case PhaseBuffering:
		return "buffering"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseStopping:
		return "stopping"
	case PhaseStopped:
		return "stopped"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// PlaybackState is the continuously updated snapshot of one session's
// playback. Values are folded from the event stream by the session's
// reducer, the single writer; external callers only ever see copies.
type PlaybackState struct {
	Phase Phase

	// Elapsed is the playback time reported by the engine.
	Elapsed time.Duration

	// PositionFraction is the playback position as a 0.0-1.0 fraction.
	PositionFraction float64

	// TotalDuration is the media duration; meaningful only once
	// DurationKnown is true.
	TotalDuration time.Duration
	DurationKnown bool

	Seekable bool
	Pausable bool

	// BufferingFraction is the latest buffer fill as a 0.0-1.0 fraction.
	// Unlike Phase, it keeps updating after playback has started.
	BufferingFraction float64

	Volume float64
	Muted  bool

	Title   int
	Chapter int

	Recording bool

	AudioTracks    []Track
	VideoTracks    []Track
	SubtitleTracks []Track
}

// reducer folds the ordered event stream of one session into its playback
// state. It is the single authoritative consumer of its subscription: apply
// runs on exactly one goroutine, strictly in arrival order, and never
// reorders or coalesces transitions. Malformed sequences (a time update
// before any state change) are applied to their fields without cross-field
// validation; the reducer never fails.
type reducer struct {
	handle Handle

	mu    sync.RWMutex
	state PlaybackState

	// startedPlaying is set once the current load reaches PhasePlaying and
	// cleared on media change; it gates buffering phase visibility.
	startedPlaying bool

	done chan struct{}
}

func newReducer(h Handle) *reducer {
	return &reducer{
		handle: h,
		done:   make(chan struct{}),
	}
}

// run drains the reducer's subscription until the session closes it.
func (r *reducer) run(sub *Subscription) {
	defer close(r.done)
	for ev := range sub.Events() {
		r.apply(ev)
	}
}

// Snapshot returns a copy of the current state. Track slices are copied so
// callers can hold the snapshot across further mutations.
func (r *reducer) Snapshot() PlaybackState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.state
	out.AudioTracks = append([]Track(nil), r.state.AudioTracks...)
	out.VideoTracks = append([]Track(nil), r.state.VideoTracks...)
	out.SubtitleTracks = append([]Track(nil), r.state.SubtitleTracks...)
	return out
}

// reset returns the state to its zero/idle default, used when new media is
// loaded into a session (including reload out of the error phase).
func (r *reducer) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = PlaybackState{}
	r.startedPlaying = false
}

// apply folds one event into the state.
func (r *reducer) apply(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e := ev.(type) {
	case PhaseChanged:
		r.applyPhase(e.Phase)
	case TimeChanged:
		r.state.Elapsed = e.Elapsed
	case PositionChanged:
		r.state.PositionFraction = e.Fraction
	case DurationChanged:
		// May arrive multiple times; last write wins.
		r.state.TotalDuration = e.Duration
		r.state.DurationKnown = true
	case SeekableChanged:
		r.state.Seekable = e.Seekable
	case PausableChanged:
		r.state.Pausable = e.Pausable
	case BufferingChanged:
		r.state.BufferingFraction = e.Fraction
		// The phase write shares applyPhase's guards: never out of the
		// terminal error phase, never after playback started.
		r.applyPhase(PhaseBuffering)
	case TracksDirty:
		r.refreshTracks()
	case MediaChanged:
		r.startedPlaying = false
		r.refreshTracks()
	case VolumeChanged:
		r.state.Volume = e.Volume
	case MuteChanged:
		r.state.Muted = e.Muted
	case TitleChanged:
		r.state.Title = e.Title
	case ChapterChanged:
		r.state.Chapter = e.Chapter
	case RecordingChanged:
		r.state.Recording = e.Recording
	case EngineError:
		// Fatal engine error overrides whatever was in flight.
		r.state.Phase = PhaseError
	default:
		// Program and snapshot events pass through to subscribers without
		// a state fold.
	}
}

func (r *reducer) applyPhase(p Phase) {
	// The error phase is terminal until new media resets the reducer.
	if r.state.Phase == PhaseError {
		return
	}

	switch p {
	case PhaseBuffering:
		// Post-playback buffering transitions are telemetry, not phase.
		if r.startedPlaying {
			return
		}
	case PhasePlaying:
		r.startedPlaying = true
	case PhaseStopped:
		// Only the terminal stopped state resets progress; stopping does
		// not.
		r.state.Elapsed = 0
		r.state.PositionFraction = 0
	}
	r.state.Phase = p
}

// refreshTracks re-queries the handle's track lists synchronously. Both the
// dirty signal and a media swap invalidate all three lists, so the refresh
// is always full.
func (r *reducer) refreshTracks() {
	r.state.AudioTracks = r.handle.Tracks(TrackAudio)
	r.state.VideoTracks = r.handle.Tracks(TrackVideo)
	r.state.SubtitleTracks = r.handle.Tracks(TrackSubtitle)
}
