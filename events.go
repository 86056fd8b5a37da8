package mediabridge

import "time"

// Event is the closed, language-level representation of an engine event.
// All variants are immutable values produced once per raw record by the
// mapper. Type returns a stable lowercase name used for logging and
// telemetry topics.
//
// The set is sealed: only this package can add variants.
type Event interface {
	Type() string
	sealedEvent()
}

// PhaseChanged reports a playback state transition.
type PhaseChanged struct {
	Phase Phase
}

// TimeChanged reports a new elapsed playback time.
type TimeChanged struct {
	Elapsed time.Duration
}

// PositionChanged reports a new playback position as a 0.0-1.0 fraction.
type PositionChanged struct {
	Fraction float64
}

// DurationChanged reports the media duration. May arrive multiple times;
// the latest value wins.
type DurationChanged struct {
	Duration time.Duration
}

// SeekableChanged reports whether the current media accepts seeks.
type SeekableChanged struct {
	Seekable bool
}

// PausableChanged reports whether the current media can be paused.
type PausableChanged struct {
	Pausable bool
}

// TracksDirty signals that the engine's track list changed and must be
// re-queried. The event carries no track data; consumers interested in the
// list ask the session for a fresh snapshot.
type TracksDirty struct {
	Kind TrackKind
}

// MediaChanged signals that new media was swapped into the handle.
type MediaChanged struct{}

// BufferingChanged reports buffer fill as a 0.0-1.0 fraction.
type BufferingChanged struct {
	Fraction float64
}

// VolumeChanged reports the engine volume on its native 0.0-1.0 scale.
type VolumeChanged struct {
	Volume float64
}

// MuteChanged reports the mute flag.
type MuteChanged struct {
	Muted bool
}

// TitleChanged reports the selected title index.
type TitleChanged struct {
	Title int
}

// ChapterChanged reports the selected chapter index.
type ChapterChanged struct {
	Chapter int
}

// RecordingChanged reports recording start/stop. Path is the destination
// file and is only set when recording stops.
type RecordingChanged struct {
	Recording bool
	Path      string
}

// SnapshotTaken reports a completed video snapshot.
type SnapshotTaken struct {
	Path string
}

// ProgramAdded reports a new program in the current media.
type ProgramAdded struct {
	ID int
}

// ProgramDeleted reports a removed program.
type ProgramDeleted struct {
	ID int
}

// ProgramSelected reports a program selection change.
type ProgramSelected struct {
	ID int
}

// ProgramUpdated reports an in-place program update.
type ProgramUpdated struct {
	ID int
}

// EngineError reports a fatal engine-level error. The reducer folds it into
// the terminal error phase; it is never raised as a Go error.
type EngineError struct {
	Message string
}

func (PhaseChanged) Type() string { return "phase_changed" }
func (TimeChanged) Type() string { return "time_changed" }
func (PositionChanged) Type() string { return "position_changed" }
func (DurationChanged) Type() string { return "duration_changed" }
func (SeekableChanged) Type() string { return "seekable_changed" }
func (PausableChanged) Type() string { return "pausable_changed" }
func (TracksDirty) Type() string { return "tracks_dirty" }
func (MediaChanged) Type() string { return "media_changed" }
func (BufferingChanged) Type() string { return "buffering_changed" }
func (VolumeChanged) Type() string { return "volume_changed" }
func (MuteChanged) Type() string { return "mute_changed" }
func (TitleChanged) Type() string { return "title_changed" }
func (ChapterChanged) Type() string { return "chapter_changed" }
func (RecordingChanged) Type() string { return "recording_changed" }
func (SnapshotTaken) Type() string { return "snapshot_taken" }
func (ProgramAdded) Type() string { return "program_added" }
func (ProgramDeleted) Type() string { return "program_deleted" }
func (ProgramSelected) Type() string { return "program_selected" }
func (ProgramUpdated) Type() string { return "program_updated" }
func (EngineError) Type() string { return "engine_error" }

func (PhaseChanged) sealedEvent() {}
func (TimeChanged) sealedEvent() {}
func (PositionChanged) sealedEvent() {}
func (DurationChanged) sealedEvent() {}
func (SeekableChanged) sealedEvent() {}
func (PausableChanged) sealedEvent() {}
func (TracksDirty) sealedEvent() {}
func (MediaChanged) sealedEvent() {}
func (BufferingChanged) sealedEvent() {}
func (VolumeChanged) sealedEvent() {}
func (MuteChanged) sealedEvent() {}
func (TitleChanged) sealedEvent() {}
func (ChapterChanged) sealedEvent() {}
func (RecordingChanged) sealedEvent() {}
func (SnapshotTaken) sealedEvent() {}
func (ProgramAdded) sealedEvent() {}
func (ProgramDeleted) sealedEvent() {}
func (ProgramSelected) sealedEvent() {}
func (ProgramUpdated) sealedEvent() {}
func (EngineError) sealedEvent() {}
