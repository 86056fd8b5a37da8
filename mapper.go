package mediabridge

import "time"

// mapNative translates a raw engine record into its language-level event.
// It is pure and total over every kind the engine can emit: kinds with no
// representation return ok=false and are dropped by the caller, never
// surfaced as errors.
//
// All unit normalization happens here so no downstream component needs
// native-unit knowledge: milliseconds become time.Duration, the 0-100
// buffering scale becomes a 0.0-1.0 fraction, integer flags become bools.
// A malformed payload inside a known kind degrades to a zero field, it does
// not fail.
func mapNative(rec NativeEvent) (Event, bool) {
	switch rec.Kind {
	case EventStateChanged:
		return PhaseChanged{Phase: phaseFromNative(rec.State)}, true
	case EventMediaChanged:
		return MediaChanged{}, true
	case EventBufferingChanged:
		return BufferingChanged{Fraction: clampFraction(rec.Buffering / 100.0)}, true
	case EventTimeChanged:
		return TimeChanged{Elapsed: time.Duration(rec.TimeMS) * time.Millisecond}, true
	case EventPositionChanged:
		return PositionChanged{Fraction: clampFraction(rec.Position)}, true
	case EventLengthChanged:
		return DurationChanged{Duration: time.Duration(rec.DurationMS) * time.Millisecond}, true
	case EventSeekableChanged:
		return SeekableChanged{Seekable: rec.Flag != 0}, true
	case EventPausableChanged:
		return PausableChanged{Pausable: rec.Flag != 0}, true
	case EventTrackAdded, EventTrackDeleted, EventTrackUpdated:
		return TracksDirty{Kind: rec.TrackKind}, true
	case EventTitleChanged:
		return TitleChanged{Title: rec.Title}, true
	case EventChapterChanged:
		return ChapterChanged{Chapter: rec.Chapter}, true
	case EventVolumeChanged:
		return VolumeChanged{Volume: rec.Volume}, true
	case EventMuteChanged:
		return MuteChanged{Muted: rec.Flag != 0}, true
	case EventRecordingChanged:
		return RecordingChanged{Recording: rec.Flag != 0, Path: rec.Path}, true
	case EventSnapshotTaken:
		return SnapshotTaken{Path: rec.Path}, true
	case EventProgramAdded:
		return ProgramAdded{ID: rec.ProgramID}, true
	case EventProgramDeleted:
		return ProgramDeleted{ID: rec.ProgramID}, true
	case EventProgramSelected:
		return ProgramSelected{ID: rec.ProgramID}, true
	case EventProgramUpdated:
		return ProgramUpdated{ID: rec.ProgramID}, true
	case EventEncounteredError:
		return EngineError{Message: rec.Message}, true
	default:
		// Completion events belong to one-shot operations, scrambled and
		// any future kinds have no representation here.
		return nil, false
	}
}

// phaseFromNative maps the engine state code to the public phase. Unknown
// codes degrade to PhaseIdle rather than failing.
func phaseFromNative(s NativeState) Phase {
	switch s {
	case StateNothing:
		return PhaseIdle
	case StateOpening:
		return PhaseOpening
	case StateBuffering:
		return PhaseBuffering
	case StatePlaying:
		return PhasePlaying
	case StatePaused:
		return PhasePaused
	case StateStopping:
		return PhaseStopping
	case StateStopped:
		return PhaseStopped
	case StateError:
		return PhaseError
	default:
		return PhaseIdle
	}
}

func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
