package enginemock

import "github.com/visiona/mediabridge"

// Record constructors for the common scripting cases. Tests that need the
// full payload build mediabridge.NativeEvent directly.

// StateEvent is a state-changed record.
func StateEvent(s mediabridge.NativeState) mediabridge.NativeEvent {
	return mediabridge.NativeEvent{Kind: mediabridge.EventStateChanged, State: s}
}

// TimeEvent is a time-changed record, in engine milliseconds.
func TimeEvent(ms int64) mediabridge.NativeEvent {
	return mediabridge.NativeEvent{Kind: mediabridge.EventTimeChanged, TimeMS: ms}
}

// PositionEvent is a position-changed record, 0.0-1.0.
func PositionEvent(fraction float64) mediabridge.NativeEvent {
	return mediabridge.NativeEvent{Kind: mediabridge.EventPositionChanged, Position: fraction}
}

// BufferingEvent is a buffering record on the engine's 0-100 scale.
func BufferingEvent(pct float64) mediabridge.NativeEvent {
	return mediabridge.NativeEvent{Kind: mediabridge.EventBufferingChanged, Buffering: pct}
}

// LengthEvent is a duration-known record, in engine milliseconds.
func LengthEvent(ms int64) mediabridge.NativeEvent {
	return mediabridge.NativeEvent{Kind: mediabridge.EventLengthChanged, DurationMS: ms}
}

// ParseCompletion is a parse completion record.
func ParseCompletion(status mediabridge.CompletionStatus) mediabridge.NativeEvent {
	return mediabridge.NativeEvent{Kind: mediabridge.EventParseCompleted, Status: status}
}

// ThumbnailCompletion is a thumbnail completion record.
func ThumbnailCompletion(status mediabridge.CompletionStatus, image []byte) mediabridge.NativeEvent {
	return mediabridge.NativeEvent{Kind: mediabridge.EventThumbnailCompleted, Status: status, Image: image}
}
