package mediabridge

import "errors"

// Public API errors - stable contract
var (
	// ErrSessionClosed is returned by operations on a session whose teardown
	// has already begun.
	ErrSessionClosed = errors.New("mediabridge: session is closed")

	// ErrNilHandle is returned when a session is constructed without an
	// engine handle.
	ErrNilHandle = errors.New("mediabridge: nil engine handle")

	// ErrParseTimeout is returned when a metadata parse request completed
	// with a timeout status reported by the engine.
	ErrParseTimeout = errors.New("mediabridge: metadata parse timed out")

	// ErrParseFailed is returned when a metadata parse request completed
	// with a failure status other than timeout.
	ErrParseFailed = errors.New("mediabridge: metadata parse failed")

	// ErrThumbnailTimeout is returned when a thumbnail request completed
	// with a timeout status reported by the engine.
	ErrThumbnailTimeout = errors.New("mediabridge: thumbnail generation timed out")

	// ErrThumbnailEmpty is returned when a thumbnail request completed
	// without a usable image. Distinct from ErrThumbnailTimeout.
	ErrThumbnailEmpty = errors.New("mediabridge: thumbnail completion carried no image")
)
