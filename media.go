package mediabridge

import (
	"context"
	"fmt"
)

// ParseMetadata runs an asynchronous metadata parse against the session's
// handle and blocks until the engine reports completion.
//
// Failure taxonomy:
//   - issue-time rejection: the native error, wrapped, returned immediately
//   - StatusTimedOut at completion: ErrParseTimeout
//   - any other non-done status: ErrParseFailed (wrapping the status)
//
// Cancelling ctx forwards a best-effort StopParse to the engine; the call
// still resolves from the eventual completion event, which then typically
// carries a timeout status. See awaitCompletion.
func (s *Session) ParseMetadata(ctx context.Context, opts ParseOptions) (Metadata, error) {
	if !s.guard.enter() {
		return Metadata{}, ErrSessionClosed
	}
	defer s.guard.leave()

	h := s.handle
	return awaitCompletion(ctx, h.Events(), EventParseCompleted,
		func() error { return h.RequestParse(opts) },
		func(rec NativeEvent) (Metadata, error) {
			switch rec.Status {
			case StatusDone:
				return h.Metadata(), nil
			case StatusTimedOut:
				return Metadata{}, ErrParseTimeout
			default:
				return Metadata{}, fmt.Errorf("%w: status %d", ErrParseFailed, rec.Status)
			}
		},
		h.StopParse,
	)
}

// GenerateThumbnail runs asynchronous thumbnail generation against the
// session's handle and blocks until the engine reports completion.
//
// Failure taxonomy:
//   - issue-time rejection: the native error, wrapped, returned immediately
//   - StatusTimedOut at completion: ErrThumbnailTimeout
//   - completion without a usable image: ErrThumbnailEmpty
//
// Cancellation behaves as in ParseMetadata, forwarding StopThumbnail.
func (s *Session) GenerateThumbnail(ctx context.Context, opts ThumbnailOptions) (Thumbnail, error) {
	if !s.guard.enter() {
		return Thumbnail{}, ErrSessionClosed
	}
	defer s.guard.leave()

	h := s.handle
	return awaitCompletion(ctx, h.Events(), EventThumbnailCompleted,
		func() error { return h.RequestThumbnail(opts) },
		func(rec NativeEvent) (Thumbnail, error) {
			if rec.Status == StatusTimedOut {
				return Thumbnail{}, ErrThumbnailTimeout
			}
			if len(rec.Image) == 0 {
				return Thumbnail{}, ErrThumbnailEmpty
			}
			return Thumbnail{Data: rec.Image}, nil
		},
		h.StopThumbnail,
	)
}
