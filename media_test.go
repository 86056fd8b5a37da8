package mediabridge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visiona/mediabridge"
	"github.com/visiona/mediabridge/internal/enginemock"
)

func TestParseMetadataSuccess(t *testing.T) {
	eng := enginemock.New()
	meta := mediabridge.Metadata{Title: "Big Buck Bunny", Artist: "Blender", TrackNumber: 1}
	eng.SetMetadata(meta)
	eng.OnRequestParse = func() {
		eng.Emit(enginemock.ParseCompletion(mediabridge.StatusDone))
	}

	session, err := mediabridge.NewSession(eng)
	require.NoError(t, err)
	defer session.Close()

	got, err := session.ParseMetadata(context.Background(), mediabridge.ParseOptions{Network: true})
	require.NoError(t, err)
	assert.Equal(t, meta, got)
	assert.Equal(t, 0, eng.StopParseCalls())
}

// TestParseFailureTaxonomy verifies a timeout completion is distinguishable
// from a generic failure completion.
func TestParseFailureTaxonomy(t *testing.T) {
	cases := []struct {
		name    string
		status  mediabridge.CompletionStatus
		want    error
		notWant error
	}{
		{"timeout status", mediabridge.StatusTimedOut, mediabridge.ErrParseTimeout, mediabridge.ErrParseFailed},
		{"failed status", mediabridge.StatusFailed, mediabridge.ErrParseFailed, mediabridge.ErrParseTimeout},
		{"skipped status", mediabridge.StatusSkipped, mediabridge.ErrParseFailed, mediabridge.ErrParseTimeout},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eng := enginemock.New()
			eng.OnRequestParse = func() {
				eng.Emit(enginemock.ParseCompletion(tc.status))
			}

			session, err := mediabridge.NewSession(eng)
			require.NoError(t, err)
			defer session.Close()

			_, err = session.ParseMetadata(context.Background(), mediabridge.ParseOptions{})
			require.ErrorIs(t, err, tc.want)
			require.NotErrorIs(t, err, tc.notWant)
		})
	}
}

// TestParseImmediateRejection verifies an issue-time rejection resolves at
// once with the native error and leaves no completion listener behind.
func TestParseImmediateRejection(t *testing.T) {
	eng := enginemock.New()
	rejection := errors.New("no media loaded")
	eng.FailParse(rejection)

	session, err := mediabridge.NewSession(eng)
	require.NoError(t, err)
	defer session.Close()

	baseline := eng.AttachedListeners()

	_, err = session.ParseMetadata(context.Background(), mediabridge.ParseOptions{})
	require.ErrorIs(t, err, rejection)
	assert.Equal(t, baseline, eng.AttachedListeners(), "rejection must not leave a listener attached")
}

// TestParseCancelledResolvesViaCompletion verifies cancelling the context
// forwards the native stop but the result still comes from the engine's
// post-stop completion event.
func TestParseCancelledResolvesViaCompletion(t *testing.T) {
	eng := enginemock.New()
	started := make(chan struct{})
	eng.OnRequestParse = func() { close(started) }
	eng.OnStopParse = func() {
		eng.Emit(enginemock.ParseCompletion(mediabridge.StatusTimedOut))
	}

	session, err := mediabridge.NewSession(eng)
	require.NoError(t, err)
	defer session.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-started
		cancel()
	}()

	_, err = session.ParseMetadata(ctx, mediabridge.ParseOptions{})
	require.ErrorIs(t, err, mediabridge.ErrParseTimeout)
	assert.Equal(t, 1, eng.StopParseCalls())
}

func TestGenerateThumbnailSuccess(t *testing.T) {
	eng := enginemock.New()
	image := []byte{0x89, 0x50, 0x4e, 0x47}
	eng.OnRequestThumbnail = func() {
		eng.Emit(enginemock.ThumbnailCompletion(mediabridge.StatusDone, image))
	}

	session, err := mediabridge.NewSession(eng)
	require.NoError(t, err)
	defer session.Close()

	thumb, err := session.GenerateThumbnail(context.Background(), mediabridge.ThumbnailOptions{Position: 0.5, Width: 320, Height: 180})
	require.NoError(t, err)
	assert.Equal(t, image, thumb.Data)
}

// TestThumbnailEmptyDistinctFromTimeout verifies the two thumbnail failure
// modes carry different sentinels.
func TestThumbnailEmptyDistinctFromTimeout(t *testing.T) {
	t.Run("empty image", func(t *testing.T) {
		eng := enginemock.New()
		eng.OnRequestThumbnail = func() {
			eng.Emit(enginemock.ThumbnailCompletion(mediabridge.StatusDone, nil))
		}

		session, err := mediabridge.NewSession(eng)
		require.NoError(t, err)
		defer session.Close()

		_, err = session.GenerateThumbnail(context.Background(), mediabridge.ThumbnailOptions{})
		require.ErrorIs(t, err, mediabridge.ErrThumbnailEmpty)
		require.NotErrorIs(t, err, mediabridge.ErrThumbnailTimeout)
	})

	t.Run("timeout", func(t *testing.T) {
		eng := enginemock.New()
		eng.OnRequestThumbnail = func() {
			eng.Emit(enginemock.ThumbnailCompletion(mediabridge.StatusTimedOut, nil))
		}

		session, err := mediabridge.NewSession(eng)
		require.NoError(t, err)
		defer session.Close()

		_, err = session.GenerateThumbnail(context.Background(), mediabridge.ThumbnailOptions{})
		require.ErrorIs(t, err, mediabridge.ErrThumbnailTimeout)
		require.NotErrorIs(t, err, mediabridge.ErrThumbnailEmpty)
	})
}

func TestThumbnailImmediateRejection(t *testing.T) {
	eng := enginemock.New()
	rejection := errors.New("no video track")
	eng.FailThumbnail(rejection)

	session, err := mediabridge.NewSession(eng)
	require.NoError(t, err)
	defer session.Close()

	_, err = session.GenerateThumbnail(context.Background(), mediabridge.ThumbnailOptions{})
	require.ErrorIs(t, err, rejection)
}
