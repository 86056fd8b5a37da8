package mediabridge_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/visiona/mediabridge"
	"github.com/visiona/mediabridge/internal/enginemock"
)

// collectEvents drains n events from a subscription or fails on timeout.
func collectEvents(t *testing.T, sub *mediabridge.Subscription, n int) []mediabridge.Event {
	t.Helper()
	out := make([]mediabridge.Event, 0, n)
	for len(out) < n {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				t.Fatalf("subscription closed after %d of %d events", len(out), n)
			}
			out = append(out, ev)
		case <-time.After(2 * time.Second):
			t.Fatalf("timeout after %d of %d events", len(out), n)
		}
	}
	return out
}

// TestSessionEndToEnd drives the canonical playback script through a full
// session: events reach an external subscriber in emission order and the
// state snapshot converges on the expected terminal state.
func TestSessionEndToEnd(t *testing.T) {
	defer goleak.VerifyNone(t)

	eng := enginemock.New()
	audio := []mediabridge.Track{{ID: "a1", Kind: mediabridge.TrackAudio, Codec: "mp4a", Language: "en"}}
	eng.SetTracks(mediabridge.TrackAudio, audio)

	session, err := mediabridge.NewSession(eng)
	require.NoError(t, err)

	sub, err := session.Subscribe()
	require.NoError(t, err)

	// The script runs on its own goroutine, standing in for the engine
	// thread.
	go func() {
		eng.Emit(enginemock.StateEvent(mediabridge.StateOpening))
		eng.Emit(enginemock.BufferingEvent(30))
		eng.Emit(enginemock.LengthEvent(90000))
		eng.Emit(enginemock.StateEvent(mediabridge.StatePlaying))
		eng.Emit(enginemock.TimeEvent(1500))
		eng.Emit(enginemock.BufferingEvent(60))
		eng.Emit(mediabridge.NativeEvent{Kind: mediabridge.EventTrackAdded, TrackKind: mediabridge.TrackAudio})
		eng.Emit(enginemock.StateEvent(mediabridge.StateStopped))
	}()

	want := []mediabridge.Event{
		mediabridge.PhaseChanged{Phase: mediabridge.PhaseOpening},
		mediabridge.BufferingChanged{Fraction: 0.3},
		mediabridge.DurationChanged{Duration: 90 * time.Second},
		mediabridge.PhaseChanged{Phase: mediabridge.PhasePlaying},
		mediabridge.TimeChanged{Elapsed: 1500 * time.Millisecond},
		mediabridge.BufferingChanged{Fraction: 0.6},
		mediabridge.TracksDirty{Kind: mediabridge.TrackAudio},
		mediabridge.PhaseChanged{Phase: mediabridge.PhaseStopped},
	}
	got := collectEvents(t, sub, len(want))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event stream mismatch (-want +got):\n%s", diff)
	}

	require.Eventually(t, func() bool {
		return session.State().Phase == mediabridge.PhaseStopped
	}, 2*time.Second, 10*time.Millisecond)

	wantState := mediabridge.PlaybackState{
		Phase:             mediabridge.PhaseStopped,
		TotalDuration:     90 * time.Second,
		DurationKnown:     true,
		BufferingFraction: 0.6,
		AudioTracks:       audio,
	}
	if diff := cmp.Diff(wantState, session.State(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("final state mismatch (-want +got):\n%s", diff)
	}

	sub.Close()
	require.NoError(t, session.Close())
	assert.True(t, eng.Released())
	assert.Equal(t, 0, eng.AttachedListeners())
}

// TestCloseIdempotentAndConcurrent verifies exactly one teardown happens no
// matter how many goroutines race Close. The mock panics on a double detach
// or double release, so a violation fails loudly.
func TestCloseIdempotentAndConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	eng := enginemock.New()
	session, err := mediabridge.NewSession(eng)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, session.Close())
		}()
	}
	wg.Wait()
	require.NoError(t, session.Close())

	assert.True(t, eng.Released())
	assert.Equal(t, 0, eng.AttachedListeners())
}

// TestOperationsRejectedAfterClose verifies the lifecycle guard: nothing
// may reach the handle once teardown has begun.
func TestOperationsRejectedAfterClose(t *testing.T) {
	eng := enginemock.New()
	session, err := mediabridge.NewSession(eng)
	require.NoError(t, err)
	require.NoError(t, session.Close())

	assert.ErrorIs(t, session.Load("file:///media.mkv"), mediabridge.ErrSessionClosed)
	assert.ErrorIs(t, session.Play(), mediabridge.ErrSessionClosed)
	assert.ErrorIs(t, session.Pause(), mediabridge.ErrSessionClosed)
	assert.ErrorIs(t, session.Stop(), mediabridge.ErrSessionClosed)

	_, err = session.Subscribe()
	assert.ErrorIs(t, err, mediabridge.ErrSessionClosed)

	_, err = session.ParseMetadata(context.Background(), mediabridge.ParseOptions{})
	assert.ErrorIs(t, err, mediabridge.ErrSessionClosed)

	_, err = session.GenerateThumbnail(context.Background(), mediabridge.ThumbnailOptions{})
	assert.ErrorIs(t, err, mediabridge.ErrSessionClosed)
}

// TestCloseWaitsForPendingOperations verifies teardown nudges an in-flight
// parse with the native stop, waits for its completion to resolve the
// caller, and only then releases the handle.
func TestCloseWaitsForPendingOperations(t *testing.T) {
	defer goleak.VerifyNone(t)

	eng := enginemock.New()
	started := make(chan struct{})
	eng.OnRequestParse = func() { close(started) }
	eng.OnStopParse = func() {
		eng.Emit(enginemock.ParseCompletion(mediabridge.StatusTimedOut))
	}

	session, err := mediabridge.NewSession(eng)
	require.NoError(t, err)

	result := make(chan error, 1)
	go func() {
		_, err := session.ParseMetadata(context.Background(), mediabridge.ParseOptions{})
		result <- err
	}()

	<-started
	require.NoError(t, session.Close())

	select {
	case err := <-result:
		assert.ErrorIs(t, err, mediabridge.ErrParseTimeout)
	case <-time.After(2 * time.Second):
		t.Fatal("pending operation never resolved")
	}

	assert.Equal(t, 1, eng.StopParseCalls())
	assert.True(t, eng.Released())
	assert.Equal(t, 0, eng.AttachedListeners())
}

// TestSubscriptionsFinishOnClose verifies consumers blocked in a range loop
// unblock and terminate when the session closes.
func TestSubscriptionsFinishOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	eng := enginemock.New()
	session, err := mediabridge.NewSession(eng)
	require.NoError(t, err)

	sub, err := session.Subscribe()
	require.NoError(t, err)

	drained := make(chan int, 1)
	go func() {
		n := 0
		for range sub.Events() {
			n++
		}
		drained <- n
	}()

	eng.Emit(enginemock.TimeEvent(1))
	eng.Emit(enginemock.TimeEvent(2))
	require.NoError(t, session.Close())

	select {
	case n := <-drained:
		assert.LessOrEqual(t, n, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer loop never terminated")
	}
}

// TestLoadResetsErrorPhase verifies reload is the way out of the terminal
// error phase.
func TestLoadResetsErrorPhase(t *testing.T) {
	eng := enginemock.New()
	session, err := mediabridge.NewSession(eng)
	require.NoError(t, err)
	defer session.Close()

	eng.Emit(mediabridge.NativeEvent{Kind: mediabridge.EventEncounteredError, Message: "demux failed"})
	require.Eventually(t, func() bool {
		return session.State().Phase == mediabridge.PhaseError
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, session.Load("file:///other.mkv"))
	assert.Equal(t, mediabridge.PhaseIdle, session.State().Phase)
}

func TestNewSessionNilHandle(t *testing.T) {
	_, err := mediabridge.NewSession(nil)
	assert.ErrorIs(t, err, mediabridge.ErrNilHandle)
}
