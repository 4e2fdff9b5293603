package mock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/mrytune/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/mrytune/internal/domain"
)

func newTestTransport(t *testing.T) (*Transport, *eventbus.SyncEventBus) {
	t.Helper()
	bus := eventbus.NewSyncEventBus()
	t.Cleanup(func() { _ = bus.Close() })
	return NewTransport(bus), bus
}

func TestTransport_PlayPublishesLoaded(t *testing.T) {
	tr, bus := newTestTransport(t)

	var loaded []domain.TrackLoadedEvent
	bus.Subscribe(domain.EventTrackLoaded, func(e domain.Event) {
		loaded = append(loaded, e.(domain.TrackLoadedEvent))
	})

	src := domain.Source{Ticket: 4, TrackName: "a.mp3", URL: "https://example.com/a.mp3"}
	require.NoError(t, tr.Play(context.Background(), src, domain.TrackInfo{Name: "a.mp3", Title: "A"}))

	assert.Equal(t, domain.StatusPlaying, tr.Status())
	assert.Equal(t, "A", tr.Info().Title)
	require.Len(t, loaded, 1)
	assert.Equal(t, uint64(4), loaded[0].Ticket)
	assert.Equal(t, DefaultDuration, loaded[0].Duration)
}

func TestTransport_FailPlay(t *testing.T) {
	tr, _ := newTestTransport(t)
	tr.SetFailPlayFor("bad.mp3", true)

	err := tr.Play(context.Background(), domain.Source{TrackName: "bad.mp3"}, domain.TrackInfo{})
	assert.ErrorIs(t, err, domain.ErrPlaybackRejected)

	require.NoError(t, tr.Play(context.Background(), domain.Source{TrackName: "good.mp3"}, domain.TrackInfo{}))

	tr.SetFailPlay(true)
	err = tr.Play(context.Background(), domain.Source{TrackName: "good.mp3"}, domain.TrackInfo{})
	assert.ErrorIs(t, err, domain.ErrPlaybackRejected)
	assert.Len(t, tr.Plays(), 1)
}

func TestTransport_PauseResumeSeek(t *testing.T) {
	tr, _ := newTestTransport(t)

	assert.ErrorIs(t, tr.Pause(), domain.ErrNoTrackSelected)

	require.NoError(t, tr.Play(context.Background(), domain.Source{TrackName: "a"}, domain.TrackInfo{}))
	require.NoError(t, tr.Pause())
	assert.Equal(t, domain.StatusPaused, tr.Status())
	require.NoError(t, tr.Resume())
	assert.Equal(t, domain.StatusPlaying, tr.Status())

	require.NoError(t, tr.Seek(time.Minute))
	pos, err := tr.Position()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, pos)

	assert.ErrorIs(t, tr.Seek(-time.Second), domain.ErrInvalidPosition)
	assert.ErrorIs(t, tr.Seek(DefaultDuration+time.Second), domain.ErrInvalidPosition)
}

func TestTransport_AdvanceEndsTrack(t *testing.T) {
	tr, bus := newTestTransport(t)
	tr.SetDuration(10 * time.Second)

	var ended []domain.TrackEndedEvent
	bus.Subscribe(domain.EventTrackEnded, func(e domain.Event) {
		ended = append(ended, e.(domain.TrackEndedEvent))
	})

	require.NoError(t, tr.Play(context.Background(), domain.Source{Ticket: 9, TrackName: "a"}, domain.TrackInfo{}))
	tr.Advance(5 * time.Second)
	assert.Empty(t, ended)

	tr.Advance(5 * time.Second)
	require.Len(t, ended, 1)
	assert.Equal(t, uint64(9), ended[0].Ticket)
	assert.Equal(t, domain.StatusStopped, tr.Status())
}

func TestTransport_VolumeAndEqualizer(t *testing.T) {
	tr, _ := newTestTransport(t)

	require.NoError(t, tr.SetVolume(0.3))
	assert.Equal(t, 0.3, tr.Volume())
	assert.ErrorIs(t, tr.SetVolume(1.5), domain.ErrInvalidVolume)

	require.NoError(t, tr.SetEqualizer(domain.Equalizer{Low: 3}))
	assert.Equal(t, 3.0, tr.Equalizer().Low)
	assert.Error(t, tr.SetEqualizer(domain.Equalizer{High: 20}))
}

func TestTransport_Close(t *testing.T) {
	tr, _ := newTestTransport(t)
	require.NoError(t, tr.Close())

	err := tr.Play(context.Background(), domain.Source{TrackName: "a"}, domain.TrackInfo{})
	assert.ErrorIs(t, err, domain.ErrClosed)
}
