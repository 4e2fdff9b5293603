// Package beep implements ports.Transport on top of gopxl/beep.
//
// Sources are decoded fully in memory: sources that carry bytes are decoded
// directly, URL sources are fetched first. MP3 and WAV are supported. Builds with cgo
// play through the system speaker; other builds keep a silent wall-clock
// playback so the session still sees track ends.
package beep

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
)

// output renders a decoded stream. Implementations live in the build-tagged files.
type output interface {
	start(streamer beep.StreamSeekCloser, format beep.Format, onDone func()) error
	pause()
	resume()
	stop()
	position() time.Duration
	seek(d time.Duration) error
	setVolume(v float64)
	close()
}

// Transport plays sources through beep.
type Transport struct {
	bus     ports.EventBus
	fetcher ports.Fetcher
	out     output
	logger  *slog.Logger

	mu        sync.Mutex
	ticket    uint64
	trackName string
	duration  time.Duration
	loaded    bool
	volume    float64
	equalizer domain.Equalizer
	closed    bool
}

// NewTransport creates a transport publishing on bus and fetching URL sources with fetcher.
func NewTransport(bus ports.EventBus, fetcher ports.Fetcher, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		bus:     bus,
		fetcher: fetcher,
		out:     newOutput(),
		logger:  logger.With(slog.String("component", "transport"), slog.Bool("audio", AudioAvailable)),
		volume:  1.0,
	}
}

// Play decodes src and starts it, replacing whatever was playing.
func (t *Transport) Play(ctx context.Context, src domain.Source, info domain.TrackInfo) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return domain.NewTransportError("play", src.TrackName, "transport closed", domain.ErrClosed)
	}

	data := src.Data
	if len(data) == 0 {
		var err error
		data, err = t.fetcher.Fetch(ctx, src.URL)
		if err != nil {
			return domain.NewTransportError("play", src.TrackName, "source unavailable", joinRejected(err))
		}
	}

	streamer, format, err := decode(src.TrackName, data)
	if err != nil {
		return domain.NewTransportError("play", src.TrackName, "cannot decode source", joinRejected(err))
	}
	duration := format.SampleRate.D(streamer.Len())

	ticket, name := src.Ticket, src.TrackName

	t.mu.Lock()
	err = t.out.start(streamer, format, func() {
		t.mu.Lock()
		current := t.loaded && t.ticket == ticket
		if current {
			t.loaded = false
		}
		t.mu.Unlock()
		if current {
			t.bus.Publish(domain.NewTrackEndedEvent(ticket, name))
		}
	})
	if err != nil {
		t.mu.Unlock()
		_ = streamer.Close()
		return domain.NewTransportError("play", src.TrackName, "audio output failed", joinRejected(err))
	}
	t.out.setVolume(t.volume)
	t.ticket = ticket
	t.trackName = name
	t.duration = duration
	t.loaded = true
	t.mu.Unlock()

	t.logger.Info("playing",
		slog.String("track", info.Title),
		slog.String("artist", info.Artist),
		slog.Bool("cached", src.Cached),
		slog.Duration("duration", duration))

	t.bus.Publish(domain.NewTrackLoadedEvent(ticket, name, duration))
	return nil
}

// Pause pauses playback.
func (t *Transport) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.loaded {
		return domain.ErrNoTrackSelected
	}
	t.out.pause()
	return nil
}

// Resume resumes paused playback.
func (t *Transport) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.loaded {
		return domain.ErrNoTrackSelected
	}
	t.out.resume()
	return nil
}

// Stop stops playback without publishing an end notification.
func (t *Transport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.loaded = false
	t.out.stop()
	return nil
}

// Seek moves the playback position.
func (t *Transport) Seek(position time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.loaded {
		return domain.ErrNoTrackSelected
	}
	if position < 0 || position > t.duration {
		return domain.ErrInvalidPosition
	}
	if err := t.out.seek(position); err != nil {
		return domain.NewTransportError("seek", t.trackName, err.Error(), err)
	}
	return nil
}

// Position returns the playback position of the current source.
func (t *Transport) Position() (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.loaded {
		return 0, domain.ErrNoTrackSelected
	}
	return t.out.position(), nil
}

// Duration returns the length of the current source.
func (t *Transport) Duration() (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.loaded {
		return 0, domain.ErrNoTrackSelected
	}
	return t.duration, nil
}

// SetVolume sets the output volume in [0, 1].
func (t *Transport) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.ErrInvalidVolume
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.volume = volume
	t.out.setVolume(volume)
	return nil
}

// SetEqualizer records the gains. No filtering is applied to the signal yet.
func (t *Transport) SetEqualizer(eq domain.Equalizer) error {
	if err := eq.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.equalizer = eq
	t.logger.Debug("equalizer set",
		slog.Float64("low", eq.Low),
		slog.Float64("mid", eq.Mid),
		slog.Float64("high", eq.High))
	return nil
}

// Close stops playback and releases the audio output.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.loaded = false
	t.out.stop()
	t.out.close()
	return nil
}

// joinRejected marks err as a playback rejection while keeping its own chain.
func joinRejected(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrPlaybackRejected, err)
}

var _ ports.Transport = (*Transport)(nil)
