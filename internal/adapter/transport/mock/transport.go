// Package mock provides an in-memory implementation of ports.Transport.
// It simulates playback without producing audio and lets tests drive
// track ends and failures.
package mock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
)

// DefaultDuration is the simulated length of every source unless overridden.
const DefaultDuration = 3 * time.Minute

// Transport is a mock transport.
//
// Thread-safety: This implementation is thread-safe. Events are published
// without holding the internal lock so handlers may call back into it.
type Transport struct {
	bus    ports.EventBus
	logger *slog.Logger

	mu        sync.RWMutex
	current   *domain.Source
	info      domain.TrackInfo
	status    domain.PlaybackStatus
	position  time.Duration
	duration  time.Duration
	volume    float64
	equalizer domain.Equalizer
	plays     []domain.Source
	closed    bool

	// Behavior configuration (for testing error scenarios)
	failPlay    bool
	failPlayFor map[string]bool
}

// NewTransport creates a mock transport publishing on bus.
func NewTransport(bus ports.EventBus) *Transport {
	return &Transport{
		bus:         bus,
		duration:    DefaultDuration,
		volume:      1.0,
		failPlayFor: make(map[string]bool),
	}
}

// SetLogger sets the logger for this transport.
func (m *Transport) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// SetFailPlay makes every subsequent Play fail (for testing).
func (m *Transport) SetFailPlay(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPlay = fail
}

// SetFailPlayFor makes Play fail only for the named track (for testing).
func (m *Transport) SetFailPlayFor(trackName string, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPlayFor[trackName] = fail
}

// SetDuration sets the simulated duration reported for sources played from now on.
func (m *Transport) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

// Play starts src from the beginning and reports its duration.
func (m *Transport) Play(ctx context.Context, src domain.Source, info domain.TrackInfo) error {
	if err := ctx.Err(); err != nil {
		return domain.NewTransportError("play", src.TrackName, "context done", err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.NewTransportError("play", src.TrackName, "transport closed", domain.ErrClosed)
	}
	if m.failPlay || m.failPlayFor[src.TrackName] {
		m.mu.Unlock()
		return domain.NewTransportError("play", src.TrackName, "mock playback rejected", domain.ErrPlaybackRejected)
	}

	s := src
	m.current = &s
	m.info = info
	m.status = domain.StatusPlaying
	m.position = 0
	m.plays = append(m.plays, src)
	duration := m.duration
	logger := m.logger
	m.mu.Unlock()

	if logger != nil {
		logger.Debug("mock play", slog.String("source", src.String()), slog.Uint64("ticket", src.Ticket))
	}
	m.bus.Publish(domain.NewTrackLoadedEvent(src.Ticket, src.TrackName, duration))
	return nil
}

// Pause pauses playback.
func (m *Transport) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return domain.ErrNoTrackSelected
	}
	if m.status == domain.StatusPlaying {
		m.status = domain.StatusPaused
	}
	return nil
}

// Resume resumes paused playback.
func (m *Transport) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return domain.ErrNoTrackSelected
	}
	m.status = domain.StatusPlaying
	return nil
}

// Stop stops playback and forgets the current source.
func (m *Transport) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	m.status = domain.StatusStopped
	m.position = 0
	return nil
}

// Seek sets the playback position.
func (m *Transport) Seek(position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return domain.ErrNoTrackSelected
	}
	if position < 0 || position > m.duration {
		return domain.ErrInvalidPosition
	}
	m.position = position
	return nil
}

// Position returns the simulated playback position.
func (m *Transport) Position() (time.Duration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return 0, domain.ErrNoTrackSelected
	}
	return m.position, nil
}

// Duration returns the simulated duration of the current source.
func (m *Transport) Duration() (time.Duration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return 0, domain.ErrNoTrackSelected
	}
	return m.duration, nil
}

// SetVolume sets the playback volume.
func (m *Transport) SetVolume(volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}
	m.volume = volume
	return nil
}

// SetEqualizer records the equalizer gains.
func (m *Transport) SetEqualizer(eq domain.Equalizer) error {
	if err := eq.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.equalizer = eq
	return nil
}

// Advance moves the playback position forward by d while playing.
// Reaching the duration ends the track as SimulateEnd does.
func (m *Transport) Advance(d time.Duration) {
	m.mu.Lock()
	if m.current == nil || m.status != domain.StatusPlaying {
		m.mu.Unlock()
		return
	}
	m.position += d
	ended := m.position >= m.duration
	m.mu.Unlock()

	if ended {
		m.SimulateEnd()
	}
}

// SimulateEnd ends the current source naturally and publishes TrackEndedEvent.
// It is a no-op when nothing is loaded.
func (m *Transport) SimulateEnd() {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return
	}
	src := *m.current
	m.position = m.duration
	m.status = domain.StatusStopped
	m.mu.Unlock()

	m.bus.Publish(domain.NewTrackEndedEvent(src.Ticket, src.TrackName))
}

// Current returns the source currently loaded, if any.
func (m *Transport) Current() (domain.Source, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return domain.Source{}, false
	}
	return *m.current, true
}

// Info returns the display metadata of the last successful Play.
func (m *Transport) Info() domain.TrackInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.info
}

// Plays returns every source handed to a successful Play, in order.
func (m *Transport) Plays() []domain.Source {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Source(nil), m.plays...)
}

// Status returns the simulated playback status.
func (m *Transport) Status() domain.PlaybackStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Volume returns the current volume.
func (m *Transport) Volume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.volume
}

// Equalizer returns the current equalizer gains.
func (m *Transport) Equalizer() domain.Equalizer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.equalizer
}

// Close stops playback. Further Play calls fail.
func (m *Transport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.current = nil
	m.status = domain.StatusStopped
	return nil
}

var _ ports.Transport = (*Transport)(nil)
