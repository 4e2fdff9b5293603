// Package ports define interfaces for dependency inversion.
// These interfaces allow the core session logic to remain independent of audio libraries.
package ports

import (
	"context"
	"time"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
)

// Transport is the audio rendering collaborator driven by the playback session.
// It decodes and plays a resolved source; the session never touches audio data itself.
//
// Implementations publish domain.TrackLoadedEvent once the duration of a source is known
// and domain.TrackEndedEvent (carrying the source ticket) when playback reaches its
// natural end. Both are published on the event bus supplied at construction.
//
// Implementations must be thread-safe as they may be called from multiple goroutines.
type Transport interface {
	// Play replaces whatever is playing and starts src from the beginning.
	//
	// Returns an error wrapping domain.ErrPlaybackRejected if playback cannot start.
	Play(ctx context.Context, src domain.Source, info domain.TrackInfo) error

	// Pause pauses playback, keeping the position.
	Pause() error

	// Resume resumes paused playback.
	Resume() error

	// Stop stops playback and releases the current source.
	Stop() error

	// Seek moves the playback position within [0, Duration].
	Seek(position time.Duration) error

	// Position returns the current playback position.
	Position() (time.Duration, error)

	// Duration returns the total duration of the current source.
	Duration() (time.Duration, error)

	// SetVolume sets the output volume, 0.0 (silent) to 1.0 (full).
	SetVolume(volume float64) error

	// SetEqualizer applies three-band gain values chosen by the operator.
	SetEqualizer(eq domain.Equalizer) error

	// Close releases all transport resources.
	Close() error
}
