// Package ports define repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping persistence mechanisms.
package ports

import (
	"github.com/tejashwikalptaru/mrytune/internal/domain"
)

// LikedRepository persists the liked set across process restarts.
// The set is stored as an ordered list of track names.
//
// Thread-safety: Implementations must be thread-safe.
type LikedRepository interface {
	// SaveLiked replaces the persisted liked names.
	//
	// Returns an error if saving fails.
	SaveLiked(names []string) error

	// LoadLiked retrieves the persisted liked names.
	// If nothing was saved, returns an empty slice (not an error).
	LoadLiked() ([]string, error)
}

// PlaylistRepository handles the persistence of playlists.
//
// Thread-safety: Implementations must be thread-safe.
type PlaylistRepository interface {
	// Save persists a playlist.
	// If a playlist with the same name exists, it is replaced.
	Save(playlist *domain.Playlist) error

	// Load retrieves a playlist by name.
	// If the playlist doesn't exist, returns (nil, domain.ErrPlaylistNotFound).
	Load(name string) (*domain.Playlist, error)

	// LoadAll retrieves all saved playlists in creation order.
	//
	// Returns a slice of playlists (empty if none exist), or an error if loading fails.
	LoadAll() ([]*domain.Playlist, error)

	// Delete removes a playlist by name.
	// If the playlist doesn't exist, this is a no-op (no error).
	Delete(name string) error

	// Exists checks if a playlist with the given name exists.
	Exists(name string) bool
}

// PreferencesRepository handles the persistence of playback preferences.
// This abstracts the Fyne preferences storage.
//
// Thread-safety: Implementations must be thread-safe.
type PreferencesRepository interface {
	// SaveVolume persists the volume level.
	SaveVolume(volume float64) error

	// LoadVolume retrieves the saved volume level.
	// If no volume was saved, returns 1.0 (full volume) as default.
	LoadVolume() (float64, error)

	// SaveShuffle persists the shuffle flag.
	SaveShuffle(enabled bool) error

	// LoadShuffle retrieves the shuffle flag, false by default.
	LoadShuffle() (bool, error)

	// SaveRepeat persists the repeat flag.
	SaveRepeat(enabled bool) error

	// LoadRepeat retrieves the repeat flag, false by default.
	LoadRepeat() (bool, error)

	// SaveEqualizer persists the equalizer gains.
	SaveEqualizer(eq domain.Equalizer) error

	// LoadEqualizer retrieves the equalizer gains, flat (all zero) by default.
	LoadEqualizer() (domain.Equalizer, error)

	// Clear removes all saved preferences.
	Clear() error
}

// CatalogRepository persists the last catalog so cached keys survive restarts.
// Track.Data is never persisted.
//
// Thread-safety: Implementations must be thread-safe.
type CatalogRepository interface {
	// SaveCatalog replaces the persisted catalog.
	SaveCatalog(tracks []domain.Track) error

	// LoadCatalog retrieves the persisted catalog, empty if none was saved.
	LoadCatalog() ([]domain.Track, error)

	// Clear removes the persisted catalog.
	Clear() error
}
