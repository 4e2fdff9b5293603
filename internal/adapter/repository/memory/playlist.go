package memory

import (
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
)

const (
	playlistPrefix   = "playlist."
	playlistIndexKey = "playlist._names"
)

// PlaylistRepository implements ports.PlaylistRepository.
// Each playlist is stored as JSON under "playlist.<name>"; an index key keeps
// the names in creation order.
//
// Thread-safe: All operations protected by sync.RWMutex.
type PlaylistRepository struct {
	prefs  fyne.Preferences
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewPlaylistRepository creates a new playlist repository.
func NewPlaylistRepository(prefs fyne.Preferences, logger *slog.Logger) *PlaylistRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaylistRepository{
		prefs:  prefs,
		logger: logger.With(slog.String("repository", "playlist")),
	}
}

// Save persists a playlist, replacing any playlist with the same name.
func (r *PlaylistRepository) Save(playlist *domain.Playlist) error {
	if playlist == nil || playlist.Name == "" {
		return domain.NewValidationError("playlist.name", "", "name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(playlist)
	if err != nil {
		return domain.NewRepositoryError("save", "playlist", "failed to marshal playlist", err)
	}
	r.prefs.SetString(playlistPrefix+playlist.Name, string(data))

	names, err := r.loadNames()
	if err != nil {
		names = []string{}
	}
	if !slices.Contains(names, playlist.Name) {
		return r.saveNames(append(names, playlist.Name))
	}
	return nil
}

// Load retrieves a playlist by name.
func (r *PlaylistRepository) Load(name string) (*domain.Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.load(name)
}

func (r *PlaylistRepository) load(name string) (*domain.Playlist, error) {
	data := r.prefs.String(playlistPrefix + name)
	if data == "" {
		return nil, domain.ErrPlaylistNotFound
	}

	var playlist domain.Playlist
	if err := json.Unmarshal([]byte(data), &playlist); err != nil {
		return nil, domain.NewRepositoryError("load", "playlist", "failed to unmarshal playlist", err)
	}
	return &playlist, nil
}

// LoadAll retrieves all playlists in creation order.
// Missing or corrupted entries are skipped with a warning.
func (r *PlaylistRepository) LoadAll() ([]*domain.Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names, err := r.loadNames()
	if err != nil {
		return nil, err
	}

	playlists := make([]*domain.Playlist, 0, len(names))
	for _, name := range names {
		p, err := r.load(name)
		if err != nil {
			r.logger.Warn("skipping playlist", slog.String("name", name), slog.Any("error", err))
			continue
		}
		playlists = append(playlists, p)
	}
	return playlists, nil
}

// Delete removes a playlist by name. Unknown names are a no-op.
func (r *PlaylistRepository) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(playlistPrefix + name)

	names, err := r.loadNames()
	if err != nil {
		names = []string{}
	}
	return r.saveNames(slices.DeleteFunc(names, func(n string) bool { return n == name }))
}

// Exists reports whether a playlist with the given name exists.
func (r *PlaylistRepository) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.String(playlistPrefix+name) != ""
}

// loadNames must be called with the lock held.
func (r *PlaylistRepository) loadNames() ([]string, error) {
	data := r.prefs.String(playlistIndexKey)
	if data == "" {
		return []string{}, nil
	}

	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, domain.NewRepositoryError("load", "playlist", "failed to unmarshal index", err)
	}
	return names, nil
}

// saveNames must be called with the lock held.
func (r *PlaylistRepository) saveNames(names []string) error {
	data, err := json.Marshal(names)
	if err != nil {
		return domain.NewRepositoryError("save", "playlist", "failed to marshal index", err)
	}
	r.prefs.SetString(playlistIndexKey, string(data))
	return nil
}

var _ ports.PlaylistRepository = (*PlaylistRepository)(nil)
