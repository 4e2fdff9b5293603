// Package memory provides repository implementations backed by Fyne preferences.
//
// Fyne stores preferences in OS-specific app data directories:
// - macOS: ~/Library/Preferences/com.mrytune.app.plist
// - Linux: ~/.config/fyne/com.mrytune.app/
// - Windows: %APPDATA%\fyne\com.mrytune.app\
package memory

import (
	"encoding/json"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/samber/lo"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
)

const catalogKey = "catalog.tracks"

// CatalogRepository implements ports.CatalogRepository.
//
// Thread-safe: All operations protected by sync.RWMutex.
type CatalogRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(prefs fyne.Preferences) *CatalogRepository {
	return &CatalogRepository{prefs: prefs}
}

// SaveCatalog persists tracks as JSON. Raw import bytes and embedded
// data: cover images are dropped; cover URLs are kept.
func (r *CatalogRepository) SaveCatalog(tracks []domain.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	persisted := lo.Map(tracks, func(t domain.Track, _ int) domain.Track {
		if strings.HasPrefix(t.CoverArt, "data:") {
			t.CoverArt = ""
		}
		return t
	})
	data, err := json.Marshal(persisted)
	if err != nil {
		return domain.NewRepositoryError("save", "catalog", "failed to marshal tracks", err)
	}

	r.prefs.SetString(catalogKey, string(data))
	return nil
}

// LoadCatalog retrieves the persisted catalog.
func (r *CatalogRepository) LoadCatalog() ([]domain.Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data := r.prefs.String(catalogKey)
	if data == "" {
		return []domain.Track{}, nil
	}

	var tracks []domain.Track
	if err := json.Unmarshal([]byte(data), &tracks); err != nil {
		return nil, domain.NewRepositoryError("load", "catalog", "failed to unmarshal tracks", err)
	}
	return tracks, nil
}

// Clear removes the persisted catalog.
func (r *CatalogRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(catalogKey)
	return nil
}

var _ ports.CatalogRepository = (*CatalogRepository)(nil)
