package memory

import (
	"encoding/json"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
)

const likedKey = "liked.names"

// LikedRepository implements ports.LikedRepository.
// The liked set is stored as a JSON array of track names.
type LikedRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewLikedRepository creates a new liked repository.
func NewLikedRepository(prefs fyne.Preferences) *LikedRepository {
	return &LikedRepository{prefs: prefs}
}

// SaveLiked replaces the persisted liked names.
func (r *LikedRepository) SaveLiked(names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return domain.NewRepositoryError("save", "liked", "failed to marshal names", err)
	}

	r.prefs.SetString(likedKey, string(data))
	return nil
}

// LoadLiked retrieves the persisted liked names.
func (r *LikedRepository) LoadLiked() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data := r.prefs.String(likedKey)
	if data == "" {
		return []string{}, nil
	}

	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, domain.NewRepositoryError("load", "liked", "failed to unmarshal names", err)
	}
	return names, nil
}

var _ ports.LikedRepository = (*LikedRepository)(nil)
