package memory

import (
	"encoding/json"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
)

const (
	volumeKey    = "preferences.volume"
	shuffleKey   = "preferences.shuffle"
	repeatKey    = "preferences.repeat"
	equalizerKey = "preferences.equalizer"
)

// PreferencesRepository implements ports.PreferencesRepository using Fyne preferences.
//
// Thread-safe: All operations protected by sync.RWMutex.
type PreferencesRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewPreferencesRepository creates a new preferences repository.
func NewPreferencesRepository(prefs fyne.Preferences) *PreferencesRepository {
	return &PreferencesRepository{prefs: prefs}
}

// SaveVolume persists the volume level.
func (r *PreferencesRepository) SaveVolume(volume float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetFloat(volumeKey, volume)
	return nil
}

// LoadVolume retrieves the saved volume level, 1.0 by default.
func (r *PreferencesRepository) LoadVolume() (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.FloatWithFallback(volumeKey, 1.0), nil
}

// SaveShuffle persists the shuffle flag.
func (r *PreferencesRepository) SaveShuffle(enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetBool(shuffleKey, enabled)
	return nil
}

// LoadShuffle retrieves the shuffle flag.
func (r *PreferencesRepository) LoadShuffle() (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.BoolWithFallback(shuffleKey, false), nil
}

// SaveRepeat persists the repeat flag.
func (r *PreferencesRepository) SaveRepeat(enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetBool(repeatKey, enabled)
	return nil
}

// LoadRepeat retrieves the repeat flag.
func (r *PreferencesRepository) LoadRepeat() (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.BoolWithFallback(repeatKey, false), nil
}

// SaveEqualizer persists the equalizer gains as JSON.
func (r *PreferencesRepository) SaveEqualizer(eq domain.Equalizer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(eq)
	if err != nil {
		return domain.NewRepositoryError("save", "preferences", "failed to marshal equalizer", err)
	}
	r.prefs.SetString(equalizerKey, string(data))
	return nil
}

// LoadEqualizer retrieves the equalizer gains, flat by default.
func (r *PreferencesRepository) LoadEqualizer() (domain.Equalizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var eq domain.Equalizer
	data := r.prefs.String(equalizerKey)
	if data == "" {
		return eq, nil
	}
	if err := json.Unmarshal([]byte(data), &eq); err != nil {
		return domain.Equalizer{}, domain.NewRepositoryError("load", "preferences", "failed to unmarshal equalizer", err)
	}
	return eq, nil
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range []string{volumeKey, shuffleKey, repeatKey, equalizerKey} {
		r.prefs.RemoveValue(key)
	}
	return nil
}

var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)
