package service

import (
	"errors"
	"log/slog"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
)

// StoredPreferences is the persisted playback configuration.
type StoredPreferences struct {
	Volume    float64
	Shuffle   bool
	Repeat    bool
	Equalizer domain.Equalizer
	Liked     []string
	Tracks    int // tracks in the saved catalog
}

// PreferenceService reads and resets what is persisted between runs.
// The session writes preferences as they change; this service is the
// out-of-session view used by the command line.
type PreferenceService struct {
	// Dependencies (injected)
	logger      *slog.Logger
	preferences ports.PreferencesRepository
	liked       ports.LikedRepository
	catalog     ports.CatalogRepository
}

// NewPreferenceService creates a new preference service.
func NewPreferenceService(
	logger *slog.Logger,
	preferences ports.PreferencesRepository,
	liked ports.LikedRepository,
	catalog ports.CatalogRepository,
) *PreferenceService {
	logger.Debug("preference service initialized")

	return &PreferenceService{
		logger:      logger,
		preferences: preferences,
		liked:       liked,
		catalog:     catalog,
	}
}

// Load returns the stored preferences. Individual read failures fall back to
// the defaults and are returned joined.
func (s *PreferenceService) Load() (StoredPreferences, error) {
	var errs []error
	prefs := StoredPreferences{Volume: 1.0}

	if v, err := s.preferences.LoadVolume(); err != nil {
		errs = append(errs, err)
	} else {
		prefs.Volume = v
	}
	if v, err := s.preferences.LoadShuffle(); err != nil {
		errs = append(errs, err)
	} else {
		prefs.Shuffle = v
	}
	if v, err := s.preferences.LoadRepeat(); err != nil {
		errs = append(errs, err)
	} else {
		prefs.Repeat = v
	}
	if eq, err := s.preferences.LoadEqualizer(); err != nil {
		errs = append(errs, err)
	} else {
		prefs.Equalizer = eq
	}
	if names, err := s.liked.LoadLiked(); err != nil {
		errs = append(errs, err)
	} else {
		prefs.Liked = names
	}
	if tracks, err := s.catalog.LoadCatalog(); err != nil {
		errs = append(errs, err)
	} else {
		prefs.Tracks = len(tracks)
	}

	return prefs, errors.Join(errs...)
}

// Reset removes the stored preferences, the liked set and the saved catalog.
// Blob Store entries are left in place.
func (s *PreferenceService) Reset() error {
	err := errors.Join(
		s.preferences.Clear(),
		s.liked.SaveLiked(nil),
		s.catalog.Clear(),
	)
	if err != nil {
		s.logger.Error("failed to reset preferences", slog.Any("error", err))
		return domain.NewServiceError("PreferenceService", "Reset", "failed to reset preferences", err)
	}

	s.logger.Info("preferences reset")
	return nil
}
