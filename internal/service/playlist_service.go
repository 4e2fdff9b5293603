package service

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
)

// PlaylistService manages named playlists of track names.
// Playlists reference tracks by name; names missing from the current catalog
// are kept and skipped on resolution.
// All operations are thread-safe via sync.Mutex.
type PlaylistService struct {
	// Dependencies (injected)
	session    *SessionService
	repository ports.PlaylistRepository
	bus        ports.EventBus
	logger     *slog.Logger

	// Concurrency control
	mu sync.Mutex
}

// NewPlaylistService creates a new playlist service.
func NewPlaylistService(
	logger *slog.Logger,
	session *SessionService,
	repository ports.PlaylistRepository,
	bus ports.EventBus,
) *PlaylistService {
	return &PlaylistService{
		session:    session,
		repository: repository,
		bus:        bus,
		logger:     logger,
	}
}

// Create creates an empty playlist.
func (s *PlaylistService) Create(name string) (*domain.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", name, "playlist name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repository.Exists(name) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPlaylistExists, name)
	}

	now := time.Now()
	playlist := &domain.Playlist{
		ID:         uuid.NewString(),
		Name:       name,
		TrackNames: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repository.Save(playlist); err != nil {
		return nil, domain.NewServiceError("PlaylistService", "Create", "failed to save playlist", err)
	}

	s.logger.Info("playlist created", slog.String("playlist", name), slog.String("id", playlist.ID))
	s.bus.Publish(domain.NewPlaylistUpdatedEvent(*playlist))
	return playlist, nil
}

// Append adds trackName to the end of the playlist. Duplicates are allowed.
func (s *PlaylistService) Append(name, trackName string) (*domain.Playlist, error) {
	if trackName == "" {
		return nil, domain.NewValidationError("track", trackName, "track name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, err := s.repository.Load(name)
	if err != nil {
		return nil, err
	}

	playlist.TrackNames = append(playlist.TrackNames, trackName)
	playlist.UpdatedAt = time.Now()
	if err := s.repository.Save(playlist); err != nil {
		return nil, domain.NewServiceError("PlaylistService", "Append", "failed to save playlist", err)
	}

	s.logger.Debug("track appended to playlist",
		slog.String("playlist", name),
		slog.String("track", trackName))
	s.bus.Publish(domain.NewPlaylistUpdatedEvent(*playlist))
	return playlist, nil
}

// AppendCurrent adds the session's current track to the playlist.
func (s *PlaylistService) AppendCurrent(name string) (*domain.Playlist, error) {
	track, ok := s.session.CurrentTrack()
	if !ok {
		return nil, domain.ErrNoTrackSelected
	}
	return s.Append(name, track.Name)
}

// Delete removes the playlist. Deleting an unknown playlist returns domain.ErrPlaylistNotFound.
func (s *PlaylistService) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.repository.Exists(name) {
		return fmt.Errorf("%w: %s", domain.ErrPlaylistNotFound, name)
	}
	if err := s.repository.Delete(name); err != nil {
		return domain.NewServiceError("PlaylistService", "Delete", "failed to delete playlist", err)
	}

	s.logger.Info("playlist deleted", slog.String("playlist", name))
	s.bus.Publish(domain.NewPlaylistDeletedEvent(name))
	return nil
}

// Get returns the playlist with the given name.
func (s *PlaylistService) Get(name string) (*domain.Playlist, error) {
	return s.repository.Load(name)
}

// List returns all playlists in creation order.
func (s *PlaylistService) List() ([]*domain.Playlist, error) {
	return s.repository.LoadAll()
}

// Tracks resolves the playlist entries against the current catalog, in
// playlist order. Entries with no matching catalog track are skipped.
func (s *PlaylistService) Tracks(name string) ([]domain.Track, error) {
	playlist, err := s.repository.Load(name)
	if err != nil {
		return nil, err
	}

	// first occurrence wins when names repeat
	byName := lo.KeyBy(lo.UniqBy(s.session.Catalog(), func(t domain.Track) string { return t.Name }),
		func(t domain.Track) string { return t.Name })

	tracks := make([]domain.Track, 0, len(playlist.TrackNames))
	for _, trackName := range playlist.TrackNames {
		if t, ok := byName[trackName]; ok {
			tracks = append(tracks, t)
		}
	}
	if skipped := len(playlist.TrackNames) - len(tracks); skipped > 0 {
		s.logger.Debug("playlist has tracks missing from catalog",
			slog.String("playlist", name),
			slog.Int("skipped", skipped))
	}
	return tracks, nil
}
