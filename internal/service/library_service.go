package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dhowden/tag"
	"github.com/samber/lo"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
)

// supportedExts are the file extensions picked up by a folder import.
var supportedExts = []string{".mp3", ".wav", ".ogg", ".flac"}

// manifestEntry is one element of a JSON catalog manifest.
type manifestEntry struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Cover  string `json:"cover"`
}

// LibraryService builds catalogs from a local folder or a JSON manifest.
// Only one import runs at a time.
type LibraryService struct {
	// Dependencies (injected)
	fetcher ports.Fetcher
	bus     ports.EventBus
	logger  *slog.Logger

	// State
	importing bool
	cancel    context.CancelFunc

	// Concurrency control
	mu sync.Mutex
}

// NewLibraryService creates a new library service. The fetcher loads manifests.
func NewLibraryService(logger *slog.Logger, fetcher ports.Fetcher, bus ports.EventBus) *LibraryService {
	return &LibraryService{
		fetcher: fetcher,
		bus:     bus,
		logger:  logger,
	}
}

// begin marks an import as running and returns its context.
func (s *LibraryService) begin(ctx context.Context) (context.Context, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.importing {
		return nil, nil, domain.ErrImportInProgress
	}
	ctx, cancel := context.WithCancel(ctx)
	s.importing = true
	s.cancel = cancel

	done := func() {
		cancel()
		s.mu.Lock()
		s.importing = false
		s.cancel = nil
		s.mu.Unlock()
	}
	return ctx, done, nil
}

// ImportFolder reads the audio files directly inside dir (no recursion).
// Each track carries the file bytes in Data, so it can be saved offline
// without a fetch. Unreadable files are skipped.
func (s *LibraryService) ImportFolder(ctx context.Context, dir string) ([]domain.Track, error) {
	ctx, done, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, domain.NewServiceError("LibraryService", "ImportFolder", "invalid folder", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, domain.NewServiceError("LibraryService", "ImportFolder", "cannot list folder", err)
	}

	files := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), !e.IsDir() && IsFormatSupported(e.Name())
	})

	s.logger.Info("importing folder", slog.String("dir", abs), slog.Int("files", len(files)))
	s.bus.Publish(domain.NewImportStartedEvent(abs))

	tracks := make([]domain.Track, 0, len(files))
	for i, name := range files {
		if ctx.Err() != nil {
			s.bus.Publish(domain.NewImportCancelledEvent("cancelled"))
			return tracks, ctx.Err()
		}

		full := filepath.Join(abs, name)
		track, err := readTrack(full)
		if err != nil {
			s.logger.Warn("skipping unreadable file", slog.String("file", full), slog.Any("error", err))
		} else {
			tracks = append(tracks, track)
		}

		s.bus.Publish(domain.NewImportProgressEvent(domain.ImportProgress{
			CurrentFile: full,
			FilesRead:   i + 1,
			TotalFiles:  len(files),
			TracksFound: len(tracks),
		}))
	}

	s.bus.Publish(domain.NewImportCompletedEvent(tracks))
	return tracks, nil
}

// readTrack loads a file and its tags. Files without readable tags keep the
// file name (without extension) as title.
func readTrack(full string) (domain.Track, error) {
	data, err := os.ReadFile(full)
	if err != nil {
		return domain.Track{}, err
	}

	name := filepath.Base(full)
	track := domain.Track{
		Name:      name,
		SourceURL: (&url.URL{Scheme: "file", Path: filepath.ToSlash(full)}).String(),
		Title:     strings.TrimSuffix(name, filepath.Ext(name)),
		Data:      data,
	}

	metadata, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil || metadata == nil {
		return track, nil
	}
	if title := strings.TrimSpace(metadata.Title()); title != "" {
		track.Title = title
	}
	track.Artist = strings.TrimSpace(metadata.Artist())
	if picture := metadata.Picture(); picture != nil && len(picture.Data) > 0 {
		track.CoverArt = dataURI(picture.MIMEType, picture.Data)
	}
	return track, nil
}

func dataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ImportManifest loads a JSON array of {name, url, title, artist, cover}
// from location, which may be a URL or a local path. A missing name defaults
// to the last path segment of the url; entries without a url are skipped.
func (s *LibraryService) ImportManifest(ctx context.Context, location string) ([]domain.Track, error) {
	ctx, done, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	s.bus.Publish(domain.NewImportStartedEvent(location))

	data, err := s.fetcher.Fetch(ctx, location)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.bus.Publish(domain.NewImportCancelledEvent("cancelled"))
		}
		return nil, err
	}

	var entries []manifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, domain.NewServiceError("LibraryService", "ImportManifest", "invalid manifest", err)
	}

	tracks := make([]domain.Track, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.URL) == "" {
			s.logger.Warn("skipping manifest entry without url", slog.Int("entry", i))
			continue
		}
		name := e.Name
		if name == "" {
			name = nameFromURL(e.URL)
		}
		tracks = append(tracks, domain.Track{
			Name:      name,
			SourceURL: e.URL,
			Title:     e.Title,
			Artist:    e.Artist,
			CoverArt:  e.Cover,
		})
	}

	s.logger.Info("manifest imported", slog.String("location", location), slog.Int("tracks", len(tracks)))
	s.bus.Publish(domain.NewImportCompletedEvent(tracks))
	return tracks, nil
}

// nameFromURL returns the last path segment of raw, or raw itself when it has none.
func nameFromURL(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return raw
	}
	return path.Base(p)
}

// Cancel cancels the running import, if any.
func (s *LibraryService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
}

// IsImporting reports whether an import is running.
func (s *LibraryService) IsImporting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.importing
}

// IsFormatSupported reports whether a file name has an importable extension.
func IsFormatSupported(name string) bool {
	return slices.Contains(supportedExts, strings.ToLower(filepath.Ext(name)))
}

// SupportedFormats returns the importable file extensions.
func SupportedFormats() []string {
	return slices.Clone(supportedExts)
}
