// Package service provides business logic for the mrytune player.
package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
)

// DefaultUpdateInterval is how often progress events are published while playing.
const DefaultUpdateInterval = 333 * time.Millisecond

// SessionService is the playback session: it owns the catalog, the current
// selection, the playback-mode flags and the usage statistics, and drives the
// transport. All operations are thread-safe via sync.RWMutex.
//
// Every Open takes a new ticket. Source resolution and the transport hand-off
// run without the state lock; a resolution whose ticket is no longer the
// latest is discarded, and end notifications for old tickets are ignored.
type SessionService struct {
	// Dependencies (injected)
	logger    *slog.Logger
	bus       ports.EventBus
	store     ports.BlobStore
	transport ports.Transport
	fetcher   ports.Fetcher
	liked     ports.LikedRepository
	prefs     ports.PreferencesRepository // optional
	catalogDB ports.CatalogRepository     // optional

	// State
	catalog       []domain.Track
	currentIndex  int
	status        domain.PlaybackStatus
	shuffle       bool
	repeat        bool
	volume        float64
	equalizer     domain.Equalizer
	playCounts    map[string]int
	recent        []string
	likedNames    []string
	ticket        uint64 // ticket of the latest Open
	playingTicket uint64 // ticket the transport is rendering, 0 when none
	rng           *rand.Rand

	// Concurrency control
	mu             sync.RWMutex
	handoffMu      sync.Mutex // serializes transport hand-offs
	subs           []domain.SubscriptionID
	updateInterval time.Duration
	stopUpdate     chan struct{}
	updateRunning  bool
	updateWg       sync.WaitGroup
}

// NewSessionService creates a playback session and restores the liked set,
// the saved preferences and the saved catalog. prefs and catalog may be nil.
func NewSessionService(
	logger *slog.Logger,
	bus ports.FilteringEventBus,
	store ports.BlobStore,
	transport ports.Transport,
	fetcher ports.Fetcher,
	liked ports.LikedRepository,
	prefs ports.PreferencesRepository,
	catalog ports.CatalogRepository,
) *SessionService {
	s := &SessionService{
		logger:         logger,
		bus:            bus,
		store:          store,
		transport:      transport,
		fetcher:        fetcher,
		liked:          liked,
		prefs:          prefs,
		catalogDB:      catalog,
		currentIndex:   domain.NoTrack,
		volume:         1.0,
		playCounts:     make(map[string]int),
		updateInterval: DefaultUpdateInterval,
		stopUpdate:     make(chan struct{}),
	}

	s.restore()

	s.subs = append(s.subs,
		bus.SubscribeFiltered(domain.EventTrackEnded, s.isLatestTicket, s.onTrackEnded),
		bus.SubscribeFiltered(domain.EventTrackLoaded, s.isLatestTicket, s.onTrackLoaded),
	)

	logger.Debug("session service initialized",
		slog.Int("catalog", len(s.catalog)),
		slog.Int("liked", len(s.likedNames)))

	s.startUpdateRoutine()

	return s
}

// restore loads persisted state. Failures are logged and the defaults kept.
func (s *SessionService) restore() {
	names, err := s.liked.LoadLiked()
	if err != nil {
		s.logger.Warn("failed to load liked set", slog.Any("error", err))
	} else {
		s.likedNames = lo.Uniq(names)
	}

	if s.prefs != nil {
		if v, err := s.prefs.LoadVolume(); err == nil && v >= 0 && v <= 1 {
			s.volume = v
		}
		if v, err := s.prefs.LoadShuffle(); err == nil {
			s.shuffle = v
		}
		if v, err := s.prefs.LoadRepeat(); err == nil {
			s.repeat = v
		}
		if eq, err := s.prefs.LoadEqualizer(); err == nil && eq.Validate() == nil {
			s.equalizer = eq
		}
	}
	if err := s.transport.SetVolume(s.volume); err != nil {
		s.logger.Warn("failed to apply volume", slog.Any("error", err))
	}
	if err := s.transport.SetEqualizer(s.equalizer); err != nil {
		s.logger.Warn("failed to apply equalizer", slog.Any("error", err))
	}

	if s.catalogDB != nil {
		tracks, err := s.catalogDB.LoadCatalog()
		if err != nil {
			s.logger.Warn("failed to load saved catalog", slog.Any("error", err))
		} else {
			s.catalog = tracks
		}
	}
}

// SetRand replaces the random source used for shuffle.
func (s *SessionService) SetRand(r *rand.Rand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = r
}

// ReplaceCatalog replaces the catalog wholesale, clears the selection and stops playback.
// Track names are assumed unique; duplicates are not detected.
func (s *SessionService) ReplaceCatalog(tracks []domain.Track) {
	s.handoffMu.Lock()
	defer s.handoffMu.Unlock()

	s.mu.Lock()
	s.catalog = slices.Clone(tracks)
	s.currentIndex = domain.NoTrack
	s.ticket++
	s.playingTicket = 0
	s.status = domain.StatusStopped
	catalog := slices.Clone(s.catalog)
	s.mu.Unlock()

	if err := s.transport.Stop(); err != nil {
		s.logger.Warn("failed to stop transport", slog.Any("error", err))
	}

	s.persistCatalog(catalog)
	s.logger.Info("catalog replaced", slog.Int("tracks", len(catalog)))
	s.bus.Publish(domain.NewCatalogReplacedEvent(catalog))
}

// Open selects the track at index, records the play and starts playback.
//
// An empty catalog returns domain.ErrEmptyCatalog and an out-of-range index
// returns domain.ErrInvalidIndex; neither changes any state. Otherwise the
// selection, play count and recent list are committed before the source is
// resolved, and a transport failure only leaves the session paused.
func (s *SessionService) Open(ctx context.Context, index int) error {
	s.mu.Lock()
	if len(s.catalog) == 0 {
		s.mu.Unlock()
		s.logger.Warn("open ignored", slog.String("reason", "empty catalog"))
		return domain.ErrEmptyCatalog
	}
	if index < 0 || index >= len(s.catalog) {
		n := len(s.catalog)
		s.mu.Unlock()
		s.logger.Warn("open ignored", slog.Int("index", index), slog.Int("catalog", n))
		return fmt.Errorf("%w: %d not in [0, %d)", domain.ErrInvalidIndex, index, n)
	}

	track := s.catalog[index]
	s.ticket++
	ticket := s.ticket
	s.currentIndex = index
	s.playCounts[track.Name]++
	s.pushRecentLocked(track.Name)
	s.status = domain.StatusPaused
	s.mu.Unlock()

	s.logger.Debug("track opened",
		slog.String("track", track.Name),
		slog.Int("index", index),
		slog.Uint64("ticket", ticket))
	s.bus.Publish(domain.NewTrackOpenedEvent(track, index, ticket))

	s.startPlayback(ctx, ticket, track, index)
	return nil
}

// startPlayback resolves the source for track and hands it to the transport
// unless a newer Open has superseded ticket in the meantime.
func (s *SessionService) startPlayback(ctx context.Context, ticket uint64, track domain.Track, index int) {
	src := s.resolve(ctx, ticket, track)

	s.handoffMu.Lock()
	defer s.handoffMu.Unlock()

	if !s.isCurrent(ticket) {
		s.logger.Debug("discarding stale resolution",
			slog.String("track", track.Name),
			slog.Uint64("ticket", ticket))
		return
	}

	err := s.transport.Play(ctx, src, domain.InfoFor(track, index))

	s.mu.Lock()
	if s.ticket != ticket {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.status = domain.StatusPaused
		s.playingTicket = 0
		s.mu.Unlock()

		s.logger.Warn("playback rejected",
			slog.String("track", track.Name),
			slog.Any("error", err))
		s.bus.Publish(domain.NewPlaybackRejectedEvent(track, err))
		return
	}
	s.status = domain.StatusPlaying
	s.playingTicket = ticket
	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackStartedEvent(track, src.Cached))
}

// resolve prefers the Blob Store copy of a cached track and falls back to the
// track's own bytes or its source URL on a miss or a storage failure.
func (s *SessionService) resolve(ctx context.Context, ticket uint64, track domain.Track) domain.Source {
	src := domain.Source{
		Ticket:    ticket,
		TrackName: track.Name,
		URL:       track.SourceURL,
		Data:      track.Data,
	}
	if !track.IsCached() {
		return src
	}

	data, err := s.store.Get(ctx, track.CachedKey)
	switch {
	case err == nil:
		src.Cached = true
		src.Data = data
	case errors.Is(err, domain.ErrBlobNotFound):
		s.logger.Debug("cache miss", slog.String("key", track.CachedKey))
	default:
		s.logger.Warn("blob store unavailable, using source url",
			slog.String("key", track.CachedKey),
			slog.Any("error", err))
	}
	return src
}

func (s *SessionService) isCurrent(ticket uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticket == ticket
}

// pushRecentLocked moves name to the front of the recent list. Must be called with lock held.
func (s *SessionService) pushRecentLocked(name string) {
	s.recent = slices.DeleteFunc(s.recent, func(n string) bool { return n == name })
	s.recent = slices.Insert(s.recent, 0, name)
	if len(s.recent) > domain.MaxRecent {
		s.recent = s.recent[:domain.MaxRecent]
	}
}

// randIndexLocked returns a uniform index in [0, n). Must be called with lock held.
func (s *SessionService) randIndexLocked(n int) int {
	if s.rng != nil {
		return s.rng.IntN(n)
	}
	return rand.IntN(n)
}

// Next advances the selection: a random track when shuffling, else the next
// track, wrapping to the first only when repeat is on. At the end of the
// catalog without repeat the selection stays and the transport stops.
func (s *SessionService) Next(ctx context.Context) error {
	s.mu.Lock()
	n := len(s.catalog)
	if n == 0 {
		s.mu.Unlock()
		return domain.ErrEmptyCatalog
	}

	var target int
	switch {
	case s.shuffle:
		target = s.randIndexLocked(n)
	case s.currentIndex < n-1:
		target = s.currentIndex + 1
	case s.repeat:
		target = 0
	default:
		last := s.currentIndex
		s.status = domain.StatusStopped
		s.playingTicket = 0
		s.mu.Unlock()
		s.endOfCatalog(last)
		return nil
	}
	s.mu.Unlock()

	return s.Open(ctx, target)
}

func (s *SessionService) endOfCatalog(last int) {
	s.handoffMu.Lock()
	err := s.transport.Stop()
	s.handoffMu.Unlock()
	if err != nil {
		s.logger.Warn("failed to stop transport", slog.Any("error", err))
	}

	s.logger.Info("end of catalog reached", slog.Int("index", last))
	s.bus.Publish(domain.NewCatalogEndedEvent(last))
}

// Previous selects the previous track. It never wraps around.
func (s *SessionService) Previous(ctx context.Context) error {
	s.mu.RLock()
	current := s.currentIndex
	s.mu.RUnlock()

	if current <= 0 {
		return nil
	}
	return s.Open(ctx, current-1)
}

// Ended handles the natural end of the current track: replay it when repeat
// is on, otherwise advance as Next does.
func (s *SessionService) Ended(ctx context.Context) error {
	s.mu.Lock()
	current := s.currentIndex
	repeat := s.repeat
	s.status = domain.StatusStopped
	s.playingTicket = 0
	s.mu.Unlock()

	if current == domain.NoTrack {
		return domain.ErrNoTrackSelected
	}
	if repeat {
		return s.Open(ctx, current)
	}
	return s.Next(ctx)
}

func (s *SessionService) isLatestTicket(event domain.Event) bool {
	var ticket uint64
	switch e := event.(type) {
	case domain.TrackEndedEvent:
		ticket = e.Ticket
	case domain.TrackLoadedEvent:
		ticket = e.Ticket
	default:
		return false
	}
	return s.isCurrent(ticket)
}

func (s *SessionService) onTrackEnded(event domain.Event) {
	e := event.(domain.TrackEndedEvent)
	s.logger.Debug("track ended", slog.String("track", e.TrackName), slog.Uint64("ticket", e.Ticket))

	if err := s.Ended(context.Background()); err != nil {
		s.logger.Warn("failed to advance after track end", slog.Any("error", err))
	}
}

// onTrackLoaded records the duration reported by the transport on the current track.
func (s *SessionService) onTrackLoaded(event domain.Event) {
	e := event.(domain.TrackLoadedEvent)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticket != e.Ticket || s.currentIndex == domain.NoTrack {
		return
	}
	if s.catalog[s.currentIndex].Name == e.TrackName {
		s.catalog[s.currentIndex].Duration = e.Duration
	}
}

// PlayByName opens the first catalog entry named name.
func (s *SessionService) PlayByName(ctx context.Context, name string) error {
	s.mu.RLock()
	index := slices.IndexFunc(s.catalog, func(t domain.Track) bool { return t.Name == name })
	s.mu.RUnlock()

	if index < 0 {
		return fmt.Errorf("%w: %s", domain.ErrTrackNotFound, name)
	}
	return s.Open(ctx, index)
}

// currentLocked returns the selected track. Must be called with lock held.
func (s *SessionService) currentLocked() (domain.Track, bool) {
	if s.currentIndex == domain.NoTrack {
		return domain.Track{}, false
	}
	return s.catalog[s.currentIndex], true
}

// Pause pauses the current track.
func (s *SessionService) Pause() error {
	s.mu.Lock()
	track, ok := s.currentLocked()
	if !ok {
		s.mu.Unlock()
		return domain.ErrNoTrackSelected
	}
	wasPlaying := s.status == domain.StatusPlaying
	s.status = domain.StatusPaused
	s.mu.Unlock()

	if !wasPlaying {
		return nil
	}
	if err := s.transport.Pause(); err != nil {
		return err
	}

	position, _ := s.transport.Position()
	s.bus.Publish(domain.NewTrackPausedEvent(track, position))
	return nil
}

// Resume resumes the current track. When the transport is not rendering it
// (playback was rejected or the catalog ended) the source is handed over
// again without recording another play.
func (s *SessionService) Resume(ctx context.Context) error {
	s.mu.Lock()
	track, ok := s.currentLocked()
	if !ok {
		s.mu.Unlock()
		return domain.ErrNoTrackSelected
	}
	if s.status == domain.StatusPlaying {
		s.mu.Unlock()
		return nil
	}
	index, ticket := s.currentIndex, s.ticket
	loaded := s.playingTicket == ticket
	s.mu.Unlock()

	if !loaded {
		s.startPlayback(ctx, ticket, track, index)
		return nil
	}

	if err := s.transport.Resume(); err != nil {
		return err
	}

	s.mu.Lock()
	s.status = domain.StatusPlaying
	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackResumedEvent(track))
	return nil
}

// TogglePlay pauses when playing and resumes otherwise.
func (s *SessionService) TogglePlay(ctx context.Context) error {
	s.mu.RLock()
	playing := s.status == domain.StatusPlaying
	s.mu.RUnlock()

	if playing {
		return s.Pause()
	}
	return s.Resume(ctx)
}

// Stop stops playback and keeps the selection.
func (s *SessionService) Stop() error {
	s.handoffMu.Lock()
	defer s.handoffMu.Unlock()

	s.mu.Lock()
	track, ok := s.currentLocked()
	s.status = domain.StatusStopped
	s.playingTicket = 0
	s.mu.Unlock()

	if err := s.transport.Stop(); err != nil {
		return err
	}
	if ok {
		s.bus.Publish(domain.NewTrackStoppedEvent(track))
	}
	return nil
}

// Seek moves the playback position of the current track.
func (s *SessionService) Seek(position time.Duration) error {
	s.mu.RLock()
	_, ok := s.currentLocked()
	loaded := s.playingTicket != 0 && s.playingTicket == s.ticket
	s.mu.RUnlock()

	if !ok || !loaded {
		return domain.ErrNoTrackSelected
	}
	if position < 0 {
		return domain.ErrInvalidPosition
	}
	return s.transport.Seek(position)
}

// SetShuffle enables or disables shuffle.
func (s *SessionService) SetShuffle(enabled bool) {
	s.mu.Lock()
	s.shuffle = enabled
	s.mu.Unlock()

	if s.prefs != nil {
		if err := s.prefs.SaveShuffle(enabled); err != nil {
			s.logger.Warn("failed to save shuffle", slog.Any("error", err))
		}
	}
	s.bus.Publish(domain.NewShuffleToggledEvent(enabled))
}

// SetRepeat enables or disables repeat.
func (s *SessionService) SetRepeat(enabled bool) {
	s.mu.Lock()
	s.repeat = enabled
	s.mu.Unlock()

	if s.prefs != nil {
		if err := s.prefs.SaveRepeat(enabled); err != nil {
			s.logger.Warn("failed to save repeat", slog.Any("error", err))
		}
	}
	s.bus.Publish(domain.NewRepeatToggledEvent(enabled))
}

// SetVolume sets the volume in [0, 1].
func (s *SessionService) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.ErrInvalidVolume
	}
	if err := s.transport.SetVolume(volume); err != nil {
		return err
	}

	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()

	if s.prefs != nil {
		if err := s.prefs.SaveVolume(volume); err != nil {
			s.logger.Warn("failed to save volume", slog.Any("error", err))
		}
	}
	s.bus.Publish(domain.NewVolumeChangedEvent(volume))
	return nil
}

// SetEqualizer forwards three-band gains to the transport.
func (s *SessionService) SetEqualizer(eq domain.Equalizer) error {
	if err := eq.Validate(); err != nil {
		return err
	}
	if err := s.transport.SetEqualizer(eq); err != nil {
		return err
	}

	s.mu.Lock()
	s.equalizer = eq
	s.mu.Unlock()

	if s.prefs != nil {
		if err := s.prefs.SaveEqualizer(eq); err != nil {
			s.logger.Warn("failed to save equalizer", slog.Any("error", err))
		}
	}
	s.bus.Publish(domain.NewEqualizerChangedEvent(eq))
	return nil
}

// ToggleLike flips name in the liked set and persists the set immediately.
// The returned flag is the new membership. A persistence failure is returned
// but the in-memory change is kept.
func (s *SessionService) ToggleLike(name string) (bool, error) {
	if name == "" {
		return false, domain.NewValidationError("name", name, "track name is required")
	}

	s.mu.Lock()
	liked := !slices.Contains(s.likedNames, name)
	if liked {
		s.likedNames = append(s.likedNames, name)
	} else {
		s.likedNames = slices.DeleteFunc(s.likedNames, func(n string) bool { return n == name })
	}
	names := slices.Clone(s.likedNames)
	s.mu.Unlock()

	s.bus.Publish(domain.NewLikeToggledEvent(name, liked))

	if err := s.liked.SaveLiked(names); err != nil {
		s.logger.Error("failed to persist liked set", slog.Any("error", err))
		return liked, domain.NewServiceError("SessionService", "ToggleLike", "failed to persist liked set", err)
	}
	return liked, nil
}

// ToggleLikeCurrent toggles the like of the current track.
func (s *SessionService) ToggleLikeCurrent() (bool, error) {
	s.mu.RLock()
	track, ok := s.currentLocked()
	s.mu.RUnlock()

	if !ok {
		return false, domain.ErrNoTrackSelected
	}
	return s.ToggleLike(track.Name)
}

// IsLiked reports whether name is in the liked set.
func (s *SessionService) IsLiked(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.likedNames, name)
}

// Liked returns the liked names in the order they were liked.
func (s *SessionService) Liked() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.likedNames)
}

// SaveOffline stores the named tracks in the Blob Store; no names means the
// whole catalog. Each track is processed independently: raw bytes are stored
// directly, others are fetched from their source URL first. On success the
// track's CachedKey is set to its name. Cancellation is only observed between tracks.
func (s *SessionService) SaveOffline(ctx context.Context, names []string) []domain.SaveResult {
	s.mu.RLock()
	var targets []domain.Track
	var results []domain.SaveResult
	if len(names) == 0 {
		targets = slices.Clone(s.catalog)
	} else {
		for _, name := range names {
			i := slices.IndexFunc(s.catalog, func(t domain.Track) bool { return t.Name == name })
			if i < 0 {
				results = append(results, domain.SaveResult{Name: name, Err: domain.ErrTrackNotFound})
				continue
			}
			targets = append(targets, s.catalog[i])
		}
	}
	s.mu.RUnlock()

	for _, r := range results {
		s.bus.Publish(domain.NewSaveFailedEvent(r.Name, r.Err))
	}

	saved := 0
	for _, track := range targets {
		result := s.saveOne(ctx, track)
		results = append(results, result)
		if !result.OK() {
			s.logger.Warn("save offline failed", slog.String("track", track.Name), slog.Any("error", result.Err))
			s.bus.Publish(domain.NewSaveFailedEvent(track.Name, result.Err))
			continue
		}

		saved++
		s.mu.Lock()
		for i := range s.catalog {
			if s.catalog[i].Name == track.Name {
				s.catalog[i].CachedKey = result.Key
			}
		}
		s.mu.Unlock()
		s.bus.Publish(domain.NewTrackSavedEvent(result.Name, result.Key, result.Size))
	}

	if saved > 0 {
		s.persistCatalog(s.Catalog())
	}

	s.logger.Info("save offline finished",
		slog.Int("saved", saved),
		slog.Int("failed", len(results)-saved))
	s.bus.Publish(domain.NewSaveCompletedEvent(results))
	return results
}

func (s *SessionService) saveOne(ctx context.Context, track domain.Track) domain.SaveResult {
	result := domain.SaveResult{Name: track.Name}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	data := track.Data
	if data == nil {
		var err error
		data, err = s.fetcher.Fetch(ctx, track.SourceURL)
		if err != nil {
			result.Err = err
			return result
		}
	}

	if err := s.store.Put(ctx, track.Name, data); err != nil {
		result.Err = err
		return result
	}
	result.Key = track.Name
	result.Size = len(data)
	return result
}

// Sort reorders the catalog in place with a stable sort. The current index
// keeps its numeric value, so the selected track may change identity.
func (s *SessionService) Sort(criterion domain.SortCriterion) error {
	s.mu.Lock()

	var before string
	if t, ok := s.currentLocked(); ok {
		before = t.Name
	}

	switch criterion {
	case domain.SortAlphabetical:
		// Accented titles sort next to their base letters. A collator is not
		// safe for concurrent use, so each sort gets its own.
		titles := collate.New(language.Und, collate.IgnoreCase)
		slices.SortStableFunc(s.catalog, func(a, b domain.Track) int {
			return titles.CompareString(a.DisplayTitle(), b.DisplayTitle())
		})
	case domain.SortPopularity:
		slices.SortStableFunc(s.catalog, func(a, b domain.Track) int {
			return cmp.Compare(s.playCounts[b.Name], s.playCounts[a.Name])
		})
	default:
		s.mu.Unlock()
		return domain.NewValidationError("sort", string(criterion), "unknown sort criterion")
	}

	index := s.currentIndex
	if t, ok := s.currentLocked(); ok && t.Name != before {
		s.logger.Warn("sort changed the track at the current index",
			slog.Int("index", index),
			slog.String("was", before),
			slog.String("now", t.Name))
	}
	catalog := slices.Clone(s.catalog)
	s.mu.Unlock()

	s.persistCatalog(catalog)
	s.bus.Publish(domain.NewCatalogSortedEvent(criterion, catalog, index))
	return nil
}

func (s *SessionService) persistCatalog(tracks []domain.Track) {
	if s.catalogDB == nil {
		return
	}
	if err := s.catalogDB.SaveCatalog(tracks); err != nil {
		s.logger.Warn("failed to save catalog", slog.Any("error", err))
	}
}

// Search returns catalog tracks whose title-or-name or artist contains query,
// case-insensitively. An empty query returns the whole catalog.
func (s *SessionService) Search(query string) []domain.Track {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	if q == "" {
		return slices.Clone(s.catalog)
	}
	return lo.Filter(s.catalog, func(t domain.Track, _ int) bool {
		return strings.Contains(strings.ToLower(t.DisplayTitle()), q) ||
			strings.Contains(strings.ToLower(t.Artist), q)
	})
}

// Recent returns up to n recently played names, most recent first. n <= 0 means all.
func (s *SessionService) Recent(n int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.recent) {
		n = len(s.recent)
	}
	return slices.Clone(s.recent[:n])
}

// Popular returns up to n play counts, highest first, ties by name. n <= 0 means all.
func (s *SessionService) Popular(n int) []domain.PlayCount {
	s.mu.RLock()
	counts := lo.MapToSlice(s.playCounts, func(name string, count int) domain.PlayCount {
		return domain.PlayCount{Name: name, Count: count}
	})
	s.mu.RUnlock()

	slices.SortFunc(counts, func(a, b domain.PlayCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if n > 0 && n < len(counts) {
		counts = counts[:n]
	}
	return counts
}

// PlayCount returns how many times name has been opened.
func (s *SessionService) PlayCount(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playCounts[name]
}

// Catalog returns a copy of the catalog.
func (s *SessionService) Catalog() []domain.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.catalog)
}

// CurrentTrack returns the selected track, if any.
func (s *SessionService) CurrentTrack() (domain.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentLocked()
}

// CurrentIndex returns the selected index, or domain.NoTrack.
func (s *SessionService) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentIndex
}

// Status returns the playback status as seen by the session.
func (s *SessionService) Status() domain.PlaybackStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Snapshot returns a read-only view of the session.
func (s *SessionService) Snapshot() domain.SessionSnapshot {
	s.mu.RLock()
	snap := domain.SessionSnapshot{
		Catalog:      slices.Clone(s.catalog),
		CurrentIndex: s.currentIndex,
		Status:       s.status,
		Shuffle:      s.shuffle,
		Repeat:       s.repeat,
		Volume:       s.volume,
		Equalizer:    s.equalizer,
	}
	if t, ok := s.currentLocked(); ok {
		snap.CurrentTrack = &t
	}
	playing := s.status == domain.StatusPlaying
	s.mu.RUnlock()

	if playing {
		if pos, err := s.transport.Position(); err == nil {
			snap.Position = pos
		}
	}
	return snap
}

// Shutdown stops the progress routine, detaches from the bus and stops playback.
func (s *SessionService) Shutdown() error {
	s.mu.Lock()
	if s.updateRunning {
		close(s.stopUpdate)
		s.updateRunning = false
	}
	subs := s.subs
	s.subs = nil
	s.ticket++
	s.playingTicket = 0
	s.status = domain.StatusStopped
	s.mu.Unlock()

	s.updateWg.Wait()

	for _, id := range subs {
		s.bus.Unsubscribe(id)
	}
	return s.transport.Stop()
}

// startUpdateRoutine starts a goroutine that periodically publishes progress events.
func (s *SessionService) startUpdateRoutine() {
	s.mu.Lock()
	if s.updateRunning {
		s.mu.Unlock()
		return
	}
	s.updateRunning = true
	s.updateWg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.updateWg.Done()
		ticker := time.NewTicker(s.updateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopUpdate:
				return
			case <-ticker.C:
				s.publishProgressUpdate()
			}
		}
	}()
}

// publishProgressUpdate publishes a progress event while a track is playing
// and someone listens for it.
func (s *SessionService) publishProgressUpdate() {
	s.mu.RLock()
	playing := s.status == domain.StatusPlaying
	s.mu.RUnlock()

	if !playing || !s.bus.HasSubscribers(domain.EventTrackProgress) {
		return
	}

	position, err := s.transport.Position()
	if err != nil {
		return
	}
	duration, err := s.transport.Duration()
	if err != nil {
		return
	}
	s.bus.Publish(domain.NewTrackProgressEvent(position, duration))
}
