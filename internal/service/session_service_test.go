package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	blobmemory "github.com/tejashwikalptaru/mrytune/internal/adapter/blobstore/memory"
	"github.com/tejashwikalptaru/mrytune/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/mrytune/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/mrytune/internal/adapter/transport/mock"
	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/logger"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
	"github.com/tejashwikalptaru/mrytune/internal/testutil"
)

// stubFetcher serves bytes from a map and fails for URLs listed in fail.
type stubFetcher struct {
	mu    sync.Mutex
	data  map[string][]byte
	fail  map[string]bool
	calls []string
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{data: make(map[string][]byte), fail: make(map[string]bool)}
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, url)
	if f.fail[url] {
		return nil, domain.NewFetchError(url, 0, errors.New("connection refused"))
	}
	if data, ok := f.data[url]; ok {
		return data, nil
	}
	return nil, domain.NewFetchError(url, 404, nil)
}

type sessionFixture struct {
	session   *SessionService
	bus       *eventbus.SyncEventBus
	store     *blobmemory.Store
	transport *mock.Transport
	fetcher   *stubFetcher
	liked     *memory.LikedRepository
}

func newSessionFixture(t *testing.T, store ports.BlobStore) *sessionFixture {
	t.Helper()

	bus := eventbus.NewSyncEventBus()
	mem := blobmemory.New()
	if store == nil {
		store = mem
	}
	transport := mock.NewTransport(bus)
	fetcher := newStubFetcher()
	prefs := test.NewApp().Preferences()
	liked := memory.NewLikedRepository(prefs)

	session := NewSessionService(
		logger.NewTestLogger(),
		bus,
		store,
		transport,
		fetcher,
		liked,
		memory.NewPreferencesRepository(prefs),
		memory.NewCatalogRepository(prefs),
	)
	t.Cleanup(func() {
		_ = session.Shutdown()
		_ = bus.Close()
	})

	return &sessionFixture{
		session:   session,
		bus:       bus,
		store:     mem,
		transport: transport,
		fetcher:   fetcher,
		liked:     liked,
	}
}

// verifyNoLeaksAfterCleanup checks for leaks once the fixture cleanups registered later have run.
func verifyNoLeaksAfterCleanup(t *testing.T) {
	t.Helper()
	opts := append(testutil.IgnoreBackgroundGoroutines(), goleak.IgnoreCurrent())
	t.Cleanup(func() {
		testutil.VerifyNoLeaks(t, opts...)
	})
}

func makeTracks(names ...string) []domain.Track {
	tracks := make([]domain.Track, len(names))
	for i, name := range names {
		tracks[i] = domain.Track{Name: name, SourceURL: "https://cdn.example.com/" + name}
	}
	return tracks
}

func TestSessionService_OpenCommitsStateWhenPlaybackFails(t *testing.T) {
	verifyNoLeaksAfterCleanup(t)

	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("a.mp3", "b.mp3"))
	f.transport.SetFailPlay(true)

	var rejected []domain.PlaybackRejectedEvent
	f.bus.Subscribe(domain.EventPlaybackRejected, func(e domain.Event) {
		rejected = append(rejected, e.(domain.PlaybackRejectedEvent))
	})

	require.NoError(t, f.session.Open(context.Background(), 1))

	assert.Equal(t, 1, f.session.CurrentIndex())
	assert.Equal(t, 1, f.session.PlayCount("b.mp3"))
	assert.Equal(t, []string{"b.mp3"}, f.session.Recent(0))
	assert.Equal(t, domain.StatusPaused, f.session.Status())
	require.Len(t, rejected, 1)
	assert.ErrorIs(t, rejected[0].Error, domain.ErrPlaybackRejected)

	// a later resume hands the source over again without counting another play
	f.transport.SetFailPlay(false)
	require.NoError(t, f.session.Resume(context.Background()))
	assert.Equal(t, domain.StatusPlaying, f.session.Status())
	assert.Equal(t, 1, f.session.PlayCount("b.mp3"))
}

func TestSessionService_OpenRejectsBadInput(t *testing.T) {
	f := newSessionFixture(t, nil)

	err := f.session.Open(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrEmptyCatalog)

	f.session.ReplaceCatalog(makeTracks("a", "b", "c"))
	for _, index := range []int{-1, 3, 100} {
		err := f.session.Open(context.Background(), index)
		assert.ErrorIs(t, err, domain.ErrInvalidIndex, "index %d", index)
	}

	assert.Equal(t, domain.NoTrack, f.session.CurrentIndex())
	assert.Empty(t, f.session.Recent(0))
	assert.Empty(t, f.session.Popular(0))
	assert.Empty(t, f.transport.Plays())
}

func TestSessionService_RecentIsCappedAndDeduplicated(t *testing.T) {
	f := newSessionFixture(t, nil)

	names := make([]string, 40)
	for i := range names {
		names[i] = fmt.Sprintf("track-%02d", i)
	}
	f.session.ReplaceCatalog(makeTracks(names...))
	ctx := context.Background()

	for i := range names {
		require.NoError(t, f.session.Open(ctx, i))
	}
	recent := f.session.Recent(0)
	assert.Len(t, recent, domain.MaxRecent)
	assert.Equal(t, "track-39", recent[0])
	assert.Equal(t, "track-10", recent[domain.MaxRecent-1])

	require.NoError(t, f.session.Open(ctx, 20))
	require.NoError(t, f.session.Open(ctx, 20))
	recent = f.session.Recent(0)
	assert.Len(t, recent, domain.MaxRecent)
	assert.Equal(t, "track-20", recent[0])

	seen := make(map[string]bool)
	for _, name := range recent {
		assert.False(t, seen[name], "duplicate %s", name)
		seen[name] = true
	}
	assert.Equal(t, 3, f.session.PlayCount("track-20"))
	assert.Equal(t, []string{"track-20", "track-39"}, f.session.Recent(2))
}

func TestSessionService_ToggleLikeTwiceRestoresMembership(t *testing.T) {
	f := newSessionFixture(t, nil)

	liked, err := f.session.ToggleLike("a.mp3")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, f.session.IsLiked("a.mp3"))

	persisted, err := f.liked.LoadLiked()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mp3"}, persisted)

	liked, err = f.session.ToggleLike("a.mp3")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, f.session.Liked())

	persisted, err = f.liked.LoadLiked()
	require.NoError(t, err)
	assert.Empty(t, persisted)

	_, err = f.session.ToggleLike("")
	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestSessionService_ToggleLikeCurrent(t *testing.T) {
	f := newSessionFixture(t, nil)

	_, err := f.session.ToggleLikeCurrent()
	assert.ErrorIs(t, err, domain.ErrNoTrackSelected)

	f.session.ReplaceCatalog(makeTracks("a", "b"))
	require.NoError(t, f.session.Open(context.Background(), 1))

	liked, err := f.session.ToggleLikeCurrent()
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, []string{"b"}, f.session.Liked())
}

func TestSessionService_SaveOfflineIsolatesFailures(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("A", "B", "C"))
	f.fetcher.data["https://cdn.example.com/A"] = []byte("aaa")
	f.fetcher.fail["https://cdn.example.com/B"] = true
	f.fetcher.data["https://cdn.example.com/C"] = []byte("ccccc")

	var saved []string
	var failed []string
	var completed int
	f.bus.Subscribe(domain.EventTrackSaved, func(e domain.Event) {
		saved = append(saved, e.(domain.TrackSavedEvent).Name)
	})
	f.bus.Subscribe(domain.EventSaveFailed, func(e domain.Event) {
		failed = append(failed, e.(domain.SaveFailedEvent).Name)
	})
	f.bus.Subscribe(domain.EventSaveCompleted, func(domain.Event) { completed++ })

	results := f.session.SaveOffline(context.Background(), nil)
	require.Len(t, results, 3)
	assert.True(t, results[0].OK())
	assert.ErrorIs(t, results[1].Err, domain.ErrNetworkFailure)
	assert.True(t, results[2].OK())
	assert.Equal(t, 5, results[2].Size)

	ctx := context.Background()
	data, err := f.store.Get(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []byte("aaa"), data)
	_, err = f.store.Get(ctx, "B")
	assert.ErrorIs(t, err, domain.ErrBlobNotFound)
	_, err = f.store.Get(ctx, "C")
	require.NoError(t, err)

	catalog := f.session.Catalog()
	assert.Equal(t, "A", catalog[0].CachedKey)
	assert.Empty(t, catalog[1].CachedKey)
	assert.Equal(t, "C", catalog[2].CachedKey)

	assert.Equal(t, []string{"A", "C"}, saved)
	assert.Equal(t, []string{"B"}, failed)
	assert.Equal(t, 1, completed)
}

func TestSessionService_SaveOfflineStoresRawBytesWithoutFetching(t *testing.T) {
	f := newSessionFixture(t, nil)
	tracks := makeTracks("local.mp3")
	tracks[0].Data = []byte("raw")
	f.session.ReplaceCatalog(tracks)

	results := f.session.SaveOffline(context.Background(), []string{"local.mp3", "missing.mp3"})
	require.Len(t, results, 2)

	byName := map[string]domain.SaveResult{}
	for _, r := range results {
		byName[r.Name] = r
	}
	assert.True(t, byName["local.mp3"].OK())
	assert.ErrorIs(t, byName["missing.mp3"].Err, domain.ErrTrackNotFound)
	assert.Empty(t, f.fetcher.calls)

	data, err := f.store.Get(context.Background(), "local.mp3")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), data)
}

func TestSessionService_SaveOfflineStoreFailure(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("A"))
	f.fetcher.data["https://cdn.example.com/A"] = []byte("aaa")
	f.store.SetFailPut(true)

	results := f.session.SaveOffline(context.Background(), nil)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, domain.ErrStorageUnavailable)
	assert.Empty(t, f.session.Catalog()[0].CachedKey)
}

func TestSessionService_SaveOfflineCancelled(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("A", "B"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := f.session.SaveOffline(ctx, nil)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
	assert.Equal(t, 0, f.store.Len())
}

func TestSessionService_ShuffleReachesEveryIndex(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("a", "b", "c", "d", "e"))
	f.session.SetRand(rand.New(rand.NewPCG(7, 11)))
	f.session.SetShuffle(true)

	seen := make(map[int]bool)
	for range 200 {
		require.NoError(t, f.session.Next(context.Background()))
		index := f.session.CurrentIndex()
		require.GreaterOrEqual(t, index, 0)
		require.Less(t, index, 5)
		seen[index] = true
	}
	assert.Len(t, seen, 5)
}

func TestSessionService_NextAtEndWithoutRepeat(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("a", "b", "c"))
	ctx := context.Background()

	var ended []int
	f.bus.Subscribe(domain.EventCatalogEnded, func(e domain.Event) {
		ended = append(ended, e.(domain.CatalogEndedEvent).LastIndex)
	})

	require.NoError(t, f.session.Open(ctx, 2))
	require.NoError(t, f.session.Next(ctx))

	assert.Equal(t, 2, f.session.CurrentIndex())
	assert.Equal(t, 1, f.session.PlayCount("c"))
	assert.Equal(t, domain.StatusStopped, f.session.Status())
	assert.Equal(t, domain.StatusStopped, f.transport.Status())
	assert.Equal(t, []int{2}, ended)
}

func TestSessionService_NextAtEndWithRepeat(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("a", "b", "c"))
	f.session.SetRepeat(true)
	ctx := context.Background()

	require.NoError(t, f.session.Open(ctx, 2))
	require.NoError(t, f.session.Next(ctx))

	assert.Equal(t, 0, f.session.CurrentIndex())
}

func TestSessionService_NextFromNothingOpensFirst(t *testing.T) {
	f := newSessionFixture(t, nil)
	assert.ErrorIs(t, f.session.Next(context.Background()), domain.ErrEmptyCatalog)

	f.session.ReplaceCatalog(makeTracks("a", "b"))
	require.NoError(t, f.session.Next(context.Background()))
	assert.Equal(t, 0, f.session.CurrentIndex())
}

func TestSessionService_PreviousNeverWraps(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("a", "b", "c"))
	ctx := context.Background()

	require.NoError(t, f.session.Open(ctx, 1))
	require.NoError(t, f.session.Previous(ctx))
	assert.Equal(t, 0, f.session.CurrentIndex())

	require.NoError(t, f.session.Previous(ctx))
	assert.Equal(t, 0, f.session.CurrentIndex())
	assert.Equal(t, 1, f.session.PlayCount("a"))
}

func TestSessionService_TrackEndAdvances(t *testing.T) {
	verifyNoLeaksAfterCleanup(t)

	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("a", "b"))
	ctx := context.Background()

	require.NoError(t, f.session.Open(ctx, 0))
	f.transport.SimulateEnd()
	assert.Equal(t, 1, f.session.CurrentIndex())

	src, ok := f.transport.Current()
	require.True(t, ok)
	assert.Equal(t, "b", src.TrackName)

	// end of the last track without repeat stops
	f.transport.SimulateEnd()
	assert.Equal(t, 1, f.session.CurrentIndex())
	assert.Equal(t, domain.StatusStopped, f.session.Status())
}

func TestSessionService_TrackEndWithRepeatReplays(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("a", "b"))
	f.session.SetRepeat(true)

	require.NoError(t, f.session.Open(context.Background(), 0))
	f.transport.SimulateEnd()

	assert.Equal(t, 0, f.session.CurrentIndex())
	assert.Equal(t, 2, f.session.PlayCount("a"))
	assert.Equal(t, domain.StatusPlaying, f.session.Status())
}

func TestSessionService_EndedWithoutSelection(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("a"))

	assert.ErrorIs(t, f.session.Ended(context.Background()), domain.ErrNoTrackSelected)
}

func TestSessionService_PrefersCachedSource(t *testing.T) {
	f := newSessionFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.store.Put(ctx, "a.mp3", []byte("cached-bytes")))

	tracks := makeTracks("a.mp3")
	tracks[0].CachedKey = "a.mp3"
	f.session.ReplaceCatalog(tracks)

	var started domain.TrackStartedEvent
	f.bus.Subscribe(domain.EventTrackStarted, func(e domain.Event) {
		started = e.(domain.TrackStartedEvent)
	})

	require.NoError(t, f.session.Open(ctx, 0))

	src, ok := f.transport.Current()
	require.True(t, ok)
	assert.True(t, src.Cached)
	assert.Equal(t, []byte("cached-bytes"), src.Data)
	assert.True(t, started.Cached)
}

func TestSessionService_FallsBackToURLOnMissOrFailure(t *testing.T) {
	f := newSessionFixture(t, nil)
	tracks := makeTracks("a.mp3", "b.mp3")
	tracks[0].CachedKey = "a.mp3"
	tracks[1].CachedKey = "b.mp3"
	f.session.ReplaceCatalog(tracks)
	ctx := context.Background()

	require.NoError(t, f.session.Open(ctx, 0))
	src, _ := f.transport.Current()
	assert.False(t, src.Cached)
	assert.Equal(t, "https://cdn.example.com/a.mp3", src.URL)

	require.NoError(t, f.store.Put(ctx, "b.mp3", []byte("b")))
	f.store.SetFailGet(true)
	require.NoError(t, f.session.Open(ctx, 1))
	src, _ = f.transport.Current()
	assert.False(t, src.Cached)
	assert.Equal(t, "https://cdn.example.com/b.mp3", src.URL)
}

// gatedStore blocks Get for one key until released.
type gatedStore struct {
	*blobmemory.Store
	key     string
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == g.key {
		close(g.entered)
		<-g.release
	}
	return g.Store.Get(ctx, key)
}

func TestSessionService_DiscardsStaleResolution(t *testing.T) {
	verifyNoLeaksAfterCleanup(t)

	gate := &gatedStore{
		Store:   blobmemory.New(),
		key:     "slow.mp3",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	require.NoError(t, gate.Put(context.Background(), "slow.mp3", []byte("slow")))

	f := newSessionFixture(t, gate)
	tracks := makeTracks("slow.mp3", "fast.mp3")
	tracks[0].CachedKey = "slow.mp3"
	f.session.ReplaceCatalog(tracks)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- f.session.Open(ctx, 0) }()

	select {
	case <-gate.entered:
	case <-time.After(time.Second):
		t.Fatal("slow resolution never started")
	}

	require.NoError(t, f.session.Open(ctx, 1))
	close(gate.release)
	require.NoError(t, <-done)

	plays := f.transport.Plays()
	require.Len(t, plays, 1)
	assert.Equal(t, "fast.mp3", plays[0].TrackName)
	assert.Equal(t, 1, f.session.CurrentIndex())
	assert.Equal(t, 1, f.session.PlayCount("slow.mp3"))
}

func TestSessionService_IgnoresStaleTrackEnd(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("a", "b", "c"))
	ctx := context.Background()

	require.NoError(t, f.session.Open(ctx, 0))
	src, _ := f.transport.Current()
	require.NoError(t, f.session.Open(ctx, 2))

	f.bus.Publish(domain.NewTrackEndedEvent(src.Ticket, src.TrackName))
	assert.Equal(t, 2, f.session.CurrentIndex())
}

func TestSessionService_TrackLoadedSetsDuration(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("a"))
	f.transport.SetDuration(90 * time.Second)

	require.NoError(t, f.session.Open(context.Background(), 0))
	assert.Equal(t, 90*time.Second, f.session.Catalog()[0].Duration)
}

// countingTransport counts position reads.
type countingTransport struct {
	*mock.Transport
	positions atomic.Int32
}

func (c *countingTransport) Position() (time.Duration, error) {
	c.positions.Add(1)
	return c.Transport.Position()
}

func TestSessionService_ProgressOnlyWithListeners(t *testing.T) {
	bus := eventbus.NewSyncEventBus()
	defer bus.Close()
	prefs := test.NewApp().Preferences()
	transport := &countingTransport{Transport: mock.NewTransport(bus)}

	session := NewSessionService(logger.NewTestLogger(), bus, blobmemory.New(), transport, newStubFetcher(),
		memory.NewLikedRepository(prefs), memory.NewPreferencesRepository(prefs), memory.NewCatalogRepository(prefs))
	defer session.Shutdown()

	session.ReplaceCatalog(makeTracks("a"))
	require.NoError(t, session.Open(context.Background(), 0))
	require.NoError(t, transport.Seek(42*time.Second))

	session.publishProgressUpdate()
	assert.Zero(t, transport.positions.Load())

	progress := make(chan domain.TrackProgressEvent, 1)
	id := bus.Subscribe(domain.EventTrackProgress, func(e domain.Event) {
		select {
		case progress <- e.(domain.TrackProgressEvent):
		default:
		}
	})
	defer bus.Unsubscribe(id)

	session.publishProgressUpdate()
	select {
	case p := <-progress:
		assert.Equal(t, 42*time.Second, p.Position)
		assert.Equal(t, mock.DefaultDuration, p.Duration)
	case <-time.After(time.Second):
		t.Fatal("no progress event")
	}
	assert.Positive(t, transport.positions.Load())
}

func TestSessionService_SortKeepsIndexValue(t *testing.T) {
	f := newSessionFixture(t, nil)
	tracks := makeTracks("zeta", "alpha", "mid")
	tracks[2].Title = "Beta"
	f.session.ReplaceCatalog(tracks)
	ctx := context.Background()

	require.NoError(t, f.session.Open(ctx, 0))
	require.NoError(t, f.session.Sort(domain.SortAlphabetical))

	names := func() []string {
		var out []string
		for _, tr := range f.session.Catalog() {
			out = append(out, tr.Name)
		}
		return out
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names())
	assert.Equal(t, 0, f.session.CurrentIndex())

	require.NoError(t, f.session.Open(ctx, 2))
	require.NoError(t, f.session.Open(ctx, 2))
	require.NoError(t, f.session.Open(ctx, 1))
	require.NoError(t, f.session.Sort(domain.SortPopularity))
	assert.Equal(t, []string{"zeta", "mid", "alpha"}, names())

	err := f.session.Sort("random")
	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestSessionService_SortAlphabeticalCollates(t *testing.T) {
	f := newSessionFixture(t, nil)
	tracks := makeTracks("z.mp3", "e.mp3", "a.mp3", "b.mp3", "o.mp3")
	tracks[0].Title = "zebra"
	tracks[1].Title = "Élan"
	tracks[2].Title = "apple"
	tracks[3].Title = "Banana"
	tracks[4].Title = "Öl"
	f.session.ReplaceCatalog(tracks)

	require.NoError(t, f.session.Sort(domain.SortAlphabetical))

	var titles []string
	for _, tr := range f.session.Catalog() {
		titles = append(titles, tr.Title)
	}
	assert.Equal(t, []string{"apple", "Banana", "Élan", "Öl", "zebra"}, titles)
}

func TestSessionService_SortPopularityIsStable(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("c", "a", "b"))

	require.NoError(t, f.session.Sort(domain.SortPopularity))

	var names []string
	for _, tr := range f.session.Catalog() {
		names = append(names, tr.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestSessionService_SearchAndPopular(t *testing.T) {
	f := newSessionFixture(t, nil)
	tracks := makeTracks("one.mp3", "two.mp3", "three.mp3")
	tracks[0].Artist = "Nina Simone"
	tracks[1].Title = "Feeling Good"
	f.session.ReplaceCatalog(tracks)
	ctx := context.Background()

	assert.Len(t, f.session.Search("nina"), 1)
	assert.Len(t, f.session.Search("GOOD"), 1)
	assert.Len(t, f.session.Search("mp3"), 2)
	assert.Len(t, f.session.Search(""), 3)

	require.NoError(t, f.session.Open(ctx, 2))
	require.NoError(t, f.session.Open(ctx, 2))
	require.NoError(t, f.session.Open(ctx, 0))
	require.NoError(t, f.session.Open(ctx, 1))

	popular := f.session.Popular(0)
	require.Len(t, popular, 3)
	assert.Equal(t, domain.PlayCount{Name: "three.mp3", Count: 2}, popular[0])
	assert.Equal(t, "one.mp3", popular[1].Name)
	assert.Len(t, f.session.Popular(1), 1)
}

func TestSessionService_PauseResumeStop(t *testing.T) {
	f := newSessionFixture(t, nil)
	assert.ErrorIs(t, f.session.Pause(), domain.ErrNoTrackSelected)

	f.session.ReplaceCatalog(makeTracks("a"))
	ctx := context.Background()
	require.NoError(t, f.session.Open(ctx, 0))

	require.NoError(t, f.session.TogglePlay(ctx))
	assert.Equal(t, domain.StatusPaused, f.session.Status())
	assert.Equal(t, domain.StatusPaused, f.transport.Status())

	require.NoError(t, f.session.TogglePlay(ctx))
	assert.Equal(t, domain.StatusPlaying, f.session.Status())

	require.NoError(t, f.session.Seek(30*time.Second))
	assert.ErrorIs(t, f.session.Seek(-time.Second), domain.ErrInvalidPosition)

	require.NoError(t, f.session.Stop())
	assert.Equal(t, domain.StatusStopped, f.session.Status())
	assert.Equal(t, 0, f.session.CurrentIndex())
	assert.ErrorIs(t, f.session.Seek(time.Second), domain.ErrNoTrackSelected)
}

func TestSessionService_PreferencesPersistAndRestore(t *testing.T) {
	bus := eventbus.NewSyncEventBus()
	defer bus.Close()
	prefs := test.NewApp().Preferences()
	transport := mock.NewTransport(bus)

	newSession := func() *SessionService {
		return NewSessionService(
			logger.NewTestLogger(),
			bus,
			blobmemory.New(),
			transport,
			newStubFetcher(),
			memory.NewLikedRepository(prefs),
			memory.NewPreferencesRepository(prefs),
			memory.NewCatalogRepository(prefs),
		)
	}

	first := newSession()
	first.ReplaceCatalog(makeTracks("a", "b"))
	first.SetShuffle(true)
	first.SetRepeat(true)
	require.NoError(t, first.SetVolume(0.4))
	require.NoError(t, first.SetEqualizer(domain.Equalizer{Low: 3, Mid: -2, High: 6}))
	_, err := first.ToggleLike("b")
	require.NoError(t, err)
	assert.ErrorIs(t, first.SetVolume(1.5), domain.ErrInvalidVolume)
	require.NoError(t, first.Shutdown())

	second := newSession()
	defer second.Shutdown()

	snap := second.Snapshot()
	assert.True(t, snap.Shuffle)
	assert.True(t, snap.Repeat)
	assert.InDelta(t, 0.4, snap.Volume, 1e-9)
	assert.Equal(t, domain.Equalizer{Low: 3, Mid: -2, High: 6}, snap.Equalizer)
	assert.Len(t, snap.Catalog, 2)
	assert.Equal(t, domain.NoTrack, snap.CurrentIndex)
	assert.Nil(t, snap.CurrentTrack)
	assert.True(t, second.IsLiked("b"))
	assert.InDelta(t, 0.4, transport.Volume(), 1e-9)
}

func TestSessionService_PlayByName(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("a", "b"))

	require.NoError(t, f.session.PlayByName(context.Background(), "b"))
	assert.Equal(t, 1, f.session.CurrentIndex())
	assert.ErrorIs(t, f.session.PlayByName(context.Background(), "zzz"), domain.ErrTrackNotFound)
}

func TestSessionService_ReplaceCatalogClearsSelection(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("a", "b"))
	require.NoError(t, f.session.Open(context.Background(), 1))

	f.session.ReplaceCatalog(makeTracks("c"))
	assert.Equal(t, domain.NoTrack, f.session.CurrentIndex())
	assert.Equal(t, domain.StatusStopped, f.transport.Status())
	assert.Equal(t, 1, f.session.PlayCount("b"))
}

func TestSessionService_ConcurrentOpens(t *testing.T) {
	verifyNoLeaksAfterCleanup(t)

	f := newSessionFixture(t, nil)
	f.session.ReplaceCatalog(makeTracks("a", "b", "c", "d"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = f.session.Open(ctx, i%4)
		}(i)
	}
	wg.Wait()

	total := 0
	for _, pc := range f.session.Popular(0) {
		total += pc.Count
	}
	assert.Equal(t, 20, total)

	index := f.session.CurrentIndex()
	src, ok := f.transport.Current()
	require.True(t, ok)
	assert.Equal(t, f.session.Catalog()[index].Name, src.TrackName)
}
