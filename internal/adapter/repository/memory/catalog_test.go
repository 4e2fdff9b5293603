package memory

import (
	"strings"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
)

func TestCatalogRepository_RoundTrip(t *testing.T) {
	repo := NewCatalogRepository(test.NewApp().Preferences())

	tracks := []domain.Track{
		{Name: "a.mp3", SourceURL: "https://example.com/a.mp3", Title: "A", CachedKey: "a.mp3", Data: []byte("raw")},
		{Name: "b.mp3", SourceURL: "file:///music/b.mp3"},
	}
	require.NoError(t, repo.SaveCatalog(tracks))

	loaded, err := repo.LoadCatalog()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "a.mp3", loaded[0].CachedKey)
	assert.Equal(t, "A", loaded[0].Title)
	assert.Nil(t, loaded[0].Data)
	assert.Equal(t, "file:///music/b.mp3", loaded[1].SourceURL)

	require.NoError(t, repo.Clear())
	loaded, err = repo.LoadCatalog()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestCatalogRepository_DropsEmbeddedCovers(t *testing.T) {
	prefs := test.NewApp().Preferences()
	repo := NewCatalogRepository(prefs)

	tracks := []domain.Track{
		{Name: "a.mp3", SourceURL: "file:///music/a.mp3", CoverArt: "data:image/png;base64," + strings.Repeat("A", 64*1024)},
		{Name: "b.mp3", SourceURL: "https://example.com/b.mp3", CoverArt: "https://example.com/b.jpg"},
	}
	require.NoError(t, repo.SaveCatalog(tracks))

	assert.Less(t, len(prefs.String(catalogKey)), 1024)
	// The caller's tracks keep their covers.
	assert.True(t, strings.HasPrefix(tracks[0].CoverArt, "data:"))

	loaded, err := repo.LoadCatalog()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Empty(t, loaded[0].CoverArt)
	assert.Equal(t, "https://example.com/b.jpg", loaded[1].CoverArt)
}

func TestCatalogRepository_SaveNil(t *testing.T) {
	prefs := test.NewApp().Preferences()
	repo := NewCatalogRepository(prefs)

	require.NoError(t, repo.SaveCatalog(nil))
	assert.Equal(t, "[]", prefs.String(catalogKey))
}
