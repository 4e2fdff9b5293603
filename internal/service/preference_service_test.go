package service

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/mrytune/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/logger"
)

func newTestPreferenceService() (*PreferenceService, *memory.PreferencesRepository, *memory.LikedRepository, *memory.CatalogRepository) {
	prefs := test.NewApp().Preferences()
	p := memory.NewPreferencesRepository(prefs)
	l := memory.NewLikedRepository(prefs)
	c := memory.NewCatalogRepository(prefs)
	return NewPreferenceService(logger.NewTestLogger(), p, l, c), p, l, c
}

func TestPreferenceService_LoadDefaults(t *testing.T) {
	svc, _, _, _ := newTestPreferenceService()

	stored, err := svc.Load()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, stored.Volume, 1e-9)
	assert.False(t, stored.Shuffle)
	assert.False(t, stored.Repeat)
	assert.Equal(t, domain.Equalizer{}, stored.Equalizer)
	assert.Empty(t, stored.Liked)
	assert.Zero(t, stored.Tracks)
}

func TestPreferenceService_LoadAndReset(t *testing.T) {
	svc, p, l, c := newTestPreferenceService()

	require.NoError(t, p.SaveVolume(0.25))
	require.NoError(t, p.SaveRepeat(true))
	require.NoError(t, p.SaveEqualizer(domain.Equalizer{High: 4}))
	require.NoError(t, l.SaveLiked([]string{"a", "b"}))
	require.NoError(t, c.SaveCatalog(makeTracks("a", "b", "c")))

	stored, err := svc.Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.25, stored.Volume, 1e-9)
	assert.True(t, stored.Repeat)
	assert.Equal(t, domain.Equalizer{High: 4}, stored.Equalizer)
	assert.Equal(t, []string{"a", "b"}, stored.Liked)
	assert.Equal(t, 3, stored.Tracks)

	require.NoError(t, svc.Reset())

	stored, err = svc.Load()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, stored.Volume, 1e-9)
	assert.False(t, stored.Repeat)
	assert.Empty(t, stored.Liked)
	assert.Zero(t, stored.Tracks)
}
