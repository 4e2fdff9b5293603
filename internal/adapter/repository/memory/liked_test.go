package memory

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
)

func TestLikedRepository_RoundTrip(t *testing.T) {
	repo := NewLikedRepository(test.NewApp().Preferences())

	names, err := repo.LoadLiked()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, repo.SaveLiked([]string{"b.mp3", "a.mp3"}))
	names, err = repo.LoadLiked()
	require.NoError(t, err)
	assert.Equal(t, []string{"b.mp3", "a.mp3"}, names)

	require.NoError(t, repo.SaveLiked(nil))
	names, err = repo.LoadLiked()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLikedRepository_Corrupted(t *testing.T) {
	app := test.NewApp()
	app.Preferences().SetString(likedKey, "not-json")

	_, err := NewLikedRepository(app.Preferences()).LoadLiked()
	var repoErr *domain.RepositoryError
	assert.ErrorAs(t, err, &repoErr)
}
