package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/mrytune/internal/domain"
)

func TestStore_PutGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a.mp3", []byte{1, 2, 3}))

	got, err := s.Get(ctx, "a.mp3")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestStore_GetMissing(t *testing.T) {
	s := New()

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrBlobNotFound)
	assert.NotErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestStore_EmptyKey(t *testing.T) {
	s := New()
	ctx := context.Background()

	assert.ErrorIs(t, s.Put(ctx, "", []byte{1}), domain.ErrInvalidKey)
	_, err := s.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
}

func TestStore_OverwriteAndIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()

	payload := []byte("first")
	require.NoError(t, s.Put(ctx, "k", payload))
	payload[0] = 'X'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))

	got[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, "first", string(again))

	require.NoError(t, s.Put(ctx, "k", []byte("second")))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
	assert.Equal(t, 1, s.Len())
}

func TestStore_FailedPutKeepsPrevious(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("old")))
	s.SetFailPut(true)

	err := s.Put(ctx, "k", []byte("new"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
}

func TestStore_FailGet(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "k", []byte("v")))

	s.SetFailGet(true)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestStore_Closed(t *testing.T) {
	s := New()
	require.NoError(t, s.Close())

	err := s.Put(context.Background(), "k", []byte("v"))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.ErrorIs(t, err, domain.ErrClosed)
}

func TestStore_ConcurrentDistinctKeys(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Put(ctx, fmt.Sprintf("track-%d", i), []byte{byte(i)}))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
	got, err := s.Get(ctx, "track-7")
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, got)
}
