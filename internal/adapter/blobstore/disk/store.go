// Package disk provides a directory-backed Blob Store backend.
//
// Each key maps to one file whose name is the hex encoding of the key, so any
// track name is a valid key regardless of path separators or reserved characters.
// Writes go to a temporary file in the same directory and are renamed into place,
// which keeps the previous payload intact when a write fails part way.
package disk

import (
	"context"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
)

const (
	backendName = "disk"
	blobExt     = ".blob"
)

// Store keeps one file per entry under dir.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New opens (creating if needed) a store rooted at dir.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, domain.NewStorageError(backendName, "open", "", errors.New("directory is required"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.NewStorageError(backendName, "open", "", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		dir:    dir,
		logger: logger.With(slog.String("backend", backendName), slog.String("dir", dir)),
	}, nil
}

// Dir returns the root directory of the store.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, hex.EncodeToString([]byte(key))+blobExt)
}

// Put writes data under key atomically.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return domain.ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError(backendName, "put", key, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".put-*")
	if err != nil {
		return domain.NewStorageError(backendName, "put", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return domain.NewStorageError(backendName, "put", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return domain.NewStorageError(backendName, "put", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return domain.NewStorageError(backendName, "put", key, err)
	}

	s.logger.Debug("blob stored", slog.String("key", key), slog.Int("size", len(data)))
	return nil
}

// Get reads the payload stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, domain.ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError(backendName, "get", key, err)
	}

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrBlobNotFound
	}
	if err != nil {
		return nil, domain.NewStorageError(backendName, "get", key, err)
	}
	return data, nil
}

// Close is a no-op; files stay on disk.
func (s *Store) Close() error {
	return nil
}

var _ ports.BlobStore = (*Store)(nil)
