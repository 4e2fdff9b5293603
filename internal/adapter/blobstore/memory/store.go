// Package memory provides an in-process Blob Store backend.
// Entries live for the lifetime of the store; nothing is written to disk.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
)

const backendName = "memory"

var errSimulated = errors.New("simulated storage failure")

// Store is a map-backed BlobStore. Payloads are copied on the way in and out
// so callers can never mutate a stored entry.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
	closed  bool

	// failPut makes every Put fail, for exercising storage failure paths
	failPut bool
	failGet bool
}

// New creates an empty memory store.
func New() *Store {
	return &Store{entries: make(map[string][]byte)}
}

// Put stores a copy of data under key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return domain.ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError(backendName, "put", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.NewStorageError(backendName, "put", key, domain.ErrClosed)
	}
	if s.failPut {
		return domain.NewStorageError(backendName, "put", key, errSimulated)
	}

	s.entries[key] = append([]byte(nil), data...)
	return nil
}

// Get returns a copy of the payload stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, domain.ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError(backendName, "get", key, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.NewStorageError(backendName, "get", key, domain.ErrClosed)
	}
	if s.failGet {
		return nil, domain.NewStorageError(backendName, "get", key, errSimulated)
	}

	data, ok := s.entries[key]
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return append([]byte(nil), data...), nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// SetFailPut makes subsequent Puts fail with a storage error.
func (s *Store) SetFailPut(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPut = fail
}

// SetFailGet makes subsequent Gets fail with a storage error.
func (s *Store) SetFailGet(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet = fail
}

// Close drops every entry. Further calls fail with a storage error.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	return nil
}

var _ ports.BlobStore = (*Store)(nil)
