// Package domain defines domain-specific errors.
// These errors represent business logic failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrEmptyCatalog is returned when an operation requires a non-empty catalog.
	ErrEmptyCatalog = errors.New("catalog is empty")

	// ErrInvalidIndex is returned when a catalog index is out of bounds.
	ErrInvalidIndex = errors.New("invalid catalog index")

	// ErrTrackNotFound is returned when a requested track cannot be found.
	ErrTrackNotFound = errors.New("track not found")

	// ErrNoTrackSelected is returned when an operation needs a current track and there is none.
	ErrNoTrackSelected = errors.New("no track selected")

	// ErrBlobNotFound is returned by a blob store when the key has no entry.
	// This is a normal cache miss, not a failure.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrStorageUnavailable is returned when the blob store cannot be used.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidKey is returned when a blob key is empty.
	ErrInvalidKey = errors.New("invalid blob key")

	// ErrNetworkFailure is returned when fetching a source fails.
	ErrNetworkFailure = errors.New("network failure")

	// ErrPlaybackRejected is returned by a transport that refuses to start.
	ErrPlaybackRejected = errors.New("playback rejected")

	// ErrPlaylistNotFound is returned when a playlist does not exist.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrPlaylistExists is returned when creating a playlist whose name is taken.
	ErrPlaylistExists = errors.New("playlist already exists")

	// ErrInvalidVolume is returned when the volume is out of valid range (0.0-1.0).
	ErrInvalidVolume = errors.New("invalid volume: must be between 0.0 and 1.0")

	// ErrInvalidPosition is returned when seeking to an invalid position.
	ErrInvalidPosition = errors.New("invalid playback position")

	// ErrUnsupportedFormat is returned when an audio file format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrImportInProgress is returned when an import is started while another runs.
	ErrImportInProgress = errors.New("import already in progress")

	// ErrClosed is returned by components used after Close.
	ErrClosed = errors.New("component closed")
)

// StorageError represents a blob store failure.
type StorageError struct {
	Backend string // Backend name (e.g., "disk", "redis")
	Op      string // Operation that failed (e.g., "put", "get", "open")
	Key     string // Blob key (if applicable)
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("blob store %s %s %q: %v", e.Backend, e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("blob store %s %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is makes every StorageError match ErrStorageUnavailable.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, op, key string, err error) *StorageError {
	return &StorageError{
		Backend: backend,
		Op:      op,
		Key:     key,
		Err:     err,
	}
}

// FetchError represents a failure to retrieve a source's bytes.
type FetchError struct {
	URL    string // Source locator
	Status int    // HTTP status code (0 when not applicable)
	Err    error  // Underlying error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes every FetchError match ErrNetworkFailure.
func (e *FetchError) Is(target error) bool {
	return target == ErrNetworkFailure
}

// NewFetchError creates a new FetchError.
func NewFetchError(url string, status int, err error) *FetchError {
	return &FetchError{
		URL:    url,
		Status: status,
		Err:    err,
	}
}

// TransportError represents an error from the audio transport.
type TransportError struct {
	Op      string // Operation that failed (e.g., "play", "seek")
	Track   string // Track name (if applicable)
	Message string // Error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("transport %s failed for '%s': %s", e.Op, e.Track, e.Message)
	}
	return fmt.Sprintf("transport %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError.
func NewTransportError(op, track, message string, err error) *TransportError {
	return &TransportError{
		Op:      op,
		Track:   track,
		Message: message,
		Err:     err,
	}
}

// RepositoryError represents an error from a repository.
// This wraps persistence layer errors with additional context.
type RepositoryError struct {
	Op      string // Operation that failed (e.g., "save", "load", "delete")
	Type    string // Repository type (e.g., "liked", "playlist", "preferences")
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s.%s failed: %s", e.Type, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(op, repoType, message string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Type:    repoType,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string      // Field that failed validation
	Value   interface{} // Value that failed validation
	Message string      // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "SessionService", "LibraryService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
