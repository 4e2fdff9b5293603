// Package domain defines events for the event-driven architecture.
// Events replace callbacks and enable loose coupling between the session and its collaborators.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Session events
	EventTrackOpened      EventType = "track.opened"
	EventTrackStarted     EventType = "track.started"
	EventPlaybackRejected EventType = "track.rejected"
	EventTrackPaused      EventType = "track.paused"
	EventTrackResumed     EventType = "track.resumed"
	EventTrackStopped     EventType = "track.stopped"
	EventCatalogEnded     EventType = "catalog.ended"

	// Transport events
	EventTrackLoaded   EventType = "track.loaded"
	EventTrackEnded    EventType = "track.ended"
	EventTrackProgress EventType = "track.progress"

	// Catalog events
	EventCatalogReplaced EventType = "catalog.replaced"
	EventCatalogSorted   EventType = "catalog.sorted"

	// Favorites and offline cache events
	EventLikeToggled   EventType = "like.toggled"
	EventTrackSaved    EventType = "offline.saved"
	EventSaveFailed    EventType = "offline.failed"
	EventSaveCompleted EventType = "offline.completed"

	// Playback mode events
	EventShuffleToggled   EventType = "shuffle.toggled"
	EventRepeatToggled    EventType = "repeat.toggled"
	EventVolumeChanged    EventType = "volume.changed"
	EventEqualizerChanged EventType = "equalizer.changed"

	// Playlist events
	EventPlaylistUpdated EventType = "playlist.updated"
	EventPlaylistDeleted EventType = "playlist.deleted"

	// Import events
	EventImportStarted   EventType = "import.started"
	EventImportProgress  EventType = "import.progress"
	EventImportCompleted EventType = "import.completed"
	EventImportCancelled EventType = "import.cancelled"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// TrackOpenedEvent is published when the session commits a new current track.
type TrackOpenedEvent struct {
	baseEvent
	Track  Track
	Index  int
	Ticket uint64
}

// Type returns the event type.
func (e TrackOpenedEvent) Type() EventType {
	return EventTrackOpened
}

// NewTrackOpenedEvent creates a new TrackOpenedEvent.
func NewTrackOpenedEvent(track Track, index int, ticket uint64) TrackOpenedEvent {
	return TrackOpenedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Index:     index,
		Ticket:    ticket,
	}
}

// TrackStartedEvent is published when the transport accepted a source.
type TrackStartedEvent struct {
	baseEvent
	Track  Track
	Cached bool
}

// Type returns the event type.
func (e TrackStartedEvent) Type() EventType {
	return EventTrackStarted
}

// NewTrackStartedEvent creates a new TrackStartedEvent.
func NewTrackStartedEvent(track Track, cached bool) TrackStartedEvent {
	return TrackStartedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Cached:    cached,
	}
}

// PlaybackRejectedEvent is published when the transport refused to start.
// Session bookkeeping is already committed; the track is left paused.
type PlaybackRejectedEvent struct {
	baseEvent
	Track Track
	Error error
}

// Type returns the event type.
func (e PlaybackRejectedEvent) Type() EventType {
	return EventPlaybackRejected
}

// NewPlaybackRejectedEvent creates a new PlaybackRejectedEvent.
func NewPlaybackRejectedEvent(track Track, err error) PlaybackRejectedEvent {
	return PlaybackRejectedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Error:     err,
	}
}

// TrackPausedEvent is published when playback is paused.
type TrackPausedEvent struct {
	baseEvent
	Track    Track
	Position time.Duration
}

// Type returns the event type.
func (e TrackPausedEvent) Type() EventType {
	return EventTrackPaused
}

// NewTrackPausedEvent creates a new TrackPausedEvent.
func NewTrackPausedEvent(track Track, position time.Duration) TrackPausedEvent {
	return TrackPausedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Position:  position,
	}
}

// TrackResumedEvent is published when paused playback resumes.
type TrackResumedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackResumedEvent) Type() EventType {
	return EventTrackResumed
}

// NewTrackResumedEvent creates a new TrackResumedEvent.
func NewTrackResumedEvent(track Track) TrackResumedEvent {
	return TrackResumedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackStoppedEvent is published when playback is stopped.
type TrackStoppedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackStoppedEvent) Type() EventType {
	return EventTrackStopped
}

// NewTrackStoppedEvent creates a new TrackStoppedEvent.
func NewTrackStoppedEvent(track Track) TrackStoppedEvent {
	return TrackStoppedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// CatalogEndedEvent is published when the last track ended with repeat and shuffle off.
type CatalogEndedEvent struct {
	baseEvent
	LastIndex int
}

// Type returns the event type.
func (e CatalogEndedEvent) Type() EventType {
	return EventCatalogEnded
}

// NewCatalogEndedEvent creates a new CatalogEndedEvent.
func NewCatalogEndedEvent(lastIndex int) CatalogEndedEvent {
	return CatalogEndedEvent{
		baseEvent: newBaseEvent(),
		LastIndex: lastIndex,
	}
}

// TrackLoadedEvent is published by a transport once a source is decoded and its duration known.
type TrackLoadedEvent struct {
	baseEvent
	Ticket    uint64
	TrackName string
	Duration  time.Duration
}

// Type returns the event type.
func (e TrackLoadedEvent) Type() EventType {
	return EventTrackLoaded
}

// NewTrackLoadedEvent creates a new TrackLoadedEvent.
func NewTrackLoadedEvent(ticket uint64, trackName string, duration time.Duration) TrackLoadedEvent {
	return TrackLoadedEvent{
		baseEvent: newBaseEvent(),
		Ticket:    ticket,
		TrackName: trackName,
		Duration:  duration,
	}
}

// TrackEndedEvent is published by a transport when playback reaches its natural end.
type TrackEndedEvent struct {
	baseEvent
	Ticket    uint64
	TrackName string
}

// Type returns the event type.
func (e TrackEndedEvent) Type() EventType {
	return EventTrackEnded
}

// NewTrackEndedEvent creates a new TrackEndedEvent.
func NewTrackEndedEvent(ticket uint64, trackName string) TrackEndedEvent {
	return TrackEndedEvent{
		baseEvent: newBaseEvent(),
		Ticket:    ticket,
		TrackName: trackName,
	}
}

// TrackProgressEvent is published periodically during playback.
type TrackProgressEvent struct {
	baseEvent
	Position time.Duration
	Duration time.Duration
}

// Type returns the event type.
func (e TrackProgressEvent) Type() EventType {
	return EventTrackProgress
}

// NewTrackProgressEvent creates a new TrackProgressEvent.
func NewTrackProgressEvent(position, duration time.Duration) TrackProgressEvent {
	return TrackProgressEvent{
		baseEvent: newBaseEvent(),
		Position:  position,
		Duration:  duration,
	}
}

// CatalogReplacedEvent is published when an import replaces the catalog.
type CatalogReplacedEvent struct {
	baseEvent
	Catalog []Track
}

// Type returns the event type.
func (e CatalogReplacedEvent) Type() EventType {
	return EventCatalogReplaced
}

// NewCatalogReplacedEvent creates a new CatalogReplacedEvent.
func NewCatalogReplacedEvent(catalog []Track) CatalogReplacedEvent {
	return CatalogReplacedEvent{
		baseEvent: newBaseEvent(),
		Catalog:   catalog,
	}
}

// CatalogSortedEvent is published after the catalog was reordered in place.
type CatalogSortedEvent struct {
	baseEvent
	Criterion    SortCriterion
	Catalog      []Track
	CurrentIndex int
}

// Type returns the event type.
func (e CatalogSortedEvent) Type() EventType {
	return EventCatalogSorted
}

// NewCatalogSortedEvent creates a new CatalogSortedEvent.
func NewCatalogSortedEvent(criterion SortCriterion, catalog []Track, index int) CatalogSortedEvent {
	return CatalogSortedEvent{
		baseEvent:    newBaseEvent(),
		Criterion:    criterion,
		Catalog:      catalog,
		CurrentIndex: index,
	}
}

// LikeToggledEvent is published when a track name enters or leaves the liked set.
type LikeToggledEvent struct {
	baseEvent
	Name  string
	Liked bool
}

// Type returns the event type.
func (e LikeToggledEvent) Type() EventType {
	return EventLikeToggled
}

// NewLikeToggledEvent creates a new LikeToggledEvent.
func NewLikeToggledEvent(name string, liked bool) LikeToggledEvent {
	return LikeToggledEvent{
		baseEvent: newBaseEvent(),
		Name:      name,
		Liked:     liked,
	}
}

// TrackSavedEvent is published when a track was stored in the blob store.
type TrackSavedEvent struct {
	baseEvent
	Name string
	Key  string
	Size int
}

// Type returns the event type.
func (e TrackSavedEvent) Type() EventType {
	return EventTrackSaved
}

// NewTrackSavedEvent creates a new TrackSavedEvent.
func NewTrackSavedEvent(name, key string, size int) TrackSavedEvent {
	return TrackSavedEvent{
		baseEvent: newBaseEvent(),
		Name:      name,
		Key:       key,
		Size:      size,
	}
}

// SaveFailedEvent is published when saving a single track offline failed.
type SaveFailedEvent struct {
	baseEvent
	Name  string
	Error error
}

// Type returns the event type.
func (e SaveFailedEvent) Type() EventType {
	return EventSaveFailed
}

// NewSaveFailedEvent creates a new SaveFailedEvent.
func NewSaveFailedEvent(name string, err error) SaveFailedEvent {
	return SaveFailedEvent{
		baseEvent: newBaseEvent(),
		Name:      name,
		Error:     err,
	}
}

// SaveCompletedEvent is published when a SaveOffline batch finished.
type SaveCompletedEvent struct {
	baseEvent
	Results []SaveResult
}

// Type returns the event type.
func (e SaveCompletedEvent) Type() EventType {
	return EventSaveCompleted
}

// NewSaveCompletedEvent creates a new SaveCompletedEvent.
func NewSaveCompletedEvent(results []SaveResult) SaveCompletedEvent {
	return SaveCompletedEvent{
		baseEvent: newBaseEvent(),
		Results:   results,
	}
}

// ShuffleToggledEvent is published when shuffle mode changes.
type ShuffleToggledEvent struct {
	baseEvent
	Enabled bool
}

// Type returns the event type.
func (e ShuffleToggledEvent) Type() EventType {
	return EventShuffleToggled
}

// NewShuffleToggledEvent creates a new ShuffleToggledEvent.
func NewShuffleToggledEvent(enabled bool) ShuffleToggledEvent {
	return ShuffleToggledEvent{
		baseEvent: newBaseEvent(),
		Enabled:   enabled,
	}
}

// RepeatToggledEvent is published when repeat mode changes.
type RepeatToggledEvent struct {
	baseEvent
	Enabled bool
}

// Type returns the event type.
func (e RepeatToggledEvent) Type() EventType {
	return EventRepeatToggled
}

// NewRepeatToggledEvent creates a new RepeatToggledEvent.
func NewRepeatToggledEvent(enabled bool) RepeatToggledEvent {
	return RepeatToggledEvent{
		baseEvent: newBaseEvent(),
		Enabled:   enabled,
	}
}

// VolumeChangedEvent is published when the volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// EqualizerChangedEvent is published when the equalizer gains change.
type EqualizerChangedEvent struct {
	baseEvent
	Equalizer Equalizer
}

// Type returns the event type.
func (e EqualizerChangedEvent) Type() EventType {
	return EventEqualizerChanged
}

// NewEqualizerChangedEvent creates a new EqualizerChangedEvent.
func NewEqualizerChangedEvent(eq Equalizer) EqualizerChangedEvent {
	return EqualizerChangedEvent{
		baseEvent: newBaseEvent(),
		Equalizer: eq,
	}
}

// PlaylistUpdatedEvent is published when a playlist is created or modified.
type PlaylistUpdatedEvent struct {
	baseEvent
	Playlist Playlist
}

// Type returns the event type.
func (e PlaylistUpdatedEvent) Type() EventType {
	return EventPlaylistUpdated
}

// NewPlaylistUpdatedEvent creates a new PlaylistUpdatedEvent.
func NewPlaylistUpdatedEvent(playlist Playlist) PlaylistUpdatedEvent {
	return PlaylistUpdatedEvent{
		baseEvent: newBaseEvent(),
		Playlist:  playlist,
	}
}

// PlaylistDeletedEvent is published when a playlist is deleted.
type PlaylistDeletedEvent struct {
	baseEvent
	Name string
}

// Type returns the event type.
func (e PlaylistDeletedEvent) Type() EventType {
	return EventPlaylistDeleted
}

// NewPlaylistDeletedEvent creates a new PlaylistDeletedEvent.
func NewPlaylistDeletedEvent(name string) PlaylistDeletedEvent {
	return PlaylistDeletedEvent{
		baseEvent: newBaseEvent(),
		Name:      name,
	}
}

// ImportStartedEvent is published when a catalog import starts.
type ImportStartedEvent struct {
	baseEvent
	Path string
}

// Type returns the event type.
func (e ImportStartedEvent) Type() EventType {
	return EventImportStarted
}

// NewImportStartedEvent creates a new ImportStartedEvent.
func NewImportStartedEvent(path string) ImportStartedEvent {
	return ImportStartedEvent{
		baseEvent: newBaseEvent(),
		Path:      path,
	}
}

// ImportProgressEvent is published for every file read during an import.
type ImportProgressEvent struct {
	baseEvent
	Progress ImportProgress
}

// Type returns the event type.
func (e ImportProgressEvent) Type() EventType {
	return EventImportProgress
}

// NewImportProgressEvent creates a new ImportProgressEvent.
func NewImportProgressEvent(progress ImportProgress) ImportProgressEvent {
	return ImportProgressEvent{
		baseEvent: newBaseEvent(),
		Progress:  progress,
	}
}

// ImportCompletedEvent is published when an import completes.
type ImportCompletedEvent struct {
	baseEvent
	Tracks []Track
}

// Type returns the event type.
func (e ImportCompletedEvent) Type() EventType {
	return EventImportCompleted
}

// NewImportCompletedEvent creates a new ImportCompletedEvent.
func NewImportCompletedEvent(tracks []Track) ImportCompletedEvent {
	return ImportCompletedEvent{
		baseEvent: newBaseEvent(),
		Tracks:    tracks,
	}
}

// ImportCancelledEvent is published when an import is canceled.
type ImportCancelledEvent struct {
	baseEvent
	Reason string
}

// Type returns the event type.
func (e ImportCancelledEvent) Type() EventType {
	return EventImportCancelled
}

// NewImportCancelledEvent creates a new ImportCancelledEvent.
func NewImportCancelledEvent(reason string) ImportCancelledEvent {
	return ImportCancelledEvent{
		baseEvent: newBaseEvent(),
		Reason:    reason,
	}
}
