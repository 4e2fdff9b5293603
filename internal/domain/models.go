// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the mrytune music player.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxRecent is the maximum number of entries kept in the recently played list.
const MaxRecent = 30

// NoTrack is the current-index sentinel used when nothing has been opened yet.
const NoTrack = -1

// Track represents a single playable audio item in the catalog.
// Name is the stable identifier: it is used as the blob cache key, the like key
// and the play-count key. Uniqueness within a catalog is assumed, not enforced.
type Track struct {
	// Name is the stable unique identifier (typically the file name)
	Name string `json:"name"`

	// SourceURL locates the original, un-cached bytes (http(s)://, file:// or a path)
	SourceURL string `json:"url"`

	// Title is the display title (optional, falls back to Name)
	Title string `json:"title,omitempty"`

	// Artist is the performing artist (optional)
	Artist string `json:"artist,omitempty"`

	// CoverArt is a URL or data URI for the artwork (optional)
	CoverArt string `json:"cover,omitempty"`

	// CachedKey references the Blob Store entry once the track has been saved offline.
	// Set only by SaveOffline; never cleared automatically.
	CachedKey string `json:"cachedKey,omitempty"`

	// Duration is populated once playback metadata is known
	Duration time.Duration `json:"duration,omitempty"`

	// Data holds raw bytes supplied by a local import. Never serialized.
	Data []byte `json:"-"`
}

// DisplayTitle returns the title, falling back to the track name.
func (t Track) DisplayTitle() string {
	if strings.TrimSpace(t.Title) != "" {
		return t.Title
	}
	return t.Name
}

// DisplayArtist returns the artist, falling back to "Unknown".
func (t Track) DisplayArtist() string {
	if strings.TrimSpace(t.Artist) != "" {
		return t.Artist
	}
	return "Unknown"
}

// DisplayCover returns the cover art, falling back to placeholder artwork seeded by index.
func (t Track) DisplayCover(index int) string {
	if t.CoverArt != "" {
		return t.CoverArt
	}
	return fmt.Sprintf("https://picsum.photos/600/600?random=%d", index)
}

// IsCached reports whether the track has been saved to the Blob Store.
func (t Track) IsCached() bool {
	return t.CachedKey != ""
}

// TrackInfo is the display metadata handed to the transport together with a source.
type TrackInfo struct {
	Name   string
	Title  string
	Artist string
	Cover  string
	Index  int
}

// InfoFor builds the display metadata for the track at index.
func InfoFor(t Track, index int) TrackInfo {
	return TrackInfo{
		Name:   t.Name,
		Title:  t.DisplayTitle(),
		Artist: t.DisplayArtist(),
		Cover:  t.DisplayCover(index),
		Index:  index,
	}
}

// Source is a resolved playable source: either cached bytes or the original locator.
type Source struct {
	// Ticket identifies the Open request that produced this source
	Ticket uint64

	// TrackName is the name of the track this source belongs to
	TrackName string

	// Cached is true when Data came from the Blob Store
	Cached bool

	// Data holds the cached bytes (nil when playing from URL)
	Data []byte

	// URL is the original locator used when no cached copy is available
	URL string
}

// String returns a short description used in logs.
func (s Source) String() string {
	if s.Cached {
		return fmt.Sprintf("blob:%s (%d bytes)", s.TrackName, len(s.Data))
	}
	return s.URL
}

// Playlist is a named, ordered list of track names.
// Entries are references: a name missing from the current catalog is tolerated.
type Playlist struct {
	// ID is a unique identifier for the playlist (UUID)
	ID string `json:"id"`

	// Name is the playlist name, unique among playlists
	Name string `json:"name"`

	// TrackNames is the ordered list of referenced track names
	TrackNames []string `json:"tracks"`

	// CreatedAt is when the playlist was created
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the playlist was last modified
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlaybackStatus represents the current transport state as seen by the session.
type PlaybackStatus int

const (
	// StatusStopped indicates nothing is playing
	StatusStopped PlaybackStatus = iota

	// StatusPlaying indicates playback is active
	StatusPlaying

	// StatusPaused indicates playback is paused or was rejected by the transport
	StatusPaused
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// SortCriterion selects how the catalog is reordered.
type SortCriterion string

const (
	// SortAlphabetical orders by title-or-name ascending
	SortAlphabetical SortCriterion = "alpha"

	// SortPopularity orders by play count descending
	SortPopularity SortCriterion = "plays"
)

// ParseSortCriterion parses a user supplied criterion.
func ParseSortCriterion(s string) (SortCriterion, error) {
	switch SortCriterion(strings.ToLower(strings.TrimSpace(s))) {
	case SortAlphabetical, "alphabetical":
		return SortAlphabetical, nil
	case SortPopularity, "popularity":
		return SortPopularity, nil
	}
	return "", NewValidationError("sort", s, "expected alpha or plays")
}

// Equalizer holds three-band gain values in dB.
// Bands: low shelf at 200 Hz, peaking at 1 kHz, high shelf at 3 kHz.
type Equalizer struct {
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
}

// MaxGain bounds each equalizer band (in dB, both directions).
const MaxGain = 12.0

// Validate checks every band is within ±MaxGain.
func (e Equalizer) Validate() error {
	bands := []struct {
		name string
		gain float64
	}{{"low", e.Low}, {"mid", e.Mid}, {"high", e.High}}
	for _, b := range bands {
		if b.gain < -MaxGain || b.gain > MaxGain {
			return NewValidationError("equalizer."+b.name, b.gain, "gain must be between -12 and 12 dB")
		}
	}
	return nil
}

// SaveResult reports the outcome of saving one track offline.
type SaveResult struct {
	Name string
	Key  string
	Size int
	Err  error
}

// OK reports whether the track was stored.
func (r SaveResult) OK() bool {
	return r.Err == nil
}

// PlayCount pairs a track name with its play count.
type PlayCount struct {
	Name  string
	Count int
}

// SessionSnapshot is a read-only view of the playback session.
type SessionSnapshot struct {
	Catalog      []Track
	CurrentIndex int
	CurrentTrack *Track
	Status       PlaybackStatus
	Shuffle      bool
	Repeat       bool
	Volume       float64
	Equalizer    Equalizer
	Position     time.Duration
}

// ImportProgress represents the progress of a catalog import.
type ImportProgress struct {
	// CurrentFile is the file currently being read
	CurrentFile string

	// FilesRead is the number of files processed so far
	FilesRead int

	// TotalFiles is the total number of candidate files
	TotalFiles int

	// TracksFound is the number of tracks imported so far
	TracksFound int
}

// Percentage returns the completion percentage (0-100), or -1 if total is unknown.
func (p ImportProgress) Percentage() float64 {
	if p.TotalFiles <= 0 {
		return -1
	}
	return float64(p.FilesRead) / float64(p.TotalFiles) * 100.0
}
