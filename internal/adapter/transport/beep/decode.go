package beep

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
)

// nopCloser wraps a bytes.Reader to implement io.ReadCloser.
type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }

// decode picks a decoder from the payload signature, falling back to the name's extension.
func decode(name string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	r := nopCloser{bytes.NewReader(data)}

	switch {
	case bytes.HasPrefix(data, []byte("RIFF")):
		return wav.Decode(r)
	case bytes.HasPrefix(data, []byte("OggS")):
		return vorbis.Decode(r)
	case bytes.HasPrefix(data, []byte("fLaC")):
		return flac.Decode(r)
	case bytes.HasPrefix(data, []byte("ID3")), isMPEGFrame(data):
		return mp3.Decode(r)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		return wav.Decode(r)
	case ".mp3":
		return mp3.Decode(r)
	case ".ogg":
		return vorbis.Decode(r)
	case ".flac":
		return flac.Decode(r)
	}
	return nil, beep.Format{}, domain.ErrUnsupportedFormat
}

// isMPEGFrame reports whether data starts with an MPEG audio frame sync word.
func isMPEGFrame(data []byte) bool {
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}
