//go:build !((linux && cgo) || windows || darwin)

package beep

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
)

// AudioAvailable indicates whether audio playback is supported in this build.
// Audio requires CGO for native sound libraries.
const AudioAvailable = false

// silentOutput keeps a wall-clock position and fires the end callback when
// the stream's duration has elapsed, without producing sound.
type silentOutput struct {
	mu sync.Mutex

	streamer beep.StreamSeekCloser
	length   time.Duration
	offset   time.Duration // position when the clock last (re)started
	started  time.Time
	paused   bool
	timer    *time.Timer
	onDone   func()
}

func newOutput() output {
	return &silentOutput{}
}

func (p *silentOutput) start(streamer beep.StreamSeekCloser, format beep.Format, onDone func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.streamer = streamer
	p.length = format.SampleRate.D(streamer.Len())
	p.offset = 0
	p.paused = false
	p.onDone = onDone
	p.armLocked()
	return nil
}

// armLocked restarts the clock at offset and schedules the end callback.
func (p *silentOutput) armLocked() {
	p.started = time.Now()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.length-p.offset, p.onDone)
}

func (p *silentOutput) elapsedLocked() time.Duration {
	if p.streamer == nil {
		return 0
	}
	if p.paused {
		return p.offset
	}
	return min(p.offset+time.Since(p.started), p.length)
}

func (p *silentOutput) pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil || p.paused {
		return
	}
	p.offset = p.elapsedLocked()
	p.paused = true
	p.timer.Stop()
}

func (p *silentOutput) resume() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil || !p.paused {
		return
	}
	p.paused = false
	p.armLocked()
}

func (p *silentOutput) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *silentOutput) stopLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.streamer != nil {
		_ = p.streamer.Close()
		p.streamer = nil
	}
}

func (p *silentOutput) position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elapsedLocked()
}

func (p *silentOutput) seek(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return nil
	}
	p.offset = d
	if !p.paused {
		p.armLocked()
	}
	return nil
}

func (p *silentOutput) setVolume(float64) {}

func (p *silentOutput) close() {}
