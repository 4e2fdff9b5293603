//go:build (linux && cgo) || windows || darwin

package beep

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

const outputRate = beep.SampleRate(44100)

// speakerOutput plays through the system speaker.
type speakerOutput struct {
	mu sync.Mutex

	initialized bool
	streamer    beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	level       float64
}

func newOutput() output {
	return &speakerOutput{level: 1.0}
}

func (p *speakerOutput) start(streamer beep.StreamSeekCloser, format beep.Format, onDone func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		if err := speaker.Init(outputRate, outputRate.N(time.Second/10)); err != nil {
			return err
		}
		p.initialized = true
	}

	p.stopLocked()

	p.streamer = streamer
	p.format = format
	p.ctrl = &beep.Ctrl{Streamer: beep.Resample(4, format.SampleRate, outputRate, streamer)}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 2}
	applyLevel(p.volume, p.level)

	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		// Runs with the speaker locked.
		go onDone()
	})))
	return nil
}

func (p *speakerOutput) pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = true
		speaker.Unlock()
	}
}

func (p *speakerOutput) resume() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()
	}
}

func (p *speakerOutput) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// stopLocked drops the playing stream without running its end callback.
func (p *speakerOutput) stopLocked() {
	if p.initialized {
		speaker.Clear()
	}
	if p.streamer != nil {
		_ = p.streamer.Close()
		p.streamer = nil
	}
	p.ctrl = nil
	p.volume = nil
}

func (p *speakerOutput) position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return 0
	}

	speaker.Lock()
	pos := p.streamer.Position()
	speaker.Unlock()

	return p.format.SampleRate.D(pos)
}

func (p *speakerOutput) seek(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return nil
	}

	speaker.Lock()
	defer speaker.Unlock()

	return p.streamer.Seek(p.format.SampleRate.N(d))
}

func (p *speakerOutput) setVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.level = v
	if p.volume != nil {
		speaker.Lock()
		applyLevel(p.volume, v)
		speaker.Unlock()
	}
}

func (p *speakerOutput) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		speaker.Close()
		p.initialized = false
	}
}

// applyLevel maps a linear level in [0, 1] onto the base-2 volume effect.
func applyLevel(vol *effects.Volume, level float64) {
	if level <= 0 {
		vol.Silent = true
		return
	}
	vol.Silent = false
	vol.Volume = math.Log2(level)
}
