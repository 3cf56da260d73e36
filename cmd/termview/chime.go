package main

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/tidal/phase"
)

const sampleRate = beep.SampleRate(44100)

const (
	flareDuration   = 900 * time.Millisecond
	disruptDuration = 1200 * time.Millisecond
	chimeVolume     = 0.35
)

// Chime plays short tones on phase transitions.
type Chime struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewChime creates a silent chime. Call Init to open the speaker.
func NewChime() *Chime {
	return &Chime{mixer: &beep.Mixer{}}
}

// Init opens the speaker.
func (c *Chime) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Close stops playback.
func (c *Chime) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	c.initialized = false
}

// OnTransition queues the tone for t, if it has one.
func (c *Chime) OnTransition(t phase.Transition) {
	s := transitionSound(t)
	if s == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

// transitionSound returns the tone for t: a bright chord on the flare and a
// low hum when disruption begins.
func transitionSound(t phase.Transition) beep.Streamer {
	switch {
	case t.Enter.Has(phase.EffectFlash):
		return flareSound()
	case t.To == phase.Disrupt:
		return disruptSound()
	}
	return nil
}

func flareSound() beep.Streamer {
	return newVolume(beep.Mix(
		tone(660, flareDuration, 0.6),
		tone(990, flareDuration, 0.3),
		tone(1320, flareDuration/2, 0.1),
	), chimeVolume)
}

func disruptSound() beep.Streamer {
	return newVolume(beep.Mix(
		tone(110, disruptDuration, 0.7),
		tone(165, disruptDuration, 0.3),
	), chimeVolume)
}

// tone is a sine at freq that fades out linearly over d.
func tone(freq float64, d time.Duration, gain float64) beep.Streamer {
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return beep.Silence(sampleRate.N(d))
	}
	return newVolume(&fade{streamer: beep.Take(sampleRate.N(d), sine), total: sampleRate.N(d)}, gain)
}

// fade ramps a finite stream from full volume to silence.
type fade struct {
	streamer beep.Streamer
	position int
	total    int
}

func (f *fade) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1 - float64(f.position)/float64(f.total)
		if vol < 0 {
			vol = 0
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		f.position++
	}
	return n, ok
}

func (f *fade) Err() error { return f.streamer.Err() }

// newVolume scales s by a linear gain; zero gain is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
