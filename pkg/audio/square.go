// Package audio plays the CHIP-8 buzzer: a single fixed-pitch square wave
// that is either sounding or silent.
package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

const (
	DefaultSampleRate = 44100
	DefaultFrequency  = 440
	DefaultVolume     = 0.2
)

// SquareWave is an endless mono stream of float32 little-endian samples. It
// emits silence while gated off.
type SquareWave struct {
	on     atomic.Bool
	period int
	volume float32
	phase  int
}

func NewSquareWave(sampleRate, frequency int, volume float32) *SquareWave {
	period := sampleRate / frequency
	if period < 2 {
		period = 2
	}
	return &SquareWave{period: period, volume: volume}
}

// SetOn gates the tone. It is safe to call while Read runs on the audio thread.
func (w *SquareWave) SetOn(on bool) {
	w.on.Store(on)
}

// Read fills p with whole samples and never returns an error.
func (w *SquareWave) Read(p []byte) (int, error) {
	n := len(p) / 4 * 4
	on := w.on.Load()
	for i := 0; i < n; i += 4 {
		var sample float32
		if on {
			sample = w.volume
			if w.phase >= w.period/2 {
				sample = -w.volume
			}
		}
		binary.LittleEndian.PutUint32(p[i:], math.Float32bits(sample))
		w.phase = (w.phase + 1) % w.period
	}
	return n, nil
}

// Tone is anything that can be switched on and off by the sound timer.
type Tone interface {
	SetBeep(on bool)
}

// Follow forwards beep states to tone until beeps is closed or stop is closed.
// The tone is silenced on return.
func Follow(tone Tone, beeps <-chan bool, stop <-chan struct{}) {
	defer tone.SetBeep(false)
	for {
		select {
		case on, ok := <-beeps:
			if !ok {
				return
			}
			tone.SetBeep(on)
		case <-stop:
			return
		}
	}
}
