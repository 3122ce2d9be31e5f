//go:build headless

package audio

// Beeper tracks the tone state without an audio device.
type Beeper struct {
	wave *SquareWave
}

func NewBeeper(sampleRate int) (*Beeper, error) {
	return &Beeper{wave: NewSquareWave(sampleRate, DefaultFrequency, DefaultVolume)}, nil
}

func (b *Beeper) SetBeep(on bool) {
	b.wave.SetOn(on)
}

func (b *Beeper) Close() error {
	b.wave.SetOn(false)
	return nil
}
