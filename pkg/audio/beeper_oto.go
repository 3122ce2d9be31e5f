//go:build !headless

package audio

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Beeper drives the system audio device through oto.
type Beeper struct {
	ctx    *oto.Context
	player *oto.Player
	wave   *SquareWave
	mu     sync.Mutex
}

func NewBeeper(sampleRate int) (*Beeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	wave := NewSquareWave(sampleRate, DefaultFrequency, DefaultVolume)
	player := ctx.NewPlayer(wave)
	player.Play()

	return &Beeper{ctx: ctx, player: player, wave: wave}, nil
}

func (b *Beeper) SetBeep(on bool) {
	b.wave.SetOn(on)
}

func (b *Beeper) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.player == nil {
		return nil
	}
	b.wave.SetOn(false)
	err := b.player.Close()
	b.player = nil
	return err
}
