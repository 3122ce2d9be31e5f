package chip8

import (
	"sync"
	"time"
)

// TimerRate is the fixed frequency both countdown timers run at.
const TimerRate = 60

// TimerPeriod is the interval between two timer ticks.
const TimerPeriod = time.Second / TimerRate

// Timers holds the delay and sound counters. They are shared between the
// cycle loop and the timer loop, so every access goes through the mutex.
type Timers struct {
	mu    sync.Mutex
	delay byte
	sound byte
}

func (t *Timers) Delay() byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delay
}

func (t *Timers) SetDelay(v byte) {
	t.mu.Lock()
	t.delay = v
	t.mu.Unlock()
}

func (t *Timers) Sound() byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sound
}

func (t *Timers) SetSound(v byte) {
	t.mu.Lock()
	t.sound = v
	t.mu.Unlock()
}

// Reset zeroes both counters.
func (t *Timers) Reset() {
	t.mu.Lock()
	t.delay = 0
	t.sound = 0
	t.mu.Unlock()
}

// Tick decrements both counters toward zero. It reports whether the tone
// should sound for this tick, which is the case when the sound counter was
// nonzero before the decrement.
func (t *Timers) Tick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.delay > 0 {
		t.delay--
	}
	if t.sound == 0 {
		return false
	}
	t.sound--
	return true
}
