package chip8

import (
	"errors"
	"testing"
)

func TestBusDefaults(t *testing.T) {
	b := NewBus(0, nil)
	if cap(b.frames) != DefaultBusBuffer {
		t.Errorf("expected capacity %d, got %d", DefaultBusBuffer, cap(b.frames))
	}
}

func TestBusLatestWins(t *testing.T) {
	b := NewBus(2, nil)
	b.PublishBeep(true)
	b.PublishBeep(false)
	b.PublishBeep(true) // full: the first event is discarded

	got := []bool{<-b.Beeps(), <-b.Beeps()}
	if got[0] || !got[1] {
		t.Errorf("expected [false true], got %v", got)
	}
	if b.Dropped() != 1 {
		t.Errorf("Dropped: expected 1, got %d", b.Dropped())
	}
}

func TestBusNeverBlocks(t *testing.T) {
	b := NewBus(1, nil)
	var f Frame
	for i := 0; i < 100; i++ {
		f[0][0] = i%2 == 0
		b.PublishFrame(f)
	}

	last := <-b.Frames()
	if last[0][0] {
		t.Error("expected the most recent frame to be kept")
	}
	if b.Dropped() != 99 {
		t.Errorf("Dropped: expected 99, got %d", b.Dropped())
	}
}

func TestBusFaults(t *testing.T) {
	b := NewBus(1, nil)
	b.PublishFault(ErrStackUnderflow)

	select {
	case err := <-b.Faults():
		if !errors.Is(err, ErrStackUnderflow) {
			t.Errorf("expected ErrStackUnderflow, got %v", err)
		}
	default:
		t.Error("expected a queued fault")
	}
}
