package chip8

import (
	"log/slog"
	"sync/atomic"
)

// DefaultBusBuffer is the channel capacity used when Options.BusBuffer is zero.
const DefaultBusBuffer = 4

// Bus carries the engine's one-way outputs to a consumer. Publishing never
// blocks: when a channel is full the oldest queued event is discarded in
// favour of the new one, and if that still fails the new event is dropped.
type Bus struct {
	frames chan Frame
	beeps  chan bool
	faults chan error

	logger  *slog.Logger
	dropped atomic.Uint64
}

// NewBus creates a bus whose channels each hold buffer events.
func NewBus(buffer int, logger *slog.Logger) *Bus {
	if buffer <= 0 {
		buffer = DefaultBusBuffer
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &Bus{
		frames: make(chan Frame, buffer),
		beeps:  make(chan bool, buffer),
		faults: make(chan error, buffer),
		logger: logger,
	}
}

func (b *Bus) Frames() <-chan Frame { return b.frames }
func (b *Bus) Beeps() <-chan bool   { return b.beeps }
func (b *Bus) Faults() <-chan error { return b.faults }

// Dropped returns how many events were discarded because a consumer fell behind.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *Bus) PublishFrame(f Frame) {
	publish(b, b.frames, f, "frame")
}

func (b *Bus) PublishBeep(on bool) {
	publish(b, b.beeps, on, "beep")
}

func (b *Bus) PublishFault(err error) {
	publish(b, b.faults, err, "fault")
}

func publish[T any](b *Bus, ch chan T, v T, kind string) {
	select {
	case ch <- v:
		return
	default:
	}

	// make room by discarding the stalest event
	select {
	case <-ch:
		b.dropped.Add(1)
		b.logger.Debug("dropped stale event", slog.String("kind", kind))
	default:
	}

	select {
	case ch <- v:
	default:
		b.dropped.Add(1)
		b.logger.Debug("dropped event", slog.String("kind", kind))
	}
}
