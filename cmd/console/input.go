package main

import (
	"sync"
	"time"

	"gochip8/pkg/chip8"
	"gochip8/pkg/config"
)

// Terminals only report key presses, so a key counts as held for a fixed
// time after its last press (auto-repeat keeps extending it).
type keyHolder struct {
	mu       sync.Mutex
	hold     time.Duration
	deadline [chip8.NumKeys]time.Time
}

func newKeyHolder(hold time.Duration) *keyHolder {
	return &keyHolder{hold: hold}
}

// press marks key as held and reports whether it was up before.
func (h *keyHolder) press(key int, now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	wasUp := h.deadline[key].IsZero()
	h.deadline[key] = now.Add(h.hold)
	return wasUp
}

// expire returns the keys whose hold ran out.
func (h *keyHolder) expire(now time.Time) []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	var released []int
	for key, d := range h.deadline {
		if !d.IsZero() && !now.Before(d) {
			h.deadline[key] = time.Time{}
			released = append(released, key)
		}
	}
	return released
}

type command int

const (
	cmdNone command = iota
	cmdKey
	cmdFaster
	cmdSlower
	cmdQuit
)

// decode maps one input byte to a command.
func decode(b byte) (command, int) {
	switch b {
	case 0x1B, 0x03: // Esc, Ctrl-C
		return cmdQuit, 0
	case '+', '=':
		return cmdFaster, 0
	case '-', '_':
		return cmdSlower, 0
	}
	if key, ok := config.KeyForRune(rune(b)); ok {
		return cmdKey, key
	}
	return cmdNone, 0
}
