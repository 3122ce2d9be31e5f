package chip8

import (
	"fmt"
	"sync"
)

// NumKeys is the size of the hexadecimal keypad.
const NumKeys = 16

// Keypad is written by the input side and read by the cycle loop.
//
// It also carries the FX0A wait flag: the cycle loop sets it after capturing a
// key and the input side clears it according to the KeyWait quirk.
type Keypad struct {
	mu      sync.Mutex
	keys    [NumKeys]bool
	waiting bool
	mode    KeyWait
}

// Set records a key transition.
func (k *Keypad) Set(key int, pressed bool) error {
	if key < 0 || key >= NumKeys {
		return fmt.Errorf("%w: %d", ErrInvalidKey, key)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	changed := k.keys[key] != pressed
	k.keys[key] = pressed

	switch k.mode {
	case KeyWaitRelease:
		if !pressed {
			k.waiting = false
		}
	case KeyWaitChange:
		if changed {
			k.waiting = false
		}
	}
	return nil
}

// Pressed reports the state of the key selected by the low nibble of key.
func (k *Keypad) Pressed(key byte) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.keys[key&0x0F]
}

// captureKey returns the lowest-numbered key currently held down and, unless
// the quirk is KeyWaitNone, blocks the cycle loop until the wait condition is
// met. Both happen under one lock so a release cannot slip in between.
func (k *Keypad) captureKey() (byte, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for i, down := range k.keys {
		if down {
			k.waiting = k.mode != KeyWaitNone
			return byte(i), true
		}
	}
	return 0, false
}

// Snapshot returns a copy of all key states.
func (k *Keypad) Snapshot() [NumKeys]bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.keys
}

// Waiting reports whether the cycle loop is blocked by FX0A.
func (k *Keypad) Waiting() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.waiting
}

// Reset releases every key and clears the wait flag.
func (k *Keypad) Reset() {
	k.mu.Lock()
	k.keys = [NumKeys]bool{}
	k.waiting = false
	k.mu.Unlock()
}
