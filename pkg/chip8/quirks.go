package chip8

import "fmt"

// ShiftSource selects the register 8XY6 and 8XYE read their input from.
type ShiftSource int

const (
	// ShiftFromVY shifts VY into VX (original COSMAC VIP behaviour).
	ShiftFromVY ShiftSource = iota
	// ShiftFromVX shifts VX in place and ignores Y.
	ShiftFromVX
)

func (s ShiftSource) String() string {
	switch s {
	case ShiftFromVY:
		return "vy"
	case ShiftFromVX:
		return "vx"
	}
	return fmt.Sprintf("ShiftSource(%d)", int(s))
}

// ParseShiftSource is the inverse of ShiftSource.String.
func ParseShiftSource(s string) (ShiftSource, error) {
	switch s {
	case "vy":
		return ShiftFromVY, nil
	case "vx":
		return ShiftFromVX, nil
	}
	return 0, fmt.Errorf("unknown shift source %q (valid: vy, vx)", s)
}

// KeyWait selects how long FX0A keeps the cycle loop blocked after it has
// captured a pressed key.
type KeyWait int

const (
	// KeyWaitRelease blocks until a key is released.
	KeyWaitRelease KeyWait = iota
	// KeyWaitChange blocks until any key changes state.
	KeyWaitChange
	// KeyWaitNone does not block; execution continues on the next cycle.
	KeyWaitNone
)

func (w KeyWait) String() string {
	switch w {
	case KeyWaitRelease:
		return "release"
	case KeyWaitChange:
		return "change"
	case KeyWaitNone:
		return "none"
	}
	return fmt.Sprintf("KeyWait(%d)", int(w))
}

// ParseKeyWait is the inverse of KeyWait.String.
func ParseKeyWait(s string) (KeyWait, error) {
	switch s {
	case "release":
		return KeyWaitRelease, nil
	case "change":
		return KeyWaitChange, nil
	case "none":
		return KeyWaitNone, nil
	}
	return 0, fmt.Errorf("unknown key wait mode %q (valid: release, change, none)", s)
}

// Quirks collects the behaviours CHIP-8 interpreters disagree on.
type Quirks struct {
	Shift   ShiftSource
	KeyWait KeyWait
}

// DefaultQuirks returns the reference interpreter behaviour.
func DefaultQuirks() Quirks {
	return Quirks{Shift: ShiftFromVY, KeyWait: KeyWaitRelease}
}
