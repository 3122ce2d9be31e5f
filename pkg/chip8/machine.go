// Package chip8 implements the CHIP-8 virtual machine: memory and registers,
// the fetch-decode-execute cycle, the two 60 Hz timers and a real-time
// engine that publishes display frames and beep state on channels.
package chip8

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// CHIP-8 memory map (4KB total):
//
//	0x000-0x04F: unused interpreter area
//	0x050-0x09F: hexadecimal font glyphs
//	0x0A0-0x1FF: unused interpreter area
//	0x200-0xFFF: program space
const (
	MemorySize   = 4096
	ProgramStart = 0x200
	MaxROMSize   = MemorySize - ProgramStart
	NumRegisters = 16

	addrMask = MemorySize - 1
)

// Machine is the complete CHIP-8 state plus the instruction interpreter.
// A Machine is driven by a single goroutine; Timers and Keys are the only
// parts that may be touched concurrently.
type Machine struct {
	Memory  [MemorySize]byte
	V       [NumRegisters]byte
	I       uint16
	PC      uint16
	Stack   []uint16
	Display Frame
	Running bool

	Timers *Timers
	Keys   *Keypad

	// Cycles counts executed instructions since the last reset.
	Cycles uint64

	// OnFrame receives a snapshot of the display after every clear or draw.
	OnFrame func(Frame)

	quirks Quirks
	rng    *rand.Rand
}

// NewMachine returns an initialized machine: zeroed memory with the font
// table in place, PC at ProgramStart, not running.
func NewMachine(quirks Quirks, rng *rand.Rand) *Machine {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>32|1))
	}
	m := &Machine{
		Timers: &Timers{},
		Keys:   &Keypad{mode: quirks.KeyWait},
		quirks: quirks,
		rng:    rng,
	}
	m.Reset()
	return m
}

// Quirks returns the behaviour switches the machine was created with.
func (m *Machine) Quirks() Quirks {
	return m.quirks
}

// Reset zeroes every mutable part of the machine and stops execution.
func (m *Machine) Reset() {
	m.Memory = [MemorySize]byte{}
	copy(m.Memory[FontOffset:], fontSet[:])
	m.V = [NumRegisters]byte{}
	m.I = 0
	m.PC = ProgramStart
	m.Stack = m.Stack[:0]
	m.Display.clear()
	m.Running = false
	m.Cycles = 0
	m.Timers.Reset()
	m.Keys.Reset()
}

// Load resets the machine, copies rom to ProgramStart and starts execution.
// A ROM that does not fit is rejected and the current state is left as is.
func (m *Machine) Load(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrROMTooLarge, len(rom), MaxROMSize)
	}
	m.Reset()
	copy(m.Memory[ProgramStart:], rom)
	m.Running = true
	return nil
}

// Blocked reports whether FX0A is holding the cycle loop.
func (m *Machine) Blocked() bool {
	return m.Keys.Waiting()
}

// Step executes a single instruction. It does nothing while the machine is
// stopped or blocked on a key. The returned error is non-nil only when the
// instruction halted the machine, in which case it is a *FatalError.
func (m *Machine) Step() error {
	if !m.Running || m.Keys.Waiting() {
		return nil
	}

	pc := m.PC
	opcode := m.fetch()
	if err := m.execute(opcode); err != nil {
		m.Running = false
		return &FatalError{PC: pc, Opcode: opcode, Err: err}
	}
	m.Cycles++
	return nil
}

// fetch reads the big-endian instruction word at PC and advances PC.
func (m *Machine) fetch() uint16 {
	hi := uint16(m.read(m.PC))
	lo := uint16(m.read(m.PC + 1))
	m.PC += 2
	return hi<<8 | lo
}

func (m *Machine) read(addr uint16) byte {
	return m.Memory[addr&addrMask]
}

func (m *Machine) write(addr uint16, v byte) {
	m.Memory[addr&addrMask] = v
}

func (m *Machine) publishFrame() {
	if m.OnFrame != nil {
		m.OnFrame(m.Display)
	}
}
