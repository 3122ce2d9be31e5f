package chip8

import (
	"errors"
	"fmt"
)

var (
	ErrROMTooLarge    = errors.New("rom too large")
	ErrStackUnderflow = errors.New("return with empty call stack")
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrInvalidKey     = errors.New("invalid key")
)

// FatalError describes the instruction that halted the machine.
type FatalError struct {
	PC     uint16 // address the opcode was fetched from
	Opcode uint16
	Err    error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("halted at $%03X (%04X %s): %v", e.PC, e.Opcode, Disassemble(e.Opcode), e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
