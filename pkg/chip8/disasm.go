package chip8

import (
	"fmt"
	"io"
)

// Disassemble renders an instruction word as a mnemonic with operands,
// for example "LD V3, $1F" or "DRW V0, V1, $5". Words that do not decode to
// a known instruction are rendered as "DW $XXXX".
func Disassemble(op uint16) string {
	x, y, n := opX(op), opY(op), opN(op)
	nn, nnn := opNN(op), opNNN(op)

	switch opKind(op) {
	case 0x0:
		switch op {
		case 0x00E0:
			return "CLS"
		case 0x00EE:
			return "RET"
		}
	case 0x1:
		return fmt.Sprintf("JP $%03X", nnn)
	case 0x2:
		return fmt.Sprintf("CALL $%03X", nnn)
	case 0x3:
		return fmt.Sprintf("SE V%X, $%02X", x, nn)
	case 0x4:
		return fmt.Sprintf("SNE V%X, $%02X", x, nn)
	case 0x5:
		if n == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}
	case 0x6:
		return fmt.Sprintf("LD V%X, $%02X", x, nn)
	case 0x7:
		return fmt.Sprintf("ADD V%X, $%02X", x, nn)
	case 0x8:
		if name, ok := aluNames[n]; ok {
			return fmt.Sprintf("%s V%X, V%X", name, x, y)
		}
	case 0x9:
		if n == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}
	case 0xA:
		return fmt.Sprintf("LD I, $%03X", nnn)
	case 0xB:
		return fmt.Sprintf("JP V0, $%03X", nnn)
	case 0xC:
		return fmt.Sprintf("RND V%X, $%02X", x, nn)
	case 0xD:
		return fmt.Sprintf("DRW V%X, V%X, $%X", x, y, n)
	case 0xE:
		switch nn {
		case 0x9E:
			return fmt.Sprintf("SKP V%X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xF:
		if format, ok := miscFormats[nn]; ok {
			return fmt.Sprintf(format, x)
		}
	}
	return fmt.Sprintf("DW $%04X", op)
}

var aluNames = map[uint16]string{
	0x0: "LD",
	0x1: "OR",
	0x2: "AND",
	0x3: "XOR",
	0x4: "ADD",
	0x5: "SUB",
	0x6: "SHR",
	0x7: "SUBN",
	0xE: "SHL",
}

var miscFormats = map[byte]string{
	0x07: "LD V%X, DT",
	0x0A: "LD V%X, K",
	0x15: "LD DT, V%X",
	0x18: "LD ST, V%X",
	0x1E: "ADD I, V%X",
	0x29: "LD F, V%X",
	0x33: "LD B, V%X",
	0x55: "LD [I], V%X",
	0x65: "LD V%X, [I]",
}

// WriteListing writes one line per instruction word of rom, addressed as it
// would be once loaded at ProgramStart. A trailing odd byte is listed as data.
func WriteListing(w io.Writer, rom []byte) error {
	for offset := 0; offset < len(rom); offset += 2 {
		addr := ProgramStart + offset
		if offset+1 >= len(rom) {
			if _, err := fmt.Fprintf(w, "%03X  %02X    DB $%02X\n", addr, rom[offset], rom[offset]); err != nil {
				return err
			}
			break
		}
		op := uint16(rom[offset])<<8 | uint16(rom[offset+1])
		if _, err := fmt.Fprintf(w, "%03X  %04X  %s\n", addr, op, Disassemble(op)); err != nil {
			return err
		}
	}
	return nil
}
