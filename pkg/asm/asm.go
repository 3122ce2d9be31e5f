// Package asm assembles CHIP-8 source written in the mnemonic syntax that
// chip8.Disassemble produces, so a listing can be edited and re-assembled.
//
// Programs are laid out from chip8.ProgramStart. Labels end in ':', comments
// start with ';' or '//', numbers are decimal, 0x-prefixed or $-prefixed hex.
// Directives: .ORG addr, DB byte[, byte...], DW word.
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gochip8/pkg/chip8"
)

var zeroOperandOps = map[string]uint16{
	"CLS": 0x00E0,
	"RET": 0x00EE,
}

// 8XYN register pairs
var aluOps = map[string]uint16{
	"OR":   0x8001,
	"AND":  0x8002,
	"XOR":  0x8003,
	"SUB":  0x8005,
	"SHR":  0x8006,
	"SUBN": 0x8007,
	"SHL":  0x800E,
}

var keyOps = map[string]uint16{
	"SKP":  0xE09E,
	"SKNP": 0xE0A1,
}

type Assembler struct {
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]uint16),
	}
}

// Assemble returns the program image to load at chip8.ProgramStart and a map
// from each emitted address to its source line.
func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

const memoryEnd = chip8.MemorySize

func (a *Assembler) pass1(lines []string) error {
	address := uint32(chip8.ProgramStart)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = uint16(address)
		}

		if p.mnemonic == "" {
			continue
		}

		var length uint32
		switch p.mnemonic {
		case ".ORG":
			target, err := parseNumber(p.operands[0])
			if err != nil || target >= memoryEnd {
				return fmt.Errorf("invalid .ORG value on line %d: %s", lineNo, p.operands[0])
			}
			if uint32(target) < address {
				return fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			address = uint32(target)
			continue
		case "DB":
			if len(p.operands) == 0 {
				return fmt.Errorf("DB expects at least one operand on line %d", lineNo)
			}
			length = uint32(len(p.operands))
		default:
			if !isMnemonic(p.mnemonic) {
				return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
			}
			length = 2
		}

		if address+length > memoryEnd {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
		address += length
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		if p.mnemonic == ".ORG" {
			target, _ := parseNumber(p.operands[0])
			padding := int(target) - chip8.ProgramStart - len(program)
			program = append(program, make([]byte, padding)...)
			continue
		}

		sourceMap[uint16(chip8.ProgramStart+len(program))] = lineNo

		if p.mnemonic == "DB" {
			for _, op := range p.operands {
				v, err := a.parseValue(op, 0xFF, lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(v))
			}
			continue
		}

		instr, err := a.encode(p)
		if err != nil {
			return nil, nil, err
		}
		program = append(program, byte(instr>>8), byte(instr))
	}

	return program, sourceMap, nil
}

// encode translates one instruction line into its opcode.
func (a *Assembler) encode(p parsedLine) (uint16, error) {
	mnemonic, ops, lineNo := p.mnemonic, p.operands, p.lineNo

	expect := func(n int) error {
		if len(ops) != n {
			return fmt.Errorf("%s expects %d operands on line %d", mnemonic, n, lineNo)
		}
		return nil
	}

	if opcode, ok := zeroOperandOps[mnemonic]; ok {
		return opcode, expect(0)
	}

	if opcode, ok := keyOps[mnemonic]; ok {
		if err := expect(1); err != nil {
			return 0, err
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		return opcode | x<<8, nil
	}

	if opcode, ok := aluOps[mnemonic]; ok {
		// a lone shift operand shifts the register in place
		if (mnemonic == "SHR" || mnemonic == "SHL") && len(ops) == 1 {
			ops = append(ops, ops[0])
		}
		if len(ops) != 2 {
			return 0, fmt.Errorf("%s expects 2 operands on line %d", mnemonic, lineNo)
		}
		return a.encodeXY(opcode, ops, lineNo)
	}

	switch mnemonic {
	case "DW":
		if err := expect(1); err != nil {
			return 0, err
		}
		return a.parseValue(ops[0], 0xFFFF, lineNo)

	case "JP":
		if len(ops) == 2 {
			if !strings.EqualFold(ops[0], "V0") {
				return 0, fmt.Errorf("JP offset must be V0 on line %d", lineNo)
			}
			return a.encodeAddr(0xB000, ops[1], lineNo)
		}
		if err := expect(1); err != nil {
			return 0, err
		}
		return a.encodeAddr(0x1000, ops[0], lineNo)

	case "CALL":
		if err := expect(1); err != nil {
			return 0, err
		}
		return a.encodeAddr(0x2000, ops[0], lineNo)

	case "SE", "SNE":
		if err := expect(2); err != nil {
			return 0, err
		}
		if isRegister(ops[1]) {
			if mnemonic == "SE" {
				return a.encodeXY(0x5000, ops, lineNo)
			}
			return a.encodeXY(0x9000, ops, lineNo)
		}
		if mnemonic == "SE" {
			return a.encodeXNN(0x3000, ops, lineNo)
		}
		return a.encodeXNN(0x4000, ops, lineNo)

	case "ADD":
		if err := expect(2); err != nil {
			return 0, err
		}
		if strings.EqualFold(ops[0], "I") {
			return a.encodeX(0xF01E, ops[1], lineNo)
		}
		if isRegister(ops[1]) {
			return a.encodeXY(0x8004, ops, lineNo)
		}
		return a.encodeXNN(0x7000, ops, lineNo)

	case "LD":
		if err := expect(2); err != nil {
			return 0, err
		}
		return a.encodeLoad(ops, lineNo)

	case "RND":
		if err := expect(2); err != nil {
			return 0, err
		}
		return a.encodeXNN(0xC000, ops, lineNo)

	case "DRW":
		if err := expect(3); err != nil {
			return 0, err
		}
		xy, err := a.encodeXY(0xD000, ops[:2], lineNo)
		if err != nil {
			return 0, err
		}
		n, err := a.parseValue(ops[2], 0xF, lineNo)
		if err != nil {
			return 0, err
		}
		return xy | n, nil
	}

	return 0, fmt.Errorf("unknown instruction on line %d: %s", lineNo, mnemonic)
}

// encodeLoad handles the many forms of LD.
func (a *Assembler) encodeLoad(ops []string, lineNo int) (uint16, error) {
	dst, src := strings.ToUpper(ops[0]), strings.ToUpper(ops[1])

	switch dst {
	case "I":
		return a.encodeAddr(0xA000, ops[1], lineNo)
	case "DT":
		return a.encodeX(0xF015, ops[1], lineNo)
	case "ST":
		return a.encodeX(0xF018, ops[1], lineNo)
	case "F":
		return a.encodeX(0xF029, ops[1], lineNo)
	case "B":
		return a.encodeX(0xF033, ops[1], lineNo)
	case "[I]":
		return a.encodeX(0xF055, ops[1], lineNo)
	}

	switch src {
	case "DT":
		return a.encodeX(0xF007, ops[0], lineNo)
	case "K":
		return a.encodeX(0xF00A, ops[0], lineNo)
	case "[I]":
		return a.encodeX(0xF065, ops[0], lineNo)
	}

	if isRegister(ops[1]) {
		return a.encodeXY(0x8000, ops, lineNo)
	}
	return a.encodeXNN(0x6000, ops, lineNo)
}

func (a *Assembler) encodeX(base uint16, reg string, lineNo int) (uint16, error) {
	x, err := parseRegister(reg, lineNo)
	if err != nil {
		return 0, err
	}
	return base | x<<8, nil
}

func (a *Assembler) encodeXY(base uint16, ops []string, lineNo int) (uint16, error) {
	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	y, err := parseRegister(ops[1], lineNo)
	if err != nil {
		return 0, err
	}
	return base | x<<8 | y<<4, nil
}

func (a *Assembler) encodeXNN(base uint16, ops []string, lineNo int) (uint16, error) {
	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	nn, err := a.parseValue(ops[1], 0xFF, lineNo)
	if err != nil {
		return 0, err
	}
	return base | x<<8 | nn, nil
}

func (a *Assembler) encodeAddr(base uint16, token string, lineNo int) (uint16, error) {
	nnn, err := a.parseValue(token, 0xFFF, lineNo)
	if err != nil {
		return 0, err
	}
	return base | nnn, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	line = normalizeInstructionText(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}

	if p.mnemonic == ".ORG" && len(p.operands) != 1 {
		return p, fmt.Errorf(".ORG expects exactly one operand on line %d", lineNo)
	}

	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func normalizeInstructionText(line string) string {
	return strings.ReplaceAll(line, ",", " ")
}

func isRegister(token string) bool {
	_, err := parseRegister(token, 0)
	return err == nil
}

func parseRegister(token string, lineNo int) (uint16, error) {
	if len(token) == 2 && (token[0] == 'V' || token[0] == 'v') {
		if n, err := strconv.ParseUint(token[1:], 16, 8); err == nil {
			return uint16(n), nil
		}
	}
	return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
}

// parseNumber accepts decimal, 0x-prefixed and $-prefixed hexadecimal.
func parseNumber(token string) (uint64, error) {
	if hex, ok := strings.CutPrefix(token, "$"); ok {
		return strconv.ParseUint(hex, 16, 32)
	}
	return strconv.ParseUint(token, 0, 32)
}

// parseValue resolves a number or label and checks it against limit.
func (a *Assembler) parseValue(token string, limit uint16, lineNo int) (uint16, error) {
	if value, err := parseNumber(token); err == nil {
		if value > uint64(limit) {
			return 0, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
		}
		return uint16(value), nil
	}

	label := normalizeLabel(token)
	if addr, ok := a.labels[label]; ok {
		if addr > limit {
			return 0, fmt.Errorf("label '%s' out of range on line %d", token, lineNo)
		}
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
}

func isMnemonic(mnemonic string) bool {
	if _, ok := zeroOperandOps[mnemonic]; ok {
		return true
	}
	if _, ok := aluOps[mnemonic]; ok {
		return true
	}
	if _, ok := keyOps[mnemonic]; ok {
		return true
	}
	switch mnemonic {
	case "DW", "JP", "CALL", "SE", "SNE", "ADD", "LD", "RND", "DRW":
		return true
	}
	return false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
