package asm

import (
	"testing"
)

func TestAssembleSourceMap(t *testing.T) {
	code := `
; Line 2: Comment
LD V0, 10       ; Line 3: Instruction at $200
                ; Line 4: Empty
LABEL:          ; Line 5: Label
ADD V0, V1      ; Line 6: Instruction at $202
.ORG $210       ; Line 7: ORG (padding up to $210)
CLS             ; Line 8: Instruction at $210
DB 1, 2, 3      ; Line 9: Data at $212
DW LABEL        ; Line 10: Data word at $215
`

	program, sourceMap, err := Assemble(code)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(program) != 0x17 {
		t.Errorf("program length = %d; want %d", len(program), 0x17)
	}
	if program[0x15] != 0x02 || program[0x16] != 0x02 {
		t.Errorf("DW LABEL = %02X%02X; want 0202", program[0x15], program[0x16])
	}

	tests := []struct {
		addr uint16
		line int
	}{
		{0x200, 3},
		{0x202, 6},
		{0x210, 8},
		{0x212, 9},
		{0x215, 10},
	}

	for _, tc := range tests {
		if got := sourceMap[tc.addr]; got != tc.line {
			t.Errorf("sourceMap[0x%04X] = %d; want %d", tc.addr, got, tc.line)
		}
	}
	if len(sourceMap) != len(tests) {
		t.Errorf("sourceMap has %d entries; want %d", len(sourceMap), len(tests))
	}
}
