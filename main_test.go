package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gochip8/pkg/chip8"
)

// writeROM stores big-endian instruction words in a temporary rom file.
func writeROM(t *testing.T, words ...uint16) string {
	t.Helper()
	rom := make([]byte, 0, len(words)*2)
	for _, w := range words {
		rom = append(rom, byte(w>>8), byte(w))
	}
	path := filepath.Join(t.TempDir(), "test.ch8")
	if err := os.WriteFile(path, rom, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadEngine(t *testing.T, path string) *chip8.Engine {
	t.Helper()
	rom, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	engine := chip8.NewEngine(chip8.Options{})
	if err := engine.Load(rom); err != nil {
		t.Fatal(err)
	}
	return engine
}

// digitsProgram draws the decimal digits of 123 side by side.
var digitsProgram = []uint16{
	0x607B, // 200: LD V0, $7B
	0xA300, // 202: LD I, $300
	0xF033, // 204: LD B, V0
	0xF265, // 206: LD V2, [I]
	0x6300, // 208: LD V3, $00
	0x6400, // 20A: LD V4, $00
	0xF029, // 20C: LD F, V0
	0xD345, // 20E: DRW V3, V4, $5
	0x7305, // 210: ADD V3, $05
	0xF129, // 212: LD F, V1
	0xD345, // 214: DRW V3, V4, $5
	0x7305, // 216: ADD V3, $05
	0xF229, // 218: LD F, V2
	0xD345, // 21A: DRW V3, V4, $5
	0x121C, // 21C: JP $21C
}

func TestRunStepsDrawsDigits(t *testing.T) {
	engine := loadEngine(t, writeROM(t, digitsProgram...))
	if err := runSteps(engine, 50); err != nil {
		t.Fatalf("runSteps: %v", err)
	}

	st := engine.State()
	if st.PC != 0x21C || !st.Running {
		t.Errorf("expected program parked at 0x21C, got PC=0x%03X running=%v", st.PC, st.Running)
	}
	if st.V[0] != 1 || st.V[1] != 2 || st.V[2] != 3 {
		t.Errorf("expected digits 1 2 3 in V0-V2, got %v", st.V[:3])
	}

	frame := engine.Frame()
	if lit := frame.Lit(); lit != 36 {
		t.Errorf("expected 36 lit pixels, got %d", lit)
	}
	firstRow := strings.SplitN(frame.String(), "\n", 2)[0]
	if !strings.HasPrefix(firstRow, "..#..####.####.") {
		t.Errorf("unexpected first row %q", firstRow)
	}
}

func TestRunStepsTicksTimers(t *testing.T) {
	engine := loadEngine(t, writeROM(t,
		0x600A, // LD V0, $0A
		0xF015, // LD DT, V0
		0x1204, // JP $204
	))

	perTick := int(chip8.TimerPeriod / engine.CycleDelay())
	if err := runSteps(engine, 2+perTick*4); err != nil {
		t.Fatal(err)
	}
	if dt := engine.State().Delay; dt < 6 || dt > 8 {
		t.Errorf("expected delay timer near 6, got %d", dt)
	}
}

func TestRunStepsFault(t *testing.T) {
	engine := loadEngine(t, writeROM(t, 0x00EE))

	err := runSteps(engine, 10)
	var fatal *chip8.FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected *chip8.FatalError, got %v", err)
	}
	if exitCode(err) != 3 {
		t.Errorf("exitCode: expected 3, got %d", exitCode(err))
	}
}

func TestRunForReturnsFault(t *testing.T) {
	engine := loadEngine(t, writeROM(t, 0x6001, 0xF0FF))

	err := runFor(engine, 5*time.Second)
	if !errors.Is(err, chip8.ErrUnknownOpcode) {
		t.Errorf("expected ErrUnknownOpcode, got %v", err)
	}
}

func TestRunForTimeout(t *testing.T) {
	engine := loadEngine(t, writeROM(t, 0x1200))

	if err := runFor(engine, 50*time.Millisecond); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if engine.State().Cycles == 0 {
		t.Error("expected the engine to execute cycles")
	}
}

func TestDisassembleFile(t *testing.T) {
	var buf bytes.Buffer
	if err := disassembleFile(&buf, writeROM(t, 0x00E0, 0xA22A)); err != nil {
		t.Fatal(err)
	}
	want := "200  00E0  CLS\n202  A22A  LD I, $22A\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	var frame chip8.Frame
	printSummary(&buf, chip8.State{PC: 0x202, Cycles: 1}, &frame)

	out := buf.String()
	if !strings.HasPrefix(out, "halted after 1 cycles: PC=$202") {
		t.Errorf("unexpected summary header:\n%s", out)
	}
	if strings.Count(out, "\n") != 2+chip8.DisplayHeight {
		t.Errorf("expected header, registers and %d frame rows:\n%s", chip8.DisplayHeight, out)
	}
}

func TestExitCode(t *testing.T) {
	if exitCode(nil) != 0 {
		t.Error("nil: expected 0")
	}
	if exitCode(errors.New("boom")) != 1 {
		t.Error("plain error: expected 1")
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"pong.asm", "pong.ch8"},
		{"dir/pong", "dir/pong.ch8"},
	}
	for _, tt := range tests {
		if got := defaultOutputPath(tt.in); got != tt.want {
			t.Errorf("defaultOutputPath(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

const blinkSource = `
	LD I, dot
loop:
	DRW V0, V0, 1
	JP loop
dot:
	DB $80
`

func TestAssembleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "blink.asm")
	if err := os.WriteFile(src, []byte(blinkSource), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "blink.ch8")
	size, err := assembleFile(src, out)
	if err != nil {
		t.Fatalf("assembleFile: %v", err)
	}
	rom, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0xA2, 0x06, 0xD0, 0x01, 0x12, 0x02, 0x80}
	if size != len(want) || !bytes.Equal(rom, want) {
		t.Errorf("expected % X, got % X (size %d)", want, rom, size)
	}
}

func TestReadProgramAssemblesSource(t *testing.T) {
	src := filepath.Join(t.TempDir(), "blink.asm")
	if err := os.WriteFile(src, []byte(blinkSource), 0o644); err != nil {
		t.Fatal(err)
	}

	rom, err := readProgram(src)
	if err != nil {
		t.Fatal(err)
	}
	engine := chip8.NewEngine(chip8.Options{})
	if err := engine.Load(rom); err != nil {
		t.Fatal(err)
	}
	// every DRW toggles the dot
	if err := runSteps(engine, 3); err != nil {
		t.Fatal(err)
	}
	frame := engine.Frame()
	if !frame[0][0] || frame.Lit() != 1 {
		t.Errorf("expected a single dot after one draw, got %d lit", frame.Lit())
	}
}
