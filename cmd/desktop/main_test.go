package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/image/colornames"

	"gochip8/pkg/chip8"
	"gochip8/pkg/config"
)

func newTestGame(t *testing.T, rom ...byte) *Game {
	t.Helper()
	engine := chip8.NewEngine(chip8.Options{})
	if err := engine.Load(rom); err != nil {
		t.Fatal(err)
	}
	return &Game{
		engine:  engine,
		logger:  slog.New(slog.DiscardHandler),
		title:   "test",
		scale:   3,
		on:      colornames.White,
		off:     colornames.Black,
		shotDir: t.TempDir(),
	}
}

func TestKeypadKeysFollowLayout(t *testing.T) {
	seen := map[int]bool{}
	for i, k := range keypadKeys {
		if seen[int(k)] {
			t.Errorf("key %X: host key %v bound twice", i, k)
		}
		seen[int(k)] = true
	}
	if len(config.KeypadLayout) != len(keypadKeys) {
		t.Errorf("layout has %d keys, desktop binds %d", len(config.KeypadLayout), len(keypadKeys))
	}
}

func TestDrainEventsKeepsLatestFrame(t *testing.T) {
	g := newTestGame(t,
		0xA0, 0x50, // LD I, $050
		0xD0, 0x15, // DRW V0, V1, $5
		0x00, 0xE0, // CLS
		0xD0, 0x15, // DRW V0, V1, $5
	)
	for i := 0; i < 4; i++ {
		if err := g.engine.Step(); err != nil {
			t.Fatal(err)
		}
	}

	g.drainEvents()
	if !g.dirty {
		t.Error("expected a redraw after new frames")
	}
	if g.frame.Lit() != 14 {
		t.Errorf("expected the latest frame (14 lit), got %d lit", g.frame.Lit())
	}
	if g.fault != nil {
		t.Errorf("unexpected fault %v", g.fault)
	}
}

func TestDrainEventsRecordsFault(t *testing.T) {
	g := newTestGame(t, 0x00, 0xEE) // RET
	_ = g.engine.Step()

	g.drainEvents()
	if !errors.Is(g.fault, chip8.ErrStackUnderflow) {
		t.Errorf("expected stack underflow fault, got %v", g.fault)
	}
}

func TestScreenshot(t *testing.T) {
	g := newTestGame(t, 0xA0, 0x50, 0xD0, 0x15)
	_ = g.engine.Step()
	_ = g.engine.Step()
	g.drainEvents()

	g.screenshot()
	info, err := os.Stat(filepath.Join(g.shotDir, "test-001.png"))
	if err != nil {
		t.Fatalf("expected screenshot file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("screenshot is empty")
	}
}

func TestLayout(t *testing.T) {
	g := newTestGame(t)
	w, h := g.Layout(1000, 1000)
	if w != 192 || h != 96 {
		t.Errorf("expected 192x96, got %dx%d", w, h)
	}
}

func TestStatusLine(t *testing.T) {
	st := chip8.State{PC: 0x20A, I: 0x050, SP: 2, Keys: [chip8.NumKeys]bool{1: true, 0xC: true}}

	got := statusLine(st, 300*time.Microsecond, 60, 7)
	want := "PC $20A  I $050  SP 2  delay 300µs  TPS 60\nkeys [1C]  dropped 7"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStatusCountsDroppedFrames(t *testing.T) {
	// CLS twice more than the frame buffer holds
	rom := make([]byte, 0, 2*(chip8.DefaultBusBuffer+2))
	for i := 0; i < chip8.DefaultBusBuffer+2; i++ {
		rom = append(rom, 0x00, 0xE0)
	}
	g := newTestGame(t, rom...)
	for range chip8.DefaultBusBuffer + 2 {
		if err := g.engine.Step(); err != nil {
			t.Fatal(err)
		}
	}

	if got := g.engine.Bus().Dropped(); got != 2 {
		t.Errorf("expected 2 dropped frames, got %d", got)
	}
}
