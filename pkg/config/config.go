// Package config handles command line configuration shared by the commands.
package config

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"time"

	"golang.org/x/image/colornames"

	"gochip8/pkg/chip8"
)

// Config holds the settings every frontend understands.
type Config struct {
	CycleDelay time.Duration
	Shift      string
	KeyWait    string
	Scale      int
	Foreground string
	Background string
	Debug      bool
	Quiet      bool
	Trace      bool
}

// Default returns the reference interpreter settings.
func Default() Config {
	quirks := chip8.DefaultQuirks()
	return Config{
		CycleDelay: chip8.DefaultCycleDelay,
		Shift:      quirks.Shift.String(),
		KeyWait:    quirks.KeyWait.String(),
		Scale:      10,
		Foreground: "white",
		Background: "black",
	}
}

// RegisterFlags binds the config fields to fs, using the current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.DurationVar(&c.CycleDelay, "delay", c.CycleDelay,
		fmt.Sprintf("delay after each cycle (%v to %v)", chip8.MinCycleDelay, chip8.MaxCycleDelay))
	fs.StringVar(&c.Shift, "shift", c.Shift, "8XY6/8XYE shift source: vy or vx")
	fs.StringVar(&c.KeyWait, "keywait", c.KeyWait, "FX0A blocking mode: release, change or none")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale factor")
	fs.StringVar(&c.Foreground, "fg", c.Foreground, "lit pixel color name")
	fs.StringVar(&c.Background, "bg", c.Background, "dark pixel color name")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "enable debug logging")
	fs.BoolVar(&c.Quiet, "quiet", c.Quiet, "only log errors")
	fs.BoolVar(&c.Trace, "trace", c.Trace, "log every executed instruction (implies -debug)")
}

// Quirks parses the quirk settings.
func (c Config) Quirks() (chip8.Quirks, error) {
	shift, err := chip8.ParseShiftSource(c.Shift)
	if err != nil {
		return chip8.Quirks{}, err
	}
	wait, err := chip8.ParseKeyWait(c.KeyWait)
	if err != nil {
		return chip8.Quirks{}, err
	}
	return chip8.Quirks{Shift: shift, KeyWait: wait}, nil
}

// Colors resolves the foreground and background names against the SVG 1.1
// color keywords.
func (c Config) Colors() (on, off color.RGBA, err error) {
	on, ok := colornames.Map[c.Foreground]
	if !ok {
		return on, off, fmt.Errorf("unknown color %q", c.Foreground)
	}
	off, ok = colornames.Map[c.Background]
	if !ok {
		return on, off, fmt.Errorf("unknown color %q", c.Background)
	}
	return on, off, nil
}

// Logger creates the logger described by the debug, quiet and trace flags.
func (c Config) Logger() *slog.Logger {
	return NewLogger(c.Debug || c.Trace, c.Quiet)
}

// EngineOptions converts the config into engine options.
func (c Config) EngineOptions(logger *slog.Logger) (chip8.Options, error) {
	quirks, err := c.Quirks()
	if err != nil {
		return chip8.Options{}, err
	}
	return chip8.Options{
		Quirks:     quirks,
		CycleDelay: c.CycleDelay,
		Logger:     logger,
		Trace:      c.Trace,
	}, nil
}

// NewLogger creates a text logger on stderr with appropriate settings.
func NewLogger(debug, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
