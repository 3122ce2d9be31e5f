package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"gochip8/pkg/chip8"
	"gochip8/pkg/config"
	"gochip8/pkg/utils"
)

// readInput forwards stdin bytes until the read fails.
func readInput(r io.Reader, out chan<- byte) {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			out <- b
		}
		if err != nil {
			close(out)
			return
		}
	}
}

func run(ctx context.Context, engine *chip8.Engine, in io.Reader, out io.Writer, hold time.Duration) error {
	input := make(chan byte, 64)
	go readInput(in, input)

	keys := newKeyHolder(hold)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	engine.Start()
	defer engine.Stop()

	fmt.Fprint(out, clearScreen, hideCursor)
	defer fmt.Fprint(out, showCursor, "\r\n")

	beeping := false
	for {
		select {
		case <-ctx.Done():
			return nil

		case f := <-engine.Frames():
			fmt.Fprint(out, renderFrame(&f))

		case on := <-engine.Beeps():
			if on && !beeping {
				fmt.Fprint(out, "\a")
			}
			beeping = on

		case err := <-engine.Faults():
			return err

		case b, ok := <-input:
			if !ok {
				return nil
			}
			cmd, key := decode(b)
			switch cmd {
			case cmdQuit:
				return nil
			case cmdFaster:
				engine.AdjustSpeed(1)
			case cmdSlower:
				engine.AdjustSpeed(-1)
			case cmdKey:
				if keys.press(key, time.Now()) {
					_ = engine.SetKey(key, true)
				}
			}

		case now := <-ticker.C:
			for _, key := range keys.expire(now) {
				_ = engine.SetKey(key, false)
			}
		}
	}
}

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	hold := flag.Duration("hold", 150*time.Millisecond, "how long a key counts as held after a keystroke")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] rom.ch8\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	// Logs go to stderr and would tear the picture, so default to errors only.
	if !cfg.Debug && !cfg.Trace {
		cfg.Quiet = true
	}
	logger := cfg.Logger()
	opts, err := cfg.EngineOptions(logger)
	if err != nil {
		log.Fatal(err)
	}

	rom, _, err := utils.ReadROM(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read rom: %v", err)
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		log.Fatal("stdin is not a terminal")
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && (w < chip8.DisplayWidth || h < chip8.DisplayHeight/2) {
		logger.Warn("terminal too small", slog.Int("width", w), slog.Int("height", h))
	}

	engine := chip8.NewEngine(opts)
	if err := engine.Load(rom); err != nil {
		log.Fatalf("Failed to load rom: %v", err)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.Fatalf("Failed to set raw mode: %v", err)
	}

	runErr := run(context.Background(), engine, os.Stdin, os.Stdout, *hold)
	_ = term.Restore(fd, oldState)

	var fatal *chip8.FatalError
	if errors.As(runErr, &fatal) {
		log.Fatalf("Program halted: %v", fatal)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
