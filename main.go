//go:build !js

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gochip8/pkg/asm"
	"gochip8/pkg/chip8"
	"gochip8/pkg/config"
	"gochip8/pkg/utils"
)

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	asmPath := flag.String("asm", "", "assemble a source file into a rom")
	outPath := flag.String("out", "", "output rom path for -asm (default: input with .ch8 extension)")
	disasmPath := flag.String("disasm", "", "print a listing of a rom file")
	runPath := flag.String("run", "", "run a rom file without a display")
	duration := flag.Duration("for", time.Second, "how long to run in real time")
	stepCount := flag.Int("steps", 0, "execute exactly this many cycles instead of running in real time")
	pngPath := flag.String("png", "", "write the final frame as a PNG to this path")
	flag.Parse()

	if *asmPath == "" && *disasmPath == "" && *runPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -asm <file>, -disasm <file> or -run <file>")
		flag.Usage()
		os.Exit(2)
	}

	if *asmPath != "" {
		output := *outPath
		if output == "" {
			output = defaultOutputPath(*asmPath)
		}
		size, err := assembleFile(*asmPath, output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "assembly failed for %q: %v\n", *asmPath, err)
			os.Exit(1)
		}
		fmt.Printf("assembled %d bytes -> %s\n", size, output)
	}

	if *disasmPath != "" {
		if err := disassembleFile(os.Stdout, *disasmPath); err != nil {
			fmt.Fprintf(os.Stderr, "disassembly failed for %q: %v\n", *disasmPath, err)
			os.Exit(1)
		}
	}
	if *runPath == "" {
		return
	}

	logger := cfg.Logger()
	opts, err := cfg.EngineOptions(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	rom, err := readProgram(*runPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	engine := chip8.NewEngine(opts)
	if err := engine.Load(rom); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load %q: %v\n", *runPath, err)
		os.Exit(1)
	}

	var runErr error
	if *stepCount > 0 {
		runErr = runSteps(engine, *stepCount)
	} else {
		runErr = runFor(engine, *duration)
	}

	frame := engine.Frame()
	printSummary(os.Stdout, engine.State(), &frame)

	if *pngPath != "" {
		if err := frame.SavePNG(*pngPath, cfg.Scale); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %q: %v\n", *pngPath, err)
			os.Exit(1)
		}
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "run failed for %q: %v\n", *runPath, runErr)
		os.Exit(exitCode(runErr))
	}
}

func defaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + ".ch8"
	}
	return strings.TrimSuffix(inPath, ext) + ".ch8"
}

func assembleFile(inPath, outPath string) (int, error) {
	source, err := os.ReadFile(inPath)
	if err != nil {
		return 0, err
	}
	code, _, err := asm.Assemble(string(source))
	if err != nil {
		return 0, err
	}
	return len(code), os.WriteFile(outPath, code, 0o644)
}

// readProgram loads a rom image, assembling it first when it is a .asm source.
func readProgram(path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".asm") {
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		code, _, err := asm.Assemble(string(source))
		return code, err
	}
	rom, _, err := utils.ReadROM(path)
	return rom, err
}

func disassembleFile(w io.Writer, path string) error {
	rom, _, err := utils.ReadROM(path)
	if err != nil {
		return err
	}
	return chip8.WriteListing(w, rom)
}

// runFor runs the engine in real time and returns the first fault, if any.
func runFor(engine *chip8.Engine, d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	engine.Start()
	defer engine.Stop()

	for {
		select {
		case err := <-engine.Faults():
			return err
		case <-ctx.Done():
			return nil
		}
	}
}

// runSteps executes n cycles back to back, ticking the timers as often as
// they would tick at the configured speed.
func runSteps(engine *chip8.Engine, n int) error {
	perTick := max(int(chip8.TimerPeriod/engine.CycleDelay()), 1)
	for i := 1; i <= n; i++ {
		if err := engine.Step(); err != nil {
			return err
		}
		if i%perTick == 0 {
			engine.TickTimers()
		}
	}
	return nil
}

func printSummary(w io.Writer, st chip8.State, frame *chip8.Frame) {
	status := "running"
	switch {
	case !st.Running:
		status = "halted"
	case st.Blocked:
		status = "waiting for key"
	}
	fmt.Fprintf(w, "%s after %d cycles: PC=$%03X I=$%03X SP=%d DT=%d ST=%d\n",
		status, st.Cycles, st.PC, st.I, st.SP, st.Delay, st.Sound)
	fmt.Fprintf(w, "V: % X\n", st.V[:])
	fmt.Fprint(w, frame.String())
}

// exitCode maps a run error to the process exit status.
func exitCode(err error) int {
	var fatal *chip8.FatalError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &fatal):
		return 3
	default:
		return 1
	}
}
