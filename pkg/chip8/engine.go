package chip8

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

// Cycle delay bounds. The delay is slept after every cycle, so a shorter
// delay means faster emulation.
const (
	DefaultCycleDelay = 300 * time.Microsecond
	MinCycleDelay     = 100 * time.Microsecond
	MaxCycleDelay     = 2000 * time.Microsecond
	SpeedStep         = 100 * time.Microsecond
)

// Options configures an Engine. The zero value is usable.
type Options struct {
	Quirks     Quirks
	CycleDelay time.Duration // defaults to DefaultCycleDelay
	BusBuffer  int           // defaults to DefaultBusBuffer
	Logger     *slog.Logger  // defaults to discarding all output
	Rand       *rand.Rand    // defaults to a time-seeded PCG source

	// Trace logs every executed instruction at debug level.
	Trace bool
}

// State is a read-only snapshot of the machine for diagnostics.
type State struct {
	V       [NumRegisters]byte
	I       uint16
	PC      uint16
	SP      int
	Delay   byte
	Sound   byte
	Running bool
	Blocked bool
	Cycles  uint64
	Keys    [NumKeys]bool
}

// Engine runs a Machine in real time. The cycle loop and the 60 Hz timer
// loop each run on their own goroutine; Load, SetKey and AdjustSpeed may be
// called from any goroutine while they run.
type Engine struct {
	mu      sync.Mutex // guards machine against concurrent Step/Load
	machine *Machine
	bus     *Bus
	logger  *slog.Logger
	trace   bool

	delay atomic.Int64 // nanoseconds slept per cycle

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	wg        sync.WaitGroup
}

// NewEngine creates an engine with an initialized, idle machine.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	e := &Engine{
		machine: NewMachine(opts.Quirks, opts.Rand),
		bus:     NewBus(opts.BusBuffer, logger),
		logger:  logger,
		trace:   opts.Trace,
		stop:    make(chan struct{}),
	}
	e.machine.OnFrame = e.bus.PublishFrame

	delay := opts.CycleDelay
	if delay == 0 {
		delay = DefaultCycleDelay
	}
	e.delay.Store(int64(clampDelay(delay)))
	return e
}

func (e *Engine) Frames() <-chan Frame { return e.bus.Frames() }
func (e *Engine) Beeps() <-chan bool   { return e.bus.Beeps() }
func (e *Engine) Faults() <-chan error { return e.bus.Faults() }

// Bus returns the output channels of the engine.
func (e *Engine) Bus() *Bus { return e.bus }

// Load atomically resets the machine and loads rom. On error the machine is
// left untouched.
func (e *Engine) Load(rom []byte) error {
	e.mu.Lock()
	err := e.machine.Load(rom)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.logger.Info("rom loaded", slog.Int("bytes", len(rom)))
	return nil
}

// SetKey records a key press or release.
func (e *Engine) SetKey(key int, pressed bool) error {
	return e.machine.Keys.Set(key, pressed)
}

// CycleDelay returns the delay slept after each cycle.
func (e *Engine) CycleDelay() time.Duration {
	return time.Duration(e.delay.Load())
}

// SetCycleDelay sets the per-cycle delay, clamped to the allowed range,
// and returns the value in effect.
func (e *Engine) SetCycleDelay(d time.Duration) time.Duration {
	d = clampDelay(d)
	e.delay.Store(int64(d))
	e.logger.Info("cycle delay changed", slog.Duration("delay", d))
	return d
}

// AdjustSpeed changes the emulation speed by steps increments of SpeedStep.
// Positive steps speed up (shorter delay), negative steps slow down. The
// result is clamped to [MinCycleDelay, MaxCycleDelay].
func (e *Engine) AdjustSpeed(steps int) time.Duration {
	for {
		old := e.delay.Load()
		next := clampDelay(time.Duration(old) - time.Duration(steps)*SpeedStep)
		if e.delay.CompareAndSwap(old, int64(next)) {
			e.logger.Info("cycle delay changed", slog.Duration("delay", next))
			return next
		}
	}
}

func clampDelay(d time.Duration) time.Duration {
	return min(max(d, MinCycleDelay), MaxCycleDelay)
}

// Step executes one cycle without pacing. Fatal errors are logged and
// published on the fault channel before being returned.
func (e *Engine) Step() error {
	e.mu.Lock()
	if e.trace && e.machine.Running && !e.machine.Blocked() {
		pc := e.machine.PC
		op := uint16(e.machine.read(pc))<<8 | uint16(e.machine.read(pc+1))
		e.logger.Debug("exec",
			slog.String("pc", fmt.Sprintf("$%03X", pc)),
			slog.String("op", Disassemble(op)),
		)
	}
	err := e.machine.Step()
	e.mu.Unlock()

	if err != nil {
		e.logger.Error("machine halted", slog.Any("error", err))
		e.bus.PublishFault(err)
	}
	return err
}

// TickTimers advances both timers by one 60 Hz tick and publishes the beep state.
func (e *Engine) TickTimers() {
	e.bus.PublishBeep(e.machine.Timers.Tick())
}

// State returns a snapshot of the machine registers.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.machine
	return State{
		V:       m.V,
		I:       m.I,
		PC:      m.PC,
		SP:      len(m.Stack),
		Delay:   m.Timers.Delay(),
		Sound:   m.Timers.Sound(),
		Running: m.Running,
		Blocked: m.Blocked(),
		Cycles:  m.Cycles,
		Keys:    m.Keys.Snapshot(),
	}
}

// Frame returns a snapshot of the current display.
func (e *Engine) Frame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.Display
}

// Start launches the cycle and timer loops. Calling it again has no effect.
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		e.wg.Add(2)
		go e.cycleLoop()
		go e.timerLoop()
	})
}

// Stop ends both loops and waits for them to return.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
	e.wg.Wait()
}

// Run starts the engine and blocks until ctx is done, then stops it.
func (e *Engine) Run(ctx context.Context) {
	e.Start()
	<-ctx.Done()
	e.Stop()
}

func (e *Engine) cycleLoop() {
	defer e.wg.Done()

	for {
		select {
		case <-e.stop:
			return
		default:
		}

		_ = e.Step()
		sleep(e.stop, e.CycleDelay())
	}
}

func (e *Engine) timerLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(TimerPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.TickTimers()
		case <-e.stop:
			return
		}
	}
}

// sleep pauses for d, or until stop is closed when d is at least a millisecond.
func sleep(stop <-chan struct{}, d time.Duration) {
	if d < time.Millisecond {
		time.Sleep(d)
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-stop:
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
