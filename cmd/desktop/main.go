package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gochip8/pkg/audio"
	"gochip8/pkg/chip8"
	"gochip8/pkg/config"
	"gochip8/pkg/utils"
)

// keypadKeys holds the host key for each CHIP-8 key, following config.KeypadLayout.
var keypadKeys = [chip8.NumKeys]ebiten.Key{
	ebiten.KeyX, ebiten.Key1, ebiten.Key2, ebiten.Key3,
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyA,
	ebiten.KeyS, ebiten.KeyD, ebiten.KeyZ, ebiten.KeyC,
	ebiten.Key4, ebiten.KeyR, ebiten.KeyF, ebiten.KeyV,
}

type Game struct {
	engine *chip8.Engine
	logger *slog.Logger

	title   string
	scale   int
	on, off color.RGBA
	shotDir string

	frame      chip8.Frame
	dirty      bool
	fault      error
	showStatus bool

	screenImg *ebiten.Image // reused 64×32 canvas
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	for i, k := range keypadKeys {
		if inpututil.IsKeyJustPressed(k) {
			_ = g.engine.SetKey(i, true)
		} else if inpututil.IsKeyJustReleased(k) {
			_ = g.engine.SetKey(i, false)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.engine.AdjustSpeed(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.engine.AdjustSpeed(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.showStatus = !g.showStatus
	}

	g.drainEvents()

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.screenshot()
	}
	return nil
}

// drainEvents keeps the newest published frame and the first fault.
func (g *Game) drainEvents() {
	for {
		select {
		case f := <-g.engine.Frames():
			g.frame = f
			g.dirty = true
		case err := <-g.engine.Faults():
			if g.fault == nil {
				g.fault = err
			}
		default:
			return
		}
	}
}

func (g *Game) screenshot() {
	path := utils.ScreenshotPath(g.shotDir, g.title)
	if err := g.frame.SavePNG(path, g.scale); err != nil {
		g.logger.Error("screenshot failed", slog.Any("error", err))
		return
	}
	g.logger.Info("screenshot saved", slog.String("path", path))
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(chip8.DisplayWidth, chip8.DisplayHeight)
		g.dirty = true
	}
	if g.dirty {
		g.screenImg.WritePixels(g.frame.RGBA(g.on, g.off))
		g.dirty = false
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.screenImg, op)

	if g.fault != nil {
		ebitenutil.DebugPrint(screen, g.fault.Error())
		return
	}
	if g.showStatus {
		ebitenutil.DebugPrint(screen, g.status())
	}
}

func (g *Game) status() string {
	return statusLine(g.engine.State(), g.engine.CycleDelay(), ebiten.ActualTPS(), g.engine.Bus().Dropped())
}

// statusLine formats the overlay shown with Tab.
func statusLine(st chip8.State, delay time.Duration, tps float64, dropped uint64) string {
	keys := make([]byte, 0, chip8.NumKeys)
	for i, down := range st.Keys {
		if down {
			keys = append(keys, "0123456789ABCDEF"[i])
		}
	}
	return fmt.Sprintf("PC $%03X  I $%03X  SP %d  delay %v  TPS %.0f\nkeys [%s]  dropped %d",
		st.PC, st.I, st.SP, delay, tps, keys, dropped)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return chip8.DisplayWidth * g.scale, chip8.DisplayHeight * g.scale
}

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	mute := flag.Bool("mute", false, "disable the buzzer")
	shotDir := flag.String("shots", ".", "directory for F12 screenshots")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] rom.ch8\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger := cfg.Logger()
	on, off, err := cfg.Colors()
	if err != nil {
		log.Fatal(err)
	}
	opts, err := cfg.EngineOptions(logger)
	if err != nil {
		log.Fatal(err)
	}

	rom, title, err := utils.ReadROM(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read rom: %v", err)
	}

	engine := chip8.NewEngine(opts)
	if err := engine.Load(rom); err != nil {
		log.Fatalf("Failed to load rom: %v", err)
	}

	stop := make(chan struct{})
	if !*mute {
		beeper, err := audio.NewBeeper(audio.DefaultSampleRate)
		if err != nil {
			logger.Warn("audio disabled", slog.Any("error", err))
		} else {
			defer beeper.Close()
			go audio.Follow(beeper, engine.Beeps(), stop)
		}
	}

	engine.Start()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(chip8.DisplayWidth*cfg.Scale, chip8.DisplayHeight*cfg.Scale)
	ebiten.SetWindowTitle("gochip8 - " + title)

	game := &Game{
		engine:  engine,
		logger:  logger,
		title:   title,
		scale:   max(cfg.Scale, 1),
		on:      on,
		off:     off,
		shotDir: *shotDir,
	}
	runErr := ebiten.RunGame(game)

	// Graceful shutdown: stop the loops, then silence the buzzer
	engine.Stop()
	close(stop)
	if runErr != nil {
		log.Fatal(runErr)
	}
}
