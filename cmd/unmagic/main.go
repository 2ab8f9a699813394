// Command unmagic opens a window showing the ghost-difference effect. Drop
// a JPEG, PNG, GIF or ICO file onto the window to load it.
//
// Keys:
//
//	A          toggle automatic oscillation
//	Left/Right nudge the offset (Shift for 0.1 steps); turns auto off
//	Up/Down    slant
//	[ ]        stretch
//	- =        offset magnitude
//	S          save a screenshot
//	C / V      copy the frame / paste an image
//	H          toggle the overlay
//
// Dragging with the left mouse button scrubs the offset.
package main

import (
	"errors"
	"flag"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	_ "github.com/silbinarywolf/preferdiscretegpu"

	"github.com/phanxgames/unmagic"
	"github.com/phanxgames/unmagic/telemetry"
)

func main() {
	cfg := unmagic.DefaultRunConfig()
	cfg.RegisterFlags(flag.CommandLine)
	file := flag.String("file", "", "image to load at startup")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		log = log.Level(lvl)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	bus := telemetry.NewBus()
	bus.Attach(telemetry.NewLogSink(log))

	g, err := newGame(cfg, log, bus)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	if *file != "" {
		g.loadPath(*file)
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height+hudHeight)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal().Err(err).Msg("game loop failed")
	}
	g.dispose()
}
