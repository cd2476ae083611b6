package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.design/x/clipboard"
)

func main() {
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "simulation seed")
	debug := flag.Bool("debug", false, "draw sight cones and last known locations")
	dbPath := flag.String("db", "", "sqlite file for journal and snapshots (empty disables saving)")
	watch := flag.Bool("watch", false, "hot reload prefabs from the prefabs directory")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	logger := log.New(os.Stderr, "[nightwatch] ", log.LstdFlags|log.Lshortfile)

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("nightwatch")

	// The clipboard needs a display; without one the copy button reports it.
	clipboardOK := true
	if err := clipboard.Init(); err != nil {
		logger.Printf("clipboard disabled: %v", err)
		clipboardOK = false
	}

	game, err := NewGame(Options{
		Seed:      *seed,
		Debug:     *debug,
		DBPath:    *dbPath,
		Watch:     *watch,
		Clipboard: clipboardOK,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal(err)
	}
}
