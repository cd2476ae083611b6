package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/nightwatch/cue"
	"github.com/milk9111/nightwatch/ecs/system"
	"github.com/milk9111/nightwatch/hud"
	"github.com/milk9111/nightwatch/obj"
	"github.com/milk9111/nightwatch/prefabs"
	"github.com/milk9111/nightwatch/sim"
	"github.com/milk9111/nightwatch/storage"
	"golang.design/x/clipboard"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	cameraZoom  = 0.6
	logLength   = 6
	statusFor   = 3 * time.Second
	flashFor    = 0.35
	flushEvery  = 60
	journalLine = "%6.1fs #%d %s"
)

var errNoStore = errors.New("no -db given")

type Options struct {
	Seed      uint64
	Debug     bool
	DBPath    string
	Watch     bool
	Clipboard bool
	Logger    *log.Logger
}

type Game struct {
	opts   Options
	logger *log.Logger

	sim    *sim.Simulation
	arena  prefabs.ArenaSpec
	model  *hud.Model
	camera *obj.Camera
	input  *obj.Input

	runID    string
	snaps    *storage.SnapshotRepository
	recorder *storage.Recorder
	closeDB  func() error
	watcher  *prefabs.Watcher

	pauseUI *ebitenui.UI
	paused  bool
	debug   bool
	quit    bool
	frames  int

	journal     []string
	flashes     map[uint64]flash
	status      string
	statusUntil time.Time
}

// flash marks an entity that just played an animation cue.
type flash struct {
	name  string
	until float64
}

func NewGame(opts Options) (*Game, error) {
	g := &Game{
		opts:    opts,
		logger:  opts.Logger,
		model:   &hud.Model{},
		camera:  obj.NewCamera(baseWidth, baseHeight, cameraZoom),
		debug:   opts.Debug,
		runID:   uuid.NewString(),
		flashes: map[uint64]flash{},
	}
	g.input = obj.NewInput(g.camera)

	s, err := sim.New(sim.Config{
		Seed:   opts.Seed,
		Logger: opts.Logger,
		HUD:    g.model,
		Cues:   cue.SinkFunc(g.playCue),
	})
	if err != nil {
		return nil, err
	}
	g.sim = s

	if g.arena, err = prefabs.LoadArenaSpec(); err != nil {
		return nil, err
	}
	if err := s.LoadArena(g.arena); err != nil {
		return nil, err
	}
	g.camera.SetWorldBounds(g.arena.Width, g.arena.Height)
	g.camera.SnapTo(g.arena.PlayerSpawn)

	g.recorder = storage.NewRecorder(nil, g.runID)
	if opts.DBPath != "" {
		db, err := storage.InitSQLite(opts.DBPath)
		if err != nil {
			return nil, err
		}
		g.closeDB = db.Close
		g.snaps = storage.NewSnapshotRepository(db)
		g.recorder = storage.NewRecorder(storage.NewJournalRepository(db), g.runID)
	}
	s.Subscribe(g.recorder.Record)
	s.Subscribe(g.logEntry)

	if opts.Watch {
		if g.watcher, err = prefabs.NewWatcher(); err != nil {
			g.logger.Printf("prefab watch disabled: %v", err)
		}
	}

	g.pauseUI = NewPauseUI(g)
	return g, nil
}

func (g *Game) Close() {
	if err := g.recorder.Flush(context.Background()); err != nil {
		g.logger.Printf("journal: %v", err)
	}
	if g.watcher != nil {
		g.watcher.Close()
	}
	if g.closeDB != nil {
		g.closeDB()
	}
}

// playCue keeps animation cues for the renderer and logs sounds, which
// this viewer does not play.
func (g *Game) playCue(req cue.Request) {
	if req.Kind == cue.Animation {
		g.flashes[req.Owner] = flash{name: req.Name, until: g.sim.Time() + flashFor}
		return
	}
	if g.debug {
		g.logger.Printf("cue %s from #%d at %.2f", req.Name, req.Owner, req.Volume)
	}
}

func (g *Game) logEntry(e system.Entry) {
	line := fmt.Sprintf(journalLine, e.Time, e.Source, e.Kind)
	if to, ok := e.Data["to"]; ok {
		line += fmt.Sprintf(" -> %v", to)
	}
	g.journal = append(g.journal, line)
	if len(g.journal) > logLength {
		g.journal = g.journal[len(g.journal)-logLength:]
	}
}

func (g *Game) setStatus(format string, args ...any) {
	g.status = fmt.Sprintf(format, args...)
	g.statusUntil = time.Now().Add(statusFor)
	g.logger.Print(g.status)
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	g.frames++

	player, hasPlayer := g.sim.Player()
	g.input.Update(player.Position)
	if g.input.PausePressed {
		g.paused = !g.paused
	}
	if g.input.DebugPressed {
		g.debug = !g.debug
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	if g.watcher != nil {
		for _, c := range g.watcher.Drain() {
			if err := g.sim.Apply(c); err != nil {
				g.setStatus("reload %s: %v", c.Name, err)
			} else {
				g.setStatus("reloaded %s", c.Name)
			}
		}
	}

	if hasPlayer && !player.Dead {
		_ = g.sim.SetInput(sim.Input{Move: g.input.Move, Aim: g.input.Aim, Sprint: g.input.Sprint})
		if g.input.TogglePressed {
			_ = g.sim.ToggleFlashlight()
		}
		if g.input.CyclePressed {
			_ = g.sim.CycleFlashlightMode()
		}
	}
	if g.input.SavePressed {
		g.saveSnapshot()
	}

	g.sim.Step(1 / float64(ebiten.TPS()))
	g.expireFlashes()

	if hasPlayer {
		g.camera.Update(player.Position)
	}
	if g.frames%flushEvery == 0 {
		if err := g.recorder.Flush(context.Background()); err != nil {
			g.logger.Printf("journal: %v", err)
		}
	}
	return nil
}

func (g *Game) expireFlashes() {
	now := g.sim.Time()
	for id, f := range g.flashes {
		if now >= f.until {
			delete(g.flashes, id)
		}
	}
}

func (g *Game) saveSnapshot() {
	if g.snaps == nil {
		g.setStatus("save: %v", errNoStore)
		return
	}
	snap, err := g.sim.Snapshot()
	if err != nil {
		g.setStatus("save: %v", err)
		return
	}
	label := fmt.Sprintf("t=%.0fs", g.sim.Time())
	id, err := g.snaps.Save(context.Background(), g.runID, label, g.sim.Tick(), g.sim.Time(), snap)
	if err != nil {
		g.setStatus("save: %v", err)
		return
	}
	g.setStatus("saved %s (%s)", label, id[:8])
}

func (g *Game) loadLatest() {
	if g.snaps == nil {
		g.setStatus("load: %v", errNoStore)
		return
	}
	ctx := context.Background()
	rec, err := g.snaps.Latest(ctx, g.runID)
	if err != nil {
		g.setStatus("load: %v", err)
		return
	}
	var snap sim.Snapshot
	if err := g.snaps.Load(ctx, rec.ID, &snap); err != nil {
		g.setStatus("load: %v", err)
		return
	}
	if err := g.sim.Restore(snap); err != nil {
		g.setStatus("load: %v", err)
		return
	}
	clear(g.flashes)
	if player, ok := g.sim.Player(); ok {
		g.camera.SnapTo(player.Position)
	}
	g.setStatus("loaded %s", rec.Label)
}

func (g *Game) copySnapshot() {
	if !g.opts.Clipboard {
		g.setStatus("copy: clipboard unavailable")
		return
	}
	snap, err := g.sim.Snapshot()
	if err != nil {
		g.setStatus("copy: %v", err)
		return
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		g.setStatus("copy: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	g.setStatus("copied snapshot at tick %d", g.sim.Tick())
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawWorld(screen)
	g.drawHUD(screen)
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
