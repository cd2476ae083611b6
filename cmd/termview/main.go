// Command termview plays an encounter in the terminal, with tone cues.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/ecs/system"
	"github.com/milk9111/nightwatch/hud"
	"github.com/milk9111/nightwatch/prefabs"
	"github.com/milk9111/nightwatch/sim"
)

const (
	frame = 16 * time.Millisecond
	// Terminals report key presses but not releases, so a press holds its
	// direction for this long.
	holdFor   = 180 * time.Millisecond
	logLength = 8
)

// controls turns key presses into held movement.
type controls struct {
	move   common.Vec2
	until  time.Time
	sprint bool
	aim    common.Vec2
	hasAim bool
	toggle bool
	cycle  bool
	paused bool
	quit   bool
}

var directions = map[rune]common.Vec2{
	'w': common.V(0, -1),
	'a': common.V(-1, 0),
	's': common.V(0, 1),
	'd': common.V(1, 0),
}

func (c *controls) handle(ev tcell.Event, vp viewport, now time.Time) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			c.quit = true
		case tcell.KeyUp:
			c.press(directions['w'], now)
		case tcell.KeyLeft:
			c.press(directions['a'], now)
		case tcell.KeyDown:
			c.press(directions['s'], now)
		case tcell.KeyRight:
			c.press(directions['d'], now)
		case tcell.KeyRune:
			switch r := ev.Rune(); r {
			case 'q':
				c.quit = true
			case 'p':
				c.paused = !c.paused
			case 'f':
				c.toggle = true
			case 'm':
				c.cycle = true
			case 'r':
				c.sprint = !c.sprint
			default:
				if d, ok := directions[r]; ok {
					c.press(d, now)
				}
			}
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		if _, _, ok := vp.cell(vp.world(x, y)); ok {
			c.aim, c.hasAim = vp.world(x, y), true
		}
	}
}

func (c *controls) press(d common.Vec2, now time.Time) {
	if now.Before(c.until) {
		c.move = c.move.Add(d)
		if c.move.Len() > 1 {
			c.move = c.move.Normalize()
		}
	} else {
		c.move = d
	}
	c.until = now.Add(holdFor)
}

// input returns the held controls. Without a mouse aim the light points
// where the player walks.
func (c *controls) input(player sim.PlayerView, now time.Time) sim.Input {
	move := c.move
	if !now.Before(c.until) {
		move = common.Vec2{}
	}
	in := sim.Input{Move: move, Sprint: c.sprint && move != (common.Vec2{})}
	switch {
	case c.hasAim:
		in.Aim = c.aim
	case move != (common.Vec2{}):
		in.Aim = player.Position.Add(move.Scale(100))
	default:
		in.Aim = player.Position.Add(common.FromAngle(player.Facing).Scale(100))
	}
	return in
}

func main() {
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "simulation seed")
	mute := flag.Bool("mute", false, "disable tone cues")
	logPath := flag.String("log", "", "write logs to this file")
	flag.Parse()

	logOut := io.Discard
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := log.New(logOut, "[nightwatch] ", log.LstdFlags|log.Lshortfile)

	tones, err := newPlayer(*mute)
	if err != nil {
		logger.Printf("audio disabled: %v", err)
	}
	defer tones.Close()

	model := &hud.Model{}
	s, err := sim.New(sim.Config{Seed: *seed, Logger: logger, HUD: model, Cues: tones})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	arena, err := prefabs.LoadArenaSpec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err := s.LoadArena(arena); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var journal []string
	s.Subscribe(func(e system.Entry) {
		journal = append(journal, fmt.Sprintf("%6.1fs #%d %s %v", e.Time, e.Source, e.Kind, e.Data))
		if len(journal) > logLength {
			journal = journal[len(journal)-logLength:]
		}
	})

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseMotionEvents)

	layout := func() viewport {
		w, h := screen.Size()
		return viewport{cols: w, rows: h - hudRows, width: arena.Width, height: arena.Height}
	}
	vp := layout()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(frame)
	defer ticker.Stop()
	ctl := &controls{}
	last := time.Now()

	for !ctl.quit {
		select {
		case ev := <-events:
			if _, ok := ev.(*tcell.EventResize); ok {
				screen.Sync()
				vp = layout()
				continue
			}
			ctl.handle(ev, vp, time.Now())
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if !ctl.paused {
				if player, ok := s.Player(); ok {
					_ = s.SetInput(ctl.input(player, now))
				}
				if ctl.toggle {
					_ = s.ToggleFlashlight()
				}
				if ctl.cycle {
					_ = s.CycleFlashlightMode()
				}
				ctl.toggle, ctl.cycle = false, false
				s.Step(min(dt, 0.1))
			}
			draw(screen, s, vp, model, journal, ctl.paused)
		}
	}
}
