// Command headless runs an encounter without a window: a pilot drives the
// player at a fixed step, the journal and periodic snapshots go to sqlite,
// and a summary is printed at the end.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/milk9111/nightwatch/cue"
	"github.com/milk9111/nightwatch/ecs/system"
	"github.com/milk9111/nightwatch/hud"
	"github.com/milk9111/nightwatch/prefabs"
	"github.com/milk9111/nightwatch/sim"
	"github.com/milk9111/nightwatch/storage"
)

func main() {
	seed := flag.Uint64("seed", 1, "simulation seed")
	duration := flag.Duration("duration", 2*time.Minute, "simulated time to run")
	hz := flag.Int("hz", 60, "fixed steps per simulated second")
	dbPath := flag.String("db", "", "sqlite file for journal and snapshots (empty disables persistence)")
	every := flag.Duration("snapshot-every", 30*time.Second, "simulated time between stored snapshots")
	resume := flag.String("resume", "", "snapshot id to resume from (needs -db)")
	watch := flag.Bool("watch", false, "hot reload prefabs from the prefabs directory")
	verbose := flag.Bool("v", false, "log every journal entry")
	flag.Parse()

	logger := log.New(os.Stderr, "[nightwatch] ", log.LstdFlags|log.Lshortfile)
	if *hz <= 0 {
		logger.Fatal("hz must be positive")
	}

	model := &hud.Model{}
	cues := map[string]int{}
	s, err := sim.New(sim.Config{
		Seed:   *seed,
		Logger: logger,
		HUD:    model,
		Cues:   cue.SinkFunc(func(r cue.Request) { cues[r.Name]++ }),
	})
	if err != nil {
		logger.Fatal(err)
	}

	arena, err := prefabs.LoadArenaSpec()
	if err != nil {
		logger.Fatal(err)
	}

	ctx := context.Background()
	runID := uuid.NewString()
	var (
		snaps    *storage.SnapshotRepository
		recorder = storage.NewRecorder(nil, runID)
	)
	if *dbPath != "" {
		db, err := storage.InitSQLite(*dbPath)
		if err != nil {
			logger.Fatal(err)
		}
		defer db.Close()
		snaps = storage.NewSnapshotRepository(db)
		recorder = storage.NewRecorder(storage.NewJournalRepository(db), runID)
	}

	if *resume != "" {
		if snaps == nil {
			logger.Fatal("-resume needs -db")
		}
		var snap sim.Snapshot
		if err := snaps.Load(ctx, *resume, &snap); err != nil {
			logger.Fatal(err)
		}
		if err := s.Restore(snap); err != nil {
			logger.Fatal(err)
		}
		logger.Printf("resumed snapshot %s at tick %d", *resume, s.Tick())
	} else if err := s.LoadArena(arena); err != nil {
		logger.Fatal(err)
	}

	s.Subscribe(recorder.Record)
	if *verbose {
		s.Subscribe(func(e system.Entry) {
			logger.Printf("t=%.2f %d %s %v", e.Time, e.Source, e.Kind, e.Data)
		})
	}

	var watcher *prefabs.Watcher
	if *watch {
		if watcher, err = prefabs.NewWatcher(); err != nil {
			logger.Printf("prefab watch disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	dt := 1.0 / float64(*hz)
	steps := int(math.Round(duration.Seconds() * float64(*hz)))
	snapEvery := int(math.Round(every.Seconds() * float64(*hz)))
	p := newPilot(arena.Width, arena.Height)
	stored := 0
	var storedBytes int64
	started := time.Now()

	for i := 0; i < steps; i++ {
		if watcher != nil {
			for _, c := range watcher.Drain() {
				if err := s.Apply(c); err != nil {
					logger.Printf("reload %s: %v", c.Name, err)
				}
			}
		}

		if player, ok := s.Player(); ok {
			cmd := p.decide(player, s.Enemies())
			_ = s.SetInput(cmd.input)
			if cmd.toggle {
				_ = s.ToggleFlashlight()
			}
			if cmd.cycle {
				_ = s.CycleFlashlightMode()
			}
			if player.Dead {
				logger.Printf("player died at t=%.1fs", s.Time())
				break
			}
		}
		s.Step(dt)

		if err := recorder.Flush(ctx); err != nil {
			logger.Printf("journal: %v", err)
		}
		if snaps != nil && snapEvery > 0 && (i+1)%snapEvery == 0 {
			n, err := saveSnapshot(ctx, s, snaps, runID)
			if err != nil {
				logger.Printf("snapshot: %v", err)
				continue
			}
			stored++
			storedBytes += n
		}
	}

	printSummary(s, model, recorder, cues, stored, storedBytes, time.Since(started))
}

func saveSnapshot(ctx context.Context, s *sim.Simulation, repo *storage.SnapshotRepository, runID string) (int64, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return 0, err
	}
	label := fmt.Sprintf("t=%.0fs", s.Time())
	id, err := repo.Save(ctx, runID, label, s.Tick(), s.Time(), snap)
	if err != nil {
		return 0, err
	}
	rec, err := repo.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return int64(len(rec.Payload)), nil
}

func printSummary(s *sim.Simulation, model *hud.Model, rec *storage.Recorder, cues map[string]int, stored int, storedBytes int64, wall time.Duration) {
	simTime := time.Duration(s.Time() * float64(time.Second))
	fmt.Printf("run %s (seed %d)\n", rec.RunID(), s.Seed())
	fmt.Printf("  simulated %s in %s over %s ticks\n", simTime.Round(time.Millisecond), wall.Round(time.Millisecond), humanize.Comma(int64(s.Tick())))
	for _, line := range model.Lines() {
		fmt.Printf("  %s\n", line)
	}

	alive := 0
	for _, e := range s.Enemies() {
		fmt.Printf("  %-8s %-13s health %s%%\n", e.Type, e.State, humanize.FtoaWithDigits(e.Health*100, 1))
		alive++
	}
	fmt.Printf("  %d enemies left\n", alive)

	fmt.Printf("  journal: %s entries\n", humanize.Comma(int64(rec.Total())))
	counts := rec.Counts()
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("    %-16s %s\n", k, humanize.Comma(int64(counts[k])))
	}

	names := make([]string, 0, len(cues))
	for n := range cues {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("    cue %-18s %s\n", n, humanize.Comma(int64(cues[n])))
	}
	if stored > 0 {
		fmt.Printf("  snapshots: %d stored, %s\n", stored, humanize.Bytes(uint64(storedBytes)))
	}
}
