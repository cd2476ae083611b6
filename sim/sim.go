// Package sim wires the flashlight, enemies, stimulus coupling and timers
// into one fixed-order tick over an ECS world.
package sim

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math/rand/v2"

	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/cue"
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/ecs/entity"
	"github.com/milk9111/nightwatch/ecs/system"
	"github.com/milk9111/nightwatch/flashlight"
	"github.com/milk9111/nightwatch/hud"
	"github.com/milk9111/nightwatch/nav"
	"github.com/milk9111/nightwatch/prefabs"
	"github.com/milk9111/nightwatch/script"
	"github.com/milk9111/nightwatch/timer"
)

var (
	ErrUnknownEnemyType = errors.New("sim: unknown enemy type")
	ErrNoPlayer         = errors.New("sim: no player")
	ErrUnknownEntity    = errors.New("sim: unknown entity")
)

// pcgStream is the fixed second PCG word; the seed supplies the first.
const pcgStream = 0x6e69676874776174

type Config struct {
	Seed   uint64
	Logger *log.Logger

	// Cues and HUD receive the tick's requests and readouts. Either may be nil.
	Cues cue.Sink
	HUD  hud.Sink

	ExposureInterval float64
	SensingInterval  float64
}

// Input is the held state of the player's controls.
type Input struct {
	Move   common.Vec2
	Aim    common.Vec2
	Sprint bool
}

type Simulation struct {
	cfg Config
	log *log.Logger

	world   *ecs.World
	sched   *ecs.Scheduler
	nav     *nav.World
	timers  *timer.Scheduler
	pcg     *rand.PCG
	rng     *rand.Rand
	cues    *cue.Queue
	cueSys  *system.CueSystem
	hudSys  *system.HUDSystem
	journal *system.JournalSystem

	walls      []common.Rect
	playerSpec prefabs.PlayerSpec
	enemySpecs map[string]prefabs.EnemySpec
	programs   map[string]*script.Program
}

func New(cfg Config) (*Simulation, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	playerSpec, err := prefabs.LoadPlayerSpec()
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	s := &Simulation{
		cfg:        cfg,
		log:        logger,
		cues:       &cue.Queue{},
		journal:    system.NewJournalSystem(),
		playerSpec: playerSpec,
		enemySpecs: make(map[string]prefabs.EnemySpec),
		programs:   make(map[string]*script.Program),
	}
	s.cueSys = system.NewCueSystem(s.cues, cfg.Cues)
	s.hudSys = system.NewHUDSystem(cfg.HUD)
	s.pcg = rand.NewPCG(cfg.Seed, pcgStream)
	s.rng = rand.New(s.pcg)
	s.reset(0)
	return s, nil
}

// reset builds an empty world, timer wheel and physics space, keeping the
// RNG, walls and journal subscribers.
func (s *Simulation) reset(now float64) {
	s.world = ecs.NewWorld()
	s.timers = timer.NewScheduler()
	s.timers.Reset(now)
	s.nav = nav.New(s.rng, nav.Options{})
	for _, r := range s.walls {
		s.nav.AddWall(r)
	}
	s.cues.Drain()
	s.sched = ecs.NewScheduler(
		system.NewTimerSystem(s.timers),
		system.NewPlayerControllerSystem(s.nav),
		system.NewFlashlightSystem(),
		system.NewStimulusSystem(s.nav, s.cfg.ExposureInterval),
		system.NewPerceptionSystem(s.nav, s.cfg.SensingInterval),
		system.NewEnemySystem(),
		system.NewNavigationSystem(s.nav),
		s.cueSys,
		system.NewRemovalSystem(s.nav, s.timers),
		s.hudSys,
		s.journal,
	)
}

func (s *Simulation) env() entity.Env {
	return entity.Env{
		Nav:    s.nav,
		Timers: s.timers,
		Rand:   s.rng,
		Cues:   s.cues,
		Logger: s.log,
	}
}

// Step advances the simulation by dt seconds.
func (s *Simulation) Step(dt float64) {
	if dt <= 0 {
		return
	}
	s.sched.Step(s.world, dt)
}

// Subscribe registers fn for journal entries, delivered at the end of each
// tick in the order they happened.
func (s *Simulation) Subscribe(fn func(system.Entry)) func() {
	return s.journal.Subscribe(fn)
}

func (s *Simulation) SetCueSink(sink cue.Sink) { s.cueSys.SetSink(sink) }

func (s *Simulation) Tick() uint64  { return s.world.Tick() }
func (s *Simulation) Time() float64 { return s.world.Time() }
func (s *Simulation) Seed() uint64  { return s.cfg.Seed }

func (s *Simulation) Walls() []common.Rect {
	return append([]common.Rect(nil), s.walls...)
}

// AddWall adds a wall to the arena.
func (s *Simulation) AddWall(r common.Rect) {
	s.walls = append(s.walls, r)
	s.nav.AddWall(r)
}

// LoadArena adds the arena's walls and spawns its player and enemies.
func (s *Simulation) LoadArena(arena prefabs.ArenaSpec) error {
	for _, r := range arena.Bounds() {
		s.AddWall(r)
	}
	for _, r := range arena.Walls {
		s.AddWall(r)
	}
	if _, err := s.SpawnPlayer(arena.PlayerSpawn); err != nil {
		return err
	}
	for _, spawn := range arena.Enemies {
		if _, err := s.SpawnEnemy(spawn.Type, spawn.Position); err != nil {
			return err
		}
	}
	s.log.Printf("sim: arena %q loaded with %d walls and %d enemies", arena.Name, len(s.walls), len(arena.Enemies))
	return nil
}

// SpawnPlayer creates the player. Only one player may exist.
func (s *Simulation) SpawnPlayer(pos common.Vec2) (ecs.Entity, error) {
	if _, ok := ecs.First(s.world, component.PlayerTagComponent.Kind()); ok {
		return 0, errors.New("sim: player already spawned")
	}
	e, err := entity.NewPlayer(s.world, s.env(), s.playerSpec, pos)
	if err != nil {
		return 0, fmt.Errorf("sim: spawn player: %w", err)
	}
	return e, nil
}

func (s *Simulation) SpawnEnemy(typeName string, pos common.Vec2) (ecs.Entity, error) {
	spec, err := s.enemySpec(typeName)
	if err != nil {
		return 0, err
	}
	hooks, err := s.hooksFor(spec)
	if err != nil {
		return 0, err
	}
	e, err := entity.NewEnemy(s.world, s.env(), spec, hooks, pos)
	if err != nil {
		return 0, fmt.Errorf("sim: spawn %s: %w", typeName, err)
	}
	return e, nil
}

func (s *Simulation) enemySpec(typeName string) (prefabs.EnemySpec, error) {
	if spec, ok := s.enemySpecs[typeName]; ok {
		return spec, nil
	}
	spec, err := prefabs.LoadEnemySpec(typeName)
	if errors.Is(err, fs.ErrNotExist) {
		return prefabs.EnemySpec{}, fmt.Errorf("%w: %q", ErrUnknownEnemyType, typeName)
	}
	if err != nil {
		return prefabs.EnemySpec{}, err
	}
	s.enemySpecs[typeName] = spec
	return spec, nil
}

// hooksFor returns a fresh hook instance for spec, or nil when the type has
// no script.
func (s *Simulation) hooksFor(spec prefabs.EnemySpec) (*script.Hooks, error) {
	if spec.Script == "" {
		return nil, nil
	}
	prog, ok := s.programs[spec.Script]
	if !ok {
		src, err := prefabs.LoadScript(spec.Script)
		if err != nil {
			return nil, fmt.Errorf("sim: load script %s: %w", spec.Script, err)
		}
		prog, err = script.Compile(spec.Script, src)
		if err != nil {
			return nil, err
		}
		s.programs[spec.Script] = prog
	}
	return prog.Instance(), nil
}

func (s *Simulation) player() (ecs.Entity, error) {
	e, ok := ecs.First(s.world, component.PlayerTagComponent.Kind())
	if !ok {
		return 0, ErrNoPlayer
	}
	return e, nil
}

func (s *Simulation) input() (*component.Input, error) {
	e, err := s.player()
	if err != nil {
		return nil, err
	}
	in, ok := ecs.Get(s.world, e, component.InputComponent.Kind())
	if !ok {
		return nil, ErrNoPlayer
	}
	return in, nil
}

// SetInput replaces the held controls used from the next step on.
func (s *Simulation) SetInput(in Input) error {
	cur, err := s.input()
	if err != nil {
		return err
	}
	cur.Move, cur.Aim, cur.Sprint = in.Move, in.Aim, in.Sprint
	return nil
}

// ToggleFlashlight queues a toggle for the next step.
func (s *Simulation) ToggleFlashlight() error {
	in, err := s.input()
	if err != nil {
		return err
	}
	in.ToggleLight = true
	return nil
}

// CycleFlashlightMode queues a mode change for the next step.
func (s *Simulation) CycleFlashlightMode() error {
	in, err := s.input()
	if err != nil {
		return err
	}
	in.CycleMode = true
	return nil
}

// Flashlight returns the player's controller, or nil without a player.
func (s *Simulation) Flashlight() *flashlight.Controller {
	e, err := s.player()
	if err != nil {
		return nil
	}
	fl, ok := ecs.Get(s.world, e, component.FlashlightComponent.Kind())
	if !ok {
		return nil
	}
	return fl.Controller
}

func (s *Simulation) enemy(e ecs.Entity) (*component.Enemy, error) {
	en, ok := ecs.Get(s.world, e, component.EnemyComponent.Kind())
	if !ok || en.Agent == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, e)
	}
	return en, nil
}

// DamageEnemy applies damage to one enemy and returns the damage dealt.
func (s *Simulation) DamageEnemy(e ecs.Entity, amount float64) (float64, error) {
	en, err := s.enemy(e)
	if err != nil {
		return 0, err
	}
	return en.Agent.ApplyDamage(amount), nil
}

// StunEnemy stuns one enemy; a negative duration uses its type's default.
func (s *Simulation) StunEnemy(e ecs.Entity, duration float64) error {
	en, err := s.enemy(e)
	if err != nil {
		return err
	}
	en.Agent.Stun(duration)
	return nil
}

// MakeNoise raises a sound at location as if the player made it.
func (s *Simulation) MakeNoise(location common.Vec2, volume float64) error {
	e, err := s.player()
	if err != nil {
		return err
	}
	return system.EmitNoise(s.world, e, component.Noise{Location: location, Volume: volume})
}
