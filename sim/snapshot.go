package sim

import (
	"errors"
	"fmt"

	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/ecs/entity"
	"github.com/milk9111/nightwatch/ecs/system"
	"github.com/milk9111/nightwatch/enemy"
	"github.com/milk9111/nightwatch/flashlight"
	"github.com/milk9111/nightwatch/nav"
	"github.com/milk9111/nightwatch/player"
)

// SnapshotVersion is bumped whenever Snapshot changes shape.
const SnapshotVersion = 1

var ErrSnapshotVersion = errors.New("sim: unsupported snapshot version")

// Snapshot is everything needed to resume a run. Restoring it and stepping
// with the same inputs reproduces the original run.
type Snapshot struct {
	Version  int                `json:"version"`
	Seed     uint64             `json:"seed"`
	Tick     uint64             `json:"tick"`
	Time     float64            `json:"time"`
	TimerNow float64            `json:"timer_now"`
	RNG      []byte             `json:"rng"`
	Entities ecs.AllocatorState `json:"entities"`
	Bodies   []nav.BodyState    `json:"bodies"`
	Walls    []common.Rect      `json:"walls"`
	Player   *PlayerState       `json:"player,omitempty"`
	Enemies  []EnemyState       `json:"enemies"`
}

type PlayerState struct {
	Entity     ecs.Entity             `json:"entity"`
	Position   common.Vec2            `json:"position"`
	Facing     float64                `json:"facing"`
	Input      component.Input        `json:"input"`
	Stamina    player.StaminaSnapshot `json:"stamina"`
	Health     player.HealthSnapshot  `json:"health"`
	NoiseTimer float64                `json:"noise_timer"`
	Noise      *component.Noise       `json:"noise,omitempty"`
	Flashlight flashlight.Snapshot    `json:"flashlight"`
}

type EnemyState struct {
	Entity        ecs.Entity     `json:"entity"`
	Type          string         `json:"type"`
	Position      common.Vec2    `json:"position"`
	Facing        float64        `json:"facing"`
	Agent         enemy.Snapshot `json:"agent"`
	ExposureTimer float64        `json:"exposure_timer"`
	SenseTimer    float64        `json:"sense_timer"`
	Seen          bool           `json:"seen"`
	Script        map[string]any `json:"script,omitempty"`
	Target        ecs.Entity     `json:"target,omitempty"`
}

// Snapshot captures the run between steps.
func (s *Simulation) Snapshot() (Snapshot, error) {
	rng, err := s.pcg.MarshalBinary()
	if err != nil {
		return Snapshot{}, fmt.Errorf("sim: snapshot rng: %w", err)
	}
	snap := Snapshot{
		Version:  SnapshotVersion,
		Seed:     s.cfg.Seed,
		Tick:     s.world.Tick(),
		Time:     s.world.Time(),
		TimerNow: s.timers.Now(),
		RNG:      rng,
		Entities: ecs.SnapshotAllocator(s.world),
		Bodies:   s.nav.Snapshot(),
		Walls:    s.Walls(),
	}

	if e, err := s.player(); err == nil {
		ps := &PlayerState{Entity: e}
		if tr, ok := ecs.Get(s.world, e, component.TransformComponent.Kind()); ok {
			ps.Position, ps.Facing = tr.Position, tr.Facing
		}
		if in, ok := ecs.Get(s.world, e, component.InputComponent.Kind()); ok {
			ps.Input = *in
		}
		if p, ok := ecs.Get(s.world, e, component.PlayerComponent.Kind()); ok {
			ps.Stamina = p.Stamina.Snapshot()
			ps.Health = p.Health.Snapshot()
			ps.NoiseTimer = p.NoiseTimer
		}
		if n, ok := ecs.Get(s.world, e, component.NoiseComponent.Kind()); ok {
			noise := *n
			ps.Noise = &noise
		}
		if fl, ok := ecs.Get(s.world, e, component.FlashlightComponent.Kind()); ok {
			ps.Flashlight = fl.Controller.Snapshot()
		}
		snap.Player = ps
	}

	ecs.ForEach2(s.world, component.EnemyComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, en *component.Enemy, tr *component.Transform) {
			es := EnemyState{
				Entity:        e,
				Type:          en.Type,
				Position:      tr.Position,
				Facing:        tr.Facing,
				Agent:         en.Agent.Snapshot(),
				ExposureTimer: en.ExposureTimer,
				SenseTimer:    en.SenseTimer,
				Seen:          en.Seen,
			}
			if en.Hooks != nil {
				es.Script = en.Hooks.State()
			}
			if t, ok := en.Agent.Target().(system.Actor); ok {
				es.Target = t.Entity()
			}
			snap.Enemies = append(snap.Enemies, es)
		})
	return snap, nil
}

// Restore replaces the running state with snap. Journal subscribers and the
// cue and HUD sinks are kept.
func (s *Simulation) Restore(snap Snapshot) error {
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}
	s.walls = append([]common.Rect(nil), snap.Walls...)
	s.reset(snap.TimerNow)
	if err := ecs.RestoreAllocator(s.world, snap.Entities); err != nil {
		return fmt.Errorf("sim: restore: %w", err)
	}
	env := s.env()

	if ps := snap.Player; ps != nil {
		if err := entity.AddPlayer(s.world, ps.Entity, env, s.playerSpec, ps.Position); err != nil {
			return fmt.Errorf("sim: restore player: %w", err)
		}
		tr, _ := ecs.Get(s.world, ps.Entity, component.TransformComponent.Kind())
		tr.Facing = ps.Facing
		in, _ := ecs.Get(s.world, ps.Entity, component.InputComponent.Kind())
		*in = ps.Input
		p, _ := ecs.Get(s.world, ps.Entity, component.PlayerComponent.Kind())
		p.Stamina.Restore(ps.Stamina)
		p.Health.Restore(ps.Health)
		p.NoiseTimer = ps.NoiseTimer
		if ps.Noise != nil {
			noise := *ps.Noise
			if err := ecs.Add(s.world, ps.Entity, component.NoiseComponent.Kind(), &noise); err != nil {
				return fmt.Errorf("sim: restore noise: %w", err)
			}
		}
		fl, _ := ecs.Get(s.world, ps.Entity, component.FlashlightComponent.Kind())
		fl.Controller.Restore(ps.Flashlight)
	}

	for _, es := range snap.Enemies {
		spec, err := s.enemySpec(es.Type)
		if err != nil {
			return err
		}
		hooks, err := s.hooksFor(spec)
		if err != nil {
			return err
		}
		if hooks != nil {
			if err := hooks.SetState(es.Script); err != nil {
				return err
			}
		}
		if err := entity.AddEnemy(s.world, es.Entity, env, spec, hooks, es.Position); err != nil {
			return fmt.Errorf("sim: restore %s: %w", es.Type, err)
		}
		en, _ := ecs.Get(s.world, es.Entity, component.EnemyComponent.Kind())
		tr, _ := ecs.Get(s.world, es.Entity, component.TransformComponent.Kind())
		tr.Facing = es.Facing
		en.ExposureTimer = es.ExposureTimer
		en.SenseTimer = es.SenseTimer
		en.Seen = es.Seen
		en.Agent.Restore(es.Agent)
		if es.Target != 0 && ecs.IsAlive(s.world, es.Target) {
			en.Agent.SetTarget(system.NewActor(s.world, es.Target))
		}
	}

	err := s.nav.Restore(snap.Bodies, func(id uint64) (enemy.Actor, bool) {
		e := ecs.Entity(id)
		if !ecs.IsAlive(s.world, e) {
			return nil, false
		}
		return system.NewActor(s.world, e), true
	})
	if err != nil {
		return fmt.Errorf("sim: restore bodies: %w", err)
	}
	if err := s.pcg.UnmarshalBinary(snap.RNG); err != nil {
		return fmt.Errorf("sim: restore rng: %w", err)
	}
	s.cfg.Seed = snap.Seed
	s.world.SetClock(snap.Tick, snap.Time)

	// Rebuilding entities raises no events of its own.
	s.world.Events().Drain()
	s.cues.Drain()
	return nil
}
