package system

import (
	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/nav"
)

const DefaultSensingInterval = 0.5

// PerceptionSystem feeds sight and hearing to enemies. Sight needs range,
// the view cone and a clear line; a player in view is reported on first
// sight and then once per interval. Noises reach every enemy within its
// hearing range and are consumed.
type PerceptionSystem struct {
	nav      *nav.World
	interval float64
}

// EmitNoise queues a noise on e for the next perception pass. An entity
// carries one noise per tick, so the louder one is kept.
func EmitNoise(w *ecs.World, e ecs.Entity, n component.Noise) error {
	if cur, ok := ecs.Get(w, e, component.NoiseComponent.Kind()); ok && cur.Volume >= n.Volume {
		return nil
	}
	return ecs.Add(w, e, component.NoiseComponent.Kind(), &n)
}

func NewPerceptionSystem(navWorld *nav.World, interval float64) *PerceptionSystem {
	if interval <= 0 {
		interval = DefaultSensingInterval
	}
	return &PerceptionSystem{nav: navWorld, interval: interval}
}

func (s *PerceptionSystem) Update(w *ecs.World) {
	dt := w.Delta()
	actor, hasPlayer := PlayerActor(w)
	visible := hasPlayer
	if hasPlayer {
		if p, ok := ecs.Get(w, actor.Entity(), component.PlayerComponent.Kind()); ok && p.Health != nil && p.Health.Dead() {
			visible = false
		}
	}

	type noise struct {
		source ecs.Entity
		component.Noise
	}
	var noises []noise
	ecs.ForEach(w, component.NoiseComponent.Kind(), func(e ecs.Entity, n *component.Noise) {
		noises = append(noises, noise{source: e, Noise: *n})
	})
	for _, n := range noises {
		ecs.Remove(w, n.source, component.NoiseComponent.Kind())
	}

	ecs.ForEach2(w, component.EnemyComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, en *component.Enemy, tr *component.Transform) {
			agent := en.Agent
			if agent == nil || agent.IsDead() {
				return
			}
			params := agent.Params()

			for _, n := range noises {
				if common.Dist(tr.Position, n.Location) > params.HearingRange {
					continue
				}
				agent.HearNoise(NewActor(w, n.source), n.Location, n.Volume)
			}

			seen := false
			if visible {
				target := actor.Location()
				seen, _ = inCone(tr.Position, tr.Facing, params.SightAngle/2, params.SightRadius, target)
				if seen && s.nav != nil {
					seen = s.nav.LineOfSight(tr.Position, target)
				}
			}
			en.SenseTimer -= dt
			switch {
			case seen && (!en.Seen || en.SenseTimer <= 0):
				en.SenseTimer = s.interval
				agent.OnSight(actor, true)
			case !seen && en.Seen:
				agent.OnSight(actor, false)
			}
			en.Seen = seen
		})
}
