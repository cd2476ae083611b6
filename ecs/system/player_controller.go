package system

import (
	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/nav"
)

const (
	EventPlayerDied = "player_died"
	EventNoise      = "noise"
	EventError      = "error"
)

// PlayerControllerSystem turns input into movement, sprint, facing, light
// commands and footstep noise.
type PlayerControllerSystem struct {
	nav *nav.World
}

func NewPlayerControllerSystem(navWorld *nav.World) *PlayerControllerSystem {
	return &PlayerControllerSystem{nav: navWorld}
}

func (s *PlayerControllerSystem) Update(w *ecs.World) {
	dt := w.Delta()
	ecs.ForEach3(w, component.PlayerComponent.Kind(), component.InputComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, p *component.Player, in *component.Input, tr *component.Transform) {
			id := uint64(e)
			if p.Health != nil && p.Health.Dead() {
				*in = component.Input{}
				if s.nav != nil {
					s.nav.SetVelocity(id, common.Vec2{})
				}
				return
			}

			if fl, ok := ecs.Get(w, e, component.FlashlightComponent.Kind()); ok && fl.Controller != nil {
				if in.ToggleLight {
					fl.Controller.Toggle()
				}
				if in.CycleMode {
					fl.Controller.CycleMode()
				}
			}
			in.ToggleLight, in.CycleMode = false, false

			move := in.Move
			if move.Len() > 1 {
				move = move.Normalize()
			}
			moving := move.Len() > 0

			if p.Stamina != nil {
				if in.Sprint && moving {
					if !p.Stamina.Sprinting() {
						p.Stamina.StartSprint()
					}
				} else {
					p.Stamina.StopSprint()
				}
				p.Stamina.Update(dt)
			}
			if p.Health != nil {
				p.Health.Update(dt)
			}

			sprinting := p.Stamina != nil && p.Stamina.Sprinting()
			speed := p.WalkSpeed
			if sprinting {
				speed = p.SprintSpeed
			}
			if s.nav != nil {
				s.nav.SetVelocity(id, move.Scale(speed))
			}

			if aim := in.Aim.Sub(tr.Position); aim.Len() > 0 {
				tr.Facing = aim.Angle()
			} else if moving {
				tr.Facing = move.Angle()
			}

			if !moving {
				p.NoiseTimer = 0
				return
			}
			p.NoiseTimer -= dt
			if p.NoiseTimer > 0 {
				return
			}
			p.NoiseTimer = p.NoiseInterval
			volume := p.WalkNoise
			if sprinting {
				volume = p.SprintNoise
			}
			if err := EmitNoise(w, e, component.Noise{Location: tr.Position, Volume: volume}); err != nil {
				Record(w, id, EventError, map[string]any{"op": EventNoise, "error": err.Error()})
			}
		})
}
