package entity

import (
	"fmt"

	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/cue"
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/ecs/system"
	"github.com/milk9111/nightwatch/flashlight"
	"github.com/milk9111/nightwatch/player"
	"github.com/milk9111/nightwatch/prefabs"
	"github.com/milk9111/nightwatch/timer"
)

const (
	EventModeChanged = "mode_changed"
	EventPlayerHurt  = "player_hurt"
)

func NewPlayer(w *ecs.World, env Env, spec prefabs.PlayerSpec, pos common.Vec2) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	if err := AddPlayer(w, e, env, spec, pos); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, err
	}
	return e, nil
}

// AddPlayer attaches the player components to an existing entity.
func AddPlayer(w *ecs.World, e ecs.Entity, env Env, spec prefabs.PlayerSpec, pos common.Vec2) error {
	id := uint64(e)
	emitter := env.Cues.For(id)

	light := flashlight.New(spec.Flashlight, env.Timers, timer.Owner(id),
		flashlight.WithCues(emitter),
		flashlight.WithRand(env.Rand),
	)
	light.OnModeChange(func(c flashlight.ModeChange) {
		system.Record(w, id, EventModeChanged, map[string]any{
			"from":     c.From.String(),
			"to":       c.To.String(),
			"depleted": c.Depleted,
		})
	})

	health := player.NewHealth(spec.Health)
	health.OnDamaged(func(amount, current float64) {
		emitter.PlayCue(cue.PlayerHurt, 1)
		system.Record(w, id, EventPlayerHurt, map[string]any{"damage": amount, "health": current})
		if current <= 0 {
			system.Record(w, id, system.EventPlayerDied, nil)
		}
	})

	if err := ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}); err != nil {
		return fmt.Errorf("player: add tag: %w", err)
	}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: pos}); err != nil {
		return fmt.Errorf("player: add transform: %w", err)
	}
	if err := ecs.Add(w, e, component.BodyComponent.Kind(), &component.Body{Radius: spec.Radius}); err != nil {
		return fmt.Errorf("player: add body: %w", err)
	}
	if err := ecs.Add(w, e, component.PlayerComponent.Kind(), &component.Player{
		Stamina:       player.NewStamina(spec.Stamina),
		Health:        health,
		WalkSpeed:     spec.WalkSpeed,
		SprintSpeed:   spec.SprintSpeed,
		WalkNoise:     spec.WalkNoise,
		SprintNoise:   spec.SprintNoise,
		NoiseInterval: spec.NoiseInterval,
	}); err != nil {
		return fmt.Errorf("player: add player: %w", err)
	}
	if err := ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{Aim: pos}); err != nil {
		return fmt.Errorf("player: add input: %w", err)
	}
	if err := ecs.Add(w, e, component.FlashlightComponent.Kind(), &component.Flashlight{Controller: light}); err != nil {
		return fmt.Errorf("player: add flashlight: %w", err)
	}
	if err := env.Nav.AddBody(id, pos, spec.Radius); err != nil {
		return fmt.Errorf("player: add body: %w", err)
	}
	return nil
}
