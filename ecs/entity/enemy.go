package entity

import (
	"fmt"

	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/ecs/system"
	"github.com/milk9111/nightwatch/enemy"
	"github.com/milk9111/nightwatch/prefabs"
	"github.com/milk9111/nightwatch/script"
)

const ReasonDeathCleanup = "death_cleanup"

// NewEnemy spawns an enemy of spec's type. hooks may be nil.
func NewEnemy(w *ecs.World, env Env, spec prefabs.EnemySpec, hooks *script.Hooks, pos common.Vec2) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	if err := AddEnemy(w, e, env, spec, hooks, pos); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, err
	}
	return e, nil
}

// AddEnemy attaches the enemy components to an existing entity.
func AddEnemy(w *ecs.World, e ecs.Entity, env Env, spec prefabs.EnemySpec, hooks *script.Hooks, pos common.Vec2) error {
	id := uint64(e)
	if err := env.Nav.AddBody(id, pos, spec.Radius); err != nil {
		return fmt.Errorf("enemy: add body: %w", err)
	}

	cfg := enemy.Config{
		ID:     id,
		Params: spec.Params(),
		Nav:    env.Nav.Agent(id),
		Timers: env.Timers,
		Rand:   env.Rand,
		Cues:   env.Cues.For(id),
		Removed: func(uint64) {
			_ = ecs.Add(w, e, component.RemovalRequestComponent.Kind(), &component.RemovalRequest{Reason: ReasonDeathCleanup})
		},
	}
	if hooks != nil {
		cfg.Hook = StateHook(env, spec.Type, hooks)
	}
	agent := enemy.New(cfg)
	if hooks != nil {
		hooks.HealthPercent = agent.HealthPercent
	}
	unsubscribe := agent.Subscribe(func(evt enemy.Event) {
		system.Record(w, id, evt.Kind.String(), eventData(evt))
	})

	if err := ecs.Add(w, e, component.EnemyTagComponent.Kind(), &component.EnemyTag{}); err != nil {
		return fmt.Errorf("enemy: add tag: %w", err)
	}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: pos}); err != nil {
		return fmt.Errorf("enemy: add transform: %w", err)
	}
	if err := ecs.Add(w, e, component.BodyComponent.Kind(), &component.Body{Radius: spec.Radius}); err != nil {
		return fmt.Errorf("enemy: add body: %w", err)
	}
	if err := ecs.Add(w, e, component.EnemyComponent.Kind(), &component.Enemy{
		Agent:       agent,
		Type:        spec.Type,
		Hooks:       hooks,
		Unsubscribe: unsubscribe,
	}); err != nil {
		return fmt.Errorf("enemy: add enemy: %w", err)
	}
	return nil
}

// StateHook runs the type's script on every transition. Script errors are
// logged and the hook contributes nothing.
func StateHook(env Env, typeName string, hooks *script.Hooks) enemy.StateHook {
	logger := env.logger()
	return enemy.StateHookFunc(func(prev, next enemy.State) []string {
		cues, err := hooks.OnEnter(prev.String(), next.String())
		if err != nil {
			logger.Printf("script: %s: %v", typeName, err)
			return nil
		}
		return cues
	})
}

func eventData(evt enemy.Event) map[string]any {
	data := map[string]any{"type": evt.Type}
	switch evt.Kind {
	case enemy.HealthChanged:
		data["health"] = evt.Health
		data["max_health"] = evt.MaxHealth
	case enemy.StateChanged:
		data["from"] = evt.Previous.String()
		data["to"] = evt.State.String()
	case enemy.Spotted:
		if evt.Target != nil {
			data["target"] = evt.Target.ActorID()
		}
	case enemy.AttackLanded:
		data["damage"] = evt.Damage
		if evt.Target != nil {
			data["target"] = evt.Target.ActorID()
		}
	}
	return data
}
