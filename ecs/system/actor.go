package system

import (
	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/enemy"
)

// Actor exposes an entity to enemy perception and navigation. Location
// reads the live transform, so followers track it as it moves.
type Actor struct {
	w *ecs.World
	e ecs.Entity
}

var (
	_ enemy.Actor      = Actor{}
	_ enemy.Damageable = Actor{}
)

func NewActor(w *ecs.World, e ecs.Entity) Actor {
	return Actor{w: w, e: e}
}

func (a Actor) Entity() ecs.Entity { return a.e }

func (a Actor) ActorID() uint64 { return uint64(a.e) }

func (a Actor) Location() common.Vec2 {
	if t, ok := ecs.Get(a.w, a.e, component.TransformComponent.Kind()); ok {
		return t.Position
	}
	return common.Vec2{}
}

// ApplyDamage hurts the player behind this actor and returns the damage taken.
func (a Actor) ApplyDamage(amount float64) float64 {
	p, ok := ecs.Get(a.w, a.e, component.PlayerComponent.Kind())
	if !ok || p.Health == nil {
		return 0
	}
	return p.Health.ApplyDamage(amount)
}

// PlayerActor returns the first player as an actor.
func PlayerActor(w *ecs.World) (Actor, bool) {
	e, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return Actor{}, false
	}
	return NewActor(w, e), true
}
