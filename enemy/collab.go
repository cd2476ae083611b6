package enemy

import "github.com/milk9111/nightwatch/common"

// Actor is anything with a position an enemy can look at or chase.
type Actor interface {
	ActorID() uint64
	Location() common.Vec2
}

// Damageable actors take damage from attacks that connect.
type Damageable interface {
	ApplyDamage(amount float64) float64
}

// Navigator moves one agent's body. Implementations own path planning.
type Navigator interface {
	Location() common.Vec2
	SetMaxSpeed(speed float64)
	MoveTo(location common.Vec2)
	MoveToActor(target Actor)
	Stop()
	HasLineOfSight(target Actor) bool
	DistanceTo(target Actor) float64
	RandomReachablePoint(origin common.Vec2, radius float64) (common.Vec2, bool)
	DisableCollision()
}

type CuePlayer interface {
	PlayCue(name string, volume float64)
	PlayAnimation(name string)
}

// StateHook is consulted after every transition and may name extra cues to
// play.
type StateHook interface {
	OnEnter(prev, next State) []string
}

type StateHookFunc func(prev, next State) []string

func (f StateHookFunc) OnEnter(prev, next State) []string { return f(prev, next) }
