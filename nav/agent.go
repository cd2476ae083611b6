package nav

import (
	"math"

	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/enemy"
)

// Agent is the enemy.Navigator view of one body.
type Agent struct {
	world *World
	id    uint64
}

var _ enemy.Navigator = (*Agent)(nil)

func (a *Agent) ID() uint64 { return a.id }

func (a *Agent) Location() common.Vec2 {
	p, _ := a.world.Position(a.id)
	return p
}

func (a *Agent) SetMaxSpeed(speed float64) {
	if b, ok := a.world.bodies[a.id]; ok {
		b.speed = math.Max(0, speed)
	}
}

func (a *Agent) MaxSpeed() float64 {
	if b, ok := a.world.bodies[a.id]; ok {
		return b.speed
	}
	return 0
}

func (a *Agent) MoveTo(location common.Vec2) {
	if b, ok := a.world.bodies[a.id]; ok {
		b.goal, b.follow = &location, nil
	}
}

func (a *Agent) MoveToActor(target enemy.Actor) {
	if b, ok := a.world.bodies[a.id]; ok && target != nil {
		b.follow, b.goal = target, nil
	}
}

func (a *Agent) Stop() {
	b, ok := a.world.bodies[a.id]
	if !ok {
		return
	}
	b.goal, b.follow = nil, nil
	b.body.SetVelocityVector(zeroVector)
}

// Goal returns the point the body is steering to, if any.
func (a *Agent) Goal() (common.Vec2, bool) {
	b, ok := a.world.bodies[a.id]
	if !ok {
		return common.Vec2{}, false
	}
	switch {
	case b.follow != nil:
		return b.follow.Location(), true
	case b.goal != nil:
		return *b.goal, true
	}
	return common.Vec2{}, false
}

func (a *Agent) HasLineOfSight(target enemy.Actor) bool {
	if target == nil {
		return false
	}
	return a.world.LineOfSight(a.Location(), target.Location())
}

func (a *Agent) DistanceTo(target enemy.Actor) float64 {
	if target == nil {
		return math.Inf(1)
	}
	return common.Dist(a.Location(), target.Location())
}

func (a *Agent) RandomReachablePoint(origin common.Vec2, radius float64) (common.Vec2, bool) {
	return a.world.RandomReachablePoint(origin, radius, a.world.Radius(a.id))
}

// DisableCollision turns the body into a sensor so nothing bumps into it.
func (a *Agent) DisableCollision() {
	if b, ok := a.world.bodies[a.id]; ok && b.collides {
		b.shape.SetSensor(true)
		b.collides = false
	}
}
