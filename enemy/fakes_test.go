package enemy

import (
	"math"

	"github.com/milk9111/nightwatch/common"
)

type fakeActor struct {
	id     uint64
	pos    common.Vec2
	damage float64
}

func (f *fakeActor) ActorID() uint64 { return f.id }
func (f *fakeActor) Location() common.Vec2 { return f.pos }
func (f *fakeActor) ApplyDamage(v float64) float64 { f.damage += v; return v }

type fakeNav struct {
	pos       common.Vec2
	speed     float64
	goal      *common.Vec2
	following Actor
	stopped   int
	sight     bool
	collision bool
	wander    common.Vec2
}

func newFakeNav() *fakeNav {
	return &fakeNav{collision: true, wander: common.V(250, 0)}
}

func (n *fakeNav) Location() common.Vec2 { return n.pos }
func (n *fakeNav) SetMaxSpeed(speed float64) { n.speed = speed }
func (n *fakeNav) MoveTo(loc common.Vec2) { n.goal, n.following = &loc, nil }
func (n *fakeNav) MoveToActor(t Actor) { n.following, n.goal = t, nil }
func (n *fakeNav) Stop() { n.stopped++; n.goal, n.following = nil, nil }
func (n *fakeNav) HasLineOfSight(Actor) bool { return n.sight }
func (n *fakeNav) DistanceTo(t Actor) float64 { return common.Dist(n.pos, t.Location()) }
func (n *fakeNav) DisableCollision() { n.collision = false }
func (n *fakeNav) RandomReachablePoint(origin common.Vec2, radius float64) (common.Vec2, bool) {
	if n.wander.Len() > radius {
		return common.Vec2{}, false
	}
	return origin.Add(n.wander), true
}

type cueCall struct {
	name string
	anim bool
}

type fakeCues struct {
	calls []cueCall
}

func (c *fakeCues) PlayCue(name string, _ float64) { c.calls = append(c.calls, cueCall{name: name}) }
func (c *fakeCues) PlayAnimation(name string) {
	c.calls = append(c.calls, cueCall{name: name, anim: true})
}

func (c *fakeCues) count(name string) int {
	n := 0
	for _, call := range c.calls {
		if call.name == name {
			n++
		}
	}
	return n
}

// fixedRand always returns the same roll.
type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

// seqRand replays rolls in order and then repeats the last one.
type seqRand struct {
	vals []float64
	i    int
}

func (r *seqRand) Float64() float64 {
	idx := int(math.Min(float64(r.i), float64(len(r.vals)-1)))
	r.i++
	return r.vals[idx]
}
