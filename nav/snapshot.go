package nav

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/enemy"
)

var zeroVector = cp.Vector{}

// BodyState is the serialisable motion state of one body.
type BodyState struct {
	ID       uint64       `json:"id"`
	Position common.Vec2  `json:"position"`
	Velocity common.Vec2  `json:"velocity"`
	Speed    float64      `json:"speed"`
	Goal     *common.Vec2 `json:"goal,omitempty"`
	Follow   uint64       `json:"follow,omitempty"`
	Collides bool         `json:"collides"`
}

func (w *World) Snapshot() []BodyState {
	out := make([]BodyState, 0, len(w.bodies))
	for _, id := range w.IDs() {
		b := w.bodies[id]
		p, v := b.body.Position(), b.body.Velocity()
		s := BodyState{
			ID:       id,
			Position: common.V(p.X, p.Y),
			Velocity: common.V(v.X, v.Y),
			Speed:    b.speed,
			Collides: b.collides,
		}
		if b.goal != nil {
			g := *b.goal
			s.Goal = &g
		}
		if b.follow != nil {
			s.Follow = b.follow.ActorID()
		}
		out = append(out, s)
	}
	return out
}

// Restore applies states to bodies that already exist. resolve maps a
// followed id back to its actor.
func (w *World) Restore(states []BodyState, resolve func(id uint64) (enemy.Actor, bool)) error {
	for _, s := range states {
		b, ok := w.bodies[s.ID]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownBody, s.ID)
		}
		b.body.SetPosition(cp.Vector{X: s.Position.X, Y: s.Position.Y})
		b.body.SetVelocityVector(cp.Vector{X: s.Velocity.X, Y: s.Velocity.Y})
		b.body.SetAngularVelocity(0)
		b.speed = s.Speed
		b.goal, b.follow = nil, nil
		if s.Goal != nil {
			g := *s.Goal
			b.goal = &g
		}
		if s.Follow != 0 && resolve != nil {
			if actor, ok := resolve(s.Follow); ok {
				b.follow = actor
			}
		}
		if !s.Collides && b.collides {
			b.shape.SetSensor(true)
			b.collides = false
		}
	}
	return nil
}
