package system

import (
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/enemy"
	"github.com/milk9111/nightwatch/nav"
)

// NavigationSystem steps the physics space and copies body positions back
// into transforms. Moving enemies face where they go; chasing or attacking
// enemies at rest face their target.
type NavigationSystem struct {
	nav *nav.World
}

func NewNavigationSystem(navWorld *nav.World) *NavigationSystem {
	return &NavigationSystem{nav: navWorld}
}

func (s *NavigationSystem) Update(w *ecs.World) {
	if s.nav == nil {
		return
	}
	s.nav.Step(w.Delta())

	ecs.ForEach2(w, component.BodyComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, _ *component.Body, tr *component.Transform) {
			id := uint64(e)
			pos, ok := s.nav.Position(id)
			if !ok {
				return
			}
			tr.Position = pos

			en, isEnemy := ecs.Get(w, e, component.EnemyComponent.Kind())
			if !isEnemy || en.Agent == nil {
				return
			}
			v := s.nav.Velocity(id)
			tr.Facing = facingFrom(v, tr.Facing)
			if v.Len() >= facingEpsilon {
				return
			}
			switch en.Agent.State() {
			case enemy.Chasing, enemy.Attacking:
				if t := en.Agent.Target(); t != nil {
					if d := t.Location().Sub(pos); d.Len() > 0 {
						tr.Facing = d.Angle()
					}
				}
			}
		})
}
