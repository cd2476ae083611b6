package system

import (
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
)

// EnemySystem runs each living agent's per-state behaviour.
type EnemySystem struct{}

func NewEnemySystem() *EnemySystem {
	return &EnemySystem{}
}

func (s *EnemySystem) Update(w *ecs.World) {
	dt := w.Delta()
	ecs.ForEach(w, component.EnemyComponent.Kind(), func(_ ecs.Entity, en *component.Enemy) {
		if en.Agent != nil && !en.Agent.IsDead() {
			en.Agent.Update(dt)
		}
	})
}
