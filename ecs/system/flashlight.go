package system

import (
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
)

// FlashlightSystem advances every flashlight by the tick delta. It runs
// before any enemy reads the beam.
type FlashlightSystem struct{}

func NewFlashlightSystem() *FlashlightSystem {
	return &FlashlightSystem{}
}

func (s *FlashlightSystem) Update(w *ecs.World) {
	dt := w.Delta()
	ecs.ForEach(w, component.FlashlightComponent.Kind(), func(_ ecs.Entity, fl *component.Flashlight) {
		if fl.Controller != nil {
			fl.Controller.Update(dt)
		}
	})
}
