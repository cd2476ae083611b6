package system

import (
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/hud"
)

// HUDSystem pushes the player's battery, mode, stamina and health to a sink
// once per tick.
type HUDSystem struct {
	sink hud.Sink
}

func NewHUDSystem(sink hud.Sink) *HUDSystem {
	return &HUDSystem{sink: sink}
}

func (s *HUDSystem) Update(w *ecs.World) {
	if s == nil || s.sink == nil {
		return
	}
	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	if fl, ok := ecs.Get(w, player, component.FlashlightComponent.Kind()); ok && fl.Controller != nil {
		s.sink.UpdateBattery(fl.Controller.BatteryPercentage())
		s.sink.UpdateMode(fl.Controller.Mode())
	}
	if p, ok := ecs.Get(w, player, component.PlayerComponent.Kind()); ok {
		if p.Stamina != nil {
			s.sink.UpdateStamina(p.Stamina.Percent())
		}
		if p.Health != nil {
			s.sink.UpdateHealth(p.Health.Percent())
		}
	}
}
