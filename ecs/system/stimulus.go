package system

import (
	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/nav"
	"github.com/milk9111/nightwatch/stimulus"
)

const (
	DefaultExposureInterval = 0.5

	EventExposure = "light_exposure"
)

// StimulusSystem exposes enemies standing in the beam. Each lit enemy rolls
// at most once per interval; leaving the beam resets its cadence so the next
// exposure rolls immediately.
type StimulusSystem struct {
	nav      *nav.World
	interval float64
}

func NewStimulusSystem(navWorld *nav.World, interval float64) *StimulusSystem {
	if interval <= 0 {
		interval = DefaultExposureInterval
	}
	return &StimulusSystem{nav: navWorld, interval: interval}
}

func (s *StimulusSystem) Update(w *ecs.World) {
	holder, ok := ecs.First(w, component.FlashlightComponent.Kind())
	if !ok {
		return
	}
	fl, _ := ecs.Get(w, holder, component.FlashlightComponent.Kind())
	tr, ok := ecs.Get(w, holder, component.TransformComponent.Kind())
	if !ok || fl.Controller == nil {
		return
	}
	light := fl.Controller
	dt := w.Delta()
	lit := light.Visible() && light.Intensity() > 0
	inner, outer := light.Cones()
	reach := light.Config().Range
	source := tr.Position

	ecs.ForEach2(w, component.EnemyComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, en *component.Enemy, etr *component.Transform) {
			if en.Agent == nil || en.Agent.IsDead() {
				return
			}
			hit, off := false, 0.0
			if lit {
				hit, off = inCone(source, tr.Facing, outer, reach, etr.Position)
				if hit && s.nav != nil {
					hit = s.nav.LineOfSight(source, etr.Position)
				}
			}
			if !hit {
				en.ExposureTimer = 0
				return
			}
			en.ExposureTimer -= dt
			if en.ExposureTimer > 0 {
				return
			}
			en.ExposureTimer = s.interval

			intensity := light.OuterIntensity()
			if off <= common.Deg2Rad(inner) {
				intensity = light.Intensity()
			}
			res := en.Agent.ReactToFlashlight(intensity, source)
			if res.Outcome != stimulus.None {
				Record(w, uint64(e), EventExposure, map[string]any{
					"intensity": intensity,
					"outcome":   res.Outcome.String(),
					"chance":    res.Chance,
					"stun":      res.StunDuration,
				})
			}
		})
}
