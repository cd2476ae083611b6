package sim

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/enemy"
	"github.com/milk9111/nightwatch/flashlight"
)

// PlayerView is a read-only copy of the player for renderers.
type PlayerView struct {
	Entity    ecs.Entity
	Position  common.Vec2
	Facing    float64
	Radius    float64
	Color     colorful.Color
	Health    float64
	Stamina   float64
	Sprinting bool
	Dead      bool
	Light     LightView
}

type LightView struct {
	Mode       flashlight.Mode
	Battery    float64
	Intensity  float64
	Visible    bool
	Flickering bool
	InnerCone  float64
	OuterCone  float64
	Range      float64
}

// Lights reports whether the beam reaches p and whether p sits in the inner
// cone. Walls are not considered.
func (v PlayerView) Lights(p common.Vec2) (lit, inner bool) {
	if !v.Light.Visible {
		return false, false
	}
	d := p.Sub(v.Position)
	dist := d.Len()
	if dist > v.Light.Range {
		return false, false
	}
	if dist == 0 {
		return true, true
	}
	off := common.AngleBetween(v.Facing, d.Angle())
	return off <= common.Deg2Rad(v.Light.OuterCone), off <= common.Deg2Rad(v.Light.InnerCone)
}

// EnemyView is a read-only copy of one enemy for renderers.
type EnemyView struct {
	Entity      ecs.Entity
	Type        string
	Position    common.Vec2
	Facing      float64
	Radius      float64
	Color       colorful.Color
	State       enemy.State
	Health      float64
	SightRadius float64
	SightAngle  float64
	LastKnown   common.Vec2
}

func (s *Simulation) Player() (PlayerView, bool) {
	e, err := s.player()
	if err != nil {
		return PlayerView{}, false
	}
	v := PlayerView{Entity: e, Color: s.playerSpec.Color.Color}
	if tr, ok := ecs.Get(s.world, e, component.TransformComponent.Kind()); ok {
		v.Position, v.Facing = tr.Position, tr.Facing
	}
	if b, ok := ecs.Get(s.world, e, component.BodyComponent.Kind()); ok {
		v.Radius = b.Radius
	}
	if p, ok := ecs.Get(s.world, e, component.PlayerComponent.Kind()); ok {
		v.Health = p.Health.Percent()
		v.Dead = p.Health.Dead()
		v.Stamina = p.Stamina.Percent()
		v.Sprinting = p.Stamina.Sprinting()
	}
	if fl, ok := ecs.Get(s.world, e, component.FlashlightComponent.Kind()); ok {
		c := fl.Controller
		inner, outer := c.Cones()
		v.Light = LightView{
			Mode:       c.Mode(),
			Battery:    c.BatteryPercentage(),
			Intensity:  c.Intensity(),
			Visible:    c.Visible(),
			Flickering: c.Flickering(),
			InnerCone:  inner,
			OuterCone:  outer,
			Range:      c.Config().Range,
		}
	}
	return v, true
}

// Enemies lists live enemies in entity order.
func (s *Simulation) Enemies() []EnemyView {
	var out []EnemyView
	ecs.ForEach2(s.world, component.EnemyComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, en *component.Enemy, tr *component.Transform) {
			if en.Agent == nil {
				return
			}
			params := en.Agent.Params()
			v := EnemyView{
				Entity:      e,
				Type:        en.Type,
				Position:    tr.Position,
				Facing:      tr.Facing,
				State:       en.Agent.State(),
				Health:      en.Agent.HealthPercent(),
				SightRadius: params.SightRadius,
				SightAngle:  params.SightAngle,
				LastKnown:   en.Agent.LastKnownLocation(),
			}
			if b, ok := ecs.Get(s.world, e, component.BodyComponent.Kind()); ok {
				v.Radius = b.Radius
			}
			if spec, ok := s.enemySpecs[en.Type]; ok {
				v.Color = spec.Color.Color
			}
			out = append(out, v)
		})
	return out
}

// Enemy returns the agent behind an entity.
func (s *Simulation) Enemy(e ecs.Entity) (*enemy.Agent, bool) {
	en, err := s.enemy(e)
	if err != nil {
		return nil, false
	}
	return en.Agent, true
}

// LineOfSight reports whether no wall blocks the segment a-b.
func (s *Simulation) LineOfSight(a, b common.Vec2) bool {
	return s.nav.LineOfSight(a, b)
}

// Raycast returns where the segment a-b first meets a wall.
func (s *Simulation) Raycast(a, b common.Vec2) (common.Vec2, bool) {
	return s.nav.Raycast(a, b)
}
