package main

import (
	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/enemy"
	"github.com/milk9111/nightwatch/flashlight"
	"github.com/milk9111/nightwatch/sim"
)

const (
	waypointReach = 60.0
	threatRange   = 900.0
	lowBattery    = 0.2
)

// pilot walks the player around a loop of waypoints and points the light at
// the closest live enemy in range.
type pilot struct {
	waypoints []common.Vec2
	next      int
}

func newPilot(width, height float64) *pilot {
	mx, my := width*0.15, height*0.15
	return &pilot{waypoints: []common.Vec2{
		common.V(mx, my),
		common.V(width-mx, my),
		common.V(width-mx, height-my),
		common.V(mx, height-my),
	}}
}

type command struct {
	input  sim.Input
	toggle bool
	cycle  bool
}

func (p *pilot) decide(player sim.PlayerView, enemies []sim.EnemyView) command {
	var cmd command
	if player.Dead || len(p.waypoints) == 0 {
		return cmd
	}

	goal := p.waypoints[p.next]
	if common.Dist(player.Position, goal) < waypointReach {
		p.next = (p.next + 1) % len(p.waypoints)
		goal = p.waypoints[p.next]
	}
	cmd.input.Move = goal.Sub(player.Position).Normalize()
	cmd.input.Aim = goal

	threat, ok := closestThreat(player.Position, enemies)
	if ok {
		cmd.input.Aim = threat.Position
		cmd.input.Sprint = threat.State == enemy.Chasing || threat.State == enemy.Attacking
	}

	on := player.Light.Mode != flashlight.Off
	switch {
	case ok && !on && player.Light.Battery > lowBattery:
		cmd.toggle = true
	case !ok && on:
		cmd.toggle = true
	case ok && on && player.Light.Mode != flashlight.High:
		cmd.cycle = true
	}
	return cmd
}

func closestThreat(from common.Vec2, enemies []sim.EnemyView) (sim.EnemyView, bool) {
	best, bestDist := sim.EnemyView{}, threatRange
	found := false
	for _, e := range enemies {
		if e.State == enemy.Dead {
			continue
		}
		if d := common.Dist(from, e.Position); d < bestDist {
			best, bestDist, found = e, d, true
		}
	}
	return best, found
}
