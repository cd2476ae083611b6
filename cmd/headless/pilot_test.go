package main

import (
	"testing"

	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/enemy"
	"github.com/milk9111/nightwatch/flashlight"
	"github.com/milk9111/nightwatch/sim"
)

func TestPilotDecisions(t *testing.T) {
	near := sim.EnemyView{Position: common.V(400, 300), State: enemy.Chasing}
	far := sim.EnemyView{Position: common.V(3000, 300), State: enemy.Idle}
	dead := sim.EnemyView{Position: common.V(310, 300), State: enemy.Dead}

	cases := []struct {
		name    string
		mode    flashlight.Mode
		battery float64
		enemies []sim.EnemyView
		toggle  bool
		cycle   bool
		sprint  bool
		aim     common.Vec2
	}{
		{"threat_turns_light_on", flashlight.Off, 1, []sim.EnemyView{far, near}, true, false, true, near.Position},
		{"threat_steps_up_mode", flashlight.Medium, 1, []sim.EnemyView{near}, false, true, true, near.Position},
		{"holds_high", flashlight.High, 1, []sim.EnemyView{near}, false, false, true, near.Position},
		{"no_threat_turns_off", flashlight.High, 1, []sim.EnemyView{far, dead}, true, false, false, common.V(150, 150)},
		{"saves_low_battery", flashlight.Off, 0.1, []sim.EnemyView{near}, false, false, true, near.Position},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPilot(1000, 1000)
			player := sim.PlayerView{
				Position: common.V(300, 300),
				Light:    sim.LightView{Mode: tc.mode, Battery: tc.battery},
			}
			cmd := p.decide(player, tc.enemies)
			if cmd.toggle != tc.toggle || cmd.cycle != tc.cycle || cmd.input.Sprint != tc.sprint {
				t.Fatalf("cmd = %+v", cmd)
			}
			if cmd.input.Aim != tc.aim {
				t.Fatalf("aim = %v, want %v", cmd.input.Aim, tc.aim)
			}
		})
	}
}

func TestPilotAdvancesWaypoints(t *testing.T) {
	p := newPilot(1000, 1000)
	player := sim.PlayerView{Position: common.V(150, 150)}
	cmd := p.decide(player, nil)
	if p.next != 1 || cmd.input.Move.X <= 0 {
		t.Fatalf("next %d move %v", p.next, cmd.input.Move)
	}
	if cmd := p.decide(sim.PlayerView{Dead: true}, nil); cmd != (command{}) {
		t.Fatalf("dead player still driven: %+v", cmd)
	}
}
