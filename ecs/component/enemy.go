package component

import (
	"github.com/milk9111/nightwatch/enemy"
	"github.com/milk9111/nightwatch/script"
)

type Enemy struct {
	Agent *enemy.Agent
	Type  string
	Hooks *script.Hooks

	// ExposureTimer and SenseTimer count down to the next light exposure
	// roll and the next repeated sight report.
	ExposureTimer float64
	SenseTimer    float64
	Seen          bool

	Unsubscribe func()
}

var EnemyComponent = NewComponent[Enemy]("enemy")
