package component

import (
	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/player"
)

type Player struct {
	Stamina *player.Stamina
	Health  *player.Health

	WalkSpeed   float64
	SprintSpeed float64

	WalkNoise     float64
	SprintNoise   float64
	NoiseInterval float64
	// NoiseTimer counts down to the next footstep.
	NoiseTimer float64
}

var PlayerComponent = NewComponent[Player]("player")

// Input is the latest command state for the player. Edge-triggered fields
// are cleared once consumed.
type Input struct {
	Move   common.Vec2
	Aim    common.Vec2
	Sprint bool

	ToggleLight bool
	CycleMode   bool
}

var InputComponent = NewComponent[Input]("input")

// Noise is a sound made this tick, heard by enemies in range.
type Noise struct {
	Location common.Vec2
	Volume   float64
}

var NoiseComponent = NewComponent[Noise]("noise")
