package component

import "github.com/milk9111/nightwatch/common"

// Transform is where an entity stands and which way it faces, in radians.
type Transform struct {
	Position common.Vec2
	Facing   float64
}

var TransformComponent = NewComponent[Transform]("transform")
