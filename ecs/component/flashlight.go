package component

import "github.com/milk9111/nightwatch/flashlight"

// Flashlight is carried by the player. The beam points along the holder's
// Transform.Facing.
type Flashlight struct {
	Controller *flashlight.Controller
}

var FlashlightComponent = NewComponent[Flashlight]("flashlight")
