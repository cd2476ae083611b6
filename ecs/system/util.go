package system

import (
	"math"

	"github.com/milk9111/nightwatch/common"
)

// inCone reports whether target lies within halfAngle degrees of heading as
// seen from origin, and within reach.
func inCone(origin common.Vec2, heading float64, halfAngle, reach float64, target common.Vec2) (bool, float64) {
	d := target.Sub(origin)
	dist := d.Len()
	if dist > reach {
		return false, 0
	}
	if dist == 0 {
		return true, 0
	}
	off := common.AngleBetween(heading, d.Angle())
	return off <= common.Deg2Rad(halfAngle)+1e-9, off
}

const facingEpsilon = 1e-3

// facingFrom turns a velocity into a heading, keeping the old one when the
// body is at rest.
func facingFrom(v common.Vec2, old float64) float64 {
	if math.Hypot(v.X, v.Y) < facingEpsilon {
		return old
	}
	return v.Angle()
}
