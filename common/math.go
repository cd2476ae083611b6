package common

import "math"

// Rand is the subset of *rand.Rand the simulation rolls against.
type Rand interface {
	Float64() float64
}

type Vec2 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector, or the zero vector for zero input.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

func Dist(a, b Vec2) float64 {
	return a.Sub(b).Len()
}

func FromAngle(rad float64) Vec2 {
	return Vec2{X: math.Cos(rad), Y: math.Sin(rad)}
}

// AngleBetween returns the absolute angle between headings a and b in radians, in [0, pi].
func AngleBetween(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}
