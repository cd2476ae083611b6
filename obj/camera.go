package obj

import (
	"math"

	"github.com/milk9111/nightwatch/common"
)

// Camera maps arena coordinates to the screen, centred on a followed point
// and clamped to the arena.
type Camera struct {
	Pos common.Vec2

	screenW int
	screenH int
	zoom    float64

	// smoothing factor (0..1). higher -> faster follow.
	smooth float64
	// arena size (0 means unbounded)
	worldW float64
	worldH float64
}

// NewCamera creates a camera with the given logical screen size and initial zoom.
func NewCamera(screenW, screenH int, zoom float64) *Camera {
	if zoom <= 0 {
		zoom = 1
	}
	return &Camera{
		Pos:     common.V(float64(screenW)/2, float64(screenH)/2),
		screenW: screenW,
		screenH: screenH,
		zoom:    zoom,
		smooth:  0.15,
	}
}

func (c *Camera) SetZoom(z float64) {
	if z <= 0 {
		return
	}
	c.zoom = z
	c.clamp()
}

func (c *Camera) Zoom() float64 { return c.zoom }

func (c *Camera) SetScreenSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	c.screenW, c.screenH = w, h
	c.clamp()
}

// SetWorldBounds sets the arena size used to clamp the view.
func (c *Camera) SetWorldBounds(w, h float64) {
	c.worldW, c.worldH = w, h
	c.clamp()
}

func (c *Camera) SetSmooth(f float64) {
	c.smooth = common.Clamp(f, 0, 1)
}

// ViewTopLeft returns the arena point at the top-left of the screen.
func (c *Camera) ViewTopLeft() common.Vec2 {
	return c.Pos.Sub(common.V(float64(c.screenW), float64(c.screenH)).Scale(0.5 / c.zoom))
}

func (c *Camera) WorldToScreen(p common.Vec2) (float32, float32) {
	s := p.Sub(c.ViewTopLeft()).Scale(c.zoom)
	return float32(s.X), float32(s.Y)
}

func (c *Camera) ScreenToWorld(x, y float64) common.Vec2 {
	return c.ViewTopLeft().Add(common.V(x, y).Scale(1 / c.zoom))
}

// Update moves the camera toward target. Call from the fixed-rate Update
// loop to get consistent smoothing.
func (c *Camera) Update(target common.Vec2) {
	if c.smooth <= 0 || c.smooth >= 1 {
		c.Pos = target
	} else {
		c.Pos = c.Pos.Add(target.Sub(c.Pos).Scale(c.smooth))
	}
	c.clamp()
}

// SnapTo places the camera without smoothing, e.g. after a restore.
func (c *Camera) SnapTo(target common.Vec2) {
	c.Pos = target
	c.clamp()
}

func (c *Camera) clamp() {
	// snap to the 1/zoom grid so world pixels land on screen pixels
	c.Pos.X = math.Round(c.Pos.X*c.zoom) / c.zoom
	c.Pos.Y = math.Round(c.Pos.Y*c.zoom) / c.zoom

	halfW := float64(c.screenW) / c.zoom / 2
	halfH := float64(c.screenH) / c.zoom / 2
	c.Pos.X = clampAxis(c.Pos.X, halfW, c.worldW)
	c.Pos.Y = clampAxis(c.Pos.Y, halfH, c.worldH)
}

func clampAxis(v, half, size float64) float64 {
	if size <= 0 {
		return v
	}
	if size-half < half {
		// arena smaller than the view: center on it
		return size / 2
	}
	return common.Clamp(v, half, size-half)
}
