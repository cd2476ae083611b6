package common

// Rect is an axis-aligned box with its origin at the top-left corner.
type Rect struct {
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

func (r Rect) MaxX() float64 { return r.X + r.Width }
func (r Rect) MaxY() float64 { return r.Y + r.Height }

func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

func (r Rect) Intersects(other Rect) bool {
	return r.X < other.MaxX() &&
		r.MaxX() > other.X &&
		r.Y < other.MaxY() &&
		r.MaxY() > other.Y
}

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.MaxX() && p.Y >= r.Y && p.Y <= r.MaxY()
}

// Inflate grows the box by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}
