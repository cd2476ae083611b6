// Package nav moves circular bodies through a walled arena.
//
// Bodies live in a chipmunk space with zero gravity. Steering is straight
// line toward a point or a followed actor; walls stop bodies and block sight.
package nav

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/enemy"
)

var (
	ErrUnknownBody   = errors.New("nav: unknown body")
	ErrDuplicateBody = errors.New("nav: body already exists")
)

const (
	// agentGroup keeps bodies from colliding with each other; walls still stop them.
	agentGroup uint = 1

	defaultArrive   = 4.0
	defaultStandoff = 60.0
	wanderAttempts  = 16
)

type Options struct {
	// Arrive is how close a MoveTo goal must be before the body stops.
	Arrive float64
	// Standoff is how close a followed actor may get before the body holds.
	Standoff float64
}

type World struct {
	space  *cp.Space
	walls  []common.Rect
	shapes []*cp.Shape
	bodies map[uint64]*body
	rng    common.Rand
	opts   Options
}

type body struct {
	id       uint64
	radius   float64
	body     *cp.Body
	shape    *cp.Shape
	speed    float64
	goal     *common.Vec2
	follow   enemy.Actor
	collides bool
}

// New creates an empty world. rng backs RandomReachablePoint.
func New(rng common.Rand, opts Options) *World {
	if opts.Arrive <= 0 {
		opts.Arrive = defaultArrive
	}
	if opts.Standoff <= 0 {
		opts.Standoff = defaultStandoff
	}
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{})
	return &World{
		space:  space,
		bodies: make(map[uint64]*body),
		rng:    rng,
		opts:   opts,
	}
}

func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

// AddWall adds a static box that blocks movement and sight.
func (w *World) AddWall(r common.Rect) {
	bb := cp.BB{L: r.X, B: r.Y, R: r.MaxX(), T: r.MaxY()}
	shape := cp.NewBox2(w.space.StaticBody, bb, 0)
	shape.SetFriction(0)
	shape.SetElasticity(0)
	w.space.AddShape(shape)
	w.walls = append(w.walls, r)
	w.shapes = append(w.shapes, shape)
}

func (w *World) Walls() []common.Rect {
	return append([]common.Rect(nil), w.walls...)
}

// ClearWalls removes every wall. Bodies are kept.
func (w *World) ClearWalls() {
	for _, shape := range w.shapes {
		w.space.RemoveShape(shape)
	}
	w.walls = nil
	w.shapes = nil
}

// AddBody adds a circular dynamic body centred on pos.
func (w *World) AddBody(id uint64, pos common.Vec2, radius float64) error {
	if _, ok := w.bodies[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateBody, id)
	}
	if radius <= 0 {
		radius = 16
	}
	mass := 1.0
	cb := cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	cb.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	cb.SetAngularVelocity(0)

	shape := cp.NewCircle(cb, radius, cp.Vector{})
	shape.SetFriction(0)
	shape.SetElasticity(0)
	shape.SetFilter(cp.NewShapeFilter(agentGroup, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES))

	w.space.AddBody(cb)
	w.space.AddShape(shape)
	w.bodies[id] = &body{id: id, radius: radius, body: cb, shape: shape, collides: true}
	return nil
}

// RemoveBody drops a body. Unknown ids are ignored.
func (w *World) RemoveBody(id uint64) bool {
	b, ok := w.bodies[id]
	if !ok {
		return false
	}
	w.space.RemoveShape(b.shape)
	w.space.RemoveBody(b.body)
	delete(w.bodies, id)
	for _, other := range w.bodies {
		if other.follow != nil && other.follow.ActorID() == id {
			other.follow = nil
		}
	}
	return true
}

func (w *World) Has(id uint64) bool {
	_, ok := w.bodies[id]
	return ok
}

// IDs returns body ids in ascending order.
func (w *World) IDs() []uint64 {
	ids := make([]uint64, 0, len(w.bodies))
	for id := range w.bodies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (w *World) Position(id uint64) (common.Vec2, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return common.Vec2{}, false
	}
	p := b.body.Position()
	return common.V(p.X, p.Y), true
}

func (w *World) SetPosition(id uint64, pos common.Vec2) {
	if b, ok := w.bodies[id]; ok {
		b.body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	}
}

func (w *World) Radius(id uint64) float64 {
	if b, ok := w.bodies[id]; ok {
		return b.radius
	}
	return 0
}

// SetVelocity drives a body directly and cancels any steering goal.
func (w *World) SetVelocity(id uint64, v common.Vec2) {
	b, ok := w.bodies[id]
	if !ok {
		return
	}
	b.goal, b.follow = nil, nil
	b.body.SetVelocityVector(cp.Vector{X: v.X, Y: v.Y})
}

func (w *World) Velocity(id uint64) common.Vec2 {
	if b, ok := w.bodies[id]; ok {
		v := b.body.Velocity()
		return common.V(v.X, v.Y)
	}
	return common.Vec2{}
}

// Agent returns a navigator bound to one body.
func (w *World) Agent(id uint64) *Agent {
	return &Agent{world: w, id: id}
}

// Step steers every body toward its goal and advances the space by dt.
func (w *World) Step(dt float64) {
	if w == nil || dt <= 0 {
		return
	}
	for _, id := range w.IDs() {
		w.steer(w.bodies[id], dt)
	}
	w.space.Step(dt)
	for _, b := range w.bodies {
		b.body.SetAngularVelocity(0)
	}
}

func (w *World) steer(b *body, dt float64) {
	var target common.Vec2
	stopAt := w.opts.Arrive
	switch {
	case b.follow != nil:
		target = b.follow.Location()
		stopAt = w.opts.Standoff
	case b.goal != nil:
		target = *b.goal
	default:
		return
	}

	p := b.body.Position()
	pos := common.V(p.X, p.Y)
	delta := target.Sub(pos)
	dist := delta.Len()
	if dist <= stopAt {
		b.body.SetVelocityVector(cp.Vector{})
		if b.follow == nil {
			b.goal = nil
		}
		return
	}
	speed := math.Min(b.speed, (dist-stopAt)/dt)
	v := delta.Normalize().Scale(speed)
	b.body.SetVelocityVector(cp.Vector{X: v.X, Y: v.Y})
}

// LineOfSight reports whether the segment a-b crosses no wall.
func (w *World) LineOfSight(a, b common.Vec2) bool {
	dx, dy := b.X-a.X, b.Y-a.Y
	for _, r := range w.walls {
		if hit, _ := segmentAABBHit(a.X, a.Y, dx, dy, r.X, r.Y, r.MaxX(), r.MaxY()); hit {
			return false
		}
	}
	return true
}

// Raycast returns the first wall point on the segment a-b, or b when the
// segment is clear.
func (w *World) Raycast(a, b common.Vec2) (common.Vec2, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	best, hit := 1.0, false
	for _, r := range w.walls {
		if ok, t := segmentAABBHit(a.X, a.Y, dx, dy, r.X, r.Y, r.MaxX(), r.MaxY()); ok && t < best {
			best, hit = t, true
		}
	}
	return a.Add(common.V(dx, dy).Scale(best)), hit
}

// RandomReachablePoint samples a point within radius of origin that a body
// of the given size can stand on and reach in a straight line.
func (w *World) RandomReachablePoint(origin common.Vec2, radius, clearance float64) (common.Vec2, bool) {
	if w.rng == nil || radius <= 0 {
		return common.Vec2{}, false
	}
	for i := 0; i < wanderAttempts; i++ {
		angle := w.rng.Float64() * 2 * math.Pi
		dist := radius * math.Sqrt(w.rng.Float64())
		p := origin.Add(common.FromAngle(angle).Scale(dist))
		if w.blocked(p, clearance) || !w.LineOfSight(origin, p) {
			continue
		}
		return p, true
	}
	return common.Vec2{}, false
}

func (w *World) blocked(p common.Vec2, clearance float64) bool {
	for _, r := range w.walls {
		if r.Inflate(clearance).Contains(p) {
			return true
		}
	}
	return false
}

func segmentAABBHit(x0, y0, dx, dy, minX, minY, maxX, maxY float64) (bool, float64) {
	tmin := 0.0
	tmax := 1.0

	if dx != 0 {
		invD := 1.0 / dx
		t1 := (minX - x0) * invD
		t2 := (maxX - x0) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	} else if x0 < minX || x0 > maxX {
		return false, 0
	}

	if dy != 0 {
		invD := 1.0 / dy
		t1 := (minY - y0) * invD
		t2 := (maxY - y0) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	} else if y0 < minY || y0 > maxY {
		return false, 0
	}

	if tmax >= tmin {
		return true, tmin
	}
	return false, 0
}
