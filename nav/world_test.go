package nav

import (
	"errors"
	"math"
	"testing"

	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/enemy"
)

type point struct {
	id  uint64
	pos common.Vec2
}

func (p *point) ActorID() uint64       { return p.id }
func (p *point) Location() common.Vec2 { return p.pos }

type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

func near(a, b common.Vec2) bool {
	return common.Dist(a, b) < 1e-3
}

func TestMoveToStopsAtGoal(t *testing.T) {
	w := New(fixedRand(0), Options{})
	if err := w.AddBody(1, common.V(0, 0), 10); err != nil {
		t.Fatalf("add: %v", err)
	}
	a := w.Agent(1)
	a.SetMaxSpeed(100)
	a.MoveTo(common.V(250, 0))

	w.Step(1)
	if got := a.Location(); !near(got, common.V(100, 0)) {
		t.Fatalf("after 1s at 100/s: %v", got)
	}
	w.Step(1)
	w.Step(1)
	w.Step(1)
	got := a.Location()
	if math.Abs(got.X-(250-defaultArrive)) > 1e-3 {
		t.Fatalf("expected to stop inside arrive radius, got %v", got)
	}
	if _, ok := a.Goal(); ok {
		t.Fatalf("goal should clear once reached")
	}
}

func TestFollowHoldsStandoff(t *testing.T) {
	w := New(fixedRand(0), Options{Standoff: 50})
	_ = w.AddBody(1, common.V(0, 0), 10)
	target := &point{id: 9, pos: common.V(300, 0)}
	a := w.Agent(1)
	a.SetMaxSpeed(500)
	a.MoveToActor(target)
	for i := 0; i < 10; i++ {
		w.Step(0.25)
	}
	if d := a.DistanceTo(target); math.Abs(d-50) > 1e-3 {
		t.Fatalf("distance to followed actor = %v, want 50", d)
	}
	target.pos = common.V(300, 200)
	for i := 0; i < 10; i++ {
		w.Step(0.25)
	}
	if d := a.DistanceTo(target); math.Abs(d-50) > 1e-3 {
		t.Fatalf("follow did not track a moving actor: %v", d)
	}
}

func TestLineOfSight(t *testing.T) {
	w := New(fixedRand(0), Options{})
	w.AddWall(common.Rect{X: 100, Y: -50, Width: 20, Height: 100})

	cases := []struct {
		name string
		a, b common.Vec2
		want bool
	}{
		{"through_wall", common.V(0, 0), common.V(200, 0), false},
		{"short_of_wall", common.V(0, 0), common.V(90, 0), true},
		{"above_wall", common.V(0, -80), common.V(200, -80), true},
		{"vertical_miss", common.V(50, -200), common.V(50, 200), true},
		{"vertical_hit", common.V(110, -200), common.V(110, 200), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := w.LineOfSight(tc.a, tc.b); got != tc.want {
				t.Fatalf("LineOfSight(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestRaycastStopsAtNearestWall(t *testing.T) {
	w := New(fixedRand(0), Options{})
	w.AddWall(common.Rect{X: 200, Y: -50, Width: 20, Height: 100})
	w.AddWall(common.Rect{X: 100, Y: -50, Width: 20, Height: 100})

	p, hit := w.Raycast(common.V(0, 0), common.V(300, 0))
	if !hit || math.Abs(p.X-100) > 1e-9 || p.Y != 0 {
		t.Fatalf("Raycast = %v, %v", p, hit)
	}
	p, hit = w.Raycast(common.V(0, 0), common.V(90, 0))
	if hit || p != common.V(90, 0) {
		t.Fatalf("clear Raycast = %v, %v", p, hit)
	}
}

func TestRandomReachablePointAvoidsWalls(t *testing.T) {
	w := New(fixedRand(1), Options{})
	// a full turn at full radius lands inside this wall.
	w.AddWall(common.Rect{X: 0, Y: -10, Width: 20, Height: 20})
	if _, ok := w.RandomReachablePoint(common.V(-100, 0), 100, 5); ok {
		t.Fatalf("expected every sample to be rejected")
	}

	w2 := New(fixedRand(0.25), Options{})
	p, ok := w2.RandomReachablePoint(common.V(0, 0), 400, 5)
	if !ok {
		t.Fatalf("expected a point in an open world")
	}
	if !near(p, common.V(0, 200)) {
		t.Fatalf("point = %v, want (0,200)", p)
	}
}

func TestSnapshotRestore(t *testing.T) {
	target := &point{id: 2, pos: common.V(400, 0)}
	build := func() *World {
		w := New(fixedRand(0), Options{})
		_ = w.AddBody(1, common.V(0, 0), 10)
		_ = w.AddBody(3, common.V(0, 100), 10)
		return w
	}

	a := build()
	a.Agent(1).SetMaxSpeed(120)
	a.Agent(1).MoveToActor(target)
	a.Agent(3).SetMaxSpeed(80)
	a.Agent(3).MoveTo(common.V(0, 400))
	a.Agent(3).DisableCollision()
	a.Step(0.5)

	b := build()
	resolve := func(id uint64) (enemy.Actor, bool) { return target, id == target.id }
	if err := b.Restore(a.Snapshot(), resolve); err != nil {
		t.Fatalf("restore: %v", err)
	}
	for i := 0; i < 6; i++ {
		a.Step(0.5)
		b.Step(0.5)
	}
	sa, sb := a.Snapshot(), b.Snapshot()
	for i := range sa {
		if !near(sa[i].Position, sb[i].Position) || sa[i].Collides != sb[i].Collides || sa[i].Follow != sb[i].Follow {
			t.Fatalf("body %d diverged: %+v vs %+v", sa[i].ID, sa[i], sb[i])
		}
	}

	if err := b.Restore([]BodyState{{ID: 77}}, nil); !errors.Is(err, ErrUnknownBody) {
		t.Fatalf("err = %v, want ErrUnknownBody", err)
	}
}

func TestRemoveBodyDropsFollowers(t *testing.T) {
	w := New(fixedRand(0), Options{})
	_ = w.AddBody(1, common.V(0, 0), 10)
	_ = w.AddBody(2, common.V(100, 0), 10)
	w.Agent(1).MoveToActor(&point{id: 2, pos: common.V(100, 0)})
	if !w.RemoveBody(2) {
		t.Fatalf("expected removal")
	}
	if _, ok := w.Agent(1).Goal(); ok {
		t.Fatalf("follower still tracks a removed body")
	}
	if w.RemoveBody(2) {
		t.Fatalf("second removal should report false")
	}
	if err := w.AddBody(1, common.V(0, 0), 10); !errors.Is(err, ErrDuplicateBody) {
		t.Fatalf("err = %v, want ErrDuplicateBody", err)
	}
}
