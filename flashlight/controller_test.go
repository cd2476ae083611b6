package flashlight

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/milk9111/nightwatch/cue"
	"github.com/milk9111/nightwatch/timer"
)

type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

type cueLog []string

func (l *cueLog) PlayCue(name string, _ float64) { *l = append(*l, name) }

func newTestController(r float64) (*Controller, *timer.Scheduler, *cueLog) {
	timers := timer.NewScheduler()
	cues := &cueLog{}
	c := New(DefaultConfig(), timers, 1, WithRand(fixedRand(r)), WithCues(cues))
	return c, timers, cues
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestNewControllerStartsOffAndFull(t *testing.T) {
	c, _, _ := newTestController(0.99)
	if c.Mode() != Off || c.IsHeld() {
		t.Fatalf("expected off and not held, got %s held=%v", c.Mode(), c.IsHeld())
	}
	if c.BatteryPercentage() != 1 {
		t.Fatalf("expected full battery, got %v", c.BatteryPercentage())
	}
	if c.Intensity() != 0 {
		t.Fatalf("expected no light while off, got %v", c.Intensity())
	}
}

func TestToggleRestoresLastMode(t *testing.T) {
	c, _, cues := newTestController(0.99)

	if !c.Toggle() || c.Mode() != Medium {
		t.Fatalf("first toggle should turn on to medium, got %s", c.Mode())
	}
	if !approx(c.Intensity(), 4000) || !approx(c.OuterIntensity(), 2000) {
		t.Fatalf("medium intensity = %v/%v", c.Intensity(), c.OuterIntensity())
	}
	c.CycleMode()
	if c.Mode() != High {
		t.Fatalf("expected high, got %s", c.Mode())
	}

	c.Toggle()
	if c.Mode() != Off || c.Intensity() != 0 {
		t.Fatalf("expected off, got %s at %v", c.Mode(), c.Intensity())
	}
	c.Toggle()
	if c.Mode() != High || !approx(c.Intensity(), 8000) {
		t.Fatalf("expected high at 8000 after double toggle, got %s at %v", c.Mode(), c.Intensity())
	}

	want := []string{cue.FlashlightToggle, cue.FlashlightMode, cue.FlashlightToggle, cue.FlashlightToggle}
	if len(*cues) != len(want) {
		t.Fatalf("cues = %v, want %v", *cues, want)
	}
	for i := range want {
		if (*cues)[i] != want[i] {
			t.Fatalf("cues = %v, want %v", *cues, want)
		}
	}
}

func TestCycleModeOrder(t *testing.T) {
	c, _, _ := newTestController(0.99)
	if c.CycleMode() {
		t.Fatalf("cycling while off must be rejected")
	}
	c.Toggle()
	for c.Mode() != Low {
		c.CycleMode()
	}
	want := []Mode{Medium, High, Strobe, Low}
	for i, m := range want {
		if !c.CycleMode() {
			t.Fatalf("cycle %d rejected", i)
		}
		if c.Mode() != m {
			t.Fatalf("cycle %d: got %s, want %s", i, c.Mode(), m)
		}
	}
}

func TestDepletionForcesOff(t *testing.T) {
	c, _, _ := newTestController(0.99)
	var changes []ModeChange
	c.OnModeChange(func(mc ModeChange) { changes = append(changes, mc) })

	c.Toggle()
	c.CycleMode()
	c.SetBattery(1)
	c.Update(1)

	if c.Mode() != Off || c.Battery() != 0 || c.IsHeld() {
		t.Fatalf("expected forced off at zero battery, got %s battery=%v held=%v", c.Mode(), c.Battery(), c.IsHeld())
	}
	if c.Intensity() != 0 {
		t.Fatalf("expected zero intensity, got %v", c.Intensity())
	}
	if c.Toggle() {
		t.Fatalf("toggle with empty battery must fail")
	}
	if c.Mode() != Off {
		t.Fatalf("mode changed on failed toggle: %s", c.Mode())
	}
	last := changes[len(changes)-1]
	if !last.Depleted || last.From != High || last.To != Off {
		t.Fatalf("unexpected last change %+v", last)
	}

	c.Update(2)
	if !approx(c.Battery(), 1) {
		t.Fatalf("expected recharge to 1, got %v", c.Battery())
	}
	if !c.Toggle() || c.Mode() != High {
		t.Fatalf("expected to come back on in high, got %s", c.Mode())
	}
}

func TestBatteryStaysInBounds(t *testing.T) {
	cases := []struct {
		name string
		on   bool
		dt   float64
		want float64
	}{
		{"recharge_caps_at_max", false, 1e6, 100},
		{"drain_floors_at_zero", true, 1e6, 0},
		{"negative_dt_is_ignored", true, -5, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _, _ := newTestController(0.99)
			if tc.on {
				c.Toggle()
			}
			c.Update(tc.dt)
			if c.Battery() != tc.want {
				t.Fatalf("battery = %v, want %v", c.Battery(), tc.want)
			}
		})
	}
}

func TestDrainUsesModeMultiplier(t *testing.T) {
	cases := []struct {
		mode Mode
		want float64
	}{
		{Low, 99.5},
		{Medium, 99},
		{High, 98},
		{Strobe, 98.5},
	}
	for _, tc := range cases {
		t.Run(tc.mode.String(), func(t *testing.T) {
			c, _, _ := newTestController(0.99)
			c.Toggle()
			for c.Mode() != tc.mode {
				c.CycleMode()
			}
			c.Update(1)
			if !approx(c.Battery(), tc.want) {
				t.Fatalf("battery = %v, want %v", c.Battery(), tc.want)
			}
		})
	}
}

func TestDimmingBelowThreshold(t *testing.T) {
	c, _, _ := newTestController(0.99)
	c.Toggle()
	c.SetBattery(25)
	c.Update(0)
	if want := 4000 * 25.0 / 30.0; !approx(c.Intensity(), want) {
		t.Fatalf("intensity = %v, want %v", c.Intensity(), want)
	}
	c.SetBattery(1)
	c.Update(0)
	if want := 4000 * 0.1; !approx(c.Intensity(), want) {
		t.Fatalf("intensity = %v, want floor %v", c.Intensity(), want)
	}
}

func TestFlickerRestoresDimmedTarget(t *testing.T) {
	c, timers, _ := newTestController(0)
	c.Toggle()
	c.SetBattery(15)

	c.Update(0.4)
	if !c.Flickering() {
		t.Fatalf("expected a flicker at battery %v", c.Battery())
	}
	target := c.TargetIntensity()
	if !approx(c.Intensity(), target*0.5) {
		t.Fatalf("flicker intensity = %v, want %v", c.Intensity(), target*0.5)
	}

	timers.Advance(0.1)
	if c.Flickering() {
		t.Fatalf("flicker should have been restored")
	}
	if !approx(c.Intensity(), 4000*c.Battery()/30) {
		t.Fatalf("restored intensity = %v, want dimmed %v", c.Intensity(), 4000*c.Battery()/30)
	}
}

func TestCriticalFlicker(t *testing.T) {
	c, timers, _ := newTestController(0.85)
	c.Toggle()
	c.SetBattery(4)
	if c.FlickerChance() != 0.9 {
		t.Fatalf("chance = %v, want 0.9", c.FlickerChance())
	}
	c.Update(0.34)
	if !c.Flickering() {
		t.Fatalf("expected flicker")
	}
	if !approx(c.Intensity(), c.TargetIntensity()*0.2) {
		t.Fatalf("critical flicker intensity = %v", c.Intensity())
	}
	timers.Advance(0.15)
	if !c.Flickering() {
		t.Fatalf("critical flicker lasts 0.2s")
	}
	timers.Advance(0.1)
	if c.Flickering() {
		t.Fatalf("critical flicker should be over")
	}
}

func TestFlickerChance(t *testing.T) {
	cases := []struct {
		battery float64
		want    float64
	}{
		{20, 0},
		{15, 0.25},
		{10, 0.5},
		{5, 0.9},
		{0.5, 0.9},
	}
	for _, tc := range cases {
		c, _, _ := newTestController(0.99)
		c.SetBattery(tc.battery)
		if got := c.FlickerChance(); !approx(got, tc.want) {
			t.Fatalf("FlickerChance(%v) = %v, want %v", tc.battery, got, tc.want)
		}
	}
}

func TestStrobeAlternatesVisibility(t *testing.T) {
	c, _, _ := newTestController(0.99)
	c.Toggle()
	c.CycleMode()
	c.CycleMode()
	if c.Mode() != Strobe {
		t.Fatalf("expected strobe, got %s", c.Mode())
	}
	if !approx(c.Intensity(), 9600) || !approx(c.OuterIntensity(), 4800) {
		t.Fatalf("strobe lobes = %v/%v", c.Intensity(), c.OuterIntensity())
	}
	c.Update(0.2)
	if c.Visible() || c.Intensity() != 0 {
		t.Fatalf("expected dark strobe phase")
	}
	c.Update(0.2)
	if !c.Visible() || !approx(c.Intensity(), 9600) {
		t.Fatalf("expected lit strobe phase")
	}
}

func TestSnapshotRoundTripIsDeterministic(t *testing.T) {
	const dt = 0.013
	pcgA := rand.NewPCG(42, 7)
	timersA := timer.NewScheduler()
	a := New(DefaultConfig(), timersA, 1, WithRand(rand.New(pcgA)))
	a.Toggle()
	a.SetBattery(18)

	step := func(c *Controller, s *timer.Scheduler) {
		s.Advance(dt)
		c.Update(dt)
	}
	for i := 0; i < 97; i++ {
		step(a, timersA)
	}

	snap := a.Snapshot()
	state, err := pcgA.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal rng: %v", err)
	}

	pcgB := rand.NewPCG(0, 0)
	if err := pcgB.UnmarshalBinary(state); err != nil {
		t.Fatalf("unmarshal rng: %v", err)
	}
	timersB := timer.NewScheduler()
	timersB.Reset(timersA.Now())
	b := New(DefaultConfig(), timersB, 1, WithRand(rand.New(pcgB)))
	b.Restore(snap)

	for i := 0; i < 1500; i++ {
		step(a, timersA)
		step(b, timersB)
		sa, sb := a.Snapshot(), b.Snapshot()
		if sa.Mode != sb.Mode || sa.Flickering != sb.Flickering || sa.Visible != sb.Visible {
			t.Fatalf("tick %d diverged: %+v vs %+v", i, sa, sb)
		}
		if !approx(sa.Battery, sb.Battery) || !approx(sa.Inner, sb.Inner) {
			t.Fatalf("tick %d diverged: %+v vs %+v", i, sa, sb)
		}
	}
	if a.Mode() != Off {
		t.Fatalf("expected battery to run out, mode %s battery %v", a.Mode(), a.Battery())
	}
}
