// Package flashlight runs the player's light: modes, battery economy, dimming,
// low-battery flicker and strobe.
package flashlight

import (
	"math"
	"math/rand/v2"

	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/cue"
	"github.com/milk9111/nightwatch/timer"
)

const PurposeFlickerRestore timer.Purpose = "flashlight.flicker_restore"

const (
	toggleVolume = 1.0
	modeVolume   = 0.5
)

type CuePlayer interface {
	PlayCue(name string, volume float64)
}

// ModeChange is published whenever the mode actually changes.
type ModeChange struct {
	From     Mode
	To       Mode
	Depleted bool
}

type Controller struct {
	cfg Config

	mode     Mode
	lastMode Mode
	battery  float64
	held     bool

	inner     float64
	outer     float64
	innerCone float64
	outerCone float64
	visible   bool

	flickerTimer float64
	flickering   bool
	strobeTimer  float64

	owner  timer.Owner
	timers *timer.Scheduler
	rng    common.Rand
	cues   CuePlayer

	listeners []func(ModeChange)
}

type Option func(*Controller)

func WithCues(p CuePlayer) Option {
	return func(c *Controller) { c.cues = p }
}

func WithRand(r common.Rand) Option {
	return func(c *Controller) { c.rng = r }
}

// New creates a controller with a full battery, switched off.
func New(cfg Config, timers *timer.Scheduler, owner timer.Owner, opts ...Option) *Controller {
	c := &Controller{
		cfg:     cfg,
		mode:    Off,
		battery: cfg.MaxBattery,
		owner:   owner,
		timers:  timers,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timers == nil {
		c.timers = timer.NewScheduler()
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(uint64(owner), 0x6e696768))
	}
	return c
}

// OnModeChange registers fn for mode changes and returns a function that
// removes it.
func (c *Controller) OnModeChange(fn func(ModeChange)) func() {
	if fn == nil {
		return func() {}
	}
	c.listeners = append(c.listeners, fn)
	idx := len(c.listeners) - 1
	return func() {
		if idx < len(c.listeners) {
			c.listeners[idx] = nil
		}
	}
}

// Toggle switches the light on to the last used mode (Medium the first time) or
// off. Turning on with an empty battery does nothing and returns false.
func (c *Controller) Toggle() bool {
	if c.mode == Off {
		if c.battery <= 0 {
			return false
		}
		next := c.lastMode
		if next == Off {
			next = Medium
		}
		c.setMode(next, false)
		c.held = true
	} else {
		c.lastMode = c.mode
		c.setMode(Off, false)
		c.held = false
	}
	c.playCue(cue.FlashlightToggle, toggleVolume)
	return true
}

// CycleMode advances Low, Medium, High, Strobe and back to Low. It only works
// while the light is on with battery left.
func (c *Controller) CycleMode() bool {
	if !c.held || c.mode == Off || c.battery <= 0 {
		return false
	}
	c.setMode(c.mode.Next(), false)
	c.playCue(cue.FlashlightMode, modeVolume)
	return true
}

// Update advances the battery, flicker, dimming and strobe by dt seconds.
func (c *Controller) Update(dt float64) {
	if dt < 0 {
		dt = 0
	}
	if c.mode == Off {
		if c.battery < c.cfg.MaxBattery {
			c.battery = math.Min(c.cfg.MaxBattery, c.battery+c.cfg.RechargeRate*dt)
		}
		return
	}

	c.battery = math.Max(0, c.battery-c.cfg.DrainRate*c.cfg.Settings(c.mode).DrainMultiplier*dt)

	if c.battery > 0 && c.battery <= c.cfg.LowBatteryThreshold {
		c.updateFlicker(dt)
	}
	if c.mode != Strobe && !c.flickering {
		c.applyTarget()
	}
	if c.mode == Strobe {
		c.strobeTimer += dt
		if c.strobeTimer >= c.cfg.StrobeInterval {
			c.strobeTimer = 0
			c.visible = !c.visible
		}
	}

	if c.battery <= 0 {
		c.battery = 0
		c.lastMode = c.mode
		c.held = false
		c.setMode(Off, true)
	}
}

// FlickerChance is the per-period chance that the beam stutters at the current
// battery level.
func (c *Controller) FlickerChance() float64 {
	if c.battery <= c.cfg.CriticalBattery {
		return c.cfg.FlickerMaxChance
	}
	if c.cfg.LowBatteryThreshold <= 0 {
		return 0
	}
	return common.Clamp(1-c.battery/c.cfg.LowBatteryThreshold, 0, c.cfg.FlickerMaxChance)
}

func (c *Controller) updateFlicker(dt float64) {
	if c.cfg.FlickerFrequency <= 0 {
		return
	}
	c.flickerTimer += dt
	if c.flickerTimer < 1/c.cfg.FlickerFrequency {
		return
	}
	c.flickerTimer = 0
	if c.flickering || c.rng.Float64() >= c.FlickerChance() {
		return
	}

	factor, duration := c.cfg.FlickerFactor, c.cfg.FlickerDuration
	if c.battery < c.cfg.CriticalBattery {
		factor, duration = c.cfg.CriticalFlickerFactor, c.cfg.CriticalFlickerDuration
	}
	c.flickering = true
	c.inner = c.TargetIntensity() * factor
	c.outer = c.inner / 2
	c.timers.Set(c.owner, PurposeFlickerRestore, duration, c.restoreFlicker)
}

func (c *Controller) restoreFlicker() {
	c.flickering = false
	if c.mode != Off {
		c.applyTarget()
	}
}

// TargetIntensity is the inner-lobe intensity of the current mode after
// dimming. Strobe does not dim.
func (c *Controller) TargetIntensity() float64 {
	switch c.mode {
	case Off:
		return 0
	case Strobe:
		return c.cfg.High.Intensity * c.cfg.StrobeBoost
	}
	base := c.cfg.Settings(c.mode).Intensity
	if c.cfg.DimmingThreshold > 0 && c.battery < c.cfg.DimmingThreshold {
		base *= math.Max(c.cfg.MinDimFactor, c.battery/c.cfg.DimmingThreshold)
	}
	return base
}

func (c *Controller) applyTarget() {
	c.inner = c.TargetIntensity()
	c.outer = c.inner / 2
}

func (c *Controller) setMode(m Mode, depleted bool) {
	prev := c.mode
	c.mode = m
	c.strobeTimer = 0

	if m == Off {
		c.visible = false
		c.flickering = false
		c.inner, c.outer = 0, 0
		c.innerCone, c.outerCone = 0, 0
		c.timers.Clear(c.owner, PurposeFlickerRestore)
	} else {
		s := c.cfg.Settings(m)
		c.visible = true
		c.innerCone, c.outerCone = s.InnerCone, s.OuterCone
		if !c.flickering {
			c.applyTarget()
		}
	}

	if prev == m {
		return
	}
	change := ModeChange{From: prev, To: m, Depleted: depleted}
	for _, fn := range c.listeners {
		if fn != nil {
			fn(change)
		}
	}
}

func (c *Controller) playCue(name string, volume float64) {
	if c.cues != nil {
		c.cues.PlayCue(name, volume)
	}
}

func (c *Controller) Mode() Mode { return c.mode }

func (c *Controller) LastMode() Mode { return c.lastMode }

func (c *Controller) IsHeld() bool { return c.held }

func (c *Controller) Battery() float64 { return c.battery }

// BatteryPercentage returns the battery level in [0, 1].
func (c *Controller) BatteryPercentage() float64 {
	if c.cfg.MaxBattery <= 0 {
		return 0
	}
	return c.battery / c.cfg.MaxBattery
}

// Intensity is the emitted inner-lobe intensity: zero while off or during the
// dark half of a strobe.
func (c *Controller) Intensity() float64 {
	if c.mode == Off || !c.visible {
		return 0
	}
	return c.inner
}

func (c *Controller) OuterIntensity() float64 {
	if c.mode == Off || !c.visible {
		return 0
	}
	return c.outer
}

func (c *Controller) Visible() bool { return c.mode != Off && c.visible }

func (c *Controller) Flickering() bool { return c.flickering }

// Cones returns the inner and outer half-angles in degrees.
func (c *Controller) Cones() (inner, outer float64) { return c.innerCone, c.outerCone }

func (c *Controller) Config() Config { return c.cfg }
