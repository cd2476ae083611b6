package flashlight

import "github.com/milk9111/nightwatch/common"

// Snapshot is the serialisable state of a Controller. FlickerRestore holds the
// seconds left on a pending flicker restore, or a negative value when none is
// pending.
type Snapshot struct {
	Mode           Mode    `json:"mode"`
	LastMode       Mode    `json:"last_mode"`
	Battery        float64 `json:"battery"`
	Held           bool    `json:"held"`
	Inner          float64 `json:"inner"`
	Outer          float64 `json:"outer"`
	Visible        bool    `json:"visible"`
	FlickerTimer   float64 `json:"flicker_timer"`
	Flickering     bool    `json:"flickering"`
	StrobeTimer    float64 `json:"strobe_timer"`
	FlickerRestore float64 `json:"flicker_restore"`
}

func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Mode:           c.mode,
		LastMode:       c.lastMode,
		Battery:        c.battery,
		Held:           c.held,
		Inner:          c.inner,
		Outer:          c.outer,
		Visible:        c.visible,
		FlickerTimer:   c.flickerTimer,
		Flickering:     c.flickering,
		StrobeTimer:    c.strobeTimer,
		FlickerRestore: -1,
	}
	if rem, ok := c.timers.Remaining(c.owner, PurposeFlickerRestore); ok {
		s.FlickerRestore = rem
	}
	return s
}

// Restore overwrites the controller state and re-arms a pending flicker restore.
// No mode-change notification is published.
func (c *Controller) Restore(s Snapshot) {
	c.mode = s.Mode
	c.lastMode = s.LastMode
	c.battery = common.Clamp(s.Battery, 0, c.cfg.MaxBattery)
	c.held = s.Held
	c.inner = s.Inner
	c.outer = s.Outer
	c.visible = s.Visible
	c.flickerTimer = s.FlickerTimer
	c.flickering = s.Flickering
	c.strobeTimer = s.StrobeTimer

	c.innerCone, c.outerCone = 0, 0
	if c.mode != Off {
		st := c.cfg.Settings(c.mode)
		c.innerCone, c.outerCone = st.InnerCone, st.OuterCone
	}

	c.timers.Clear(c.owner, PurposeFlickerRestore)
	if s.FlickerRestore >= 0 {
		c.timers.Set(c.owner, PurposeFlickerRestore, s.FlickerRestore, c.restoreFlicker)
	}
}

// Retune swaps the constants in place, keeping mode and battery (clamped to the
// new capacity).
func (c *Controller) Retune(cfg Config) {
	c.cfg = cfg
	c.battery = common.Clamp(c.battery, 0, cfg.MaxBattery)
	if c.mode == Off {
		return
	}
	st := cfg.Settings(c.mode)
	c.innerCone, c.outerCone = st.InnerCone, st.OuterCone
	if !c.flickering {
		c.applyTarget()
	}
}

// SetBattery is a debugging hook that sets the charge directly.
func (c *Controller) SetBattery(v float64) {
	c.battery = common.Clamp(v, 0, c.cfg.MaxBattery)
	if c.mode != Off && !c.flickering {
		c.applyTarget()
	}
}
