package player

import "github.com/milk9111/nightwatch/common"

type HealthConfig struct {
	Max           float64 `yaml:"max" json:"max"`
	RecoveryRate  float64 `yaml:"recovery_rate" json:"recovery_rate"`
	RecoveryDelay float64 `yaml:"recovery_delay" json:"recovery_delay"`
}

func DefaultHealthConfig() HealthConfig {
	return HealthConfig{Max: 100, RecoveryRate: 5, RecoveryDelay: 3}
}

// Health regenerates once RecoveryDelay seconds have passed without damage.
// It does not regenerate from zero.
type Health struct {
	cfg       HealthConfig
	current   float64
	sinceHurt float64
	onDamaged func(amount, current float64)
}

func NewHealth(cfg HealthConfig) *Health {
	return &Health{cfg: cfg, current: cfg.Max, sinceHurt: cfg.RecoveryDelay}
}

// OnDamaged sets the callback run after damage lands.
func (h *Health) OnDamaged(fn func(amount, current float64)) {
	h.onDamaged = fn
}

// ApplyDamage lowers health, clamped at zero, and returns the damage taken.
func (h *Health) ApplyDamage(amount float64) float64 {
	if amount <= 0 || h.current <= 0 {
		return 0
	}
	prev := h.current
	h.current = common.Clamp(h.current-amount, 0, h.cfg.Max)
	h.sinceHurt = 0
	taken := prev - h.current
	if h.onDamaged != nil {
		h.onDamaged(taken, h.current)
	}
	return taken
}

func (h *Health) Update(dt float64) {
	if h.current <= 0 || h.current >= h.cfg.Max {
		return
	}
	h.sinceHurt += dt
	if h.sinceHurt < h.cfg.RecoveryDelay {
		return
	}
	h.current = common.Clamp(h.current+h.cfg.RecoveryRate*dt, 0, h.cfg.Max)
}

func (h *Health) Current() float64 { return h.current }

func (h *Health) Dead() bool { return h.current <= 0 }

func (h *Health) Percent() float64 {
	if h.cfg.Max <= 0 {
		return 0
	}
	return h.current / h.cfg.Max
}

type HealthSnapshot struct {
	Current   float64 `json:"current"`
	SinceHurt float64 `json:"since_hurt"`
}

func (h *Health) Snapshot() HealthSnapshot {
	return HealthSnapshot{Current: h.current, SinceHurt: h.sinceHurt}
}

func (h *Health) Restore(s HealthSnapshot) {
	h.current = common.Clamp(s.Current, 0, h.cfg.Max)
	h.sinceHurt = s.SinceHurt
}
