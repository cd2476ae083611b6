// Package player holds the player's stamina and health.
package player

import "github.com/milk9111/nightwatch/common"

type StaminaConfig struct {
	Max               float64 `yaml:"max" json:"max"`
	ConsumptionRate   float64 `yaml:"consumption_rate" json:"consumption_rate"`
	RecoveryRate      float64 `yaml:"recovery_rate" json:"recovery_rate"`
	RegenDelay        float64 `yaml:"regen_delay" json:"regen_delay"`
	RecoveryBuffer    float64 `yaml:"recovery_buffer" json:"recovery_buffer"`
	ConsumptionBuffer float64 `yaml:"consumption_buffer" json:"consumption_buffer"`
}

func DefaultStaminaConfig() StaminaConfig {
	return StaminaConfig{
		Max:               100,
		ConsumptionRate:   10,
		RecoveryRate:      5,
		RegenDelay:        2,
		RecoveryBuffer:    0.01,
		ConsumptionBuffer: 0.3,
	}
}

// Stamina drains while sprinting and recovers otherwise. An exhausted player
// waits RegenDelay seconds before recovery starts.
type Stamina struct {
	cfg       StaminaConfig
	current   float64
	sprinting bool
	regen     float64
}

func NewStamina(cfg StaminaConfig) *Stamina {
	return &Stamina{cfg: cfg, current: cfg.Max}
}

// StartSprint begins sprinting if stamina is above both buffers.
func (s *Stamina) StartSprint() bool {
	pct := s.Percent()
	if pct <= s.cfg.RecoveryBuffer || pct <= s.cfg.ConsumptionBuffer {
		return false
	}
	s.sprinting = true
	s.regen = 0
	return true
}

func (s *Stamina) StopSprint() {
	s.sprinting = false
	s.regen = 0
}

// Update advances stamina by dt. It reports whether the sprint ran out.
func (s *Stamina) Update(dt float64) (exhausted bool) {
	if s.sprinting {
		s.current -= s.cfg.ConsumptionRate * dt
		if s.current <= 0 {
			s.current = 0
			s.sprinting = false
			return true
		}
		return false
	}
	if s.regen < s.cfg.RegenDelay && s.Percent() < s.cfg.RecoveryBuffer {
		s.regen += dt
		return false
	}
	s.current = common.Clamp(s.current+s.cfg.RecoveryRate*dt, 0, s.cfg.Max)
	return false
}

func (s *Stamina) Sprinting() bool { return s.sprinting }

func (s *Stamina) Current() float64 { return s.current }

func (s *Stamina) Percent() float64 {
	if s.cfg.Max <= 0 {
		return 0
	}
	return s.current / s.cfg.Max
}

type StaminaSnapshot struct {
	Current   float64 `json:"current"`
	Sprinting bool    `json:"sprinting"`
	Regen     float64 `json:"regen"`
}

func (s *Stamina) Snapshot() StaminaSnapshot {
	return StaminaSnapshot{Current: s.current, Sprinting: s.sprinting, Regen: s.regen}
}

func (s *Stamina) Restore(snap StaminaSnapshot) {
	s.current = common.Clamp(snap.Current, 0, s.cfg.Max)
	s.sprinting = snap.Sprinting
	s.regen = snap.Regen
}
