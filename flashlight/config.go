package flashlight

import (
	"errors"
	"fmt"
)

// ModeSettings holds the per-mode lighting and drain constants. Cone angles are
// half-angles in degrees.
type ModeSettings struct {
	Intensity       float64 `yaml:"intensity" json:"intensity"`
	DrainMultiplier float64 `yaml:"drain_multiplier" json:"drain_multiplier"`
	InnerCone       float64 `yaml:"inner_cone" json:"inner_cone"`
	OuterCone       float64 `yaml:"outer_cone" json:"outer_cone"`
}

type Config struct {
	MaxBattery   float64 `yaml:"max_battery" json:"max_battery"`
	DrainRate    float64 `yaml:"drain_rate" json:"drain_rate"`
	RechargeRate float64 `yaml:"recharge_rate" json:"recharge_rate"`

	Low    ModeSettings `yaml:"low" json:"low"`
	Medium ModeSettings `yaml:"medium" json:"medium"`
	High   ModeSettings `yaml:"high" json:"high"`
	// Strobe.Intensity is ignored; strobe burns at High.Intensity*StrobeBoost.
	Strobe ModeSettings `yaml:"strobe" json:"strobe"`

	StrobeBoost    float64 `yaml:"strobe_boost" json:"strobe_boost"`
	StrobeInterval float64 `yaml:"strobe_interval" json:"strobe_interval"`

	LowBatteryThreshold float64 `yaml:"low_battery_threshold" json:"low_battery_threshold"`
	DimmingThreshold    float64 `yaml:"dimming_threshold" json:"dimming_threshold"`
	MinDimFactor        float64 `yaml:"min_dim_factor" json:"min_dim_factor"`

	FlickerFrequency        float64 `yaml:"flicker_frequency" json:"flicker_frequency"`
	FlickerMaxChance        float64 `yaml:"flicker_max_chance" json:"flicker_max_chance"`
	FlickerFactor           float64 `yaml:"flicker_factor" json:"flicker_factor"`
	FlickerDuration         float64 `yaml:"flicker_duration" json:"flicker_duration"`
	CriticalBattery         float64 `yaml:"critical_battery" json:"critical_battery"`
	CriticalFlickerFactor   float64 `yaml:"critical_flicker_factor" json:"critical_flicker_factor"`
	CriticalFlickerDuration float64 `yaml:"critical_flicker_duration" json:"critical_flicker_duration"`

	// Range is how far the beam reaches when deciding which enemies it lights.
	Range float64 `yaml:"range" json:"range"`
}

func DefaultConfig() Config {
	return Config{
		MaxBattery:   100,
		DrainRate:    1,
		RechargeRate: 0.5,

		Low:    ModeSettings{Intensity: 2000, DrainMultiplier: 0.5, InnerCone: 25, OuterCone: 40},
		Medium: ModeSettings{Intensity: 4000, DrainMultiplier: 1, InnerCone: 22.5, OuterCone: 45},
		High:   ModeSettings{Intensity: 8000, DrainMultiplier: 2, InnerCone: 30, OuterCone: 50},
		Strobe: ModeSettings{DrainMultiplier: 1.5, InnerCone: 30, OuterCone: 45},

		StrobeBoost:    1.2,
		StrobeInterval: 0.2,

		LowBatteryThreshold: 20,
		DimmingThreshold:    30,
		MinDimFactor:        0.1,

		FlickerFrequency:        3,
		FlickerMaxChance:        0.9,
		FlickerFactor:           0.5,
		FlickerDuration:         0.1,
		CriticalBattery:         5,
		CriticalFlickerFactor:   0.2,
		CriticalFlickerDuration: 0.2,

		Range: 1500,
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.MaxBattery <= 0 {
		errs = append(errs, fmt.Errorf("max_battery must be positive, got %v", c.MaxBattery))
	}
	if c.DrainRate < 0 || c.RechargeRate < 0 {
		errs = append(errs, errors.New("drain_rate and recharge_rate must not be negative"))
	}
	for _, m := range []Mode{Low, Medium, High, Strobe} {
		s := c.Settings(m)
		if s.DrainMultiplier < 0 || s.Intensity < 0 {
			errs = append(errs, fmt.Errorf("%s: intensity and drain_multiplier must not be negative", m))
		}
		if s.InnerCone > s.OuterCone {
			errs = append(errs, fmt.Errorf("%s: inner_cone %v wider than outer_cone %v", m, s.InnerCone, s.OuterCone))
		}
	}
	if c.StrobeInterval <= 0 {
		errs = append(errs, fmt.Errorf("strobe_interval must be positive, got %v", c.StrobeInterval))
	}
	if c.FlickerMaxChance < 0 || c.FlickerMaxChance >= 1 {
		errs = append(errs, fmt.Errorf("flicker_max_chance must be in [0, 1), got %v", c.FlickerMaxChance))
	}
	if c.MinDimFactor < 0 || c.MinDimFactor > 1 {
		errs = append(errs, fmt.Errorf("min_dim_factor must be in [0, 1], got %v", c.MinDimFactor))
	}
	if len(errs) > 0 {
		return fmt.Errorf("flashlight: invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c Config) Settings(m Mode) ModeSettings {
	switch m {
	case Low:
		return c.Low
	case Medium:
		return c.Medium
	case High:
		return c.High
	case Strobe:
		return c.Strobe
	}
	return ModeSettings{}
}
