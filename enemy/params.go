package enemy

import (
	"errors"
	"fmt"
)

// Params are the constants of one enemy type. Distances are world units,
// durations seconds, angles degrees.
type Params struct {
	Type string

	MaxHealth float64

	SightRadius    float64
	SightAngle     float64
	HearingRange   float64
	MemoryDuration float64

	DefaultSpeed     float64
	InvestigateSpeed float64
	ChaseSpeed       float64

	AttackRange        float64
	AttackDamage       float64
	AttackCooldown     float64
	AttackRecoverDelay float64

	StunDuration float64
	CleanupDelay float64

	AffectedByFlashlight  bool
	FlashlightSensitivity float64
	ReferenceIntensity    float64
	NoticeIntensity       float64
	InvestigateChance     float64
	InvestigateOffset     float64

	LoudSoundThreshold float64
	WanderRadius       float64
	WanderChance       float64
	ReachTolerance     float64

	IdleCueInterval float64
	IdleCueChance   float64
}

func DefaultParams() Params {
	return Params{
		Type:      "stalker",
		MaxHealth: 100,

		SightRadius:    1000,
		SightAngle:     90,
		HearingRange:   800,
		MemoryDuration: 7,

		DefaultSpeed:     200,
		InvestigateSpeed: 300,
		ChaseSpeed:       500,

		AttackRange:        150,
		AttackDamage:       20,
		AttackCooldown:     2,
		AttackRecoverDelay: 0.5,

		StunDuration: 3,
		CleanupDelay: 3,

		AffectedByFlashlight:  true,
		FlashlightSensitivity: 1,
		ReferenceIntensity:    8000,
		NoticeIntensity:       4000,
		InvestigateChance:     0.5,
		InvestigateOffset:     300,

		LoudSoundThreshold: 0.5,
		WanderRadius:       500,
		WanderChance:       0.5,
		ReachTolerance:     100,

		IdleCueInterval: 8,
		IdleCueChance:   0.5,
	}
}

func (p Params) Validate() error {
	var errs []error
	if p.MaxHealth <= 0 {
		errs = append(errs, fmt.Errorf("max_health must be positive, got %v", p.MaxHealth))
	}
	if p.ReferenceIntensity <= 0 {
		errs = append(errs, fmt.Errorf("reference_intensity must be positive, got %v", p.ReferenceIntensity))
	}
	if p.StunDuration < 1 {
		errs = append(errs, fmt.Errorf("stun_duration must be at least 1s, got %v", p.StunDuration))
	}
	if p.FlashlightSensitivity < 0 {
		errs = append(errs, fmt.Errorf("flashlight_sensitivity must not be negative, got %v", p.FlashlightSensitivity))
	}
	if p.AttackCooldown < 0 || p.AttackRecoverDelay < 0 || p.MemoryDuration < 0 || p.CleanupDelay < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if p.SightAngle < 0 || p.SightAngle > 360 {
		errs = append(errs, fmt.Errorf("sight_angle must be within [0, 360], got %v", p.SightAngle))
	}
	if len(errs) > 0 {
		return fmt.Errorf("enemy %q: %w", p.Type, errors.Join(errs...))
	}
	return nil
}
