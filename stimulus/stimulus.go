// Package stimulus turns flashlight exposure into an enemy reaction.
package stimulus

import "github.com/milk9111/nightwatch/common"

// MaxStunChance caps the per-exposure stun probability so a stun is never
// certain.
const MaxStunChance = 0.75

// MinStunDuration is the shortest stun a successful roll produces.
const MinStunDuration = 1.0

type Outcome int

const (
	None Outcome = iota
	Stun
	Investigate
)

func (o Outcome) String() string {
	switch o {
	case Stun:
		return "stun"
	case Investigate:
		return "investigate"
	}
	return "none"
}

// Profile is how one enemy type responds to light.
type Profile struct {
	Affected           bool
	Sensitivity        float64
	ReferenceIntensity float64
	BaseStun           float64
	NoticeIntensity    float64
	InvestigateChance  float64
}

type Result struct {
	Outcome      Outcome
	Chance       float64
	StunDuration float64
}

// StunChance is clamp(intensity*sensitivity/reference, 0, MaxStunChance).
func StunChance(intensity, sensitivity, reference float64) float64 {
	if reference <= 0 {
		return 0
	}
	return common.Clamp(intensity*sensitivity/reference, 0, MaxStunChance)
}

// StunDuration scales base by intensity/reference, floored at MinStunDuration
// and capped at base.
func StunDuration(base, intensity, reference float64) float64 {
	if reference <= 0 {
		return MinStunDuration
	}
	d := base * intensity / reference
	if d < MinStunDuration {
		return MinStunDuration
	}
	if d > base {
		return base
	}
	return d
}

// Evaluate rolls one exposure. The outcomes are disjoint: the stun roll comes
// first, and only a failed stun on an idle enemy under light brighter than the
// notice threshold may roll for investigation. Unaffected profiles never roll.
func Evaluate(p Profile, intensity float64, idle bool, rng common.Rand) Result {
	if !p.Affected || intensity <= 0 {
		return Result{Outcome: None}
	}
	chance := StunChance(intensity, p.Sensitivity, p.ReferenceIntensity)
	if rng.Float64() < chance {
		return Result{
			Outcome:      Stun,
			Chance:       chance,
			StunDuration: StunDuration(p.BaseStun, intensity, p.ReferenceIntensity),
		}
	}
	if idle && intensity > p.NoticeIntensity && rng.Float64() < p.InvestigateChance {
		return Result{Outcome: Investigate, Chance: chance}
	}
	return Result{Outcome: None, Chance: chance}
}
