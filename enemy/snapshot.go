package enemy

import (
	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/timer"
)

// Snapshot is the serialisable state of an Agent. Timers maps each pending
// timer purpose to the seconds it had left.
type Snapshot struct {
	Type             string                    `json:"type"`
	Health           float64                   `json:"health"`
	State            State                     `json:"state"`
	LastKnown        common.Vec2               `json:"last_known"`
	AttackOnCooldown bool                      `json:"attack_on_cooldown"`
	IdleCueTimer     float64                   `json:"idle_cue_timer"`
	Timers           map[timer.Purpose]float64 `json:"timers,omitempty"`
}

func (a *Agent) Snapshot() Snapshot {
	return Snapshot{
		Type:             a.params.Type,
		Health:           a.health,
		State:            a.state,
		LastKnown:        a.lastKnown,
		AttackOnCooldown: a.attackOnCooldown,
		IdleCueTimer:     a.idleCueTimer,
		Timers:           a.timers.PendingFor(a.owner()),
	}
}

// Restore overwrites the agent state and re-arms its timers without running any
// state entry actions or publishing events.
func (a *Agent) Restore(s Snapshot) {
	a.health = common.Clamp(s.Health, 0, a.params.MaxHealth)
	a.state = s.State
	a.lastKnown = s.LastKnown
	a.attackOnCooldown = s.AttackOnCooldown
	a.idleCueTimer = s.IdleCueTimer

	a.applyStateSpeed()
	if a.nav != nil {
		switch a.state {
		case Stunned:
			a.nav.Stop()
		case Dead:
			a.nav.Stop()
			a.nav.DisableCollision()
		}
	}

	a.timers.ClearOwner(a.owner())
	for _, p := range timer.Purposes(s.Timers) {
		if fn := a.callbackFor(p); fn != nil {
			a.timers.Set(a.owner(), p, s.Timers[p], fn)
		}
	}
}

// Retune swaps in new type constants, keeping the current state. Health is
// re-clamped to the new maximum.
func (a *Agent) Retune(p Params) {
	a.params = p
	a.health = common.Clamp(a.health, 0, p.MaxHealth)
	a.applyStateSpeed()
}

func (a *Agent) applyStateSpeed() {
	switch a.state {
	case Idle:
		a.setSpeed(a.params.DefaultSpeed)
	case Investigating:
		a.setSpeed(a.params.InvestigateSpeed)
	case Chasing, Attacking:
		a.setSpeed(a.params.ChaseSpeed)
	}
}

func (a *Agent) callbackFor(p timer.Purpose) func() {
	switch p {
	case PurposeStun:
		return a.endStun
	case PurposeAttackCooldown:
		return a.endCooldown
	case PurposeAttackRecover:
		return a.recoverFromAttack
	case PurposeMemory:
		return a.forgetTarget
	case PurposeDeathCleanup:
		return a.cleanup
	}
	return nil
}
