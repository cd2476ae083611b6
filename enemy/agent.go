// Package enemy implements the enemy behaviour state machine: perception
// reactions, chasing with memory, attacks on cooldown, light stuns and death.
package enemy

import (
	"math/rand/v2"

	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/cue"
	"github.com/milk9111/nightwatch/stimulus"
	"github.com/milk9111/nightwatch/timer"
)

const (
	PurposeStun           timer.Purpose = "enemy.stun"
	PurposeAttackCooldown timer.Purpose = "enemy.attack_cooldown"
	PurposeAttackRecover  timer.Purpose = "enemy.attack_recover"
	PurposeMemory         timer.Purpose = "enemy.memory"
	PurposeDeathCleanup   timer.Purpose = "enemy.death_cleanup"
)

// Config wires an agent to its collaborators. Nav and Timers are required.
type Config struct {
	ID      uint64
	Params  Params
	Nav     Navigator
	Timers  *timer.Scheduler
	Rand    common.Rand
	Cues    CuePlayer
	Hook    StateHook
	Target  Actor
	Removed func(id uint64)
}

type Agent struct {
	id     uint64
	params Params

	health           float64
	state            State
	lastKnown        common.Vec2
	attackOnCooldown bool
	idleCueTimer     float64

	nav     Navigator
	timers  *timer.Scheduler
	rng     common.Rand
	cues    CuePlayer
	hook    StateHook
	target  Actor
	removed func(id uint64)

	observer Observer
}

// New returns an agent at full health in Idle.
func New(cfg Config) *Agent {
	a := &Agent{
		id:      cfg.ID,
		params:  cfg.Params,
		health:  cfg.Params.MaxHealth,
		state:   Idle,
		nav:     cfg.Nav,
		timers:  cfg.Timers,
		rng:     cfg.Rand,
		cues:    cfg.Cues,
		hook:    cfg.Hook,
		target:  cfg.Target,
		removed: cfg.Removed,
	}
	if a.timers == nil {
		a.timers = timer.NewScheduler()
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewPCG(cfg.ID, 0x656e656d))
	}
	if a.nav != nil {
		a.nav.SetMaxSpeed(a.params.DefaultSpeed)
	}
	return a
}

func (a *Agent) owner() timer.Owner { return timer.Owner(a.id) }

// Subscribe registers fn for health, state, death, spotted and attack events.
func (a *Agent) Subscribe(fn func(Event)) func() {
	return a.observer.Subscribe(fn)
}

func (a *Agent) SetTarget(t Actor) { a.target = t }

// SetHook replaces the transition hook; nil removes it.
func (a *Agent) SetHook(h StateHook) { a.hook = h }

// ApplyDamage lowers health, clamped at zero, and kills the agent when it runs
// out. It returns the damage taken; a dead agent takes none. Non-positive
// amounts are ignored.
func (a *Agent) ApplyDamage(amount float64) float64 {
	if a.state == Dead || amount <= 0 {
		return 0
	}
	prev := a.health
	a.health = common.Clamp(a.health-amount, 0, a.params.MaxHealth)
	if a.health != prev {
		a.publish(Event{Kind: HealthChanged, Health: a.health, MaxHealth: a.params.MaxHealth})
	}
	if a.health <= 0 {
		a.die()
	}
	return prev - a.health
}

// Heal raises health up to the maximum. Dead agents cannot be healed and
// non-positive amounts are ignored.
func (a *Agent) Heal(amount float64) {
	if a.state == Dead || amount <= 0 {
		return
	}
	prev := a.health
	a.health = common.Clamp(a.health+amount, 0, a.params.MaxHealth)
	if a.health != prev {
		a.publish(Event{Kind: HealthChanged, Health: a.health, MaxHealth: a.params.MaxHealth})
	}
}

func (a *Agent) die() {
	a.timers.ClearOwner(a.owner())
	a.attackOnCooldown = false
	if a.nav != nil {
		a.nav.Stop()
		a.nav.DisableCollision()
	}
	a.setState(Dead)
	a.publish(Event{Kind: Died, Health: a.health, MaxHealth: a.params.MaxHealth})
	a.playCue(cue.EnemyDeath, 1)
	a.playAnimation(cue.AnimDeath)
	a.timers.Set(a.owner(), PurposeDeathCleanup, a.params.CleanupDelay, a.cleanup)
}

func (a *Agent) cleanup() {
	if a.removed != nil {
		a.removed(a.id)
	}
}

// Stun freezes the agent for duration seconds; a negative duration uses the
// type default. Stunning again restarts the countdown.
func (a *Agent) Stun(duration float64) {
	if a.state == Dead {
		return
	}
	if duration < 0 {
		duration = a.params.StunDuration
	}
	a.setState(Stunned)
	a.playAnimation(cue.AnimStun)
	a.timers.Set(a.owner(), PurposeStun, duration, a.endStun)
}

func (a *Agent) endStun() {
	if a.state == Stunned {
		a.ReturnToDefaultBehavior()
	}
}

// PerformAttack swings at the target. Damage lands only when the target is in
// range. It reports whether an attack started.
func (a *Agent) PerformAttack() bool {
	if a.attackOnCooldown || a.state == Stunned || a.state == Dead {
		return false
	}
	a.setState(Attacking)
	a.playAnimation(cue.AnimAttack)
	a.playCue(cue.EnemyAttack, 1)

	if a.target != nil && a.inAttackRange(a.target) {
		dealt := a.params.AttackDamage
		if d, ok := a.target.(Damageable); ok {
			dealt = d.ApplyDamage(a.params.AttackDamage)
		}
		a.publish(Event{Kind: AttackLanded, Target: a.target, Damage: dealt})
	}

	a.attackOnCooldown = true
	a.timers.Set(a.owner(), PurposeAttackCooldown, a.params.AttackCooldown, a.endCooldown)
	a.timers.Set(a.owner(), PurposeAttackRecover, a.params.AttackRecoverDelay, a.recoverFromAttack)
	return true
}

func (a *Agent) endCooldown() {
	a.attackOnCooldown = false
}

func (a *Agent) recoverFromAttack() {
	if a.state == Attacking {
		a.setState(Chasing)
	}
}

// HearNoise is the perception entry point for sounds. Only noises louder than
// the type's threshold are investigated.
func (a *Agent) HearNoise(source Actor, location common.Vec2, volume float64) {
	if volume > a.params.LoudSoundThreshold {
		a.ReactToSound(source, location)
	}
}

// ReactToSound sends the agent to investigate location. Sounds are ignored
// while chasing, stunned or dead; an attacking agent breaks off to investigate.
func (a *Agent) ReactToSound(_ Actor, location common.Vec2) {
	switch a.state {
	case Chasing, Stunned, Dead:
		return
	}
	a.lastKnown = location
	a.setState(Investigating)
	a.moveTo(location)
}

// OnSight is the perception entry point for sight. Losing sight is detected by
// Update through line-of-sight checks, so seen=false is ignored.
func (a *Agent) OnSight(actor Actor, seen bool) {
	if seen && actor != nil {
		a.ReactToSight(actor)
	}
}

// ReactToSight starts (or continues) a chase of target. While attacking only
// the last known location is refreshed.
func (a *Agent) ReactToSight(target Actor) {
	if target == nil || a.state == Dead || a.state == Stunned {
		return
	}
	a.target = target
	a.lastKnown = target.Location()
	if a.state == Attacking {
		return
	}
	a.setState(Chasing)
	a.timers.Clear(a.owner(), PurposeMemory)
	if a.nav != nil {
		a.nav.MoveToActor(target)
	}
}

// ReactToFlashlight rolls one light exposure at intensity coming from source.
func (a *Agent) ReactToFlashlight(intensity float64, source common.Vec2) stimulus.Result {
	if a.state == Dead {
		return stimulus.Result{}
	}
	res := stimulus.Evaluate(a.lightProfile(), intensity, a.state == Idle, a.rng)
	switch res.Outcome {
	case stimulus.Stun:
		a.Stun(res.StunDuration)
	case stimulus.Investigate:
		here := a.location()
		a.lastKnown = here.Add(source.Sub(here).Normalize().Scale(a.params.InvestigateOffset))
		a.setState(Investigating)
		a.moveTo(a.lastKnown)
	}
	return res
}

func (a *Agent) lightProfile() stimulus.Profile {
	return stimulus.Profile{
		Affected:           a.params.AffectedByFlashlight,
		Sensitivity:        a.params.FlashlightSensitivity,
		ReferenceIntensity: a.params.ReferenceIntensity,
		BaseStun:           a.params.StunDuration,
		NoticeIntensity:    a.params.NoticeIntensity,
		InvestigateChance:  a.params.InvestigateChance,
	}
}

// Update runs the per-tick behaviour of the current state.
func (a *Agent) Update(dt float64) {
	switch a.state {
	case Idle:
		a.updateIdle(dt)
	case Chasing:
		a.updateChase()
	case Investigating:
		a.updateInvestigate()
	}
}

func (a *Agent) updateIdle(dt float64) {
	if a.params.IdleCueInterval <= 0 {
		return
	}
	a.idleCueTimer += dt
	if a.idleCueTimer < a.params.IdleCueInterval {
		return
	}
	a.idleCueTimer = 0
	if a.rng.Float64() < a.params.IdleCueChance {
		a.playCue(cue.EnemyIdle, 1)
	}
}

func (a *Agent) updateChase() {
	if a.target == nil || a.nav == nil {
		return
	}
	if !a.attackOnCooldown && a.inAttackRange(a.target) {
		a.PerformAttack()
		return
	}
	if a.nav.HasLineOfSight(a.target) {
		a.lastKnown = a.target.Location()
		a.timers.Clear(a.owner(), PurposeMemory)
		a.nav.MoveToActor(a.target)
		return
	}
	a.nav.MoveTo(a.lastKnown)
	if !a.timers.Pending(a.owner(), PurposeMemory) {
		a.timers.Set(a.owner(), PurposeMemory, a.params.MemoryDuration, a.forgetTarget)
	}
}

func (a *Agent) forgetTarget() {
	if a.state != Chasing {
		return
	}
	a.setState(Investigating)
	a.moveTo(a.lastKnown)
}

func (a *Agent) updateInvestigate() {
	if a.nav == nil {
		return
	}
	if a.target != nil && a.nav.HasLineOfSight(a.target) {
		a.ReactToSight(a.target)
		return
	}
	if common.Dist(a.nav.Location(), a.lastKnown) <= a.params.ReachTolerance {
		a.ReturnToDefaultBehavior()
	}
}

// ReturnToDefaultBehavior goes back to Idle and sometimes wanders off to a
// random reachable point nearby.
func (a *Agent) ReturnToDefaultBehavior() {
	if a.state == Dead {
		return
	}
	a.setState(Idle)
	if a.nav == nil || a.rng.Float64() >= a.params.WanderChance {
		return
	}
	if p, ok := a.nav.RandomReachablePoint(a.nav.Location(), a.params.WanderRadius); ok {
		a.nav.MoveTo(p)
	}
}

func (a *Agent) setState(next State) {
	if a.state == next || a.state == Dead {
		return
	}
	prev := a.state
	a.state = next

	if prev == Chasing {
		a.timers.Clear(a.owner(), PurposeMemory)
	}

	switch next {
	case Idle:
		a.idleCueTimer = 0
		a.setSpeed(a.params.DefaultSpeed)
		if a.rng.Float64() < a.params.IdleCueChance {
			a.playCue(cue.EnemyIdle, 1)
		}
	case Investigating:
		a.setSpeed(a.params.InvestigateSpeed)
		a.playCue(cue.EnemyInvestigate, 1)
	case Chasing:
		a.setSpeed(a.params.ChaseSpeed)
		if prev == Idle || prev == Investigating {
			a.playCue(cue.EnemySpotted, 1)
		}
	case Stunned:
		if a.nav != nil {
			a.nav.Stop()
		}
		a.playCue(cue.EnemyStun, 1)
	}

	if a.hook != nil {
		for _, name := range a.hook.OnEnter(prev, next) {
			a.playCue(name, 1)
		}
	}

	a.publish(Event{Kind: StateChanged, Previous: prev, State: next})
	if next == Chasing && (prev == Idle || prev == Investigating) {
		a.publish(Event{Kind: Spotted, Previous: prev, State: next, Target: a.target})
	}
}

func (a *Agent) setSpeed(speed float64) {
	if a.nav != nil {
		a.nav.SetMaxSpeed(speed)
	}
}

func (a *Agent) moveTo(loc common.Vec2) {
	if a.nav != nil {
		a.nav.MoveTo(loc)
	}
}

func (a *Agent) location() common.Vec2 {
	if a.nav == nil {
		return common.Vec2{}
	}
	return a.nav.Location()
}

func (a *Agent) inAttackRange(t Actor) bool {
	if a.nav == nil {
		return false
	}
	return a.nav.DistanceTo(t) <= a.params.AttackRange
}

func (a *Agent) publish(evt Event) {
	evt.Agent = a.id
	evt.Type = a.params.Type
	if evt.MaxHealth == 0 {
		evt.Health, evt.MaxHealth = a.health, a.params.MaxHealth
	}
	a.observer.publish(evt)
}

func (a *Agent) playCue(name string, volume float64) {
	if a.cues != nil {
		a.cues.PlayCue(name, volume)
	}
}

func (a *Agent) playAnimation(name string) {
	if a.cues != nil {
		a.cues.PlayAnimation(name)
	}
}

func (a *Agent) ID() uint64 { return a.id }

func (a *Agent) State() State { return a.state }

func (a *Agent) IsDead() bool { return a.state == Dead }

func (a *Agent) Health() float64 { return a.health }

// HealthPercent returns health as a fraction of max in [0, 1].
func (a *Agent) HealthPercent() float64 {
	if a.params.MaxHealth <= 0 {
		return 0
	}
	return a.health / a.params.MaxHealth
}

func (a *Agent) LastKnownLocation() common.Vec2 { return a.lastKnown }

func (a *Agent) AttackOnCooldown() bool { return a.attackOnCooldown }

func (a *Agent) Params() Params { return a.params }

func (a *Agent) Target() Actor { return a.target }
