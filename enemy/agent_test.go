package enemy

import (
	"math"
	"testing"

	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/cue"
	"github.com/milk9111/nightwatch/timer"
)

type harness struct {
	agent   *Agent
	nav     *fakeNav
	timers  *timer.Scheduler
	cues    *fakeCues
	events  []Event
	removed []uint64
	player  *fakeActor
}

func newHarness(r common.Rand, tweak func(*Params)) *harness {
	p := DefaultParams()
	if tweak != nil {
		tweak(&p)
	}
	h := &harness{
		nav:    newFakeNav(),
		timers: timer.NewScheduler(),
		cues:   &fakeCues{},
		player: &fakeActor{id: 99, pos: common.V(5000, 0)},
	}
	h.agent = New(Config{
		ID:      1,
		Params:  p,
		Nav:     h.nav,
		Timers:  h.timers,
		Rand:    r,
		Cues:    h.cues,
		Target:  h.player,
		Removed: func(id uint64) { h.removed = append(h.removed, id) },
	})
	h.agent.Subscribe(func(e Event) { h.events = append(h.events, e) })
	return h
}

func (h *harness) count(kind EventKind) int {
	n := 0
	for _, e := range h.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// step advances timers then the agent, the same order the simulation uses.
func (h *harness) step(dt float64) {
	h.timers.Advance(dt)
	h.agent.Update(dt)
}

func TestNewAgentStartsIdleAtFullHealth(t *testing.T) {
	h := newHarness(fixedRand(0.9), nil)
	if h.agent.State() != Idle || h.agent.HealthPercent() != 1 || h.agent.IsDead() {
		t.Fatalf("unexpected initial state %s health %v", h.agent.State(), h.agent.HealthPercent())
	}
	if h.nav.speed != 200 {
		t.Fatalf("expected default speed 200, got %v", h.nav.speed)
	}
}

func TestOverkillDiesExactlyOnce(t *testing.T) {
	h := newHarness(fixedRand(0.9), nil)

	if got := h.agent.ApplyDamage(150); got != 100 {
		t.Fatalf("damage taken = %v, want 100", got)
	}
	if !h.agent.IsDead() || h.agent.Health() != 0 || h.agent.State() != Dead {
		t.Fatalf("expected dead at zero health, got %s %v", h.agent.State(), h.agent.Health())
	}
	if h.agent.ApplyDamage(10) != 0 {
		t.Fatalf("dead agents take no damage")
	}
	if n := h.count(Died); n != 1 {
		t.Fatalf("death notifications = %d, want 1", n)
	}
	if n := h.count(HealthChanged); n != 1 {
		t.Fatalf("health notifications = %d, want 1", n)
	}
	if h.nav.collision {
		t.Fatalf("collision should be disabled on death")
	}
	if h.cues.count(cue.EnemyDeath) != 1 || h.cues.count(cue.AnimDeath) != 1 {
		t.Fatalf("expected death cue and animation, got %+v", h.cues.calls)
	}
}

func TestStunDuration(t *testing.T) {
	cases := []struct {
		name     string
		duration float64
		after    float64
		want     State
	}{
		{"negative_uses_type_default", -1, 2.9, Stunned},
		{"type_default_expires", -1, 3.1, Idle},
		{"zero_is_instant", 0, 0.01, Idle},
		{"explicit", 1, 0.9, Stunned},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(fixedRand(0.9), nil)
			h.agent.Stun(tc.duration)
			if h.agent.State() != Stunned {
				t.Fatalf("state after Stun = %s", h.agent.State())
			}
			h.step(tc.after)
			if h.agent.State() != tc.want {
				t.Fatalf("state = %s, want %s", h.agent.State(), tc.want)
			}
		})
	}
}

func TestDeadIsTerminal(t *testing.T) {
	h := newHarness(fixedRand(0), nil)
	h.agent.ApplyDamage(100)

	h.agent.Stun(2)
	h.agent.ReactToSight(h.player)
	h.agent.ReactToSound(h.player, common.V(10, 10))
	h.agent.ReactToFlashlight(8000, common.V(0, 0))
	h.agent.Heal(50)
	if h.agent.PerformAttack() {
		t.Fatalf("dead agent attacked")
	}
	if h.agent.State() != Dead || h.agent.Health() != 0 {
		t.Fatalf("dead agent changed: %s %v", h.agent.State(), h.agent.Health())
	}

	h.step(2.9)
	if len(h.removed) != 0 {
		t.Fatalf("removed too early")
	}
	h.step(0.2)
	if len(h.removed) != 1 || h.removed[0] != 1 {
		t.Fatalf("expected removal request after cleanup delay, got %v", h.removed)
	}
}

func TestHealthStaysClamped(t *testing.T) {
	h := newHarness(fixedRand(0.9), nil)
	h.agent.Heal(50)
	if n := h.count(HealthChanged); n != 0 {
		t.Fatalf("healing at full health must not notify, got %d", n)
	}
	h.agent.ApplyDamage(30)
	h.agent.Heal(500)
	if h.agent.Health() != 100 {
		t.Fatalf("health = %v, want 100", h.agent.Health())
	}
}

func TestNonPositiveHealthChangesIgnored(t *testing.T) {
	cases := []struct {
		name   string
		apply  func(a *Agent) float64
		health float64
		taken  float64
	}{
		{"negative_damage", func(a *Agent) float64 { return a.ApplyDamage(-20) }, 60, 0},
		{"zero_damage", func(a *Agent) float64 { return a.ApplyDamage(0) }, 60, 0},
		{"negative_heal", func(a *Agent) float64 { a.Heal(-500); return 0 }, 60, 0},
		{"zero_heal", func(a *Agent) float64 { a.Heal(0); return 0 }, 60, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(fixedRand(0.9), nil)
			h.agent.ApplyDamage(40)
			before := h.count(HealthChanged)

			if taken := tc.apply(h.agent); taken != tc.taken {
				t.Fatalf("taken = %v, want %v", taken, tc.taken)
			}
			if h.agent.Health() != tc.health {
				t.Fatalf("health = %v, want %v", h.agent.Health(), tc.health)
			}
			if h.agent.IsDead() || h.agent.State() != Idle || h.count(Died) != 0 {
				t.Fatalf("state %s dead=%v died=%d", h.agent.State(), h.agent.IsDead(), h.count(Died))
			}
			if n := h.count(HealthChanged); n != before {
				t.Fatalf("health notifications %d -> %d", before, n)
			}
		})
	}
}

func TestSightStartsChaseAndSpotsOnce(t *testing.T) {
	h := newHarness(fixedRand(0.9), nil)
	h.player.pos = common.V(600, 0)

	h.agent.ReactToSight(h.player)
	h.agent.ReactToSight(h.player)

	if h.agent.State() != Chasing {
		t.Fatalf("expected chasing, got %s", h.agent.State())
	}
	if n := h.count(Spotted); n != 1 {
		t.Fatalf("spotted notifications = %d, want 1", n)
	}
	if n := h.count(StateChanged); n != 1 {
		t.Fatalf("state notifications = %d, want 1", n)
	}
	if h.nav.speed != 500 || h.nav.following != Actor(h.player) {
		t.Fatalf("expected chase at 500 after the player, speed %v", h.nav.speed)
	}
	if h.agent.LastKnownLocation() != h.player.pos {
		t.Fatalf("last known = %+v", h.agent.LastKnownLocation())
	}
}

func TestLosingSightFallsBackToInvestigating(t *testing.T) {
	h := newHarness(fixedRand(0.9), nil)
	h.player.pos = common.V(600, 0)
	h.agent.ReactToSight(h.player)

	h.player.pos = common.V(900, 300)
	h.nav.sight = false
	h.step(0.1)
	rem, ok := h.timers.Remaining(1, PurposeMemory)
	if !ok || math.Abs(rem-7) > 1e-9 {
		t.Fatalf("memory timer = %v ok=%v", rem, ok)
	}
	if h.nav.goal == nil || *h.nav.goal != common.V(600, 0) {
		t.Fatalf("expected to head for the last known location, got %+v", h.nav.goal)
	}

	for i := 0; i < 60; i++ {
		h.step(0.1)
	}
	rem, _ = h.timers.Remaining(1, PurposeMemory)
	if math.Abs(rem-1) > 1e-6 {
		t.Fatalf("memory timer restarted while chasing blind: %v left", rem)
	}
	if h.agent.State() != Chasing {
		t.Fatalf("gave up too early: %s", h.agent.State())
	}

	for i := 0; i < 11; i++ {
		h.step(0.1)
	}
	if h.agent.State() != Investigating {
		t.Fatalf("expected investigating after memory expired, got %s", h.agent.State())
	}
	if h.nav.speed != 300 {
		t.Fatalf("investigate speed = %v", h.nav.speed)
	}
}

func TestReacquiringSightCancelsMemory(t *testing.T) {
	h := newHarness(fixedRand(0.9), nil)
	h.player.pos = common.V(600, 0)
	h.agent.ReactToSight(h.player)

	h.step(0.1)
	if !h.timers.Pending(1, PurposeMemory) {
		t.Fatalf("expected memory timer while blind")
	}
	h.nav.sight = true
	h.step(0.1)
	if h.timers.Pending(1, PurposeMemory) {
		t.Fatalf("memory timer should be cancelled once the target is seen")
	}
	for i := 0; i < 100; i++ {
		h.step(0.1)
	}
	if h.agent.State() != Chasing {
		t.Fatalf("expected to keep chasing, got %s", h.agent.State())
	}
}

func TestInvestigationEndsAtLocation(t *testing.T) {
	h := newHarness(&seqRand{vals: []float64{0.9, 0.1}}, nil)
	h.agent.ReactToSound(h.player, common.V(400, 0))
	if h.agent.State() != Investigating {
		t.Fatalf("expected investigating, got %s", h.agent.State())
	}

	h.step(0.1)
	if h.agent.State() != Investigating {
		t.Fatalf("arrived too early")
	}
	h.nav.pos = common.V(350, 0)
	h.step(0.1)
	if h.agent.State() != Idle {
		t.Fatalf("expected idle after reaching the spot, got %s", h.agent.State())
	}
	if h.nav.goal == nil || *h.nav.goal != common.V(600, 0) {
		t.Fatalf("expected to wander to a nearby point, got %+v", h.nav.goal)
	}
}

func TestInvestigationSeesTarget(t *testing.T) {
	h := newHarness(fixedRand(0.9), nil)
	h.agent.ReactToSound(h.player, common.V(400, 0))
	h.nav.sight = true
	h.step(0.1)
	if h.agent.State() != Chasing {
		t.Fatalf("expected chasing after regaining sight, got %s", h.agent.State())
	}
	if h.count(Spotted) != 1 {
		t.Fatalf("expected a spotted notification")
	}
}

func TestSoundReactions(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(h *harness)
		volume float64
		want   State
	}{
		{"loud_sound_while_idle", nil, 0.8, Investigating},
		{"quiet_sound_ignored", nil, 0.5, Idle},
		{"ignored_while_chasing", func(h *harness) { h.agent.ReactToSight(h.player) }, 1, Chasing},
		{"ignored_while_stunned", func(h *harness) { h.agent.Stun(-1) }, 1, Stunned},
		{"attacking_breaks_off", func(h *harness) {
			h.player.pos = common.V(100, 0)
			h.nav.sight = true
			h.agent.ReactToSight(h.player)
			h.step(0.1)
			if h.agent.State() != Attacking {
				t.Fatalf("setup state = %s, want attacking", h.agent.State())
			}
		}, 1, Investigating},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(fixedRand(0.9), nil)
			if tc.setup != nil {
				tc.setup(h)
			}
			h.agent.HearNoise(h.player, common.V(-300, 20), tc.volume)
			if h.agent.State() != tc.want {
				t.Fatalf("state = %s, want %s", h.agent.State(), tc.want)
			}
		})
	}
}

func TestAttackCycle(t *testing.T) {
	h := newHarness(fixedRand(0.9), nil)
	h.player.pos = common.V(100, 0)
	h.nav.sight = true
	h.agent.ReactToSight(h.player)

	h.step(0.1)
	if h.agent.State() != Attacking {
		t.Fatalf("expected attacking in range, got %s", h.agent.State())
	}
	if h.player.damage != 20 {
		t.Fatalf("player damage = %v, want 20", h.player.damage)
	}
	if !h.agent.AttackOnCooldown() || h.count(AttackLanded) != 1 {
		t.Fatalf("expected cooldown and a landed attack")
	}

	h.step(0.5)
	if h.agent.State() != Chasing {
		t.Fatalf("expected to return to chasing, got %s", h.agent.State())
	}
	if h.count(Spotted) != 1 {
		t.Fatalf("returning from an attack must not count as spotting")
	}
	if !h.agent.AttackOnCooldown() {
		t.Fatalf("cooldown ended together with the recovery")
	}

	for i := 0; i < 14; i++ {
		h.step(0.1)
	}
	if h.player.damage != 20 {
		t.Fatalf("attacked during cooldown, damage %v", h.player.damage)
	}
	h.step(0.1)
	h.step(0.1)
	if h.player.damage != 40 {
		t.Fatalf("expected a second attack after cooldown, damage %v", h.player.damage)
	}
}

func TestAttackOutOfRangeMisses(t *testing.T) {
	h := newHarness(fixedRand(0.9), nil)
	h.player.pos = common.V(400, 0)
	if !h.agent.PerformAttack() {
		t.Fatalf("expected the attack to start")
	}
	if h.player.damage != 0 || h.count(AttackLanded) != 0 {
		t.Fatalf("out of range attack landed")
	}
	if h.agent.PerformAttack() {
		t.Fatalf("attack during cooldown must be rejected")
	}
}

func TestSightWhileAttackingOnlyUpdatesLocation(t *testing.T) {
	h := newHarness(fixedRand(0.9), nil)
	h.player.pos = common.V(100, 0)
	h.agent.PerformAttack()
	h.player.pos = common.V(120, 10)
	h.agent.ReactToSight(h.player)
	if h.agent.State() != Attacking {
		t.Fatalf("sight interrupted the attack: %s", h.agent.State())
	}
	if h.agent.LastKnownLocation() != common.V(120, 10) {
		t.Fatalf("last known not refreshed")
	}
}

func TestFlashlightStun(t *testing.T) {
	h := newHarness(fixedRand(0.1), nil)
	h.player.pos = common.V(600, 0)
	h.agent.ReactToSight(h.player)
	h.step(0.1)

	res := h.agent.ReactToFlashlight(4000, common.V(0, 0))
	if h.agent.State() != Stunned {
		t.Fatalf("expected stunned, got %s (%+v)", h.agent.State(), res)
	}
	if math.Abs(res.StunDuration-1.5) > 1e-9 {
		t.Fatalf("stun duration = %v, want 1.5", res.StunDuration)
	}
	if h.timers.Pending(1, PurposeMemory) {
		t.Fatalf("stun should cancel the memory timer")
	}
	if h.nav.stopped == 0 {
		t.Fatalf("stun should stop movement")
	}

	h.step(1.0)
	h.agent.ReactToFlashlight(8000, common.V(0, 0))
	h.step(2.9)
	if h.agent.State() != Stunned {
		t.Fatalf("restun should restart the countdown, got %s", h.agent.State())
	}
	h.step(0.2)
	if h.agent.State() != Idle {
		t.Fatalf("expected idle after the stun, got %s", h.agent.State())
	}
}

func TestFlashlightMakesIdleInvestigate(t *testing.T) {
	h := newHarness(&seqRand{vals: []float64{0.9, 0.2, 0.9}}, nil)
	h.nav.pos = common.V(1000, 0)
	res := h.agent.ReactToFlashlight(6000, common.V(0, 0))
	if h.agent.State() != Investigating {
		t.Fatalf("expected investigating, got %s (%+v)", h.agent.State(), res)
	}
	if want := common.V(700, 0); h.agent.LastKnownLocation() != want {
		t.Fatalf("investigate point = %+v, want %+v", h.agent.LastKnownLocation(), want)
	}
}

func TestImmuneTypeIgnoresLight(t *testing.T) {
	h := newHarness(fixedRand(0), func(p *Params) { p.AffectedByFlashlight = false })
	for i := 0; i < 50; i++ {
		h.agent.ReactToFlashlight(20000, common.V(0, 0))
	}
	if h.agent.State() != Idle {
		t.Fatalf("immune enemy reacted to light: %s", h.agent.State())
	}
}

func TestObserverFanOutAndUnsubscribe(t *testing.T) {
	h := newHarness(fixedRand(0.9), nil)
	var a, b int
	cancelA := h.agent.Subscribe(func(e Event) {
		if e.Kind == HealthChanged {
			a++
		}
	})
	h.agent.Subscribe(func(e Event) {
		if e.Kind == HealthChanged {
			b++
		}
	})
	h.agent.ApplyDamage(10)
	cancelA()
	h.agent.ApplyDamage(10)
	if a != 1 || b != 2 {
		t.Fatalf("listener counts a=%d b=%d", a, b)
	}
}

func TestStateHookAddsCues(t *testing.T) {
	h := newHarness(fixedRand(0.9), nil)
	h.agent.hook = StateHookFunc(func(prev, next State) []string {
		if next == Chasing {
			return []string{"screech"}
		}
		return nil
	})
	h.agent.ReactToSight(h.player)
	if h.cues.count("screech") != 1 {
		t.Fatalf("expected hook cue, got %+v", h.cues.calls)
	}
}

func TestSnapshotRestoreContinuesTimers(t *testing.T) {
	a := newHarness(fixedRand(0.9), nil)
	a.player.pos = common.V(140, 0)
	a.nav.sight = true
	a.agent.ReactToSight(a.player)
	a.step(0.1)
	a.player.pos = common.V(800, 0)
	a.nav.sight = false
	a.step(0.6)

	snap := a.agent.Snapshot()
	if snap.State != Chasing || !snap.AttackOnCooldown || len(snap.Timers) != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	b := newHarness(fixedRand(0.9), nil)
	b.player.pos = a.player.pos
	b.timers.Reset(a.timers.Now())
	b.agent.Restore(snap)

	for i := 0; i < 100; i++ {
		a.step(0.13)
		b.step(0.13)
		if a.agent.State() != b.agent.State() || a.agent.AttackOnCooldown() != b.agent.AttackOnCooldown() {
			t.Fatalf("step %d diverged: %s/%v vs %s/%v", i, a.agent.State(), a.agent.AttackOnCooldown(),
				b.agent.State(), b.agent.AttackOnCooldown())
		}
	}
	if b.agent.State() != Investigating {
		t.Fatalf("expected restored agent to give up the chase, got %s", b.agent.State())
	}
}
