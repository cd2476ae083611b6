// Package cue carries fire-and-forget audio and animation requests out of the
// simulation.
package cue

type Kind int

const (
	Sound Kind = iota
	Animation
)

func (k Kind) String() string {
	if k == Animation {
		return "animation"
	}
	return "sound"
}

// Well-known cue names.
const (
	FlashlightToggle = "flashlight_toggle"
	FlashlightMode   = "flashlight_mode"
	EnemyIdle        = "enemy_idle"
	EnemySpotted     = "enemy_spotted"
	EnemyInvestigate = "enemy_investigate"
	EnemyAttack      = "enemy_attack"
	EnemyStun        = "enemy_stun"
	EnemyDeath       = "enemy_death"
	PlayerHurt       = "player_hurt"

	AnimAttack = "attack"
	AnimStun   = "stun"
	AnimDeath  = "death"
)

type Request struct {
	Owner  uint64
	Kind   Kind
	Name   string
	Volume float64
}

// Sink consumes cue requests; playback failures are the sink's problem.
type Sink interface {
	Play(req Request)
}

type SinkFunc func(req Request)

func (f SinkFunc) Play(req Request) { f(req) }

// Queue buffers requests raised during a tick until the cue system drains them.
type Queue struct {
	items []Request
}

func (q *Queue) Push(req Request) {
	if q == nil {
		return
	}
	q.items = append(q.items, req)
}

func (q *Queue) Drain() []Request {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// For returns an emitter that tags requests with owner.
func (q *Queue) For(owner uint64) Emitter {
	return Emitter{owner: owner, queue: q}
}

// Emitter is bound to one owner and satisfies the cue player interfaces of the
// flashlight and enemy packages.
type Emitter struct {
	owner uint64
	queue *Queue
}

func (e Emitter) PlayCue(name string, volume float64) {
	e.queue.Push(Request{Owner: e.owner, Kind: Sound, Name: name, Volume: volume})
}

func (e Emitter) PlayAnimation(name string) {
	e.queue.Push(Request{Owner: e.owner, Kind: Animation, Name: name, Volume: 1})
}
