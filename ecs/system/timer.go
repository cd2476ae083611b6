package system

import (
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/timer"
)

// TimerSystem fires due timers before anything else runs in the tick, so
// callbacks never interleave with another system's update.
type TimerSystem struct {
	timers *timer.Scheduler
}

func NewTimerSystem(timers *timer.Scheduler) *TimerSystem {
	return &TimerSystem{timers: timers}
}

func (s *TimerSystem) Update(w *ecs.World) {
	if s == nil || s.timers == nil || w == nil {
		return
	}
	s.timers.Advance(w.Delta())
}
