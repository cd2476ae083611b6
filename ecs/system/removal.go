package system

import (
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/nav"
	"github.com/milk9111/nightwatch/timer"
)

const EventRemoved = "removed"

// RemovalSystem destroys entities that asked to be removed, releasing their
// body, timers and observer subscriptions first.
type RemovalSystem struct {
	nav    *nav.World
	timers *timer.Scheduler
}

func NewRemovalSystem(navWorld *nav.World, timers *timer.Scheduler) *RemovalSystem {
	return &RemovalSystem{nav: navWorld, timers: timers}
}

func (s *RemovalSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	for _, e := range ecs.Query(w, component.RemovalRequestComponent.Kind()) {
		req, _ := ecs.Get(w, e, component.RemovalRequestComponent.Kind())
		if en, ok := ecs.Get(w, e, component.EnemyComponent.Kind()); ok && en.Unsubscribe != nil {
			en.Unsubscribe()
			en.Unsubscribe = nil
		}
		if s.nav != nil {
			s.nav.RemoveBody(uint64(e))
		}
		if s.timers != nil {
			s.timers.ClearOwner(timer.Owner(e))
		}
		reason := ""
		if req != nil {
			reason = req.Reason
		}
		ecs.DestroyEntity(w, e)
		Record(w, uint64(e), EventRemoved, map[string]any{"reason": reason})
	}
}
