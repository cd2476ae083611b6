package ecs

import (
	"fmt"

	"github.com/milk9111/nightwatch/ecs/component"
)

// World owns entities, their components and the per-tick clock.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*sparseSet
	events   EventQueue

	dt   float64
	tick uint64
	time float64
}

func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*sparseSet)}
}

func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity removes e and all of its components.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.remove(e.id())
	}
	return w.entities.destroy(e)
}

func IsAlive(w *World, e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// Entities returns every live entity ordered by slot.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.live()
}

func (w *World) store(id component.ComponentID, create bool) *sparseSet {
	s, ok := w.stores[id]
	if !ok && create {
		s = &sparseSet{}
		w.stores[id] = s
	}
	return s
}

// entityAt rebuilds the live handle for a slot present in a store.
func (w *World) entityAt(id entityID) Entity {
	return makeEntity(id, w.entities.gens[id-1])
}

func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return fmt.Errorf("%w: %s", component.ErrNilComponent, kind.Name())
	}
	if !IsAlive(w, e) {
		return fmt.Errorf("%w: %s on %s", component.ErrEntityNotAlive, kind.Name(), e)
	}
	w.store(kind.ID(), true).set(e.id(), value)
	return nil
}

func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !IsAlive(w, e) {
		return nil, false
	}
	v, ok := w.store(kind.ID(), false).get(e.id())
	if !ok {
		return nil, false
	}
	out, ok := v.(*T)
	return out, ok
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	return IsAlive(w, e) && w.store(kind.ID(), false).has(e.id())
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	return w.store(kind.ID(), false).remove(e.id())
}

// Count reports how many live entities carry kind.
func Count[T any](w *World, kind component.ComponentKind[T]) int {
	return w.store(kind.ID(), false).len()
}

// First returns the lowest-slot entity carrying kind.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	ids := w.store(kind.ID(), false).sortedIDs()
	if len(ids) == 0 {
		return 0, false
	}
	return w.entityAt(ids[0]), true
}

// Query lists entities carrying kind, ordered by slot.
func Query[T any](w *World, kind component.ComponentKind[T]) []Entity {
	ids := w.store(kind.ID(), false).sortedIDs()
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.entityAt(id))
	}
	return out
}

// ForEach visits entities carrying kind in slot order. fn may add or
// remove components and destroy entities; visits to entities destroyed
// mid-iteration are skipped.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	s := w.store(kind.ID(), false)
	for _, id := range s.sortedIDs() {
		v, ok := s.get(id)
		if !ok {
			continue
		}
		fn(w.entityAt(id), v.(*T))
	}
}

func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	sa, sb := w.store(ka.ID(), false), w.store(kb.ID(), false)
	if sa == nil || sb == nil {
		return
	}
	for _, id := range sa.sortedIDs() {
		va, okA := sa.get(id)
		vb, okB := sb.get(id)
		if !okA || !okB {
			continue
		}
		fn(w.entityAt(id), va.(*A), vb.(*B))
	}
}

func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	sa, sb, sc := w.store(ka.ID(), false), w.store(kb.ID(), false), w.store(kc.ID(), false)
	if sa == nil || sb == nil || sc == nil {
		return
	}
	for _, id := range sa.sortedIDs() {
		va, okA := sa.get(id)
		vb, okB := sb.get(id)
		vc, okC := sc.get(id)
		if !okA || !okB || !okC {
			continue
		}
		fn(w.entityAt(id), va.(*A), vb.(*B), vc.(*C))
	}
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// Advance records the step about to run.
func (w *World) Advance(dt float64) {
	w.dt = dt
	w.tick++
	w.time += dt
}

// Delta is the length of the current step in seconds.
func (w *World) Delta() float64 { return w.dt }

func (w *World) Tick() uint64 { return w.tick }

// Time is the simulated time in seconds after the current step.
func (w *World) Time() float64 { return w.time }

// SetClock restores the tick counter and simulated time.
func (w *World) SetClock(tick uint64, t float64) {
	w.tick = tick
	w.time = t
}
