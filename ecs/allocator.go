package ecs

import (
	"errors"
	"fmt"
)

var ErrWorldNotEmpty = errors.New("ecs: allocator restore needs an empty world")

// AllocatorState captures slot generations, the free list and which
// handles are alive, so a rebuilt world hands out the same ids.
type AllocatorState struct {
	Generations []uint32 `json:"generations"`
	Free        []uint32 `json:"free"`
	Alive       []Entity `json:"alive"`
}

func SnapshotAllocator(w *World) AllocatorState {
	s := AllocatorState{
		Generations: make([]uint32, len(w.entities.gens)),
		Free:        make([]uint32, len(w.entities.free)),
		Alive:       w.entities.live(),
	}
	for i, g := range w.entities.gens {
		s.Generations[i] = uint32(g)
	}
	for i, id := range w.entities.free {
		s.Free[i] = uint32(id)
	}
	return s
}

// RestoreAllocator reinstates a captured allocator. The listed entities
// come back alive without components.
func RestoreAllocator(w *World, s AllocatorState) error {
	if w.entities.count != 0 {
		return ErrWorldNotEmpty
	}
	store := entityStore{
		gens:  make([]generation, len(s.Generations)),
		alive: make([]bool, len(s.Generations)),
		free:  make([]entityID, len(s.Free)),
	}
	for i, g := range s.Generations {
		store.gens[i] = generation(g)
	}
	for i, id := range s.Free {
		store.free[i] = entityID(id)
	}
	for _, e := range s.Alive {
		id := e.id()
		if id == 0 || int(id) > len(store.gens) || store.gens[id-1] != e.generation() {
			return fmt.Errorf("ecs: allocator restore: stale handle %s", e)
		}
		store.alive[id-1] = true
		store.count++
	}
	w.entities = store
	return nil
}
