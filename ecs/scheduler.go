package ecs

// System updates a world once per tick.
type System interface {
	Update(w *World)
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(w *World)

func (f SystemFunc) Update(w *World) { f(w) }

// Scheduler runs systems in the order they were added.
type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{}
	for _, sys := range systems {
		s.Add(sys)
	}
	return s
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

// Step advances the world clock by dt and runs every system.
func (s *Scheduler) Step(w *World, dt float64) {
	w.Advance(dt)
	for _, system := range s.systems {
		system.Update(w)
	}
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
