package system

import (
	"sort"

	"github.com/milk9111/nightwatch/ecs"
)

// Entry is one line of the encounter journal.
type Entry struct {
	Tick   uint64         `json:"tick"`
	Time   float64        `json:"time"`
	Source uint64         `json:"source"`
	Kind   string         `json:"kind"`
	Data   map[string]any `json:"data,omitempty"`
}

// Record queues a journal entry on the world event queue.
func Record(w *ecs.World, source uint64, kind string, data map[string]any) {
	if w == nil {
		return
	}
	w.Events().Push(ecs.Event{Type: kind, Data: Entry{
		Tick:   w.Tick(),
		Time:   w.Time(),
		Source: source,
		Kind:   kind,
		Data:   data,
	}})
}

// JournalSystem drains the world event queue into its subscribers at the end
// of every tick.
type JournalSystem struct {
	subs   map[int]func(Entry)
	nextID int
}

func NewJournalSystem() *JournalSystem {
	return &JournalSystem{subs: make(map[int]func(Entry))}
}

// Subscribe registers fn and returns a function that removes it.
func (s *JournalSystem) Subscribe(fn func(Entry)) func() {
	if fn == nil {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

func (s *JournalSystem) Update(w *ecs.World) {
	events := w.Events().Drain()
	if len(events) == 0 || len(s.subs) == 0 {
		return
	}
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, evt := range events {
		entry, ok := evt.Data.(Entry)
		if !ok {
			continue
		}
		for _, id := range ids {
			if fn, ok := s.subs[id]; ok {
				fn(entry)
			}
		}
	}
}
