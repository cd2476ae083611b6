// Package timer schedules one-shot callbacks on simulation time.
//
// A pending timer is identified by its owner and purpose; setting a timer for a
// key that is already pending replaces it. Callbacks only run from Advance, so
// they execute on the simulation goroutine between ticks.
package timer

import (
	"container/heap"
	"sort"
)

// Owner identifies the entity a timer belongs to.
type Owner uint64

// Purpose names why a timer exists. Each purpose owns its own slot per owner.
type Purpose string

// maxFiresPerAdvance stops a callback that keeps re-arming itself with zero
// delay from spinning forever inside one Advance.
const maxFiresPerAdvance = 4096

type key struct {
	owner   Owner
	purpose Purpose
}

type entry struct {
	key
	due   float64
	seq   uint64
	fn    func()
	index int
	dead  bool
}

// Scheduler is not safe for concurrent use.
type Scheduler struct {
	now     float64
	seq     uint64
	pending map[key]*entry
	queue   entryHeap
}

func NewScheduler() *Scheduler {
	return &Scheduler{pending: make(map[key]*entry)}
}

// Now returns the simulation time in seconds.
func (s *Scheduler) Now() float64 {
	if s == nil {
		return 0
	}
	return s.now
}

// Set arms a one-shot timer that calls fn after delay seconds, replacing any
// pending timer for the same owner and purpose.
func (s *Scheduler) Set(owner Owner, purpose Purpose, delay float64, fn func()) {
	if s == nil || fn == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	k := key{owner: owner, purpose: purpose}
	if old, ok := s.pending[k]; ok {
		old.dead = true
	}
	s.seq++
	e := &entry{key: k, due: s.now + delay, seq: s.seq, fn: fn}
	s.pending[k] = e
	heap.Push(&s.queue, e)
}

// Clear cancels the pending timer for owner and purpose. It reports whether one
// was pending.
func (s *Scheduler) Clear(owner Owner, purpose Purpose) bool {
	if s == nil {
		return false
	}
	k := key{owner: owner, purpose: purpose}
	e, ok := s.pending[k]
	if !ok {
		return false
	}
	e.dead = true
	delete(s.pending, k)
	return true
}

// ClearOwner cancels every pending timer of owner and returns how many were
// cancelled.
func (s *Scheduler) ClearOwner(owner Owner) int {
	if s == nil {
		return 0
	}
	n := 0
	for k, e := range s.pending {
		if k.owner != owner {
			continue
		}
		e.dead = true
		delete(s.pending, k)
		n++
	}
	return n
}

func (s *Scheduler) Pending(owner Owner, purpose Purpose) bool {
	if s == nil {
		return false
	}
	_, ok := s.pending[key{owner: owner, purpose: purpose}]
	return ok
}

// Remaining returns the seconds left before the timer fires.
func (s *Scheduler) Remaining(owner Owner, purpose Purpose) (float64, bool) {
	if s == nil {
		return 0, false
	}
	e, ok := s.pending[key{owner: owner, purpose: purpose}]
	if !ok {
		return 0, false
	}
	return e.due - s.now, true
}

// PendingFor lists the remaining seconds of each pending timer of owner keyed by
// purpose.
func (s *Scheduler) PendingFor(owner Owner) map[Purpose]float64 {
	if s == nil {
		return nil
	}
	var out map[Purpose]float64
	for k, e := range s.pending {
		if k.owner != owner {
			continue
		}
		if out == nil {
			out = make(map[Purpose]float64)
		}
		out[k.purpose] = e.due - s.now
	}
	return out
}

// Len returns the number of pending timers.
func (s *Scheduler) Len() int {
	if s == nil {
		return 0
	}
	return len(s.pending)
}

// Advance moves simulation time forward by dt and fires every timer that became
// due, earliest first. Timers armed by a callback fire in the same call if they
// are already due. It returns the number of callbacks run.
func (s *Scheduler) Advance(dt float64) int {
	if s == nil {
		return 0
	}
	if dt > 0 {
		s.now += dt
	}
	fired := 0
	for s.queue.Len() > 0 && fired < maxFiresPerAdvance {
		next := s.queue[0]
		if next.dead {
			heap.Pop(&s.queue)
			continue
		}
		if next.due > s.now {
			break
		}
		heap.Pop(&s.queue)
		delete(s.pending, next.key)
		next.dead = true
		next.fn()
		fired++
	}
	return fired
}

// Reset drops every pending timer and rewinds the clock to now.
func (s *Scheduler) Reset(now float64) {
	if s == nil {
		return
	}
	s.now = now
	s.pending = make(map[key]*entry)
	s.queue = nil
}

// Purposes returns the sorted keys of a PendingFor result so callers can re-arm
// timers in a stable order.
func Purposes(m map[Purpose]float64) []Purpose {
	out := make([]Purpose, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
