package timer

import (
	"math"
	"testing"
)

func TestSchedulerFiresInDueOrder(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.Set(1, "b", 2, func() { order = append(order, "b") })
	s.Set(1, "a", 1, func() { order = append(order, "a") })
	s.Set(2, "a", 1, func() { order = append(order, "a2") })

	if n := s.Advance(0.5); n != 0 {
		t.Fatalf("expected nothing due at 0.5s, fired %d", n)
	}
	if n := s.Advance(2); n != 3 {
		t.Fatalf("expected 3 fired, got %d", n)
	}
	want := []string{"a", "a2", "b"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSchedulerReplaceAndClear(t *testing.T) {
	cases := []struct {
		name  string
		setup func(s *Scheduler, hits *int)
		want  int
	}{
		{
			name: "replace_same_purpose",
			setup: func(s *Scheduler, hits *int) {
				s.Set(7, "stun", 1, func() { *hits += 100 })
				s.Set(7, "stun", 1, func() { *hits++ })
			},
			want: 1,
		},
		{
			name: "purposes_are_independent",
			setup: func(s *Scheduler, hits *int) {
				s.Set(7, "stun", 1, func() { *hits++ })
				s.Set(7, "memory", 1, func() { *hits++ })
			},
			want: 2,
		},
		{
			name: "clear_before_fire",
			setup: func(s *Scheduler, hits *int) {
				s.Set(7, "stun", 1, func() { *hits++ })
				if !s.Clear(7, "stun") {
					panic("expected pending timer")
				}
			},
			want: 0,
		},
		{
			name: "clear_owner",
			setup: func(s *Scheduler, hits *int) {
				s.Set(7, "stun", 1, func() { *hits++ })
				s.Set(7, "memory", 1, func() { *hits++ })
				s.Set(8, "memory", 1, func() { *hits++ })
				s.ClearOwner(7)
			},
			want: 1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewScheduler()
			hits := 0
			tc.setup(s, &hits)
			s.Advance(5)
			if hits != tc.want {
				t.Fatalf("hits = %d, want %d", hits, tc.want)
			}
			if s.Len() != 0 {
				t.Fatalf("expected no pending timers, got %d", s.Len())
			}
		})
	}
}

func TestSchedulerCallbackRearms(t *testing.T) {
	s := NewScheduler()
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			s.Set(1, "loop", 1, tick)
		}
	}
	s.Set(1, "loop", 1, tick)
	for i := 0; i < 10; i++ {
		s.Advance(1)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestSchedulerRemaining(t *testing.T) {
	s := NewScheduler()
	s.Set(3, "cleanup", 3, func() {})
	s.Advance(1.25)
	rem, ok := s.Remaining(3, "cleanup")
	if !ok || math.Abs(rem-1.75) > 1e-9 {
		t.Fatalf("remaining = %v ok=%v", rem, ok)
	}
	pending := s.PendingFor(3)
	if len(pending) != 1 || math.Abs(pending["cleanup"]-1.75) > 1e-9 {
		t.Fatalf("pending = %v", pending)
	}
	if _, ok := s.Remaining(3, "stun"); ok {
		t.Fatalf("unexpected stun timer")
	}
}
