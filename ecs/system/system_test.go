package system

import (
	"testing"

	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/cue"
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/nav"
	"github.com/milk9111/nightwatch/timer"
)

func TestJournalDeliversInSubscribeOrder(t *testing.T) {
	w := ecs.NewWorld()
	j := NewJournalSystem()
	var order []string
	j.Subscribe(func(e Entry) { order = append(order, "a:"+e.Kind) })
	stop := j.Subscribe(func(e Entry) { order = append(order, "b:"+e.Kind) })

	w.Advance(0.5)
	Record(w, 3, "first", nil)
	Record(w, 3, "second", map[string]any{"n": 1})
	j.Update(w)

	want := []string{"a:first", "b:first", "a:second", "b:second"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	stop()
	order = nil
	Record(w, 3, "third", nil)
	j.Update(w)
	if len(order) != 1 || order[0] != "a:third" {
		t.Fatalf("after unsubscribe order = %v", order)
	}
	if w.Events().Len() != 0 {
		t.Fatal("journal left events queued")
	}
}

func TestCueSystemForwardsToSink(t *testing.T) {
	q := &cue.Queue{}
	var got []cue.Request
	s := NewCueSystem(q, cue.SinkFunc(func(r cue.Request) { got = append(got, r) }))

	q.For(4).PlayCue(cue.EnemyAttack, 1)
	s.Update(nil)
	if len(got) != 1 || got[0].Name != cue.EnemyAttack || got[0].Owner != 4 {
		t.Fatalf("got %+v", got)
	}

	s.SetSink(nil)
	q.For(4).PlayCue(cue.EnemyAttack, 1)
	s.Update(nil)
	if len(got) != 1 {
		t.Fatalf("nil sink still delivered: %+v", got)
	}
	if q.Drain() != nil {
		t.Fatal("nil sink left requests queued")
	}
}

func TestRemovalReleasesResources(t *testing.T) {
	w := ecs.NewWorld()
	navWorld := nav.New(nil, nav.Options{})
	timers := timer.NewScheduler()

	e := ecs.CreateEntity(w)
	if err := navWorld.AddBody(uint64(e), common.V(10, 10), 8); err != nil {
		t.Fatal(err)
	}
	fired := false
	timers.Set(timer.Owner(e), "stun", 1, func() { fired = true })
	unsubscribed := false
	if err := ecs.Add(w, e, component.EnemyComponent.Kind(), &component.Enemy{Unsubscribe: func() { unsubscribed = true }}); err != nil {
		t.Fatal(err)
	}
	if err := ecs.Add(w, e, component.RemovalRequestComponent.Kind(), &component.RemovalRequest{Reason: "death_cleanup"}); err != nil {
		t.Fatal(err)
	}

	NewRemovalSystem(navWorld, timers).Update(w)

	if ecs.IsAlive(w, e) {
		t.Fatal("entity still alive")
	}
	if navWorld.Has(uint64(e)) {
		t.Fatal("body not removed")
	}
	if !unsubscribed {
		t.Fatal("observer subscription kept")
	}
	timers.Advance(2)
	if fired {
		t.Fatal("timer of removed entity fired")
	}

	events := w.Events().Drain()
	if len(events) != 1 {
		t.Fatalf("events = %v", events)
	}
	entry := events[0].Data.(Entry)
	if entry.Kind != EventRemoved || entry.Data["reason"] != "death_cleanup" {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestFootstepKeepsLouderNoise(t *testing.T) {
	cases := []struct {
		name    string
		queued  float64
		want    float64
		wantLoc common.Vec2
	}{
		{"louder_queued_noise_kept", 1, 1, common.V(500, 500)},
		{"quieter_queued_noise_replaced", 0.1, 0.3, common.V(10, 10)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			e := ecs.CreateEntity(w)
			mustAdd(t, ecs.Add(w, e, component.PlayerComponent.Kind(), &component.Player{WalkSpeed: 100, WalkNoise: 0.3, NoiseInterval: 0.5}))
			mustAdd(t, ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{Move: common.V(1, 0)}))
			mustAdd(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: common.V(10, 10)}))
			if err := EmitNoise(w, e, component.Noise{Location: common.V(500, 500), Volume: tc.queued}); err != nil {
				t.Fatal(err)
			}

			w.Advance(1.0 / 60)
			NewPlayerControllerSystem(nil).Update(w)

			n, ok := ecs.Get(w, e, component.NoiseComponent.Kind())
			if !ok {
				t.Fatal("noise dropped")
			}
			if n.Volume != tc.want || n.Location != tc.wantLoc {
				t.Fatalf("noise = %+v, want volume %v at %v", *n, tc.want, tc.wantLoc)
			}
			if w.Events().Len() != 0 {
				t.Fatalf("unexpected events: %v", w.Events().Drain())
			}
		})
	}
}

func TestEmitNoiseOnDeadEntity(t *testing.T) {
	w := ecs.NewWorld()
	e := ecs.CreateEntity(w)
	ecs.DestroyEntity(w, e)
	if err := EmitNoise(w, e, component.Noise{Volume: 1}); err == nil {
		t.Fatal("expected an error for a destroyed entity")
	}
}

func mustAdd(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
