package script

import "testing"

const counterScript = `
on_enter := func(engine, state, prev, next) {
	if next == "chasing" {
		n := state.chases
		if is_undefined(n) {
			n = 0
		}
		state.chases = n + 1
		if state.chases % 2 == 0 {
			engine.cue("shriek")
		} else {
			engine.cue("whisper")
		}
	} else if next == "dead" && engine.health_percent() == 0.0 {
		engine.cue("dissipate")
	}
}
`

func TestHooksEmitCues(t *testing.T) {
	prog, err := Compile("counter.tengo", []byte(counterScript))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	h := prog.Instance()
	h.HealthPercent = func() float64 { return 0 }

	cases := []struct {
		prev, next string
		want       []string
	}{
		{"idle", "chasing", []string{"whisper"}},
		{"chasing", "investigating", nil},
		{"investigating", "chasing", []string{"shriek"}},
		{"chasing", "dead", []string{"dissipate"}},
	}
	for _, tc := range cases {
		got, err := h.OnEnter(tc.prev, tc.next)
		if err != nil {
			t.Fatalf("%s->%s: %v", tc.prev, tc.next, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("%s->%s: cues %v, want %v", tc.prev, tc.next, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s->%s: cues %v, want %v", tc.prev, tc.next, got, tc.want)
			}
		}
	}
	if n, _ := h.State()["chases"].(int); n != 2 {
		t.Fatalf("state chases = %v, want 2", h.State()["chases"])
	}
}

func TestInstancesHaveSeparateState(t *testing.T) {
	prog, err := Compile("counter.tengo", []byte(counterScript))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	a, b := prog.Instance(), prog.Instance()
	if _, err := a.OnEnter("idle", "chasing"); err != nil {
		t.Fatalf("run: %v", err)
	}
	got, err := b.OnEnter("idle", "chasing")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got) != 1 || got[0] != "whisper" {
		t.Fatalf("second instance shared state: %v", got)
	}
}

func TestCompileRequiresOnEnter(t *testing.T) {
	if _, err := Compile("empty.tengo", []byte(`x := 1`)); err == nil {
		t.Fatalf("expected a compile error without on_enter")
	}
}

func TestSetStateRestoresCounters(t *testing.T) {
	prog, err := Compile("counter.tengo", []byte(counterScript))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	h := prog.Instance()
	// as decoded from JSON
	if err := h.SetState(map[string]any{"chases": float64(1)}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	got, err := h.OnEnter("idle", "chasing")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got) != 1 || got[0] != "shriek" {
		t.Fatalf("cues = %v, want [shriek] on the second chase", got)
	}
	if err := h.SetState(nil); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(h.State()) != 0 {
		t.Fatalf("state not cleared: %v", h.State())
	}
}
