package stimulus

import (
	"math"
	"math/rand/v2"
	"testing"
)

type seqRand struct {
	vals []float64
	i    int
}

func (r *seqRand) Float64() float64 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

func defaultProfile() Profile {
	return Profile{
		Affected:           true,
		Sensitivity:        1,
		ReferenceIntensity: 8000,
		BaseStun:           3,
		NoticeIntensity:    4000,
		InvestigateChance:  0.5,
	}
}

func TestStunChanceMonotonicAndCapped(t *testing.T) {
	prev := -1.0
	for intensity := 0.0; intensity <= 20000; intensity += 250 {
		p := StunChance(intensity, 1, 8000)
		if p < prev {
			t.Fatalf("chance decreased at %v: %v < %v", intensity, p, prev)
		}
		if p < 0 || p > MaxStunChance {
			t.Fatalf("chance out of range at %v: %v", intensity, p)
		}
		prev = p
	}
	if got := StunChance(8000, 1, 8000); got != MaxStunChance {
		t.Fatalf("reference intensity should hit the cap, got %v", got)
	}
	if got := StunChance(4000, 1, 8000); got != 0.5 {
		t.Fatalf("half reference = %v, want 0.5", got)
	}
}

func TestStunDuration(t *testing.T) {
	cases := []struct {
		name      string
		intensity float64
		want      float64
	}{
		{"floored", 1000, 1},
		{"scaled", 4000, 1.5},
		{"at_reference", 8000, 3},
		{"capped", 16000, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StunDuration(3, tc.intensity, 8000); math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("StunDuration = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateOutcomes(t *testing.T) {
	cases := []struct {
		name      string
		profile   func(Profile) Profile
		intensity float64
		idle      bool
		rolls     []float64
		want      Outcome
		consumed  int
	}{
		{"stun_roll_hits", nil, 8000, true, []float64{0.1}, Stun, 1},
		{"idle_investigates", nil, 6000, true, []float64{0.9, 0.2}, Investigate, 2},
		{"idle_ignores_on_second_roll", nil, 6000, true, []float64{0.9, 0.7}, None, 2},
		{"busy_never_investigates", nil, 6000, false, []float64{0.9, 0.0}, None, 1},
		{"dim_light_not_noticed", nil, 4000, true, []float64{0.9, 0.0}, None, 1},
		{"immune_type_never_rolls", func(p Profile) Profile { p.Affected = false; return p }, 8000, true, []float64{0}, None, 0},
		{"dark_never_rolls", nil, 0, true, []float64{0}, None, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := defaultProfile()
			if tc.profile != nil {
				p = tc.profile(p)
			}
			r := &seqRand{vals: tc.rolls}
			got := Evaluate(p, tc.intensity, tc.idle, r)
			if got.Outcome != tc.want {
				t.Fatalf("outcome = %s, want %s", got.Outcome, tc.want)
			}
			if r.i != tc.consumed {
				t.Fatalf("consumed %d rolls, want %d", r.i, tc.consumed)
			}
		})
	}
}

func TestEvaluateStunRateConverges(t *testing.T) {
	rng := rand.New(rand.NewPCG(2024, 10))
	p := defaultProfile()
	const trials = 10000
	stuns := 0
	for i := 0; i < trials; i++ {
		if Evaluate(p, 8000, false, rng).Outcome == Stun {
			stuns++
		}
	}
	rate := float64(stuns) / trials
	if math.Abs(rate-MaxStunChance) > 0.02 {
		t.Fatalf("stun rate %v, want about %v", rate, MaxStunChance)
	}
}
