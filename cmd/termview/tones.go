package main

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/milk9111/nightwatch/cue"
)

const sampleRate = beep.SampleRate(44100)

type note struct {
	freq float64
	dur  time.Duration
}

// tones maps sound cues to short note sequences.
var tones = map[string][]note{
	cue.FlashlightToggle: {{1200, 30 * time.Millisecond}},
	cue.FlashlightMode:   {{900, 25 * time.Millisecond}, {1350, 25 * time.Millisecond}},
	cue.EnemySpotted:     {{440, 80 * time.Millisecond}, {660, 120 * time.Millisecond}},
	cue.EnemyInvestigate: {{330, 90 * time.Millisecond}},
	cue.EnemyAttack:      {{110, 140 * time.Millisecond}},
	cue.EnemyStun:        {{1760, 40 * time.Millisecond}, {1320, 40 * time.Millisecond}, {880, 60 * time.Millisecond}},
	cue.EnemyDeath:       {{220, 120 * time.Millisecond}, {165, 120 * time.Millisecond}, {110, 200 * time.Millisecond}},
	cue.EnemyIdle:        {{196, 60 * time.Millisecond}},
	cue.PlayerHurt:       {{150, 90 * time.Millisecond}, {100, 90 * time.Millisecond}},
}

// toneFor builds the streamer for a sound cue, or nil for cues without a
// tone.
func toneFor(req cue.Request) beep.Streamer {
	if req.Kind != cue.Sound || req.Volume <= 0 {
		return nil
	}
	notes, ok := tones[req.Name]
	if !ok {
		return nil
	}
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		sine, err := generators.SineTone(sampleRate, n.freq)
		if err != nil {
			continue
		}
		parts = append(parts, beep.Take(sampleRate.N(n.dur), sine))
	}
	if len(parts) == 0 {
		return nil
	}
	return &effects.Volume{
		Streamer: beep.Seq(parts...),
		Base:     2,
		Volume:   math.Log2(math.Min(req.Volume, 1)) - 2,
	}
}

func toneSamples(name string) int {
	total := 0
	for _, n := range tones[name] {
		total += sampleRate.N(n.dur)
	}
	return total
}

// player plays cue tones on the speaker. A failed speaker init leaves it
// silent.
type player struct {
	enabled bool
}

func newPlayer(mute bool) (*player, error) {
	if mute {
		return &player{}, nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return &player{}, err
	}
	return &player{enabled: true}, nil
}

func (p *player) Play(req cue.Request) {
	if !p.enabled {
		return
	}
	if s := toneFor(req); s != nil {
		speaker.Play(s)
	}
}

func (p *player) Close() {
	if p.enabled {
		speaker.Close()
	}
}
