package system

import (
	"github.com/milk9111/nightwatch/cue"
	"github.com/milk9111/nightwatch/ecs"
)

// CueSystem hands the tick's sound and animation requests to the sink.
type CueSystem struct {
	queue *cue.Queue
	sink  cue.Sink
}

func NewCueSystem(queue *cue.Queue, sink cue.Sink) *CueSystem {
	return &CueSystem{queue: queue, sink: sink}
}

// SetSink swaps the sink; nil drops requests.
func (s *CueSystem) SetSink(sink cue.Sink) { s.sink = sink }

func (s *CueSystem) Update(_ *ecs.World) {
	reqs := s.queue.Drain()
	if s.sink == nil {
		return
	}
	for _, req := range reqs {
		s.sink.Play(req)
	}
}
