package storage

import (
	"context"

	"github.com/milk9111/nightwatch/ecs/system"
)

// Recorder buffers journal entries for one run and appends them to the
// journal table on Flush. Record is meant to be handed to
// sim.Simulation.Subscribe.
type Recorder struct {
	repo    *JournalRepository
	runID   string
	pending []system.Entry
	counts  map[string]int
	total   int
}

func NewRecorder(repo *JournalRepository, runID string) *Recorder {
	return &Recorder{repo: repo, runID: runID, counts: make(map[string]int)}
}

func (r *Recorder) RunID() string { return r.runID }

func (r *Recorder) Record(e system.Entry) {
	r.pending = append(r.pending, e)
	r.counts[e.Kind]++
	r.total++
}

// Pending is the number of entries not yet flushed.
func (r *Recorder) Pending() int { return len(r.pending) }

// Total counts every entry recorded, flushed or not.
func (r *Recorder) Total() int { return r.total }

// Counts returns recorded entries per kind.
func (r *Recorder) Counts() map[string]int {
	out := make(map[string]int, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Flush writes pending entries in one transaction. On error they stay
// pending for the next attempt. Without a repository entries are only
// counted.
func (r *Recorder) Flush(ctx context.Context) error {
	if r.repo == nil {
		r.pending = r.pending[:0]
		return nil
	}
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.repo.Append(ctx, r.runID, r.pending...); err != nil {
		return err
	}
	r.pending = r.pending[:0]
	return nil
}
