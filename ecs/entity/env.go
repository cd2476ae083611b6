// Package entity assembles players and enemies from prefab specs.
package entity

import (
	"io"
	"log"

	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/cue"
	"github.com/milk9111/nightwatch/nav"
	"github.com/milk9111/nightwatch/timer"
)

// Env is the shared simulation state every builder wires entities into.
type Env struct {
	Nav    *nav.World
	Timers *timer.Scheduler
	Rand   common.Rand
	Cues   *cue.Queue
	Logger *log.Logger
}

func (env Env) logger() *log.Logger {
	if env.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return env.Logger
}
