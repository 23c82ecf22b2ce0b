package executor

import (
	"sync"
	"sync/atomic"

	"pipejob/internal/utils"
)

// groupState tracks one barrier group while its tasks run in the pool. All
// mutable fields live here rather than in package globals so two schedulers
// in the same process never see each other's failures.
type groupState struct {
	mu          sync.Mutex
	results     []TaskResult
	files       *Accumulator
	tracked     map[string]string // task id -> log path, removed as results land
	terminating bool
	peakUsage   int64

	total       int
	done        atomic.Int64
	keepRunning atomic.Bool

	// responder guards the failure response so exactly one failing task
	// triggers termination; responded closes once that response finished.
	responder atomic.Bool
	responded chan struct{}

	// stopDispatch drops the group's queued tasks. The scheduler installs
	// it before dispatch begins; the failure responder calls it so queued
	// tasks never start once the group is going down.
	stopDispatch func()
}

func newGroupState(specs []TaskSpec) *groupState {
	g := &groupState{
		files:     NewAccumulator(),
		tracked:   make(map[string]string, len(specs)),
		total:     len(specs),
		responded: make(chan struct{}),
	}
	g.keepRunning.Store(true)
	for _, spec := range specs {
		g.tracked[spec.ID] = spec.LogPath
	}
	return g
}

func (g *groupState) finished() bool {
	return g.done.Load() >= int64(g.total)
}

func (g *groupState) maxExit() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	codes := make([]int, len(g.results))
	for i, res := range g.results {
		codes[i] = res.ExitCode
	}
	return utils.MaxSlice(codes)
}

func (g *groupState) snapshot() []TaskResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]TaskResult, len(g.results))
	copy(out, g.results)
	return out
}
