package executor

import (
	"fmt"
	"io"
	"os"
	"time"

	"pipejob/internal/archive"
	"pipejob/internal/config"
	"pipejob/internal/utils"
)

// pollInterval paces the scheduler's output-drain loop while a pooled group
// is running. Shortened in tests.
var pollInterval = 100 * time.Millisecond

const drainBatch = 64

// Scheduler runs a parsed task list through its barrier groups in order and
// returns the job's exit status: the highest exit code any task produced,
// or 1 when the job could not be set up at all.
type Scheduler struct {
	Job     *config.Job
	Backend archive.Backend
	Collab  Collaborators
	Out     io.Writer
}

func NewScheduler(job *config.Job, backend archive.Backend) *Scheduler {
	return &Scheduler{
		Job:     job,
		Backend: backend,
		Collab:  DefaultCollaborators(),
		Out:     os.Stdout,
	}
}

func (s *Scheduler) Run(specs []TaskSpec) int {
	if len(specs) == 0 {
		logError("no tasks to run")
		return exitFailure
	}
	if err := EnsureSharedDirs(s.Job); err != nil {
		logError(err.Error())
		return exitFailure
	}
	fmt.Fprint(s.Out, HostStatus(s.Job.Root))

	byID := make(map[string]TaskSpec, len(specs))
	for _, spec := range specs {
		byID[spec.ID] = spec
	}
	groups := s.Job.Groups
	if len(groups) == 0 {
		// No grouping configured: every task runs in file order, one at
		// a time, as a single implicit group.
		ids := make([]string, len(specs))
		for i, spec := range specs {
			ids[i] = spec.ID
		}
		groups = map[string]config.GroupSpec{"1": {Workers: 1, Tasks: ids}}
	}

	started := time.Now()
	jobFiles := NewAccumulator()
	censusInitialFiles(s.Job, jobFiles)
	var allResults []TaskResult
	maxExit := 0
	aborted := false

	for _, key := range config.SortedGroupKeys(groups) {
		group := groups[key]
		groupSpecs := make([]TaskSpec, 0, len(group.Tasks))
		badGroup := false
		for _, id := range group.Tasks {
			spec, ok := byID[id]
			if !ok {
				logError(fmt.Sprintf("group %s names unknown task %q", key, id))
				badGroup = true
				break
			}
			groupSpecs = append(groupSpecs, spec)
		}
		if badGroup {
			// Same teardown as any other abort: later groups are skipped
			// but the job still finalizes and writes its report.
			maxExit = utils.Max(maxExit, exitFailure)
			aborted = true
			break
		}
		if len(groupSpecs) == 0 {
			continue
		}

		logInfo(fmt.Sprintf("group %s: %d tasks, %d workers", key, len(groupSpecs), group.Workers))
		var exit int
		var groupAborted bool
		var results []TaskResult
		var files *Accumulator
		if group.Workers <= 1 {
			exit, groupAborted, files, results = s.runGroupSequential(groupSpecs)
		} else {
			exit, groupAborted, files, results = s.runGroupPooled(groupSpecs, group.Workers)
		}

		jobFiles.Merge(files)
		allResults = append(allResults, results...)
		maxExit = utils.Max(maxExit, exit)
		if groupAborted {
			aborted = true
			logError(fmt.Sprintf("group %s aborted, skipping later groups", key))
			break
		}
	}

	if err := s.Collab.FinalizeJob(s.Job, s.Backend, jobFiles); err != nil {
		maxExit = utils.Max(maxExit, exitFailure)
	}
	var peakUsage int64
	for _, res := range allResults {
		if res.Usage > peakUsage {
			peakUsage = res.Usage
		}
	}
	if err := writeReport(s.Job, Report{
		StartedAt:  started,
		FinishedAt: time.Now(),
		ExitStatus: maxExit,
		Aborted:    aborted,
		PeakUsage:  peakUsage,
		Tasks:      allResults,
		Inputs:     jobFiles.InputList(),
		Outputs:    jobFiles.OutputList(),
	}); err != nil {
		logWarn(fmt.Sprintf("write report: %v", err))
	}
	return maxExit
}

// runGroupSequential runs tasks one after another with output flowing
// straight through, stopping at the first failure in stop-on-fail mode.
func (s *Scheduler) runGroupSequential(specs []TaskSpec) (int, bool, *Accumulator, []TaskResult) {
	files := NewAccumulator()
	var results []TaskResult
	maxExit := 0
	for _, spec := range specs {
		tw := NewTaskWriter(spec.Ordinal, s.Out)
		res := runTask(s.Job, s.Backend, spec, s.Collab, tw)
		tw.Close()
		results = append(results, res)
		if res.Files != nil {
			files.Merge(res.Files)
		}
		maxExit = utils.Max(maxExit, res.ExitCode)
		if res.ExitCode != 0 && s.Job.StopOnFailure {
			return maxExit, true, files, results
		}
	}
	return maxExit, false, files, results
}

// runGroupPooled fans the group out over a bounded worker pool, draining the
// shared output channel until every dispatched task has reported back. When
// a failure aborts the group, queued tasks are dropped, in-flight tasks run
// to completion, and the failure responder is given a bounded window to
// finish terminating children before the group returns.
func (s *Scheduler) runGroupPooled(specs []TaskSpec, workers int) (int, bool, *Accumulator, []TaskResult) {
	outCh := make(chan string, drainBatch)
	g := newGroupState(specs)
	pool := newWorkerPool(utils.Min(workers, len(specs)))
	g.stopDispatch = pool.Stop

	for _, spec := range specs {
		spec := spec
		pool.Submit(func() {
			tw := NewChannelTaskWriter(spec.Ordinal, outCh)
			res := runTask(s.Job, s.Backend, spec, s.Collab, tw)
			g.ingest(res, s.Job, s.Backend)
		})
	}

	time.Sleep(s.Job.DispatchGrace)
	for !g.finished() && g.keepRunning.Load() {
		s.drainOutput(outCh, drainBatch)
		time.Sleep(pollInterval)
	}

	aborted := !g.keepRunning.Load()
	pool.Stop()
	if aborted {
		select {
		case <-g.responded:
		case <-time.After(10 * time.Second):
			logWarn("failure responder did not settle in time")
		}
	}

	idle := make(chan struct{})
	go func() {
		pool.Wait()
		close(idle)
	}()
	for {
		s.drainOutput(outCh, drainBatch)
		select {
		case <-idle:
			s.drainOutput(outCh, 16*drainBatch)
			g.mu.Lock()
			peak := g.peakUsage
			g.mu.Unlock()
			logInfo(fmt.Sprintf("group peak scratch usage: %d bytes", peak))
			return g.maxExit(), aborted, g.files, g.snapshot()
		case <-time.After(pollInterval):
		}
	}
}

// drainOutput prints up to max buffered lines without blocking.
func (s *Scheduler) drainOutput(ch <-chan string, max int) int {
	n := 0
	for n < max {
		select {
		case line := <-ch:
			fmt.Fprintln(s.Out, line)
			n++
		default:
			return n
		}
	}
	return n
}
