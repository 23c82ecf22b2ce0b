package executor

import (
	"fmt"
	"os"
	"time"

	"pipejob/internal/archive"
	"pipejob/internal/config"
)

// settleDelay gives already-signalled children a moment to die before the
// failure responder releases the scheduler. Shortened in tests.
var settleDelay = 500 * time.Millisecond

// ingest records one task's result. It always counts the task as done, even
// if bookkeeping panics, because the scheduler's completion poll must never
// wait on a task that already returned. On a failure in stop-on-fail mode,
// exactly one caller wins the responder race and shuts the group down; the
// failing task's own pid is spared so its process tree can finish dying on
// its own terms.
func (g *groupState) ingest(res TaskResult, job *config.Job, backend archive.Backend) {
	defer func() {
		if r := recover(); r != nil {
			logError(fmt.Sprintf("result bookkeeping for task %s panicked: %v", res.TaskID, r))
		}
		g.done.Add(1)
	}()

	g.mu.Lock()
	g.results = append(g.results, res)
	if res.Files != nil {
		g.files.Merge(res.Files)
	}
	if res.Usage > g.peakUsage {
		g.peakUsage = res.Usage
	}
	// Once terminating, entries stay tracked so late completions still get
	// their termination notice.
	if !g.terminating {
		delete(g.tracked, res.TaskID)
	}
	g.mu.Unlock()

	if res.ExitCode == 0 || !job.StopOnFailure {
		return
	}
	if !g.responder.CompareAndSwap(false, true) {
		return
	}

	logError(fmt.Sprintf("task %s failed with status %d, stopping group", res.TaskID, res.ExitCode))
	g.mu.Lock()
	g.terminating = true
	g.mu.Unlock()
	g.keepRunning.Store(false)
	if g.stopDispatch != nil {
		g.stopDispatch()
	}
	terminateFn([]int{res.Pid}, true)
	g.appendTerminationNotices(job, backend, res.TaskID)
	time.Sleep(settleDelay)
	close(g.responded)
}

// appendTerminationNotices marks the logs of still-running tasks so a reader
// of a truncated log can tell a killed task from a crashed one. Logs the
// archive already ingested are left alone.
func (g *groupState) appendTerminationNotices(job *config.Job, backend archive.Backend, failedID string) {
	g.mu.Lock()
	remaining := make(map[string]string, len(g.tracked))
	for id, logPath := range g.tracked {
		remaining[id] = logPath
	}
	g.mu.Unlock()

	for id, logPath := range remaining {
		if logPath == "" {
			continue
		}
		abs := absPath(job.Root, logPath)
		if backend.Registered("log", abs) {
			continue
		}
		f, err := os.OpenFile(abs, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			logWarn(fmt.Sprintf("termination notice for task %s: %v", id, err))
			continue
		}
		fmt.Fprintf(f, "\n*** task terminated by scheduler after failure of task %s ***\n", failedID)
		f.Close()
	}
}
