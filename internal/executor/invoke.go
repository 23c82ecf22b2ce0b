package executor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"pipejob/internal/config"
)

// invokeTask starts the task's executable in its scratch directory and waits
// for it. Both output streams go through the caller's writer and, when the
// task carries a log path, into the log file as well. The returned pid is
// zero only if the process never started.
func invokeTask(job *config.Job, spec TaskSpec, workdir string, out io.Writer) (int, int) {
	args := []string{spec.ConfigPath}
	if spec.DebugLevel > 0 {
		args = append(args, "--debug", strconv.Itoa(spec.DebugLevel))
	}

	cmd := exec.Command(spec.Exec, args...)
	cmd.Dir = workdir

	sink := out
	var logFile *os.File
	if spec.LogPath != "" {
		lf, err := os.Create(absPath(job.Root, spec.LogPath))
		if err != nil {
			logWarn(fmt.Sprintf("task %s: open log %s: %v", spec.ID, spec.LogPath, err))
		} else {
			logFile = lf
			sink = io.MultiWriter(out, lf)
		}
	}
	cmd.Stdout = sink
	cmd.Stderr = sink

	if err := cmd.Start(); err != nil {
		logError(fmt.Sprintf("task %s: start %s: %v", spec.ID, spec.Exec, err))
		if logFile != nil {
			logFile.Close()
		}
		return exitFailure, 0
	}
	pid := cmd.Process.Pid
	logInfo(fmt.Sprintf("task %s: pid %d running %s", spec.ID, pid, spec.Exec))

	err := cmd.Wait()
	if logFile != nil {
		logFile.Close()
	}
	if err == nil {
		return 0, pid
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		code := ee.ExitCode()
		if code < 0 {
			// killed by a signal
			code = exitFailure
		}
		return code, pid
	}
	logError(fmt.Sprintf("task %s: wait: %v", spec.ID, err))
	return exitFailure, pid
}
