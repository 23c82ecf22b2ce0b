package executor

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"pipejob/internal/archive"
	"pipejob/internal/config"
)

// runTask drives one task through its whole lifecycle: scratch directory,
// config load, input census, external executable, file bookkeeping. It never
// panics its caller; every failure path comes back as a TaskResult with a
// nonzero exit code.
func runTask(job *config.Job, backend archive.Backend, spec TaskSpec, collab Collaborators, out io.Writer) (res TaskResult) {
	res = TaskResult{TaskID: spec.ID, ExitCode: exitFailure, Files: NewAccumulator()}
	defer func() {
		if r := recover(); r != nil {
			logError(fmt.Sprintf("task %s: panic: %v\n%s", spec.ID, r, debug.Stack()))
			if res.ExitCode == 0 {
				res.ExitCode = exitFailure
			}
		}
	}()

	fmt.Fprint(out, HostStatus(job.Root))

	workdir, err := collab.PrepareTask(job, spec)
	if err != nil {
		logError(fmt.Sprintf("task %s: prepare: %v", spec.ID, err))
		return res
	}

	// Teardown runs no matter which later step fails or panics: produced
	// files always move back to the shared area, and the workdir survives
	// only when the task did not finish clean.
	defer func() {
		if r := recover(); r != nil {
			logError(fmt.Sprintf("task %s: panic: %v\n%s", spec.ID, r, debug.Stack()))
			if res.ExitCode == 0 {
				res.ExitCode = exitFailure
			}
		}
		moveProducedFiles(workdir, job.Root)
		if res.ExitCode == 0 {
			cleanupWorkdir(workdir)
			logInfo(fmt.Sprintf("task %s: finished ok (%d bytes scratch)", spec.ID, res.Usage))
		} else {
			logError(fmt.Sprintf("task %s: exit status %d, keeping %s", spec.ID, res.ExitCode, workdir))
		}
	}()

	cfg, err := collab.LoadTaskConfig(absPath(job.Root, spec.ConfigPath))
	if err != nil {
		logError(fmt.Sprintf("task %s: %v", spec.ID, err))
		return res
	}

	// Input census before the executable runs. A missing declared input
	// fails the task without ever invoking the executable.
	for _, in := range cfg.Inputs {
		if _, serr := os.Stat(absPath(job.Root, in)); serr != nil {
			logError(fmt.Sprintf("task %s: declared input missing: %s", spec.ID, in))
			return res
		}
		res.Files.AddInput(in)
	}

	res.ExitCode, res.Pid = collab.Invoke(job, spec, workdir, out)
	res.Usage = diskUsage(workdir)
	moveProducedFiles(workdir, job.Root)

	// Executables may report files beyond the declared ones through a
	// provenance event stream in the shared output directory.
	mergeProvenance(job, spec, cfg)
	for _, in := range cfg.Inputs {
		res.Files.AddInput(in)
	}

	if ferr := collab.FinalizeTask(job, backend, spec, cfg, res.Files); ferr != nil {
		logError(fmt.Sprintf("task %s: finalize: %v", spec.ID, ferr))
		if res.ExitCode == 0 {
			res.ExitCode = exitFailure
		}
	}
	return res
}
