package executor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"pipejob/internal/archive"
	"pipejob/internal/config"
)

// Collaborators are the seams of a task's lifecycle. The scheduler runs with
// the defaults; tests swap individual fields to fake out process execution
// or archive traffic without touching the rest of the flow.
type Collaborators struct {
	LoadTaskConfig func(path string) (*TaskConfig, error)
	PrepareTask    func(job *config.Job, spec TaskSpec) (string, error)
	Invoke         func(job *config.Job, spec TaskSpec, workdir string, out io.Writer) (exit int, pid int)
	FinalizeTask   func(job *config.Job, backend archive.Backend, spec TaskSpec, cfg *TaskConfig, acc *Accumulator) error
	FinalizeJob    func(job *config.Job, backend archive.Backend, acc *Accumulator) error
}

func DefaultCollaborators() Collaborators {
	return Collaborators{
		LoadTaskConfig: loadTaskConfig,
		PrepareTask:    setupTaskWorkdir,
		Invoke:         invokeTask,
		FinalizeTask:   finalizeTask,
		FinalizeJob:    finalizeJob,
	}
}

func setupTaskWorkdir(job *config.Job, spec TaskSpec) (string, error) {
	return setupWorkdir(job, spec.Ordinal)
}

// loadTaskConfig reads a per-task config file. Format follows the file
// extension (yaml, json, toml), same as the top-level job config.
func loadTaskConfig(path string) (*TaskConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("save_files", true)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read task config %s: %w", path, err)
	}
	return &TaskConfig{
		Inputs:      v.GetStringSlice("inputs"),
		Outputs:     v.GetStringSlice("outputs"),
		ExecNames:   v.GetStringSlice("exec_names"),
		FileType:    v.GetString("file_type"),
		ArchivePath: v.GetString("archive_path"),
		SaveFiles:   v.GetBool("save_files"),
		Compress:    v.GetBool("compress"),
	}, nil
}

// finalizeTask records the task's files and, depending on the job's transfer
// mode, either ships outputs to the archive now or queues them for the
// end-of-job sweep.
func finalizeTask(job *config.Job, backend archive.Backend, spec TaskSpec, cfg *TaskConfig, acc *Accumulator) error {
	for _, out := range cfg.Outputs {
		acc.AddOutput(out)
	}

	if spec.LogPath != "" && job.TransferOutput != config.TransferNever {
		abs := absPath(job.Root, spec.LogPath)
		for _, err := range backend.Register("log", []string{abs}) {
			if err != nil {
				logWarn(fmt.Sprintf("task %s: register log: %v", spec.ID, err))
			}
		}
	}

	if !cfg.SaveFiles || job.TransferOutput == config.TransferNever {
		return nil
	}

	var firstErr error
	items := make(map[string]archive.TransferItem, len(cfg.Outputs))
	for _, out := range cfg.Outputs {
		abs := absPath(job.Root, out)
		if _, err := os.Stat(abs); err != nil {
			logWarn(fmt.Sprintf("task %s: declared output missing: %s", spec.ID, out))
			continue
		}
		items[abs] = archive.TransferItem{
			Filename:    filepath.Base(out),
			Fullname:    abs,
			ArchivePath: cfg.ArchivePath,
			FileType:    cfg.FileType,
			Save:        cfg.SaveFiles,
			Compress:    cfg.Compress,
		}
	}

	switch job.TransferOutput {
	case config.TransferTask:
		for name, err := range backend.Store(items) {
			if err != nil {
				logError(fmt.Sprintf("task %s: store %s: %v", spec.ID, name, err))
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	case config.TransferJob:
		for key, item := range items {
			acc.QueueTransfer(key, item)
		}
	}
	return firstErr
}

// finalizeJob flushes queued transfers and sweeps leftover scratch files
// into the junk tarball.
func finalizeJob(job *config.Job, backend archive.Backend, acc *Accumulator) error {
	var firstErr error
	if len(acc.Pending) > 0 {
		for name, err := range backend.Store(acc.Pending) {
			if err != nil {
				logError(fmt.Sprintf("job transfer: store %s: %v", name, err))
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}

	if job.JunkTarball != "" {
		notJunk := map[string]struct{}{
			filepath.Base(job.JunkTarball): {},
			reportFileName:                 {},
		}
		for base := range acc.Preexisting {
			notJunk[base] = struct{}{}
		}
		for _, f := range acc.InputList() {
			notJunk[filepath.Base(f)] = struct{}{}
		}
		for _, f := range acc.OutputList() {
			notJunk[filepath.Base(f)] = struct{}{}
		}
		files, err := archive.CollectJunk(job.Root, notJunk)
		if err != nil {
			logWarn(fmt.Sprintf("junk sweep: %v", err))
		} else if len(files) > 0 {
			tarPath := absPath(job.Root, job.JunkTarball)
			if err := archive.WriteJunkTarball(tarPath, job.Root, files); err != nil {
				logError(fmt.Sprintf("junk tarball: %v", err))
				if firstErr == nil {
					firstErr = err
				}
			} else {
				logInfo(fmt.Sprintf("junk tarball %s holds %d files", job.JunkTarball, len(files)))
			}
		}
	}
	return firstErr
}

// censusInitialFiles records every file already in the job scratch area so
// the end-of-job junk sweep never packages files the job did not create.
func censusInitialFiles(job *config.Job, acc *Accumulator) {
	_ = filepath.WalkDir(job.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		acc.AddPreexisting(filepath.Base(path))
		return nil
	})
}

func absPath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
