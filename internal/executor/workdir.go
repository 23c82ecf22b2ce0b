package executor

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"pipejob/internal/config"
)

// EnsureSharedDirs creates the job-level directories every task links into
// its scratch area. Idempotent.
func EnsureSharedDirs(job *config.Job) error {
	for _, dir := range sharedDirs(job) {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Join(job.Root, dir), 0o755); err != nil {
			return fmt.Errorf("create shared dir %s: %w", dir, err)
		}
	}
	return nil
}

func sharedDirs(job *config.Job) []string {
	return []string{job.LogDir, job.InputDir, job.OutputDir, job.ListDir}
}

// setupWorkdir creates the per-task scratch directory under the job root and
// symlinks the shared directories into it, so task configs can keep using
// relative paths while each child runs with its own working directory.
func setupWorkdir(job *config.Job, ordinal int) (string, error) {
	workdir := filepath.Join(job.Root, fmt.Sprintf("fwtemp%04d", ordinal))
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return "", fmt.Errorf("create workdir: %w", err)
	}
	for _, dir := range sharedDirs(job) {
		if dir == "" {
			continue
		}
		link := filepath.Join(workdir, dir)
		if _, err := os.Lstat(link); err == nil {
			continue
		}
		if err := os.Symlink(filepath.Join("..", dir), link); err != nil {
			return "", fmt.Errorf("link shared dir %s: %w", dir, err)
		}
	}
	return workdir, nil
}

// moveProducedFiles relocates everything a task wrote into its scratch
// directory back to the job's shared area, preserving relative paths, so
// the bookkeeping pass finds partial outputs even for failed tasks. Walk
// does not follow the shared-directory symlinks, so files written through
// them are untouched.
func moveProducedFiles(workdir, root string) {
	_ = filepath.WalkDir(workdir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == workdir {
			return nil
		}
		if d.IsDir() || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		rel, rerr := filepath.Rel(workdir, path)
		if rerr != nil {
			return nil
		}
		dst := filepath.Join(root, rel)
		if merr := os.MkdirAll(filepath.Dir(dst), 0o755); merr != nil {
			logWarn(fmt.Sprintf("move %s out of workdir: %v", rel, merr))
			return nil
		}
		if rnerr := os.Rename(path, dst); rnerr != nil {
			logWarn(fmt.Sprintf("move %s out of workdir: %v", rel, rnerr))
		}
		return nil
	})
}

// cleanupWorkdir removes a task's scratch directory. Failed tasks keep
// theirs so the operator can inspect what the executable left behind.
func cleanupWorkdir(workdir string) {
	if workdir == "" {
		return
	}
	if err := os.RemoveAll(workdir); err != nil {
		logWarn(fmt.Sprintf("remove workdir %s: %v", workdir, err))
	}
}
