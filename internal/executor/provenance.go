package executor

import (
	"fmt"
	"os"
	"path/filepath"

	"pipejob/internal/config"
	"pipejob/internal/parser"
)

// provenancePath is where a wrapped executable may leave its event stream:
// one JSON object per line in the shared output directory, named after the
// task id.
func provenancePath(job *config.Job, spec TaskSpec) string {
	return filepath.Join(job.Root, job.OutputDir, spec.ID+"-prov.jsonl")
}

// mergeProvenance folds a task's provenance events, if any, into its loaded
// config so the file bookkeeping covers dynamically discovered files too.
func mergeProvenance(job *config.Job, spec TaskSpec, cfg *TaskConfig) {
	path := provenancePath(job, spec)
	f, err := os.Open(path)
	if err != nil {
		// No provenance file is the common case.
		return
	}
	defer f.Close()

	prov := parser.ParseEventStream(f, func(msg string) {
		logWarn(fmt.Sprintf("task %s: %s", spec.ID, msg))
	})
	cfg.Inputs = appendNew(cfg.Inputs, prov.Inputs)
	cfg.Outputs = appendNew(cfg.Outputs, prov.Outputs)
	for _, note := range prov.Notes {
		logInfo(fmt.Sprintf("task %s: %s", spec.ID, note))
	}
}

func appendNew(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		seen[s] = struct{}{}
	}
	for _, s := range extra {
		if _, ok := seen[s]; !ok {
			existing = append(existing, s)
			seen[s] = struct{}{}
		}
	}
	return existing
}
