package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"pipejob/internal/config"
)

const reportFileName = "pipejob-report.json"

// Report is the machine-readable summary written next to the job's scratch
// area after the last group finishes.
type Report struct {
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	ExitStatus int          `json:"exit_status"`
	Aborted    bool         `json:"aborted"`
	PeakUsage  int64        `json:"peak_usage_bytes"`
	Tasks      []TaskResult `json:"tasks"`
	Inputs     []string     `json:"inputs,omitempty"`
	Outputs    []string     `json:"outputs,omitempty"`
}

func writeReport(job *config.Job, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	path := filepath.Join(job.Root, reportFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
