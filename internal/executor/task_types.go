package executor

// TaskSpec describes one external-executable invocation within a job. It is
// parsed from the job's task list and immutable afterwards.
type TaskSpec struct {
	ID         string `json:"id"` // preserves leading zeros for display
	Ordinal    int    `json:"-"`  // numeric form of ID, used in the output prefix
	Exec       string `json:"exec"`
	ConfigPath string `json:"config_path"`
	DebugLevel int    `json:"debug_level,omitempty"`
	LogPath    string `json:"log_path"`
}

// TaskConfig is the loaded per-task configuration: the files the wrapped
// executable consumes and produces, plus archive policy for its outputs.
// Parsing the task-description language itself belongs to the loader
// collaborator; this is only its resolved shape.
type TaskConfig struct {
	Inputs      []string
	Outputs     []string
	ExecNames   []string
	FileType    string
	ArchivePath string
	SaveFiles   bool
	Compress    bool
}

// TaskResult captures the execution outcome of a task. It is produced
// exactly once per task, on every path including internal failure, and
// consumed exactly once by the result aggregator.
type TaskResult struct {
	TaskID   string `json:"task_id"`
	ExitCode int    `json:"exit_code"`
	Pid      int    `json:"pid,omitempty"`
	Usage    int64  `json:"usage_bytes,omitempty"` // peak disk usage delta

	Files *Accumulator `json:"-"`
}

// exitFailure is the sentinel exit code for failures internal to the runner.
const exitFailure = 1
