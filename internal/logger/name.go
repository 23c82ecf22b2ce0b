package logger

// RunnerName is the fixed name for this tool.
const RunnerName = "pipejob"

// CurrentRunnerName returns the runner name (always "pipejob").
func CurrentRunnerName() string { return RunnerName }

// LogPrefixes returns the log file name prefixes to look for.
func LogPrefixes() []string { return []string{RunnerName} }

// PrimaryLogPrefix returns the preferred filename prefix for log files.
func PrimaryLogPrefix() string { return RunnerName }
