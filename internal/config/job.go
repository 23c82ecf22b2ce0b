package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Transfer modes for produced files.
const (
	TransferNever = "never"
	TransferTask  = "task"
	TransferJob   = "job"
)

// GroupSpec describes one sequential barrier group of the job: the ordered
// task ids that belong to it and how many of them may run at once.
type GroupSpec struct {
	Workers int
	Tasks   []string
}

// Job holds the job-wide static configuration shared by every task. It is
// read once at startup and never mutated afterwards.
type Job struct {
	Root      string // job scratch directory; defaults to the working directory
	LogDir    string
	InputDir  string // shared per-task input config directory
	OutputDir string // shared per-task output config directory
	ListDir   string // optional shared list directory

	Delimiter     string
	StopOnFailure bool

	// Archive policy. Backend selects a registered transfer strategy;
	// TransferOutput decides when produced files move there.
	ArchiveBackend string // registry key, e.g. "local" or "never"
	ArchiveRoot    string
	TransferOutput string // "never", "task" or "job"
	JunkTarball    string // name of the end-of-job catch-all tarball, "" disables

	// DispatchGrace is the pause taken right after a group's tasks are
	// handed to the pool, before the first output drain.
	DispatchGrace time.Duration

	Groups map[string]GroupSpec
}

// LoadJob builds a Job from an already-initialized viper instance.
func LoadJob(v *viper.Viper) (*Job, error) {
	job := &Job{
		Root:           strings.TrimSpace(v.GetString("root")),
		LogDir:         withDefault(v.GetString("log_dir"), "log"),
		InputDir:       withDefault(v.GetString("input_dir"), "inputcfg"),
		OutputDir:      withDefault(v.GetString("output_dir"), "outputcfg"),
		ListDir:        strings.TrimSpace(v.GetString("list_dir")),
		Delimiter:      withDefault(v.GetString("delimiter"), ","),
		StopOnFailure:  true,
		ArchiveBackend: withDefault(v.GetString("archive.backend"), "never"),
		ArchiveRoot:    strings.TrimSpace(v.GetString("archive.root")),
		TransferOutput: withDefault(v.GetString("archive.transfer_output"), "never"),
		JunkTarball:    strings.TrimSpace(v.GetString("junk_tarball")),
		DispatchGrace:  2 * time.Second,
		Groups:         map[string]GroupSpec{},
	}

	if v.IsSet("stop_on_fail") {
		job.StopOnFailure = v.GetBool("stop_on_fail")
	}
	if v.IsSet("dispatch_grace_seconds") {
		secs := v.GetInt("dispatch_grace_seconds")
		if secs < 0 {
			secs = 0
		}
		job.DispatchGrace = time.Duration(secs) * time.Second
	}

	switch job.TransferOutput {
	case TransferNever, TransferTask, TransferJob:
	default:
		return nil, fmt.Errorf("invalid archive.transfer_output %q (want never, task or job)", job.TransferOutput)
	}

	cap := ResolveMaxGroupWorkers()
	for name := range v.GetStringMap("groups") {
		sub := v.Sub("groups." + name)
		if sub == nil {
			continue
		}
		spec := GroupSpec{Workers: sub.GetInt("workers")}
		if spec.Workers < 1 {
			spec.Workers = 1
		}
		if cap > 0 && spec.Workers > cap {
			spec.Workers = cap
		}
		spec.Tasks = splitTaskIDs(sub.Get("tasks"))
		job.Groups[name] = spec
	}

	return job, nil
}

// splitTaskIDs accepts either a comma-separated string or a YAML list.
func splitTaskIDs(raw interface{}) []string {
	var out []string
	appendID := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}

	switch val := raw.(type) {
	case string:
		for _, part := range strings.Split(val, ",") {
			appendID(part)
		}
	case []interface{}:
		for _, item := range val {
			appendID(fmt.Sprint(item))
		}
	case []string:
		for _, item := range val {
			appendID(item)
		}
	}
	return out
}

// SortedGroupKeys returns group names in ascending run order. Names that are
// all-numeric sort numerically ("2" before "10"); the rest sort lexically
// after the numeric ones.
func SortedGroupKeys(groups map[string]GroupSpec) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aerr := strconv.Atoi(keys[i])
		b, berr := strconv.Atoi(keys[j])
		switch {
		case aerr == nil && berr == nil:
			return a < b
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func withDefault(val, def string) string {
	val = strings.TrimSpace(val)
	if val == "" {
		return def
	}
	return val
}
