package executor

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseTaskList reads the job's task list, one task per line, fields
// separated by delim. Lines carry either five fields
// (id, exec, config, debug level, log) or four (debug level defaults to 0).
// Any other field count is fatal.
func ParseTaskList(r io.Reader, delim string) ([]TaskSpec, error) {
	if delim == "" {
		delim = ","
	}

	var tasks []TaskSpec
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		task, err := parseTaskLine(line, lineno, delim)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[task.ID]; dup {
			return nil, fmt.Errorf("line %d: duplicate task id %q", lineno, task.ID)
		}
		seen[task.ID] = struct{}{}
		tasks = append(tasks, task)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read task list: %w", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("task list is empty")
	}
	return tasks, nil
}

func parseTaskLine(line string, lineno int, delim string) (TaskSpec, error) {
	parts := strings.Split(line, delim)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var task TaskSpec
	switch len(parts) {
	case 5:
		task = TaskSpec{ID: parts[0], Exec: parts[1], ConfigPath: parts[2], LogPath: parts[4]}
		debug, err := strconv.Atoi(parts[3])
		if err != nil {
			return TaskSpec{}, fmt.Errorf("line %d: invalid debug level %q", lineno, parts[3])
		}
		task.DebugLevel = debug
	case 4:
		task = TaskSpec{ID: parts[0], Exec: parts[1], ConfigPath: parts[2], LogPath: parts[3]}
	default:
		return TaskSpec{}, fmt.Errorf(
			"line %d: incorrect number of fields (%d); check that the grouping pattern matches the task list",
			lineno, len(parts))
	}

	ordinal, err := strconv.Atoi(task.ID)
	if err != nil || ordinal < 0 {
		return TaskSpec{}, fmt.Errorf("line %d: invalid task id %q", lineno, task.ID)
	}
	task.Ordinal = ordinal

	if task.Exec == "" || task.ConfigPath == "" || task.LogPath == "" {
		return TaskSpec{}, fmt.Errorf("line %d: empty field in task entry", lineno)
	}
	return task, nil
}
