package logger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// errorCacheLimit bounds the in-memory cache of recent warn/error messages.
const errorCacheLimit = 100

// pidReuseWindow is how old a log file must be before an unknown process
// start time is treated as evidence the PID was recycled.
const pidReuseWindow = 7 * 24 * time.Hour

// Logger writes structured log lines to a per-process file under the system
// temp directory. Every entry is exactly one line, so the file can be scanned
// cheaply by cleanup and error extraction.
type Logger struct {
	mu     sync.Mutex
	file   *os.File
	bw     *bufio.Writer
	zl     zerolog.Logger
	path   string
	recent []string
}

// Indirection points for stale-log cleanup, replaceable in tests.
var (
	processRunningCheck = isProcessRunning
	processStartTimeFn  = getProcessStartTime
	removeLogFileFn     = os.Remove
	globLogFiles        = filepath.Glob
	fileStatFn          = os.Lstat
	evalSymlinksFn      = filepath.EvalSymlinks
)

// NewLogger creates a logger at <tmpdir>/<name>-<pid>.log.
func NewLogger() (*Logger, error) {
	return newLogger("")
}

// NewLoggerWithSuffix creates a logger at <tmpdir>/<name>-<pid>-<suffix>.log.
// The suffix is sanitized so it is always safe in a file name.
func NewLoggerWithSuffix(suffix string) (*Logger, error) {
	return newLogger(sanitizeLogSuffix(suffix))
}

func newLogger(suffix string) (*Logger, error) {
	name := fmt.Sprintf("%s-%d", PrimaryLogPrefix(), os.Getpid())
	if suffix != "" {
		name = name + "-" + suffix
	}
	path := filepath.Join(os.TempDir(), name+".log")

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	l := &Logger{
		file: file,
		bw:   bufio.NewWriter(file),
		path: path,
	}
	l.zl = zerolog.New(l.bw).With().Timestamp().Logger()
	return l, nil
}

// Path returns the log file location, or "" for a nil logger.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

func (l *Logger) Debug(msg string) { l.log(zerolog.DebugLevel, msg) }
func (l *Logger) Info(msg string)  { l.log(zerolog.InfoLevel, msg) }
func (l *Logger) Warn(msg string)  { l.log(zerolog.WarnLevel, msg) }
func (l *Logger) Error(msg string) { l.log(zerolog.ErrorLevel, msg) }

func (l *Logger) log(level zerolog.Level, msg string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	l.zl.WithLevel(level).Msg(msg)
	if level >= zerolog.WarnLevel {
		l.recent = append(l.recent, msg)
		if len(l.recent) > errorCacheLimit {
			l.recent = l.recent[len(l.recent)-errorCacheLimit:]
		}
	}
}

// Flush forces buffered entries out to the file.
func (l *Logger) Flush() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bw != nil {
		_ = l.bw.Flush()
	}
}

// Close flushes and closes the log file. The file itself is kept on disk for
// post-mortem inspection; callers remove it explicitly via RemoveLogFile.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	if l.bw != nil {
		_ = l.bw.Flush()
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// RemoveLogFile deletes the log file, if any.
func (l *Logger) RemoveLogFile() error {
	if l == nil || l.path == "" {
		return nil
	}
	if err := removeLogFileFn(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ExtractRecentErrors returns up to maxEntries of the most recent warn/error
// messages, oldest first.
func (l *Logger) ExtractRecentErrors(maxEntries int) []string {
	if l == nil || l.path == "" || maxEntries <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.recent) == 0 {
		return nil
	}
	start := 0
	if len(l.recent) > maxEntries {
		start = len(l.recent) - maxEntries
	}
	out := make([]string, len(l.recent)-start)
	copy(out, l.recent[start:])
	return out
}

// CleanupStats summarizes a stale-log cleanup pass.
type CleanupStats struct {
	Scanned      int
	Deleted      int
	Kept         int
	Errors       int
	DeletedFiles []string
	KeptFiles    []string
}

// CleanupOldLogs removes log files left behind by processes that are no
// longer running. Files whose owning process is alive (and whose PID has not
// been recycled) are kept, as are files whose names cannot be parsed.
func CleanupOldLogs() (CleanupStats, error) {
	return cleanupOldLogs()
}

func cleanupOldLogs() (CleanupStats, error) {
	var stats CleanupStats
	tempDir := os.TempDir()

	var errs []error
	for _, prefix := range LogPrefixes() {
		pattern := filepath.Join(tempDir, prefix+"-*.log")
		matches, err := globLogFiles(pattern)
		if err != nil {
			return stats, fmt.Errorf("glob %s: %w", pattern, err)
		}

		for _, path := range matches {
			stats.Scanned++

			pid, ok := parsePIDFromLog(path)
			if !ok {
				stats.Kept++
				stats.KeptFiles = append(stats.KeptFiles, path)
				continue
			}

			if processRunningCheck(pid) && !isPIDReused(path, pid) {
				stats.Kept++
				stats.KeptFiles = append(stats.KeptFiles, path)
				continue
			}

			if unsafe, reason := isUnsafeFile(path, tempDir); unsafe {
				logWarn(fmt.Sprintf("skipping %s: %s", path, reason))
				stats.Kept++
				stats.KeptFiles = append(stats.KeptFiles, path)
				continue
			}

			if err := removeLogFileFn(path); err != nil {
				stats.Errors++
				errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
				continue
			}
			stats.Deleted++
			stats.DeletedFiles = append(stats.DeletedFiles, path)
		}
	}

	return stats, errors.Join(errs...)
}

// parsePIDFromLog extracts the owning PID from a log file name of the form
// <prefix>-<pid>[-<suffix>].log.
func parsePIDFromLog(path string) (int, bool) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".log")

	var rest string
	found := false
	for _, prefix := range LogPrefixes() {
		if trimmed := strings.TrimPrefix(base, prefix+"-"); trimmed != base {
			rest = trimmed
			found = true
			break
		}
	}
	if !found {
		return 0, false
	}

	pidPart := rest
	if idx := strings.Index(rest, "-"); idx >= 0 {
		pidPart = rest[:idx]
	}
	if pidPart == "" {
		return 0, false
	}

	pid, err := strconv.Atoi(pidPart)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// isPIDReused reports whether the PID named in a log file appears to belong
// to a different, newer process than the one that wrote the file.
func isPIDReused(path string, pid int) bool {
	info, err := fileStatFn(path)
	if err != nil {
		return false
	}

	start := processStartTimeFn(pid)
	if start.IsZero() {
		// Unknown start time: only distrust genuinely old files.
		return time.Since(info.ModTime()) > pidReuseWindow
	}
	return start.After(info.ModTime())
}

// isUnsafeFile rejects deletion targets that are symlinks or that resolve
// outside the temp directory.
func isUnsafeFile(path, tempDir string) (bool, string) {
	info, err := fileStatFn(path)
	if err != nil {
		return true, "cannot stat file"
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return true, "refusing to delete symlink"
	}

	resolved, err := evalSymlinksFn(path)
	if err != nil {
		return true, "cannot resolve path"
	}
	absTemp, err := filepath.Abs(tempDir)
	if err != nil {
		return true, "cannot resolve tempDir"
	}
	if resolved != absTemp && !strings.HasPrefix(resolved, absTemp+string(filepath.Separator)) {
		return true, "file is outside tempDir"
	}
	return false, ""
}

// sanitizeLogSuffix maps arbitrary input to a collision-free string that is
// safe inside a file name. Unsafe runes are hex-escaped rather than dropped
// so distinct inputs never collapse to the same name.
func sanitizeLogSuffix(raw string) string {
	if raw == "" {
		return "task"
	}
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, "_%02x", r)
		}
	}
	return b.String()
}

// SanitizeLogSuffix is the exported form used by callers that build their own
// per-task logger names.
func SanitizeLogSuffix(raw string) string { return sanitizeLogSuffix(raw) }
