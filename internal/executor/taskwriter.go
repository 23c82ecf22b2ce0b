package executor

import (
	"fmt"
	"io"
	"strings"
	"time"

	"pipejob/internal/utils"
)

// enqueueTimeout bounds how long a channel-mode write may block when the
// scheduler is slow to drain. A timed-out chunk is dropped and logged,
// never fatal: losing a log line beats hanging a worker.
var enqueueTimeout = 5 * time.Second

// TaskWriter splits task output into lines and prefixes each one with the
// task's zero-padded ordinal, so interleaved output from concurrent tasks
// stays attributable. In direct mode the prefixed text goes straight to the
// underlying sink; in channel mode it is pushed onto the group's bounded
// output channel and the scheduler prints it.
type TaskWriter struct {
	ordinal int
	prefix  string
	direct  io.Writer
	ch      chan<- string
	timeout time.Duration
}

// NewTaskWriter returns a direct-mode writer for single-worker groups.
func NewTaskWriter(ordinal int, sink io.Writer) *TaskWriter {
	return &TaskWriter{
		ordinal: ordinal,
		prefix:  fmt.Sprintf("%04d: ", ordinal),
		direct:  sink,
	}
}

// NewChannelTaskWriter returns a channel-mode writer for pooled groups.
func NewChannelTaskWriter(ordinal int, ch chan<- string) *TaskWriter {
	return &TaskWriter{
		ordinal: ordinal,
		prefix:  fmt.Sprintf("%04d: ", ordinal),
		ch:      ch,
		timeout: enqueueTimeout,
	}
}

func (w *TaskWriter) Write(p []byte) (int, error) {
	text := strings.TrimRight(string(p), " \t\r\n")
	if text == "" {
		return len(p), nil
	}
	text = utils.SanitizeOutput(text)
	text = w.prefix + strings.ReplaceAll(text, "\n", "\n"+w.prefix)

	if w.ch != nil {
		select {
		case w.ch <- text:
		case <-time.After(w.timeout):
			logWarn(fmt.Sprintf("task %04d: output channel full, dropped %d bytes", w.ordinal, len(p)))
		}
		return len(p), nil
	}

	if _, err := fmt.Fprintln(w.direct, text); err != nil {
		return len(p), err
	}
	w.flush()
	return len(p), nil
}

func (w *TaskWriter) flush() {
	type flusher interface{ Flush() error }
	if f, ok := w.direct.(flusher); ok {
		_ = f.Flush()
	}
}

// Close releases the writer. In direct mode it hands back the original sink;
// in channel mode it is a no-op because the scheduler drains the channel.
func (w *TaskWriter) Close() io.Writer {
	if w.ch != nil {
		return nil
	}
	return w.direct
}
