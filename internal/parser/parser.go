package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

const (
	lineReaderSize   = 64 * 1024
	lineMaxBytes     = 1 * 1024 * 1024
	linePreviewBytes = 256
)

type lineScratch struct {
	buf     []byte
	preview []byte
}

// ParseEventStream reads JSON-line provenance events until EOF. Malformed
// and oversized lines are reported through warnFn and skipped; a provenance
// file written by a confused executable must never fail the task itself.
func ParseEventStream(r io.Reader, warnFn func(string)) Provenance {
	if warnFn == nil {
		warnFn = func(string) {}
	}

	var prov Provenance
	reader := bufio.NewReaderSize(r, lineReaderSize)
	scratch := &lineScratch{}

	for {
		line, tooLong, err := readLineWithLimit(reader, lineMaxBytes, linePreviewBytes, scratch)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				warnFn(fmt.Sprintf("provenance stream read error: %v", err))
			}
			return prov
		}
		if tooLong {
			warnFn(fmt.Sprintf("provenance line exceeds %d bytes, skipped: %s", lineMaxBytes, TruncateBytes(line, linePreviewBytes)))
			continue
		}
		if len(line) == 0 {
			continue
		}

		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			warnFn(fmt.Sprintf("invalid provenance line, skipped: %s", TruncateBytes(line, linePreviewBytes)))
			continue
		}
		apply(&prov, ev, warnFn)
	}
}

func apply(prov *Provenance, ev Event, warnFn func(string)) {
	switch ev.Type {
	case "input":
		if ev.Filename != "" {
			prov.Inputs = append(prov.Inputs, ev.Filename)
		}
	case "output":
		if ev.Filename != "" {
			prov.Outputs = append(prov.Outputs, ev.Filename)
		}
	case "status":
		if ev.Note != "" {
			prov.Notes = append(prov.Notes, ev.Note)
		}
	default:
		warnFn(fmt.Sprintf("unknown provenance event type %q", ev.Type))
	}
}

// readLineWithLimit reads one line, bounding how much of an oversized line
// is kept. When a line exceeds maxBytes the returned slice holds only the
// first previewBytes of it and tooLong is set.
func readLineWithLimit(r *bufio.Reader, maxBytes int, previewBytes int, scratch *lineScratch) (line []byte, tooLong bool, err error) {
	if r == nil {
		return nil, false, errors.New("reader is nil")
	}
	if maxBytes <= 0 {
		return nil, false, errors.New("maxBytes must be > 0")
	}
	if previewBytes < 0 {
		previewBytes = 0
	}

	part, isPrefix, err := r.ReadLine()
	if err != nil {
		return nil, false, err
	}

	if !isPrefix {
		if len(part) > maxBytes {
			return part[:min(len(part), previewBytes)], true, nil
		}
		return part, false, nil
	}

	if scratch == nil {
		scratch = &lineScratch{}
	}
	if scratch.preview == nil {
		scratch.preview = make([]byte, 0, min(previewBytes, len(part)))
	}
	if scratch.buf == nil {
		scratch.buf = make([]byte, 0, min(maxBytes, len(part)*2))
	}

	preview := scratch.preview[:0]
	if previewBytes > 0 {
		preview = append(preview, part[:min(previewBytes, len(part))]...)
	}

	buf := scratch.buf[:0]
	total := 0
	if len(part) > maxBytes {
		tooLong = true
	} else {
		buf = append(buf, part...)
		total = len(part)
	}

	for isPrefix {
		part, isPrefix, err = r.ReadLine()
		if err != nil {
			return nil, tooLong, err
		}

		if previewBytes > 0 && len(preview) < previewBytes {
			preview = append(preview, part[:min(previewBytes-len(preview), len(part))]...)
		}

		if !tooLong {
			if total+len(part) > maxBytes {
				tooLong = true
				continue
			}
			buf = append(buf, part...)
			total += len(part)
		}
	}

	if tooLong {
		scratch.preview = preview
		scratch.buf = buf
		return preview, true, nil
	}
	scratch.preview = preview
	scratch.buf = buf
	return buf, false, nil
}

func TruncateBytes(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	if maxLen < 0 {
		return ""
	}
	return string(b[:maxLen]) + "..."
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
