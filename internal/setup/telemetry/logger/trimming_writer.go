// Package logger provides log file writers with line-count trimming.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TrimmingWriter wraps a log file and keeps it from growing past a line
// budget. Lines are buffered as they pass through; once twice the budget
// has been written, the file is rewritten with only the newest lines.
type TrimmingWriter struct {
	mu       sync.Mutex
	out      io.Writer
	path     string
	maxLines int
	tail     []string
}

// NewTrimmingWriter wraps an open log file.
func NewTrimmingWriter(out io.Writer, maxLines int, path string) *TrimmingWriter {
	return &TrimmingWriter{
		out:      out,
		path:     path,
		maxLines: maxLines,
		tail:     make([]string, 0, 2*maxLines),
	}
}

// Write passes data through to the file and tracks the line tail,
// trimming the file when the budget is exceeded.
func (w *TrimmingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.out.Write(p)
	if err != nil {
		return n, err
	}

	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}

		w.tail = append(w.tail, line)
	}

	if len(w.tail) >= 2*w.maxLines {
		if err := w.trim(); err != nil {
			return n, fmt.Errorf("failed to trim log file: %w", err)
		}
	}

	return n, nil
}

// trim rewrites the log file with only the newest maxLines lines and
// reopens it for appending.
func (w *TrimmingWriter) trim() error {
	keep := w.tail[len(w.tail)-w.maxLines:]

	temp, err := os.CreateTemp(filepath.Dir(w.path), "trim-log-")
	if err != nil {
		return err
	}

	tempPath := temp.Name()

	if _, err := temp.WriteString(strings.Join(keep, "\n") + "\n"); err != nil {
		temp.Close()
		os.Remove(tempPath)

		return err
	}

	if err := temp.Sync(); err != nil {
		temp.Close()
		os.Remove(tempPath)

		return err
	}

	temp.Close()

	if closer, ok := w.out.(io.Closer); ok {
		closer.Close()
	}

	// Windows cannot rename over an open file.
	os.Remove(w.path)

	if err := os.Rename(tempPath, w.path); err != nil {
		return err
	}

	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	w.out = file
	w.tail = append(w.tail[:0], keep...)

	return nil
}
