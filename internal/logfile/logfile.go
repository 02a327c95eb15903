// Package logfile tees session output to a timestamped JSONL file under
// {worktree}/.plan/logs/. Nothing in erk reads these files back.
package logfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/erkhq/erk/internal/clockcap"
)

// Writer tees JSONL session-event lines to a log file.
type Writer struct {
	file *os.File
}

// New creates a new log writer under logsDir, naming the file from
// clock's current time.
func New(clock clockcap.Clock, logsDir string) (*Writer, error) {
	if err := os.MkdirAll(logsDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating logs dir: %w", err)
	}

	name := clock.Now().Format("20060102-150405") + ".jsonl"
	path := filepath.Join(logsDir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}

	return &Writer{file: f}, nil
}

// Path returns the path to the log file.
func (w *Writer) Path() string {
	return w.file.Name()
}

// Write implements io.Writer, writing raw bytes to the log file.
func (w *Writer) Write(p []byte) (int, error) {
	return w.file.Write(p)
}

// Close closes the log file.
func (w *Writer) Close() error {
	return w.file.Close()
}
