// Package activation lets commands that must change the invoking
// shell's cwd write a sh-syntax script to a unique temp file and print
// only its path on stdout.
package activation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/erkhq/erk/internal/clockcap"
)

// Script is an ephemeral shell snippet that changes the shell's working
// directory and optionally exports env vars.
type Script struct {
	Cwd string
	Env []string
}

// Writer materializes a Script to a unique temp file under an
// erk-owned activation-scripts directory and returns its path.
type Writer struct {
	Dir   string
	Clock clockcap.Clock
}

// NewWriter constructs a Writer rooted at dir (typically
// {erks_root}/.activation-scripts).
func NewWriter(dir string, clock clockcap.Clock) *Writer {
	return &Writer{Dir: dir, Clock: clock}
}

// Write implements erkcontext.ScriptWriter: renders a Script for cwd/env
// as POSIX sh and returns the path it was written to. ctx is unused
// since this is local, synchronous file I/O with no cancellable
// suspension point.
func (w *Writer) Write(ctx context.Context, cwd string, env []string) (string, error) {
	return w.writeScript(Script{Cwd: cwd, Env: env})
}

// writeScript is the underlying implementation, kept separate so tests
// can construct a Script directly.
func (w *Writer) writeScript(script Script) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o750); err != nil {
		return "", fmt.Errorf("creating activation-scripts dir: %w", err)
	}

	name := w.Clock.Now().Format("20060102-150405") + "-" + strconv.FormatInt(w.Clock.Now().UnixNano(), 36) + ".sh"
	path := filepath.Join(w.Dir, name)

	content := render(script)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("writing activation script: %w", err)
	}
	return path, nil
}

func render(script Script) string {
	out := fmt.Sprintf("cd %s\n", shellQuote(script.Cwd))
	for _, kv := range script.Env {
		out += fmt.Sprintf("export %s\n", kv)
	}
	return out
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
