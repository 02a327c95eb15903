package logfile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erkhq/erk/internal/clockcap"
)

func TestNewWritesToTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	clock := clockcap.NewFakeClock(time.Date(2026, 7, 31, 9, 30, 0, 0, time.UTC))

	w, err := New(clock, filepath.Join(dir, "logs"))
	require.NoError(t, err)
	defer w.Close()

	require.Contains(t, w.Path(), "20260731-093000.jsonl")

	n, err := w.Write([]byte(`{"type":"text"}` + "\n"))
	require.NoError(t, err)
	require.Greater(t, n, 0)
}
