package activation

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erkhq/erk/internal/clockcap"
)

func TestWriteProducesCdScript(t *testing.T) {
	dir := t.TempDir()
	clock := clockcap.NewFakeClock(time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC))
	w := NewWriter(filepath.Join(dir, "activation-scripts"), clock)

	path, err := w.writeScript(Script{Cwd: "/repo/.erks/feature-x", Env: []string{"PORT=8080"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "cd '/repo/.erks/feature-x'")
	require.Contains(t, string(data), "export PORT=8080")
}

func TestWriteSatisfiesScriptWriterInterface(t *testing.T) {
	dir := t.TempDir()
	clock := clockcap.NewFakeClock(time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC))
	w := NewWriter(filepath.Join(dir, "activation-scripts"), clock)

	path, err := w.Write(context.Background(), "/repo/.erks/feature-x", []string{"PORT=8080"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "cd '/repo/.erks/feature-x'")
	require.Contains(t, string(data), "export PORT=8080")
}

func TestShellQuoteEscapesSingleQuotes(t *testing.T) {
	require.Equal(t, `'it'\''s'`, shellQuote("it's"))
}
