package stack

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFakeInStack(t *testing.T) {
	ctx := context.Background()
	f := NewFake("main", "feature-a", "feature-b")

	in, err := f.InStack(ctx, "/repo", "feature-a")
	require.NoError(t, err)
	require.True(t, in)

	in, err = f.InStack(ctx, "/repo", "feature-z")
	require.NoError(t, err)
	require.False(t, in)
}

func TestDryRunRecordsWithoutMutatingInner(t *testing.T) {
	ctx := context.Background()
	inner := NewFake("main")
	dry := NewDryRun(inner)

	require.NoError(t, dry.Up(ctx, "/repo"))
	require.Equal(t, 0, inner.UpCalls)
	require.Equal(t, 1, dry.WouldUp)
}

func TestPrintingTracesRestack(t *testing.T) {
	ctx := context.Background()
	inner := NewFake("main")
	dry := NewDryRun(inner)
	var buf bytes.Buffer
	p := NewPrinting(dry, &buf)

	require.NoError(t, p.Restack(ctx, "/repo", "main"))
	require.Contains(t, buf.String(), "restack --onto main")
	require.Contains(t, buf.String(), "(dry run)")
}
