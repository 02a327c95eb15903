package executor

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erkhq/erk/internal/clockcap"
	"github.com/erkhq/erk/internal/subprocess"
)

func TestRealRunBlockingReturnsClaudeOutput(t *testing.T) {
	run := subprocess.NewFake()
	run.RunFunc = func(ctx context.Context, dir, name string, args ...string) (subprocess.Result, error) {
		return subprocess.Result{Stdout: `{"result":"done"}`}, nil
	}
	clock := clockcap.NewFakeClock(time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC))
	exec := NewReal(run, clock, "")

	res, err := exec.RunBlocking(context.Background(), "/wt", "do the thing")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Contains(t, res.FilteredMessages[0], "done")
}

func TestRealRunBlockingReportsFailure(t *testing.T) {
	run := subprocess.NewFake()
	run.RunFunc = func(ctx context.Context, dir, name string, args ...string) (subprocess.Result, error) {
		return subprocess.Result{}, &subprocess.Error{Command: "claude", ExitCode: 1, Stderr: "boom"}
	}
	clock := clockcap.NewFakeClock(time.Now())
	exec := NewReal(run, clock, "")

	res, err := exec.RunBlocking(context.Background(), "/wt", "prompt")
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Contains(t, res.ErrorMessage, "boom")
}

func TestFakeExecutorRecordsCalls(t *testing.T) {
	fake := NewFake()
	_, err := fake.RunBlocking(context.Background(), "/wt", "prompt-a")
	require.NoError(t, err)
	_, err = fake.RunStreaming(context.Background(), "/wt", "prompt-b", &bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, fake.RunInteractive(context.Background(), "/wt", "prompt-c"))

	require.Equal(t, []string{"prompt-a"}, fake.BlockingCalls)
	require.Equal(t, []string{"prompt-b"}, fake.StreamingCalls)
	require.Equal(t, []string{"prompt-c"}, fake.InteractiveCalls)
}
