package subprocess

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRealRunCapturesOutput(t *testing.T) {
	r := Real{}
	res, err := r.Run(context.Background(), "", "echo", "hello")
	require.NoError(t, err)
	require.Equal(t, "hello\n", res.Stdout)
}

func TestRealRunNonZeroExitWrapsError(t *testing.T) {
	r := Real{}
	_, err := r.Run(context.Background(), "", "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	var subErr *Error
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, 3, subErr.ExitCode)
	require.Contains(t, subErr.Stderr, "boom")
}

func TestRealLookPath(t *testing.T) {
	r := Real{}
	path, err := r.LookPath("sh")
	require.NoError(t, err)
	require.NotEmpty(t, path)
}

func TestFakeRecordsCalls(t *testing.T) {
	f := NewFake()
	_, err := f.Run(context.Background(), "/tmp", "git", "status")
	require.NoError(t, err)
	require.Equal(t, []string{"git status"}, f.Calls)
}

func TestFakeCustomRunFunc(t *testing.T) {
	f := NewFake()
	f.RunFunc = func(ctx context.Context, dir, name string, args ...string) (Result, error) {
		return Result{Stdout: "custom"}, nil
	}
	res, err := f.Run(context.Background(), "", "git", "status")
	require.NoError(t, err)
	require.Equal(t, "custom", res.Stdout)
}
