package statuscollector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeCollector struct {
	name  string
	delay time.Duration
	err   error
}

func (f *fakeCollector) Name() string { return f.name }

func (f *fakeCollector) Collect(ctx context.Context, worktreePath, repoRoot string) (any, error) {
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.name + "-ok", nil
}

func TestRunReturnsResultsInInputOrder(t *testing.T) {
	collectors := []Collector{
		&fakeCollector{name: "slow", delay: 20 * time.Millisecond},
		&fakeCollector{name: "fast", delay: 0},
	}
	results := Run(context.Background(), collectors, "/wt", "/repo", time.Second)
	require.Len(t, results, 2)
	require.Equal(t, "slow", results[0].Name)
	require.Equal(t, "fast", results[1].Name)
	require.Equal(t, "slow-ok", results[0].Payload)
	require.Equal(t, "fast-ok", results[1].Payload)
}

func TestRunIsolatesOneCollectorsFailure(t *testing.T) {
	boom := errors.New("boom")
	collectors := []Collector{
		&fakeCollector{name: "broken", err: boom},
		&fakeCollector{name: "healthy"},
	}
	results := Run(context.Background(), collectors, "/wt", "/repo", time.Second)
	require.Len(t, results, 2)
	require.ErrorIs(t, results[0].Err, boom)
	require.Nil(t, results[1].Err)
	require.Equal(t, "healthy-ok", results[1].Payload)
}

func TestRunCutsOffStalledCollectorAtTimeout(t *testing.T) {
	collectors := []Collector{
		&fakeCollector{name: "stuck", delay: time.Hour},
	}
	start := time.Now()
	results := Run(context.Background(), collectors, "/wt", "/repo", 20*time.Millisecond)
	require.Less(t, time.Since(start), time.Second)
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
}
