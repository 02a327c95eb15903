package sandbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erkhq/erk/internal/subprocess"
)

func TestAllowedDomainsMergesExtras(t *testing.T) {
	got := AllowedDomains([]string{"registry.internal.example.com"})
	require.Contains(t, got, "api.anthropic.com")
	require.Contains(t, got, "registry.internal.example.com")
}

func TestFilterEnvKeepsOnlyAllowedPrefixes(t *testing.T) {
	env := []string{"ANTHROPIC_API_KEY=sk-test", "GH_TOKEN=ghp_test", "HOME=/root", "PATH=/usr/bin"}
	got := FilterEnv(env)
	require.Contains(t, got, "ANTHROPIC_API_KEY=sk-test")
	require.Contains(t, got, "GH_TOKEN=ghp_test")
	require.NotContains(t, got, "HOME=/root")
	require.NotContains(t, got, "PATH=/usr/bin")
}

func TestBuildInvokesDockerBuild(t *testing.T) {
	run := subprocess.NewFake()
	s := NewSandbox(run)

	require.NoError(t, s.Build(context.Background(), Profile{ImageTag: "erk-sandbox"}, "."))
	require.Len(t, run.Calls, 1)
	require.Contains(t, run.Calls[0], "docker build")
	require.Contains(t, run.Calls[0], "erk-sandbox")
}

func TestRunAssistantInvokesDockerRunInteractive(t *testing.T) {
	run := subprocess.NewFake()
	s := NewSandbox(run)

	require.NoError(t, s.RunAssistant(context.Background(), Profile{ImageTag: "erk-sandbox"}, "/wt", "implement the plan"))
	require.Len(t, run.Calls, 1)
	require.Contains(t, run.Calls[0], "docker run")
}
