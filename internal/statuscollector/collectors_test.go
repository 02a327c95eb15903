package statuscollector

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erkhq/erk/internal/host"
	"github.com/erkhq/erk/internal/planfolder"
	"github.com/erkhq/erk/internal/stack"
	"github.com/erkhq/erk/internal/vcs"
)

var repo = host.Repo{Owner: "erkhq", Name: "erk"}

func TestGitStatusCollectorParsesPorcelain(t *testing.T) {
	fake := vcs.NewFake("main")
	fake.Status = vcs.FileStatus{Staged: []string{"a.go"}, Modified: []string{"b.go"}, Untracked: []string{"c.go"}}
	c := &GitStatusCollector{Git: fake}

	payload, err := c.Collect(context.Background(), "/wt", "/repo")
	require.NoError(t, err)
	result := payload.(GitStatusResult)
	require.Equal(t, []string{"a.go"}, result.Staged)
	require.Equal(t, []string{"b.go"}, result.Modified)
	require.Equal(t, []string{"c.go"}, result.Untracked)
}

func TestStackCollectorFindsPositionAndNeighbors(t *testing.T) {
	fake := stack.NewFake("main", "feature-a", "feature-b")
	c := &StackCollector{Stack: fake, Branch: "feature-a"}

	payload, err := c.Collect(context.Background(), "/wt", "/repo")
	require.NoError(t, err)
	result := payload.(StackResult)
	require.Equal(t, 1, result.Position)
	require.Equal(t, "main", result.Parent)
	require.Equal(t, "feature-b", result.Child)
}

func TestStackCollectorReturnsNilWhenUnavailable(t *testing.T) {
	c := &StackCollector{Stack: nil, Branch: "feature-a"}
	payload, err := c.Collect(context.Background(), "/wt", "/repo")
	require.NoError(t, err)
	require.Nil(t, payload)
}

func TestPRCollectorReturnsZeroValueWhenNoPR(t *testing.T) {
	fakeHost := host.NewFake()
	c := &PRCollector{Host: fakeHost, Repo: repo, Branch: "feature-a"}

	payload, err := c.Collect(context.Background(), "/wt", "/repo")
	require.NoError(t, err)
	require.Equal(t, PRResult{}, payload)
}

func TestPRCollectorReportsChecksPassing(t *testing.T) {
	fakeHost := host.NewFake()
	pr, err := fakeHost.CreatePullRequest(context.Background(), repo, "title", "body", "feature-a", "main")
	require.NoError(t, err)
	fakeHost.WorkflowRuns[1] = host.WorkflowRun{ID: 1, HeadBranch: "feature-a", Conclusion: "success"}

	c := &PRCollector{Host: fakeHost, Repo: repo, Branch: "feature-a"}
	payload, err := c.Collect(context.Background(), "/wt", "/repo")
	require.NoError(t, err)
	result := payload.(PRResult)
	require.Equal(t, pr.Number, result.Number)
	require.True(t, result.ChecksPassing)
}

func TestPlanFolderCollectorReportsProgress(t *testing.T) {
	dir := t.TempDir()
	planDir := dir + "/" + planfolder.CanonicalDir
	require.NoError(t, planfolder.WriteProgress(planDir, planfolder.Progress{CompletedSteps: 1, TotalSteps: 4}))
	require.NoError(t, os.WriteFile(planDir+"/plan.md", []byte("# Do the thing\n\nbody"), 0o644))

	c := &PlanFolderCollector{}
	payload, err := c.Collect(context.Background(), dir, "/repo")
	require.NoError(t, err)
	result := payload.(PlanFolderResult)
	require.True(t, result.Present)
	require.Equal(t, "Do the thing", result.Objective)
	require.Equal(t, 0.25, result.ProgressFraction)
}

func TestPlanFolderCollectorReportsAbsent(t *testing.T) {
	c := &PlanFolderCollector{}
	payload, err := c.Collect(context.Background(), t.TempDir(), "/repo")
	require.NoError(t, err)
	require.Equal(t, PlanFolderResult{Present: false}, payload)
}

func TestRelatedWorktreesCollectorListsSiblingsUnderErksDir(t *testing.T) {
	fake := vcs.NewFake("main")
	fake.Worktrees = []vcs.Worktree{
		{Path: "/repo"},
		{Path: "/erks/feature-a"},
		{Path: "/erks/feature-b"},
	}
	c := &RelatedWorktreesCollector{Git: fake, ErksDir: "/erks"}

	payload, err := c.Collect(context.Background(), "/erks/feature-a", "/repo")
	require.NoError(t, err)
	result := payload.(RelatedWorktreesResult)
	require.Equal(t, []string{"feature-b"}, result.Siblings)
}
