package worktree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erkhq/erk/internal/config"
	"github.com/erkhq/erk/internal/erkcontext"
	"github.com/erkhq/erk/internal/vcs"
)

func newTestManager() (*Manager, *vcs.Fake, *erkcontext.FakeFS) {
	git := vcs.NewFake("main")
	fs := erkcontext.NewFakeFS()
	return NewManager(git, fs, nil), git, fs
}

func TestCreateDerivesNameFromPlanTitle(t *testing.T) {
	ctx := context.Background()
	m, git, _ := newTestManager()
	repo := &erkcontext.RepoContext{Root: "/repo", RepoName: "repo", ErksDir: "/repo/.erks", TrunkBranch: "main"}

	wt, err := m.Create(ctx, repo, nil, FeatureRequest{PlanTitle: "Add Login Flow"})
	require.NoError(t, err)
	require.Equal(t, "add-login-flow", wt.Name)
	require.Equal(t, []string{"/repo/.erks/add-login-flow"}, git.AddedWorktrees)
}

func TestCreateRejectsExistingPath(t *testing.T) {
	ctx := context.Background()
	m, git, _ := newTestManager()
	repo := &erkcontext.RepoContext{Root: "/repo", RepoName: "repo", ErksDir: "/repo/.erks", TrunkBranch: "main"}
	git.Files["/repo/.erks/foo"] = true

	_, err := m.Create(ctx, repo, nil, FeatureRequest{Name: "foo"})
	require.Error(t, err)
}

func TestCreateWritesPlanArtifacts(t *testing.T) {
	ctx := context.Background()
	m, _, fs := newTestManager()
	repo := &erkcontext.RepoContext{Root: "/repo", RepoName: "repo", ErksDir: "/repo/.erks", TrunkBranch: "main"}

	wt, err := m.Create(ctx, repo, nil, FeatureRequest{Name: "foo", PlanBody: "# Plan", TotalSteps: 3})
	require.NoError(t, err)

	data, err := fs.ReadFile(wt.Path + "/.plan/plan.md")
	require.NoError(t, err)
	require.Equal(t, "# Plan", string(data))

	progress, err := fs.ReadFile(wt.Path + "/.plan/progress.md")
	require.NoError(t, err)
	require.Contains(t, string(progress), "total_steps: 3")
}

func TestCreateResolvesEnvArtifact(t *testing.T) {
	ctx := context.Background()
	m, _, fs := newTestManager()
	repo := &erkcontext.RepoContext{Root: "/repo", RepoName: "repo", ErksDir: "/repo/.erks", TrunkBranch: "main"}
	repoCfg := &config.RepoConfig{Env: map[string]string{"PORT": "8080"}}

	wt, err := m.Create(ctx, repo, repoCfg, FeatureRequest{Name: "foo"})
	require.NoError(t, err)

	data, err := fs.ReadFile(wt.Path + "/.plan/env")
	require.NoError(t, err)
	require.Contains(t, string(data), "PORT=8080")
}

func TestDeleteRemovesWorktreeAndBranch(t *testing.T) {
	ctx := context.Background()
	m, git, _ := newTestManager()
	repo := &erkcontext.RepoContext{Root: "/repo", RepoName: "repo", ErksDir: "/repo/.erks", TrunkBranch: "main"}
	require.NoError(t, git.AddWorktree(ctx, "/repo", "/repo/.erks/foo", "foo"))

	require.NoError(t, m.Delete(ctx, repo, "foo", true, false))
	require.Equal(t, []string{"/repo/.erks/foo"}, git.RemovedWorktrees)
	require.Equal(t, []string{"foo"}, git.DeletedBranches)
}

func TestDeleteRejectsReservedName(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager()
	repo := &erkcontext.RepoContext{Root: "/repo", ErksDir: "/repo/.erks"}
	require.Error(t, m.Delete(ctx, repo, "root", false, false))
}

func TestRenameMovesWorktreeAndBranchInPlace(t *testing.T) {
	ctx := context.Background()
	m, git, _ := newTestManager()
	repo := &erkcontext.RepoContext{Root: "/repo", ErksDir: "/repo/.erks"}
	require.NoError(t, git.AddWorktree(ctx, "/repo", "/repo/.erks/foo", "foo"))

	require.NoError(t, m.Rename(ctx, repo, "foo", "bar"))
	require.Equal(t, []string{"/repo/.erks/foo -> /repo/.erks/bar"}, git.MovedWorktrees)
	require.Empty(t, git.RemovedWorktrees, "rename must not remove the worktree directory")
	require.Empty(t, git.AddedWorktrees, "rename must not recreate the worktree from scratch")
	require.False(t, git.Branches["foo"])
	require.True(t, git.Branches["bar"])
	require.Equal(t, vcs.Worktree{Path: "/repo/.erks/bar", Branch: "bar"}, git.Worktrees[0])
}
