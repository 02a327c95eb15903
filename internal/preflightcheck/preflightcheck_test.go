package preflightcheck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erkhq/erk/internal/vcs"
)

func writePlan(t *testing.T, worktree string) {
	t.Helper()
	planDir := filepath.Join(worktree, ".plan")
	require.NoError(t, os.MkdirAll(planDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(planDir, "plan.md"), []byte("# Plan\n\nDo the thing.\n"), 0o644))
}

func TestCheckFailsWhenWorktreeMissing(t *testing.T) {
	git := vcs.NewFake("main")
	err := Check(context.Background(), git, Options{
		RepoRoot:     "/repo",
		WorktreePath: "/repo/.erks/missing",
		Branch:       "feature/x",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestCheckFailsWhenWorktreeDirty(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir)

	git := vcs.NewFake("main")
	git.Files[dir] = true
	git.Status = vcs.FileStatus{Modified: []string{"main.go"}}

	err := Check(context.Background(), git, Options{
		RepoRoot:     "/repo",
		WorktreePath: dir,
		Branch:       "feature/x",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "uncommitted changes")
}

func TestCheckAllowsDirtyWorktreeWhenDangerous(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir)

	git := vcs.NewFake("main")
	git.Files[dir] = true
	git.Status = vcs.FileStatus{Modified: []string{"main.go"}}

	err := Check(context.Background(), git, Options{
		RepoRoot:     "/repo",
		WorktreePath: dir,
		Branch:       "feature/x",
		Dangerous:    true,
	})
	require.NoError(t, err)
}

func TestCheckFailsWhenPlanMissing(t *testing.T) {
	dir := t.TempDir()

	git := vcs.NewFake("main")
	git.Files[dir] = true

	err := Check(context.Background(), git, Options{
		RepoRoot:     "/repo",
		WorktreePath: dir,
		Branch:       "feature/x",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no plan found")
}

func TestCheckForSubmitPushesBranchNotOnRemote(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir)

	git := vcs.NewFake("main")
	git.Files[dir] = true

	err := Check(context.Background(), git, Options{
		RepoRoot:     "/repo",
		WorktreePath: dir,
		Branch:       "feature/x",
		ForSubmit:    true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"feature/x"}, git.PushedBranches)
	require.True(t, git.RemoteBranches["feature/x"])
}

func TestCheckForSubmitSkipsPushWhenBranchAlreadyOnRemote(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir)

	git := vcs.NewFake("main")
	git.Files[dir] = true
	git.RemoteBranches["feature/x"] = true

	err := Check(context.Background(), git, Options{
		RepoRoot:     "/repo",
		WorktreePath: dir,
		Branch:       "feature/x",
		ForSubmit:    true,
	})
	require.NoError(t, err)
	require.Empty(t, git.PushedBranches)
}

func TestCheckSkipsRemoteBranchChecksWhenNotForSubmit(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir)

	git := vcs.NewFake("main")
	git.Files[dir] = true

	err := Check(context.Background(), git, Options{
		RepoRoot:     "/repo",
		WorktreePath: dir,
		Branch:       "feature/x",
	})
	require.NoError(t, err)
	require.Empty(t, git.PushedBranches)
}
