package worktree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erkhq/erk/internal/erkcontext"
)

func TestConsolidateMergesPlanFolderAndRemovesSource(t *testing.T) {
	ctx := context.Background()
	m, git, fs := newTestManager()
	repo := &erkcontext.RepoContext{Root: "/repo", RepoName: "repo", ErksDir: "/repo/.erks", TrunkBranch: "main"}
	git.Files["/repo/.erks/target"] = true
	git.Files["/repo/.erks/source"] = true
	require.NoError(t, fs.WriteFile("/repo/.erks/source/.plan/plan.md", []byte("do the thing"), 0o644))

	result, err := m.Consolidate(ctx, repo, "target", []string{"source"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"source"}, result.Merged)
	require.Empty(t, result.Skipped)
	require.Empty(t, result.Errors)
	require.Equal(t, []string{"/repo/.erks/source"}, git.RemovedWorktrees)

	data, err := fs.ReadFile("/repo/.erks/target/.plan/plan.md")
	require.NoError(t, err)
	require.Equal(t, "do the thing", string(data))
}

func TestConsolidateSkipsConflictWhenConfirmDeclines(t *testing.T) {
	ctx := context.Background()
	m, git, fs := newTestManager()
	repo := &erkcontext.RepoContext{Root: "/repo", RepoName: "repo", ErksDir: "/repo/.erks", TrunkBranch: "main"}
	git.Files["/repo/.erks/target"] = true
	git.Files["/repo/.erks/source"] = true
	require.NoError(t, fs.WriteFile("/repo/.erks/target/.plan/plan.md", []byte("existing"), 0o644))
	require.NoError(t, fs.WriteFile("/repo/.erks/source/.plan/plan.md", []byte("incoming"), 0o644))

	declineAll := func(prompt string) (bool, error) { return false, nil }
	result, err := m.Consolidate(ctx, repo, "target", []string{"source"}, declineAll)
	require.NoError(t, err)
	require.Empty(t, result.Merged)
	require.Equal(t, []string{"source"}, result.Skipped)
	require.Empty(t, git.RemovedWorktrees)

	data, err := fs.ReadFile("/repo/.erks/target/.plan/plan.md")
	require.NoError(t, err)
	require.Equal(t, "existing", string(data))
}

func TestConsolidateAggregatesPerSourceFailure(t *testing.T) {
	ctx := context.Background()
	m, git, _ := newTestManager()
	repo := &erkcontext.RepoContext{Root: "/repo", RepoName: "repo", ErksDir: "/repo/.erks", TrunkBranch: "main"}
	git.Files["/repo/.erks/target"] = true

	result, err := m.Consolidate(ctx, repo, "target", []string{"missing"}, nil)
	require.NoError(t, err)
	require.Empty(t, result.Merged)
	require.Error(t, result.Errors["missing"])
}
