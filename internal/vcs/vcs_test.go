package vcs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeBranch(t *testing.T) {
	require.Equal(t, "feature-foo-bar", SanitizeBranch("feature/foo bar"))
	require.Equal(t, "weird", SanitizeBranch("--weird--"))
}

func TestIsProtectedBranch(t *testing.T) {
	require.True(t, IsProtectedBranch("main"))
	require.True(t, IsProtectedBranch("master"))
	require.False(t, IsProtectedBranch("feature-x"))
}

func TestParseWorktreePorcelain(t *testing.T) {
	out := "worktree /repo\nHEAD abc123\nbranch refs/heads/main\n\n" +
		"worktree /repo/.erks/foo\nHEAD def456\nbranch refs/heads/foo\n"
	worktrees := parseWorktreePorcelain(out)
	require.Len(t, worktrees, 2)
	require.Equal(t, "/repo", worktrees[0].Path)
	require.Equal(t, "main", worktrees[0].Branch)
	require.Equal(t, "foo", worktrees[1].Branch)
}

func TestParsePorcelainStatus(t *testing.T) {
	out := "M  staged.go\n M modified.go\n?? new.go\n"
	fs := parsePorcelainStatus(out)
	require.Equal(t, []string{"staged.go"}, fs.Staged)
	require.Equal(t, []string{"modified.go"}, fs.Modified)
	require.Equal(t, []string{"new.go"}, fs.Untracked)
}
