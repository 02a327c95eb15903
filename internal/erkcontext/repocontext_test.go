package erkcontext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erkhq/erk/internal/vcs"
)

func TestDiscoverRootWalksUpToGitEntry(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	git := vcs.NewFake("main")
	found, err := DiscoverRoot(context.Background(), git, nested)
	require.NoError(t, err)
	require.Equal(t, root, found)
}

func TestDiscoverRootFailsOutsideRepo(t *testing.T) {
	dir := t.TempDir()
	git := vcs.NewFake("main")
	_, err := DiscoverRoot(context.Background(), git, dir)
	require.Error(t, err)
}

func TestBuildRepoContextUsesOverrideTrunk(t *testing.T) {
	git := vcs.NewFake("main")
	rc, err := BuildRepoContext(context.Background(), git, "/repo/myproj", "/home/dev/.erks", "develop")
	require.NoError(t, err)
	require.Equal(t, "myproj", rc.RepoName)
	require.Equal(t, "develop", rc.TrunkBranch)
	require.Equal(t, "/home/dev/.erks/myproj", rc.ErksDir)
}

func TestBuildRepoContextResolvesDefaultBranch(t *testing.T) {
	git := vcs.NewFake("main")
	rc, err := BuildRepoContext(context.Background(), git, "/repo/myproj", "/home/dev/.erks", "")
	require.NoError(t, err)
	require.Equal(t, "main", rc.TrunkBranch)
}
