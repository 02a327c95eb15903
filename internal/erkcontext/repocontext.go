// Package erkcontext builds RepoContext and Context, the per-invocation
// immutable records built once per command. Reconstruction is required
// after changing the working directory, deleting a worktree that was
// the cwd, or switching repos via checkout; contexts are never shared
// across goroutines.
package erkcontext

import (
	"context"
	"os"
	"path/filepath"

	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/vcs"
)

// RepoContext is the immutable record of a repo's identity: root,
// repo name, erks directory, and trunk branch.
type RepoContext struct {
	Root        string
	RepoName    string
	ErksDir     string
	TrunkBranch string
}

// DiscoverRoot walks up from start until a .git entry (file or
// directory) is found, then resolves the canonical root via
// vcs.Git.RepoRoot (`git rev-parse --show-toplevel`).
func DiscoverRoot(ctx context.Context, git vcs.Git, start string) (string, error) {
	dir := start
	for {
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			root, err := git.RepoRoot(ctx, dir)
			if err != nil {
				return "", domainerr.Wrap(domainerr.KindEnvironment, "resolving repo root", err)
			}
			return root, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", domainerr.New(domainerr.KindUserInput, "not inside a git repository")
		}
		dir = parent
	}
}

// BuildRepoContext constructs a RepoContext for repoRoot under erksRoot,
// resolving trunk_branch from the per-repo override (if set) or from
// refs/remotes/origin/HEAD.
func BuildRepoContext(ctx context.Context, git vcs.Git, repoRoot, erksRoot, trunkOverride string) (*RepoContext, error) {
	repoName := filepath.Base(repoRoot)
	trunk := trunkOverride
	if trunk == "" {
		resolved, err := git.DefaultBranch(ctx, repoRoot)
		if err != nil {
			return nil, domainerr.Wrap(domainerr.KindEnvironment, "resolving trunk branch", err)
		}
		trunk = resolved
	}
	return &RepoContext{
		Root:        repoRoot,
		RepoName:    repoName,
		ErksDir:     filepath.Join(erksRoot, repoName),
		TrunkBranch: trunk,
	}, nil
}
