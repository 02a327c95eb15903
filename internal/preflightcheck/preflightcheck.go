// Package preflightcheck verifies a worktree and its plan are in a
// runnable state before `implement` or `submit` drive the assistant.
//
// Check runs an ordered sequence of steps that returns on the first
// failure, each step wrapping its error with which check failed. It
// never auto-commits .plan/ — that directory is never committed.
package preflightcheck

import (
	"context"
	"path/filepath"

	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/planfolder"
	"github.com/erkhq/erk/internal/vcs"
)

// Options configures which checks run.
type Options struct {
	RepoRoot     string
	WorktreePath string
	Branch       string
	// ForSubmit additionally requires the branch to exist on the
	// remote, pushing it if missing.
	ForSubmit bool
	// Dangerous skips the clean-worktree requirement.
	Dangerous bool
}

// Check runs the ordered preflight sequence, stopping at the first
// failure.
func Check(ctx context.Context, git vcs.Git, opts Options) error {
	exists, err := git.PathExists(ctx, opts.WorktreePath)
	if err != nil {
		return domainerr.Wrap(domainerr.KindEnvironment, "preflight: checking worktree path", err)
	}
	if !exists {
		return domainerr.New(domainerr.KindUserInput, "worktree does not exist: "+opts.WorktreePath)
	}

	if !opts.Dangerous {
		status, err := git.GetFileStatus(ctx, opts.WorktreePath)
		if err != nil {
			return domainerr.Wrap(domainerr.KindEnvironment, "preflight: checking worktree status", err)
		}
		if len(status.Staged) > 0 || len(status.Modified) > 0 {
			return domainerr.New(domainerr.KindUserInput,
				"worktree has uncommitted changes; commit them or pass --dangerous")
		}
	}

	planDir := planfolder.DirFor(opts.WorktreePath)
	body, err := planfolder.ReadPlanBody(planDir)
	if err != nil {
		return domainerr.Wrap(domainerr.KindEnvironment, "preflight: reading plan", err)
	}
	if body == "" {
		return domainerr.New(domainerr.KindUserInput,
			"no plan found at "+filepath.Join(planDir, "plan.md")+"; run plan-save first")
	}

	if opts.ForSubmit {
		onRemote, err := git.BranchExistsOnRemote(ctx, opts.RepoRoot, opts.Branch)
		if err != nil {
			return domainerr.Wrap(domainerr.KindEnvironment, "preflight: checking remote branch", err)
		}
		if !onRemote {
			if err := git.PushBranch(ctx, opts.RepoRoot, opts.Branch); err != nil {
				return domainerr.Wrap(domainerr.KindEnvironment, "preflight: pushing branch", err)
			}
		}
	}

	return nil
}
