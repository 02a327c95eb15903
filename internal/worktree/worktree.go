package worktree

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/erkhq/erk/internal/config"
	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/erkcontext"
	"github.com/erkhq/erk/internal/vcs"
)

// Worktree is a named working directory at {erks_dir}/{name}.
type Worktree struct {
	Name   string
	Path   string
	Branch string
	IsRoot bool
}

// FeatureRequest is the two-shape input to Create: either an explicit
// name or a plan title to sanitize into one.
type FeatureRequest struct {
	Name       string // explicit --name, takes precedence
	PlanTitle  string // sanitized into worktree_name when Name is empty
	PlanBody   string // written to .plan/plan.md when non-empty
	TotalSteps int
}

// Manager creates, deletes, renames, and consolidates worktrees.
type Manager struct {
	Git    vcs.Git
	FS     erkcontext.FS
	Runner PostCreateRunner
}

// PostCreateRunner executes post_create_commands in the configured
// shell with cwd set to the new worktree.
type PostCreateRunner interface {
	RunSequence(ctx context.Context, shell, workdir string, commands []string) error
}

// NewManager constructs a Manager.
func NewManager(git vcs.Git, fs erkcontext.FS, runner PostCreateRunner) *Manager {
	return &Manager{Git: git, FS: fs, Runner: runner}
}

// Create derives a worktree name (from req.Name or by sanitizing
// req.PlanTitle), creates its branch and git worktree, materializes the
// repo's configured environment and post-create commands, and seeds
// .plan/ when req carries plan content.
func (m *Manager) Create(ctx context.Context, repo *erkcontext.RepoContext, repoCfg *config.RepoConfig, req FeatureRequest) (*Worktree, error) {
	name := req.Name
	if name == "" {
		name = SanitizeName(req.PlanTitle)
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	target := filepath.Join(repo.ErksDir, name)
	exists, err := m.Git.PathExists(ctx, target)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domainerr.New(domainerr.KindUserInput, fmt.Sprintf("worktree path already exists: %s", target))
	}

	branchExists, err := m.Git.BranchExists(ctx, repo.Root, name)
	if err != nil {
		return nil, err
	}

	if err := m.createWithRetry(ctx, repo.Root, target, name, repo.TrunkBranch, branchExists); err != nil {
		return nil, domainerr.Wrap(domainerr.KindSubprocess, "creating worktree", err)
	}

	if repoCfg != nil {
		env := repoCfg.ResolveEnv(name, nil)
		if err := writeEnvArtifact(m.FS, target, env); err != nil {
			return nil, err
		}
		if len(repoCfg.PostCreateCommands) > 0 && m.Runner != nil {
			if err := m.Runner.RunSequence(ctx, repoCfg.PostCreateShell, target, repoCfg.PostCreateCommands); err != nil {
				return nil, domainerr.Wrap(domainerr.KindSubprocess, "post_create_commands failed", err)
			}
		}
	}

	if req.PlanBody != "" {
		if err := writePlanArtifacts(m.FS, target, req.PlanBody, req.TotalSteps); err != nil {
			return nil, err
		}
	}

	return &Worktree{Name: name, Path: target, Branch: name}, nil
}

// createWithRetry mirrors the stale-registration retry shape: try once,
// `worktree prune`, then try once more.
func (m *Manager) createWithRetry(ctx context.Context, root, target, name, trunk string, branchExists bool) error {
	branchArg := name
	if !branchExists {
		if err := m.Git.CreateBranch(ctx, root, name, trunk); err == nil {
			branchExists = true
		}
	}

	err := m.Git.AddWorktree(ctx, root, target, branchArg)
	if err == nil {
		return nil
	}

	_ = m.Git.PruneWorktrees(ctx, root)

	return m.Git.AddWorktree(ctx, root, target, branchArg)
}

// Delete removes a worktree's git registration and, when deleteBranch
// is set, its branch.
func (m *Manager) Delete(ctx context.Context, repo *erkcontext.RepoContext, name string, deleteBranch, force bool) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	target := filepath.Join(repo.ErksDir, name)

	if err := m.Git.RemoveWorktree(ctx, repo.Root, target, force); err != nil {
		return domainerr.Wrap(domainerr.KindSubprocess, "removing worktree", err)
	}
	if deleteBranch {
		if err := m.Git.DeleteBranch(ctx, repo.Root, name, force); err != nil {
			return domainerr.Wrap(domainerr.KindSubprocess, "deleting branch", err)
		}
	}
	return nil
}

// Rename moves a worktree's directory and branch to newName in place,
// via a single `git worktree move` (plus a branch rename when the branch
// is tracking the worktree's old name). Unlike a remove-then-recreate,
// this never touches the working directory's contents, so an
// in-progress .plan/ folder and any uncommitted edits survive the rename.
func (m *Manager) Rename(ctx context.Context, repo *erkcontext.RepoContext, oldName, newName string) error {
	if err := ValidateName(newName); err != nil {
		return err
	}
	oldPath := filepath.Join(repo.ErksDir, oldName)
	newPath := filepath.Join(repo.ErksDir, newName)

	if err := m.Git.MoveWorktree(ctx, repo.Root, oldPath, newPath, oldName, newName); err != nil {
		return domainerr.Wrap(domainerr.KindSubprocess, "moving worktree", err)
	}
	return nil
}

// List returns the managed worktrees under erksDir, excluding the root.
func (m *Manager) List(ctx context.Context, repo *erkcontext.RepoContext) ([]Worktree, error) {
	all, err := m.Git.ListWorktrees(ctx, repo.Root)
	if err != nil {
		return nil, err
	}
	var result []Worktree
	for _, w := range all {
		isRoot := w.Path == repo.Root
		result = append(result, Worktree{
			Name:   filepath.Base(w.Path),
			Path:   w.Path,
			Branch: w.Branch,
			IsRoot: isRoot,
		})
	}
	return result, nil
}

func writeEnvArtifact(fs erkcontext.FS, worktreePath string, env []string) error {
	path := filepath.Join(worktreePath, ".plan", "env")
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domainerr.Wrap(domainerr.KindEnvironment, "creating .plan directory", err)
	}
	var data []byte
	for _, kv := range env {
		data = append(data, []byte(kv+"\n")...)
	}
	if err := fs.WriteFile(path, data, 0o644); err != nil {
		return domainerr.Wrap(domainerr.KindEnvironment, "writing env artifact", err)
	}
	return nil
}
