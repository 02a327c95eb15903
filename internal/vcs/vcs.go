// Package vcs wraps git behind a single Git interface with four
// implementations: Real, DryRun, Printing, and Fake.
//
// Real shells out to git with plain exec.CommandContext calls and
// trimmed-output parsing; the interface lets callers swap in DryRun,
// Printing, or Fake for --dry-run mode, verbose tracing, and tests.
package vcs

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/subprocess"
)

// FileStatus is the parsed result of `git status --porcelain`.
type FileStatus struct {
	Staged   []string
	Modified []string
	Untracked []string
}

// Worktree describes one entry from `git worktree list --porcelain`.
type Worktree struct {
	Path   string
	Branch string
	Head   string
	Bare   bool
	Locked bool
}

// Git is the capability interface every worktree/status/plan component
// depends on instead of shelling out directly.
type Git interface {
	ListWorktrees(ctx context.Context, root string) ([]Worktree, error)
	AddWorktree(ctx context.Context, root, path, branch string) error
	RemoveWorktree(ctx context.Context, root, path string, force bool) error
	PruneWorktrees(ctx context.Context, root string) error
	CreateBranch(ctx context.Context, root, name, ref string) error
	CheckoutBranch(ctx context.Context, root, name string) error
	DeleteBranch(ctx context.Context, root, name string, force bool) error
	BranchExists(ctx context.Context, root, name string) (bool, error)
	CurrentBranch(ctx context.Context, root string) (string, error)
	DefaultBranch(ctx context.Context, root string) (string, error)
	GitCommonDir(ctx context.Context, root string) (string, error)
	RepoRoot(ctx context.Context, dir string) (string, error)
	PathExists(ctx context.Context, path string) (bool, error)
	GetFileStatus(ctx context.Context, root string) (FileStatus, error)
	BranchExistsOnRemote(ctx context.Context, root, branch string) (bool, error)
	PushBranch(ctx context.Context, root, branch string) error
	RemoteURL(ctx context.Context, root, remote string) (string, error)
	MoveWorktree(ctx context.Context, root, oldPath, newPath, oldBranch, newBranch string) error
}

// Real is the production Git backed by the subprocess Runner.
type Real struct {
	Run subprocess.Runner
}

// NewReal constructs a Real Git capability.
func NewReal(run subprocess.Runner) *Real {
	return &Real{Run: run}
}

func (g *Real) git(ctx context.Context, root string, args ...string) (string, error) {
	res, err := g.Run.Run(ctx, root, "git", args...)
	if err != nil {
		return "", domainerr.Wrap(domainerr.KindSubprocess, "git "+args[0]+" failed", err).
			WithDetails(res.Stderr)
	}
	return res.Stdout, nil
}

// ListWorktrees implements Git via `git worktree list --porcelain`.
func (g *Real) ListWorktrees(ctx context.Context, root string) ([]Worktree, error) {
	out, err := g.git(ctx, root, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreePorcelain(out), nil
}

func parseWorktreePorcelain(out string) []Worktree {
	var worktrees []Worktree
	var cur *Worktree
	flush := func() {
		if cur != nil {
			worktrees = append(worktrees, *cur)
			cur = nil
		}
	}
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			cur = &Worktree{Path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "HEAD "):
			if cur != nil {
				cur.Head = strings.TrimPrefix(line, "HEAD ")
			}
		case strings.HasPrefix(line, "branch "):
			if cur != nil {
				cur.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
			}
		case line == "bare":
			if cur != nil {
				cur.Bare = true
			}
		case strings.HasPrefix(line, "locked"):
			if cur != nil {
				cur.Locked = true
			}
		}
	}
	flush()
	return worktrees
}

// AddWorktree implements Git via `git worktree add`.
func (g *Real) AddWorktree(ctx context.Context, root, path, branch string) error {
	args := []string{"worktree", "add", path}
	if branch != "" {
		args = append(args, branch)
	}
	_, err := g.git(ctx, root, args...)
	return err
}

// RemoveWorktree implements Git via `git worktree remove`.
func (g *Real) RemoveWorktree(ctx context.Context, root, path string, force bool) error {
	args := []string{"worktree", "remove", path}
	if force {
		args = append(args, "--force")
	}
	_, err := g.git(ctx, root, args...)
	return err
}

// PruneWorktrees implements Git via `git worktree prune`, clearing stale
// registrations for worktree directories that no longer exist.
func (g *Real) PruneWorktrees(ctx context.Context, root string) error {
	_, err := g.git(ctx, root, "worktree", "prune")
	return err
}

// CreateBranch implements Git via `git branch <name> <ref>`.
func (g *Real) CreateBranch(ctx context.Context, root, name, ref string) error {
	_, err := g.git(ctx, root, "branch", name, ref)
	return err
}

// CheckoutBranch implements Git via `git checkout <name>`.
func (g *Real) CheckoutBranch(ctx context.Context, root, name string) error {
	_, err := g.git(ctx, root, "checkout", name)
	return err
}

// DeleteBranch implements Git via `git branch -d/-D <name>`.
func (g *Real) DeleteBranch(ctx context.Context, root, name string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := g.git(ctx, root, "branch", flag, name)
	return err
}

// BranchExists implements Git via `git show-ref --verify`.
func (g *Real) BranchExists(ctx context.Context, root, name string) (bool, error) {
	_, err := g.git(ctx, root, "show-ref", "--verify", "--quiet", "refs/heads/"+name)
	if err != nil {
		var subErr *subprocess.Error
		if errors.As(err, &subErr) && subErr.ExitCode == 1 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CurrentBranch implements Git via `git rev-parse --abbrev-ref HEAD`.
func (g *Real) CurrentBranch(ctx context.Context, root string) (string, error) {
	out, err := g.git(ctx, root, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// DefaultBranch implements Git by resolving refs/remotes/origin/HEAD.
func (g *Real) DefaultBranch(ctx context.Context, root string) (string, error) {
	out, err := g.git(ctx, root, "symbolic-ref", "refs/remotes/origin/HEAD")
	if err != nil {
		return "", err
	}
	ref := strings.TrimSpace(out)
	return strings.TrimPrefix(ref, "refs/remotes/origin/"), nil
}

// GitCommonDir implements Git via `git rev-parse --git-common-dir`.
func (g *Real) GitCommonDir(ctx context.Context, root string) (string, error) {
	out, err := g.git(ctx, root, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RepoRoot implements Git via `git rev-parse --show-toplevel`.
func (g *Real) RepoRoot(ctx context.Context, dir string) (string, error) {
	out, err := g.git(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// PathExists implements Git (filesystem check, not a git subcommand).
func (g *Real) PathExists(ctx context.Context, path string) (bool, error) {
	_, err := g.Run.Run(ctx, "", "test", "-e", path)
	if err != nil {
		var subErr *subprocess.Error
		if errors.As(err, &subErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetFileStatus implements Git via `git status --porcelain`.
func (g *Real) GetFileStatus(ctx context.Context, root string) (FileStatus, error) {
	out, err := g.git(ctx, root, "status", "--porcelain")
	if err != nil {
		return FileStatus{}, err
	}
	return parsePorcelainStatus(out), nil
}

// BranchExistsOnRemote implements Git via `git ls-remote --heads origin`.
func (g *Real) BranchExistsOnRemote(ctx context.Context, root, branch string) (bool, error) {
	out, err := g.git(ctx, root, "ls-remote", "--heads", "origin", branch)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// PushBranch implements Git via `git push -u origin <branch>`.
func (g *Real) PushBranch(ctx context.Context, root, branch string) error {
	_, err := g.git(ctx, root, "push", "-u", "origin", branch)
	return err
}

// RemoteURL implements Git via `git config --get remote.<name>.url`.
func (g *Real) RemoteURL(ctx context.Context, root, remote string) (string, error) {
	out, err := g.git(ctx, root, "config", "--get", "remote."+remote+".url")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// MoveWorktree relocates a worktree directory in place via
// `git worktree move`, then renames its branch via `git branch -m` if the
// branch name is changing. Both git subcommands preserve the working
// directory's contents (including files git doesn't track, like .plan/)
// and the worktree's git metadata; nothing is removed and recreated.
func (g *Real) MoveWorktree(ctx context.Context, root, oldPath, newPath, oldBranch, newBranch string) error {
	if _, err := g.git(ctx, root, "worktree", "move", oldPath, newPath); err != nil {
		return err
	}
	if oldBranch != "" && newBranch != "" && oldBranch != newBranch {
		if _, err := g.git(ctx, root, "branch", "-m", oldBranch, newBranch); err != nil {
			return err
		}
	}
	return nil
}

func parsePorcelainStatus(out string) FileStatus {
	var fs FileStatus
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 3 {
			continue
		}
		x, y := line[0], line[1]
		path := strings.TrimSpace(line[2:])
		switch {
		case x == '?' && y == '?':
			fs.Untracked = append(fs.Untracked, path)
		case x != ' ' && x != '?':
			fs.Staged = append(fs.Staged, path)
			if y != ' ' {
				fs.Modified = append(fs.Modified, path)
			}
		case y != ' ':
			fs.Modified = append(fs.Modified, path)
		}
	}
	return fs
}

// unsafeChars matches characters not alphanumeric, hyphens, underscores, or dots.
var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeBranch converts a branch name into a safe filesystem-friendly string.
func SanitizeBranch(branch string) string {
	s := strings.ReplaceAll(branch, "/", "-")
	s = unsafeChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return s
}

var protectedBranches = map[string]bool{
	"main":   true,
	"master": true,
}

// IsProtectedBranch reports whether plan/apply operations must refuse to
// run against branch, because it is a trunk branch rather than a
// feature branch.
func IsProtectedBranch(branch string) bool {
	return protectedBranches[branch]
}
