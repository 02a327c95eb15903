package vcs

import (
	"context"
	"fmt"
	"io"

	"github.com/erkhq/erk/internal/trace"
)

// DryRun wraps a Git, passing reads through and recording destructive
// calls without mutating the real repository.
type DryRun struct {
	Inner Git

	// Recorded destructive-call intents, for assertions and for Printing
	// to report "(dry run)" without ever touching the filesystem.
	WouldAddWorktree    []Worktree
	WouldRemoveWorktree []string
	WouldCreateBranch   []string
	WouldCheckout       []string
	WouldDeleteBranch   []string
	WouldPrune          int
	WouldPushBranch     []string
	WouldMoveWorktree   []string
}

// NewDryRun wraps inner in a DryRun decorator.
func NewDryRun(inner Git) *DryRun { return &DryRun{Inner: inner} }

func (d *DryRun) ListWorktrees(ctx context.Context, root string) ([]Worktree, error) {
	return d.Inner.ListWorktrees(ctx, root)
}

func (d *DryRun) AddWorktree(ctx context.Context, root, path, branch string) error {
	d.WouldAddWorktree = append(d.WouldAddWorktree, Worktree{Path: path, Branch: branch})
	return nil
}

func (d *DryRun) RemoveWorktree(ctx context.Context, root, path string, force bool) error {
	d.WouldRemoveWorktree = append(d.WouldRemoveWorktree, path)
	return nil
}

func (d *DryRun) CreateBranch(ctx context.Context, root, name, ref string) error {
	d.WouldCreateBranch = append(d.WouldCreateBranch, name)
	return nil
}

func (d *DryRun) CheckoutBranch(ctx context.Context, root, name string) error {
	d.WouldCheckout = append(d.WouldCheckout, name)
	return nil
}

func (d *DryRun) DeleteBranch(ctx context.Context, root, name string, force bool) error {
	d.WouldDeleteBranch = append(d.WouldDeleteBranch, name)
	return nil
}

func (d *DryRun) PruneWorktrees(ctx context.Context, root string) error {
	d.WouldPrune++
	return nil
}

func (d *DryRun) BranchExists(ctx context.Context, root, name string) (bool, error) {
	return d.Inner.BranchExists(ctx, root, name)
}

func (d *DryRun) CurrentBranch(ctx context.Context, root string) (string, error) {
	return d.Inner.CurrentBranch(ctx, root)
}

func (d *DryRun) DefaultBranch(ctx context.Context, root string) (string, error) {
	return d.Inner.DefaultBranch(ctx, root)
}

func (d *DryRun) GitCommonDir(ctx context.Context, root string) (string, error) {
	return d.Inner.GitCommonDir(ctx, root)
}

func (d *DryRun) RepoRoot(ctx context.Context, dir string) (string, error) {
	return d.Inner.RepoRoot(ctx, dir)
}

func (d *DryRun) PathExists(ctx context.Context, path string) (bool, error) {
	return d.Inner.PathExists(ctx, path)
}

func (d *DryRun) GetFileStatus(ctx context.Context, root string) (FileStatus, error) {
	return d.Inner.GetFileStatus(ctx, root)
}

func (d *DryRun) BranchExistsOnRemote(ctx context.Context, root, branch string) (bool, error) {
	return d.Inner.BranchExistsOnRemote(ctx, root, branch)
}

func (d *DryRun) PushBranch(ctx context.Context, root, branch string) error {
	d.WouldPushBranch = append(d.WouldPushBranch, branch)
	return nil
}

func (d *DryRun) RemoteURL(ctx context.Context, root, remote string) (string, error) {
	return d.Inner.RemoteURL(ctx, root, remote)
}

func (d *DryRun) MoveWorktree(ctx context.Context, root, oldPath, newPath, oldBranch, newBranch string) error {
	d.WouldMoveWorktree = append(d.WouldMoveWorktree, oldPath+" -> "+newPath)
	return nil
}

// isDryRun is implemented by DryRun so Printing can detect it's in the
// stack and append the "(dry run)" marker.
type isDryRun interface{ dryRunMarker() bool }

func (d *DryRun) dryRunMarker() bool { return true }

// Printing wraps any Git implementation and emits a one-line command
// trace to w (the user stream, stderr in production) for every mutating
// call and for ListWorktrees; other read-only calls pass through untraced.
type Printing struct {
	Inner Git
	W     io.Writer
}

// NewPrinting wraps inner in a Printing decorator writing traces to w.
func NewPrinting(inner Git, w io.Writer) *Printing {
	return &Printing{Inner: inner, W: w}
}

func (p *Printing) isDryRun() bool {
	if dr, ok := p.Inner.(isDryRun); ok {
		return dr.dryRunMarker()
	}
	return false
}

func (p *Printing) trace(command string) {
	trace.Line(p.W, command, p.isDryRun())
}

func (p *Printing) ListWorktrees(ctx context.Context, root string) ([]Worktree, error) {
	p.trace(fmt.Sprintf("git -C %s worktree list --porcelain", root))
	return p.Inner.ListWorktrees(ctx, root)
}

func (p *Printing) AddWorktree(ctx context.Context, root, path, branch string) error {
	p.trace(fmt.Sprintf("git -C %s worktree add %s %s", root, path, branch))
	return p.Inner.AddWorktree(ctx, root, path, branch)
}

func (p *Printing) RemoveWorktree(ctx context.Context, root, path string, force bool) error {
	p.trace(fmt.Sprintf("git -C %s worktree remove %s", root, path))
	return p.Inner.RemoveWorktree(ctx, root, path, force)
}

func (p *Printing) CreateBranch(ctx context.Context, root, name, ref string) error {
	p.trace(fmt.Sprintf("git -C %s branch %s %s", root, name, ref))
	return p.Inner.CreateBranch(ctx, root, name, ref)
}

func (p *Printing) CheckoutBranch(ctx context.Context, root, name string) error {
	p.trace(fmt.Sprintf("git -C %s checkout %s", root, name))
	return p.Inner.CheckoutBranch(ctx, root, name)
}

func (p *Printing) DeleteBranch(ctx context.Context, root, name string, force bool) error {
	p.trace(fmt.Sprintf("git -C %s branch -d %s", root, name))
	return p.Inner.DeleteBranch(ctx, root, name, force)
}

func (p *Printing) PruneWorktrees(ctx context.Context, root string) error {
	p.trace(fmt.Sprintf("git -C %s worktree prune", root))
	return p.Inner.PruneWorktrees(ctx, root)
}

func (p *Printing) BranchExists(ctx context.Context, root, name string) (bool, error) {
	return p.Inner.BranchExists(ctx, root, name)
}

func (p *Printing) CurrentBranch(ctx context.Context, root string) (string, error) {
	return p.Inner.CurrentBranch(ctx, root)
}

func (p *Printing) DefaultBranch(ctx context.Context, root string) (string, error) {
	return p.Inner.DefaultBranch(ctx, root)
}

func (p *Printing) GitCommonDir(ctx context.Context, root string) (string, error) {
	return p.Inner.GitCommonDir(ctx, root)
}

func (p *Printing) RepoRoot(ctx context.Context, dir string) (string, error) {
	return p.Inner.RepoRoot(ctx, dir)
}

func (p *Printing) PathExists(ctx context.Context, path string) (bool, error) {
	return p.Inner.PathExists(ctx, path)
}

func (p *Printing) GetFileStatus(ctx context.Context, root string) (FileStatus, error) {
	return p.Inner.GetFileStatus(ctx, root)
}

func (p *Printing) BranchExistsOnRemote(ctx context.Context, root, branch string) (bool, error) {
	return p.Inner.BranchExistsOnRemote(ctx, root, branch)
}

func (p *Printing) PushBranch(ctx context.Context, root, branch string) error {
	p.trace(fmt.Sprintf("git -C %s push -u origin %s", root, branch))
	return p.Inner.PushBranch(ctx, root, branch)
}

func (p *Printing) RemoteURL(ctx context.Context, root, remote string) (string, error) {
	return p.Inner.RemoteURL(ctx, root, remote)
}

func (p *Printing) MoveWorktree(ctx context.Context, root, oldPath, newPath, oldBranch, newBranch string) error {
	p.trace(fmt.Sprintf("git -C %s worktree move %s %s", root, oldPath, newPath))
	if oldBranch != "" && newBranch != "" && oldBranch != newBranch {
		p.trace(fmt.Sprintf("git -C %s branch -m %s %s", root, oldBranch, newBranch))
	}
	return p.Inner.MoveWorktree(ctx, root, oldPath, newPath, oldBranch, newBranch)
}

// Fake is an in-memory Git for tests. Constructor-only initial state;
// mutation operations update state and record the call in the
// corresponding tracking slice (AddedWorktrees, RemovedWorktrees, ...).
type Fake struct {
	Worktrees []Worktree
	Branches  map[string]bool
	Current   string
	Default   string
	CommonDir string
	// Root is the canonical repo root RepoRoot resolves to, standing in
	// for `git rev-parse --show-toplevel` in tests.
	Root string
	Files     map[string]bool
	Status    FileStatus
	// RemoteBranches tracks which branches exist on the remote, for
	// BranchExistsOnRemote. PushBranch adds to this set.
	RemoteBranches map[string]bool
	// Remotes maps remote name ("origin") to its configured URL, for
	// RemoteURL.
	Remotes map[string]string

	AddedWorktrees   []string
	RemovedWorktrees []string
	CreatedBranches  []string
	CheckedOutTo     []string
	DeletedBranches  []string
	PruneCalls       int
	PushedBranches   []string
	MovedWorktrees   []string
}

// NewFake constructs a Fake with the given default branch already present.
func NewFake(defaultBranch string) *Fake {
	return &Fake{
		Branches:       map[string]bool{defaultBranch: true},
		Current:        defaultBranch,
		Default:        defaultBranch,
		Files:          map[string]bool{},
		RemoteBranches: map[string]bool{},
	}
}

func (f *Fake) ListWorktrees(ctx context.Context, root string) ([]Worktree, error) {
	return append([]Worktree(nil), f.Worktrees...), nil
}

func (f *Fake) AddWorktree(ctx context.Context, root, path, branch string) error {
	f.Worktrees = append(f.Worktrees, Worktree{Path: path, Branch: branch})
	f.AddedWorktrees = append(f.AddedWorktrees, path)
	if branch != "" {
		f.Branches[branch] = true
	}
	return nil
}

func (f *Fake) RemoveWorktree(ctx context.Context, root, path string, force bool) error {
	filtered := f.Worktrees[:0]
	for _, w := range f.Worktrees {
		if w.Path != path {
			filtered = append(filtered, w)
		}
	}
	f.Worktrees = filtered
	f.RemovedWorktrees = append(f.RemovedWorktrees, path)
	return nil
}

func (f *Fake) CreateBranch(ctx context.Context, root, name, ref string) error {
	f.Branches[name] = true
	f.CreatedBranches = append(f.CreatedBranches, name)
	return nil
}

func (f *Fake) CheckoutBranch(ctx context.Context, root, name string) error {
	f.Current = name
	f.CheckedOutTo = append(f.CheckedOutTo, name)
	return nil
}

func (f *Fake) DeleteBranch(ctx context.Context, root, name string, force bool) error {
	delete(f.Branches, name)
	f.DeletedBranches = append(f.DeletedBranches, name)
	return nil
}

func (f *Fake) PruneWorktrees(ctx context.Context, root string) error {
	f.PruneCalls++
	return nil
}

func (f *Fake) BranchExists(ctx context.Context, root, name string) (bool, error) {
	return f.Branches[name], nil
}

func (f *Fake) CurrentBranch(ctx context.Context, root string) (string, error) {
	return f.Current, nil
}

func (f *Fake) DefaultBranch(ctx context.Context, root string) (string, error) {
	return f.Default, nil
}

func (f *Fake) GitCommonDir(ctx context.Context, root string) (string, error) {
	return f.CommonDir, nil
}

func (f *Fake) RepoRoot(ctx context.Context, dir string) (string, error) {
	if f.Root != "" {
		return f.Root, nil
	}
	return dir, nil
}

func (f *Fake) PathExists(ctx context.Context, path string) (bool, error) {
	return f.Files[path], nil
}

func (f *Fake) GetFileStatus(ctx context.Context, root string) (FileStatus, error) {
	return f.Status, nil
}

func (f *Fake) BranchExistsOnRemote(ctx context.Context, root, branch string) (bool, error) {
	return f.RemoteBranches[branch], nil
}

func (f *Fake) PushBranch(ctx context.Context, root, branch string) error {
	if f.RemoteBranches == nil {
		f.RemoteBranches = map[string]bool{}
	}
	f.RemoteBranches[branch] = true
	f.PushedBranches = append(f.PushedBranches, branch)
	return nil
}

func (f *Fake) RemoteURL(ctx context.Context, root, remote string) (string, error) {
	return f.Remotes[remote], nil
}

func (f *Fake) MoveWorktree(ctx context.Context, root, oldPath, newPath, oldBranch, newBranch string) error {
	for i, w := range f.Worktrees {
		if w.Path == oldPath {
			f.Worktrees[i].Path = newPath
			if oldBranch != "" && newBranch != "" && oldBranch != newBranch {
				f.Worktrees[i].Branch = newBranch
			}
		}
	}
	if oldBranch != "" && newBranch != "" && oldBranch != newBranch {
		if f.Branches[oldBranch] {
			delete(f.Branches, oldBranch)
			f.Branches[newBranch] = true
		}
		if f.Current == oldBranch {
			f.Current = newBranch
		}
	}
	f.MovedWorktrees = append(f.MovedWorktrees, oldPath+" -> "+newPath)
	return nil
}
