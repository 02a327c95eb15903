package worktree

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/erkcontext"
	"github.com/erkhq/erk/internal/planfolder"
)

// ConfirmFunc prompts the user with prompt and reports their answer.
// Consolidate uses it to gate conflicting plan-folder merges: the exact
// merge semantics are experimental, so a conflicting pair is never
// merged silently.
type ConfirmFunc func(prompt string) (bool, error)

// ConsolidateResult aggregates the per-source outcome of Consolidate.
type ConsolidateResult struct {
	Target  string
	Merged  []string
	Skipped []string
	Errors  map[string]error
}

// Consolidate folds each of sources' plan folders into target's and
// removes the merged source worktree. A source whose plan folder would
// overwrite target's existing one is skipped unless confirm approves
// it; any other per-source failure (missing worktree, removal failure)
// is recorded in the result rather than aborting the remaining merges.
func (m *Manager) Consolidate(ctx context.Context, repo *erkcontext.RepoContext, target string, sources []string, confirm ConfirmFunc) (*ConsolidateResult, error) {
	if err := ValidateName(target); err != nil {
		return nil, err
	}
	targetPath := filepath.Join(repo.ErksDir, target)
	exists, err := m.Git.PathExists(ctx, targetPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domainerr.New(domainerr.KindUserInput, fmt.Sprintf("consolidate target worktree does not exist: %s", target))
	}

	result := &ConsolidateResult{Target: target, Errors: map[string]error{}}
	for _, source := range sources {
		if source == target {
			continue
		}
		if err := m.consolidateOne(ctx, repo, targetPath, source, confirm, result); err != nil {
			result.Errors[source] = err
		}
	}
	return result, nil
}

func (m *Manager) consolidateOne(ctx context.Context, repo *erkcontext.RepoContext, targetPath, source string, confirm ConfirmFunc, result *ConsolidateResult) error {
	if err := ValidateName(source); err != nil {
		return err
	}
	sourcePath := filepath.Join(repo.ErksDir, source)
	exists, err := m.Git.PathExists(ctx, sourcePath)
	if err != nil {
		return err
	}
	if !exists {
		return domainerr.New(domainerr.KindUserInput, fmt.Sprintf("consolidate source worktree does not exist: %s", source))
	}

	merged, err := m.mergePlanFolder(targetPath, sourcePath, source, confirm)
	if err != nil {
		return err
	}
	if !merged {
		result.Skipped = append(result.Skipped, source)
		return nil
	}

	if err := m.Git.RemoveWorktree(ctx, repo.Root, sourcePath, false); err != nil {
		return domainerr.Wrap(domainerr.KindSubprocess, "removing consolidated worktree", err)
	}
	result.Merged = append(result.Merged, source)
	return nil
}

// mergePlanFolder copies source's plan.md/progress.md/issue.json into
// target's plan folder. When target already carries one, confirm is
// asked before overwriting; declining (or a nil confirm, which means
// "never prompted, never overwrite") returns merged=false rather than
// an error.
func (m *Manager) mergePlanFolder(targetPath, sourcePath, source string, confirm ConfirmFunc) (bool, error) {
	srcDir := filepath.Join(sourcePath, planfolder.CanonicalDir)
	if !m.FS.Exists(filepath.Join(srcDir, "plan.md")) {
		return true, nil
	}

	dstDir := filepath.Join(targetPath, planfolder.CanonicalDir)
	if m.FS.Exists(filepath.Join(dstDir, "plan.md")) {
		if confirm == nil {
			return false, nil
		}
		ok, err := confirm(fmt.Sprintf("worktree %q already has a plan folder; overwrite it with %q's?", filepath.Base(targetPath), source))
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	if err := m.FS.MkdirAll(dstDir, 0o755); err != nil {
		return false, domainerr.Wrap(domainerr.KindEnvironment, "creating consolidated plan folder", err)
	}
	for _, name := range []string{"plan.md", "progress.md", "issue.json"} {
		src := filepath.Join(srcDir, name)
		if !m.FS.Exists(src) {
			continue
		}
		data, err := m.FS.ReadFile(src)
		if err != nil {
			return false, domainerr.Wrap(domainerr.KindEnvironment, "reading "+name+" for consolidation", err)
		}
		if err := m.FS.WriteFile(filepath.Join(dstDir, name), data, 0o644); err != nil {
			return false, domainerr.Wrap(domainerr.KindEnvironment, "writing consolidated "+name, err)
		}
	}
	return true, nil
}
