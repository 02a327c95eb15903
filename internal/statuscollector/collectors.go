package statuscollector

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/erkhq/erk/internal/host"
	"github.com/erkhq/erk/internal/planfolder"
	"github.com/erkhq/erk/internal/stack"
	"github.com/erkhq/erk/internal/vcs"
)

// GitStatusResult is GitStatusCollector's payload.
type GitStatusResult struct {
	Staged    []string
	Modified  []string
	Untracked []string
}

// GitStatusCollector parses `git status --porcelain` into staged,
// modified, and untracked lists.
type GitStatusCollector struct{ Git vcs.Git }

func (c *GitStatusCollector) Name() string { return "git_status" }

func (c *GitStatusCollector) Collect(ctx context.Context, worktreePath, repoRoot string) (any, error) {
	fs, err := c.Git.GetFileStatus(ctx, worktreePath)
	if err != nil {
		return nil, err
	}
	return GitStatusResult{Staged: fs.Staged, Modified: fs.Modified, Untracked: fs.Untracked}, nil
}

// StackResult is StackCollector's payload.
type StackResult struct {
	Position int
	Parent   string
	Child    string
	Branches []string
}

// StackCollector reports the current branch's position in the stack and
// its immediate neighbors. Returns a nil payload when the stack tool is
// unavailable (a feature flag, not an error).
type StackCollector struct {
	Stack  stack.Stack
	Branch string
}

func (c *StackCollector) Name() string { return "stack" }

func (c *StackCollector) Collect(ctx context.Context, worktreePath, repoRoot string) (any, error) {
	if c.Stack == nil {
		return nil, nil
	}
	branches, err := c.Stack.CurrentStack(ctx, repoRoot)
	if err != nil {
		return nil, err
	}
	result := StackResult{Position: -1, Branches: branches}
	for i, b := range branches {
		if b == c.Branch {
			result.Position = i
			if i > 0 {
				result.Parent = branches[i-1]
			}
			if i < len(branches)-1 {
				result.Child = branches[i+1]
			}
			break
		}
	}
	return result, nil
}

// PRResult is PRCollector's payload.
type PRResult struct {
	Number        int
	State         string
	URL           string
	ChecksPassing bool
}

// PRCollector finds the pull request associated with a branch (if any)
// and reports its state and check status.
type PRCollector struct {
	Host   host.Host
	Repo   host.Repo
	Branch string
}

func (c *PRCollector) Name() string { return "pull_request" }

func (c *PRCollector) Collect(ctx context.Context, worktreePath, repoRoot string) (any, error) {
	pr, err := c.Host.FindPullRequestByBranch(ctx, c.Repo, c.Branch)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return PRResult{}, nil
	}

	runs, err := c.Host.ListWorkflowRunsForBranch(ctx, c.Repo, c.Branch)
	if err != nil {
		return nil, err
	}
	checksPassing := true
	for _, r := range runs {
		if r.Conclusion != "" && r.Conclusion != "success" {
			checksPassing = false
			break
		}
	}
	return PRResult{Number: pr.Number, State: pr.State, URL: pr.URL, ChecksPassing: checksPassing}, nil
}

// PlanFolderResult is PlanFolderCollector's payload.
type PlanFolderResult struct {
	Present          bool
	Objective        string
	ProgressFraction float64
}

// PlanFolderCollector reports whether .plan/ exists, its first H1 as
// the objective, and its completion fraction.
type PlanFolderCollector struct{}

func (c *PlanFolderCollector) Name() string { return "plan_folder" }

func (c *PlanFolderCollector) Collect(ctx context.Context, worktreePath, repoRoot string) (any, error) {
	planDir := planfolder.DirFor(worktreePath)
	body, err := planfolder.ReadPlanBody(planDir)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return PlanFolderResult{Present: false}, nil
	}

	progress, err := planfolder.ReadProgress(planDir)
	if err != nil {
		return nil, err
	}
	fraction := 0.0
	if progress.TotalSteps > 0 {
		fraction = float64(progress.CompletedSteps) / float64(progress.TotalSteps)
	}

	return PlanFolderResult{
		Present:          true,
		Objective:        firstHeading(body),
		ProgressFraction: fraction,
	}, nil
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
		}
	}
	return ""
}

// RelatedWorktreesResult is RelatedWorktreesCollector's payload.
type RelatedWorktreesResult struct {
	Siblings []string
}

// RelatedWorktreesCollector lists sibling worktrees under the same
// erks directory as worktreePath.
type RelatedWorktreesCollector struct {
	Git     vcs.Git
	ErksDir string
}

func (c *RelatedWorktreesCollector) Name() string { return "related_worktrees" }

func (c *RelatedWorktreesCollector) Collect(ctx context.Context, worktreePath, repoRoot string) (any, error) {
	all, err := c.Git.ListWorktrees(ctx, repoRoot)
	if err != nil {
		return nil, err
	}
	var siblings []string
	for _, w := range all {
		if w.Path == worktreePath {
			continue
		}
		if strings.HasPrefix(w.Path, c.ErksDir+string(filepath.Separator)) {
			siblings = append(siblings, filepath.Base(w.Path))
		}
	}
	return RelatedWorktreesResult{Siblings: siblings}, nil
}
