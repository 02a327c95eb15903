package planpipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erkhq/erk/internal/clockcap"
	"github.com/erkhq/erk/internal/erkcontext"
	"github.com/erkhq/erk/internal/executor"
	"github.com/erkhq/erk/internal/host"
	"github.com/erkhq/erk/internal/planstore"
	"github.com/erkhq/erk/internal/vcs"
	"github.com/erkhq/erk/internal/worktree"
)

func newTestPipeline(t *testing.T) (*Pipeline, *host.Fake, *vcs.Fake, *executor.Fake) {
	t.Helper()
	h := host.NewFake()
	repo := host.Repo{Owner: "acme", Name: "widgets"}
	store := planstore.NewStore(h, repo)
	git := vcs.NewFake("main")
	fs := erkcontext.NewFakeFS()
	wt := worktree.NewManager(git, fs, nil)
	exec := executor.NewFake()
	clock := clockcap.NewFakeClock(time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC))

	return New(store, wt, git, h, repo, exec, clock, "octocat"), h, git, exec
}

func TestSaveCreatesPlanIssue(t *testing.T) {
	p, h, _, _ := newTestPipeline(t)

	rec, err := p.Save(context.Background(), "Add Widget Export", "do the thing")
	require.NoError(t, err)
	require.Equal(t, 1, rec.IssueNumber)
	require.Equal(t, "add-widget-export", rec.Header.WorktreeName)
	require.True(t, h.Labels[planstore.PlanLabel])
}

func TestEnrichParsesStructuredJSONAndUpdatesRecord(t *testing.T) {
	p, _, _, exec := newTestPipeline(t)

	rec, err := p.Save(context.Background(), "Add Widget Export", "rough draft")
	require.NoError(t, err)

	exec.BlockingFunc = func(ctx context.Context, workdir, prompt string) (erkcontext.CommandResult, error) {
		return erkcontext.CommandResult{
			Success:          true,
			FilteredMessages: []string{`{"result": "{\"title\": \"Add CSV Widget Export\", \"body\": \"enriched body\", \"context_categories\": [\"exports\", \"csv\"]}"}`},
		}, nil
	}

	updated, err := p.Enrich(context.Background(), "/tmp/wt", rec, true)
	require.NoError(t, err)
	require.Equal(t, "enriched body", updated.Body)
	require.Equal(t, "add-csv-widget-export", updated.Header.WorktreeName)
}

func TestEnrichFailsWhenSubagentOmitsJSON(t *testing.T) {
	p, _, _, exec := newTestPipeline(t)

	rec, err := p.Save(context.Background(), "Add Widget Export", "rough draft")
	require.NoError(t, err)

	exec.BlockingFunc = func(ctx context.Context, workdir, prompt string) (erkcontext.CommandResult, error) {
		return erkcontext.CommandResult{Success: true, FilteredMessages: []string{"sorry, I can't help with that"}}, nil
	}

	_, err = p.Enrich(context.Background(), "/tmp/wt", rec, true)
	require.Error(t, err)
}

func TestCloneCreatesNewIssueAndClosesOriginal(t *testing.T) {
	p, h, _, _ := newTestPipeline(t)

	rec, err := p.Save(context.Background(), "Add Widget Export", "do the thing")
	require.NoError(t, err)

	clone, err := p.Clone(context.Background(), rec.IssueNumber)
	require.NoError(t, err)
	require.NotEqual(t, rec.IssueNumber, clone.IssueNumber)
	require.Equal(t, "do the thing", clone.Body)

	orig := h.Issues[rec.IssueNumber]
	require.Equal(t, "closed", orig.State)
}

func TestCloneRejectsIssueWithoutPlanLabel(t *testing.T) {
	p, h, _, _ := newTestPipeline(t)

	iss, err := h.CreateIssue(context.Background(), p.Repo, "not a plan", "body", nil)
	require.NoError(t, err)

	_, err = p.Clone(context.Background(), iss.Number)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not labeled")
}

func TestImplementSeedsWorktreeAndWritesIssueRef(t *testing.T) {
	p, _, git, _ := newTestPipeline(t)

	repoRoot := t.TempDir()
	erksDir := t.TempDir()
	git.Default = "main"

	rec, err := p.Save(context.Background(), "Add Widget Export", "# Add Widget Export\n\n### Task 1 - Do it\n- [ ] step\n")
	require.NoError(t, err)

	wt, err := p.Implement(context.Background(), rec.IssueNumber, ImplementOptions{
		RepoRoot: repoRoot,
		ErksDir:  erksDir,
		Trunk:    "main",
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(erksDir, "add-widget-export"), wt.Path)

	issueJSON := filepath.Join(wt.Path, ".plan", "issue.json")
	data, err := os.ReadFile(issueJSON)
	require.NoError(t, err)
	require.Contains(t, string(data), fmt.Sprintf(`"issue_number": %d`, rec.IssueNumber))
}

func TestSubmitStopsAtFirstFailure(t *testing.T) {
	p, _, git, exec := newTestPipeline(t)

	repoRoot := t.TempDir()
	erksDir := t.TempDir()

	rec, err := p.Save(context.Background(), "Add Widget Export", "do the thing")
	require.NoError(t, err)

	worktreePath := filepath.Join(erksDir, rec.Header.WorktreeName)
	require.NoError(t, os.MkdirAll(filepath.Join(worktreePath, ".plan"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(worktreePath, ".plan", "plan.md"), []byte("# Plan\n"), 0o644))
	git.Files[worktreePath] = true

	calls := 0
	exec.BlockingFunc = func(ctx context.Context, workdir, prompt string) (erkcontext.CommandResult, error) {
		calls++
		if prompt == "/fast-ci" {
			return erkcontext.CommandResult{Success: false, ErrorMessage: "tests failed"}, nil
		}
		return erkcontext.CommandResult{Success: true}, nil
	}

	results, err := p.Submit(context.Background(), rec.IssueNumber, repoRoot, erksDir)
	require.Error(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "implement", results[0].Step)
	require.Equal(t, "fast-ci", results[1].Step)
	require.Equal(t, 2, calls)
	require.True(t, git.RemoteBranches[rec.Header.WorktreeName])
}

func TestDispatchValidatesLabelAndOpenBeforeDispatching(t *testing.T) {
	p, h, _, _ := newTestPipeline(t)

	rec, err := p.Save(context.Background(), "Add Widget Export", "do the thing")
	require.NoError(t, err)

	err = p.Dispatch(context.Background(), rec.IssueNumber, "implement.yml", "main")
	require.NoError(t, err)
	require.Len(t, h.DispatchedRuns, 1)
}
