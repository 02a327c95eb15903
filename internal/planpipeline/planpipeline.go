// Package planpipeline drives the save/enrich/clone/implement/submit/
// dispatch lifecycle that moves a plan from an idea to a merged
// worktree, state-machined across a host-backed issue
// (planstore.Record) and a local worktree.
//
// Submit's stop-at-first-failure command sequence runs an ordered list
// of steps in sequence, aggregating partial results and returning at
// the first failure rather than attempting to recover.
package planpipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/erkhq/erk/internal/clockcap"
	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/erkcontext"
	"github.com/erkhq/erk/internal/host"
	"github.com/erkhq/erk/internal/planfolder"
	"github.com/erkhq/erk/internal/planstore"
	"github.com/erkhq/erk/internal/preflightcheck"
	"github.com/erkhq/erk/internal/vcs"
	"github.com/erkhq/erk/internal/worktree"
)

// Pipeline wires the capabilities PlanPipeline's operations depend on.
type Pipeline struct {
	Store       *planstore.Store
	WorktreeMgr *worktree.Manager
	Git         vcs.Git
	Host        host.Host
	Repo        host.Repo
	Executor    erkcontext.ClaudeExecutor
	Clock       clockcap.Clock
	CreatedBy   string
}

// New constructs a Pipeline.
func New(store *planstore.Store, wt *worktree.Manager, git vcs.Git, h host.Host, repo host.Repo, exec erkcontext.ClaudeExecutor, clock clockcap.Clock, createdBy string) *Pipeline {
	return &Pipeline{Store: store, WorktreeMgr: wt, Git: git, Host: h, Repo: repo, Executor: exec, Clock: clock, CreatedBy: createdBy}
}

// Save creates a new plan record: an erk-plan issue whose body carries
// the plan-header and whose first comment carries planMarkdown.
func (p *Pipeline) Save(ctx context.Context, title, planMarkdown string) (*planstore.Record, error) {
	header := planstore.Header{
		SchemaVersion: planstore.SchemaVersion,
		CreatedAt:     p.Clock.Now().UTC(),
		CreatedBy:     p.CreatedBy,
		WorktreeName:  worktree.SanitizeName(title),
	}
	return p.Store.Create(ctx, header, planMarkdown)
}

// EnrichmentResult is the structured JSON {title, body,
// context_categories} an enrichment subagent must return.
type EnrichmentResult struct {
	Title             string   `json:"title"`
	Body              string   `json:"body"`
	ContextCategories []string `json:"context_categories"`
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// enrichPrompt is the strict-interface instruction sent to the
// enrichment subagent: it must reply with exactly one JSON object and
// nothing else.
const enrichPrompt = `You are enriching a development plan with additional context.
Read the plan below and respond with EXACTLY ONE JSON object of the
shape {"title": string, "body": string, "context_categories": [string]}
and no other text.

PLAN:
%s`

// Enrich delegates enrichment of rec's plan body to the configured
// ClaudeExecutor, then either updates rec in place (update=true) or
// creates a new record (update=false).
func (p *Pipeline) Enrich(ctx context.Context, workdir string, rec *planstore.Record, update bool) (*planstore.Record, error) {
	result, err := p.Executor.RunBlocking(ctx, workdir, fmt.Sprintf(enrichPrompt, rec.Body))
	if err != nil {
		return nil, domainerr.Wrap(domainerr.KindSubprocess, "running enrichment subagent", err)
	}
	if !result.Success {
		return nil, domainerr.New(domainerr.KindSubprocess, "enrichment subagent failed: "+result.ErrorMessage)
	}

	enriched, err := parseEnrichment(result.FilteredMessages)
	if err != nil {
		return nil, err
	}

	if update {
		if _, err := p.Store.Host.UpdateIssue(ctx, p.Repo, rec.IssueNumber, &enriched.Title, nil, nil); err != nil {
			return nil, err
		}
		if err := p.Store.AddEnrichment(ctx, rec, "planning context", strings.Join(enriched.ContextCategories, ", ")); err != nil {
			return nil, err
		}
		rec.Header.WorktreeName = worktree.SanitizeName(enriched.Title)
		rec.Body = enriched.Body
		return rec, nil
	}

	header := planstore.Header{
		SchemaVersion: planstore.SchemaVersion,
		CreatedAt:     p.Clock.Now().UTC(),
		CreatedBy:     p.CreatedBy,
		WorktreeName:  worktree.SanitizeName(enriched.Title),
	}
	return p.Store.Create(ctx, header, enriched.Body)
}

// parseEnrichment extracts the strict-interface JSON object from a
// blocking run's accumulated text. `claude --output-format json`
// wraps the assistant's final text in its own envelope, so this first
// tries to unmarshal the outer envelope's "result" field and falls
// back to scanning the raw text directly.
func parseEnrichment(messages []string) (*EnrichmentResult, error) {
	text := strings.Join(messages, "\n")

	var envelope struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err == nil && envelope.Result != "" {
		text = envelope.Result
	}

	match := jsonObjectRe.FindString(text)
	if match == "" {
		return nil, domainerr.New(domainerr.KindValidation, "enrichment subagent did not return a JSON object")
	}

	var result EnrichmentResult
	if err := json.Unmarshal([]byte(match), &result); err != nil {
		return nil, domainerr.Wrap(domainerr.KindValidation, "parsing enrichment JSON", err)
	}
	return &result, nil
}

// Clone creates a new plan record from an open erk-plan issue, pointing
// at a fresh worktree_name, and closes the original.
func (p *Pipeline) Clone(ctx context.Context, issueNumber int) (*planstore.Record, error) {
	orig, err := p.requireOpenPlanIssue(ctx, issueNumber)
	if err != nil {
		return nil, err
	}

	newName := fmt.Sprintf("%s-%s", worktree.SanitizeName(orig.Header.WorktreeName), p.Clock.Now().UTC().Format("060102-1504"))

	header := planstore.Header{
		SchemaVersion: planstore.SchemaVersion,
		CreatedAt:     p.Clock.Now().UTC(),
		CreatedBy:     p.CreatedBy,
		WorktreeName:  newName,
	}
	clone, err := p.Store.Create(ctx, header, orig.Body)
	if err != nil {
		return nil, err
	}

	if pr, err := p.Host.FindPullRequestByBranch(ctx, p.Repo, orig.Header.WorktreeName); err == nil && pr != nil && pr.State == "open" {
		linkComment := fmt.Sprintf("Superseded by #%d; closing.", clone.IssueNumber)
		if _, err := p.Host.AddComment(ctx, p.Repo, pr.Number, linkComment); err != nil {
			return nil, err
		}
		if _, err := p.Host.ClosePullRequest(ctx, p.Repo, pr.Number); err != nil {
			return nil, err
		}
	}

	closedState := "closed"
	origComment := fmt.Sprintf("Cloned to #%d.", clone.IssueNumber)
	if _, err := p.Host.AddComment(ctx, p.Repo, issueNumber, origComment); err != nil {
		return nil, err
	}
	if _, err := p.Host.UpdateIssue(ctx, p.Repo, issueNumber, nil, nil, &closedState); err != nil {
		return nil, err
	}

	return clone, nil
}

// requireOpenPlanIssue fetches and validates an erk-plan issue is OPEN,
// the shared precondition Clone, Implement, and Dispatch all share.
func (p *Pipeline) requireOpenPlanIssue(ctx context.Context, issueNumber int) (*planstore.Record, error) {
	iss, err := p.Host.GetIssue(ctx, p.Repo, issueNumber)
	if err != nil {
		return nil, err
	}
	if !hasLabel(iss.Labels, planstore.PlanLabel) {
		return nil, domainerr.New(domainerr.KindUserInput, fmt.Sprintf("issue #%d is not labeled %s", issueNumber, planstore.PlanLabel))
	}
	if iss.State != "open" {
		return nil, domainerr.New(domainerr.KindUserInput, fmt.Sprintf("issue #%d is not open", issueNumber))
	}
	return p.Store.Load(ctx, issueNumber)
}

func hasLabel(labels []string, want string) bool {
	for _, l := range labels {
		if l == want {
			return true
		}
	}
	return false
}

// ImplementOptions configures Implement's assistant invocation.
type ImplementOptions struct {
	RepoRoot string
	ErksDir  string
	Trunk    string
	// RunAssistant streams the implementation slash-command through the
	// assistant when true; false just seeds the worktree.
	RunAssistant bool
	Out          io.Writer
}

// Implement seeds a worktree from a plan issue and optionally drives the
// assistant's implementation slash-command.
func (p *Pipeline) Implement(ctx context.Context, issueNumber int, opts ImplementOptions) (*worktree.Worktree, error) {
	rec, err := p.requireOpenPlanIssue(ctx, issueNumber)
	if err != nil {
		return nil, err
	}

	repo := &erkcontext.RepoContext{Root: opts.RepoRoot, ErksDir: opts.ErksDir, TrunkBranch: opts.Trunk}
	steps := len(planfolder.ParseSteps(rec.Body))

	wt, err := p.WorktreeMgr.Create(ctx, repo, nil, worktree.FeatureRequest{
		Name:       rec.Header.WorktreeName,
		PlanBody:   rec.Body,
		TotalSteps: steps,
	})
	if err != nil {
		return nil, err
	}

	planDir := planfolder.DirFor(wt.Path)
	if err := planfolder.WriteIssueRef(planDir, planfolder.IssueRef{
		IssueNumber: issueNumber,
		IssueURL:    fmt.Sprintf("https://github.com/%s/%s/issues/%d", p.Repo.Owner, p.Repo.Name, issueNumber),
	}); err != nil {
		return nil, err
	}

	if opts.RunAssistant {
		prompt := "/implement"
		if opts.Out != nil {
			if _, err := p.Executor.RunStreaming(ctx, wt.Path, prompt, opts.Out); err != nil {
				return wt, err
			}
		} else {
			if _, err := p.Executor.RunBlocking(ctx, wt.Path, prompt); err != nil {
				return wt, err
			}
		}
	}

	return wt, nil
}

// SubmitStep is one stage of Submit's fixed command sequence.
type SubmitStep struct {
	Name    string
	Command string
}

// submitSequence is the fixed implement -> fast-ci -> submit-pr sequence
// Submit runs through the assistant.
var submitSequence = []SubmitStep{
	{Name: "implement", Command: "/implement"},
	{Name: "fast-ci", Command: "/fast-ci"},
	{Name: "submit-pr", Command: "/submit-pr"},
}

// SubmitResult aggregates one step's outcome for reporting.
type SubmitResult struct {
	Step   string
	Result erkcontext.CommandResult
}

// Submit resolves issueNumber to its worktree, preflights it, then runs
// the fixed implement/fast-ci/submit-pr sequence through the assistant,
// stopping at the first failure.
func (p *Pipeline) Submit(ctx context.Context, issueNumber int, repoRoot, erksDir string) ([]SubmitResult, error) {
	rec, err := p.requireOpenPlanIssue(ctx, issueNumber)
	if err != nil {
		return nil, err
	}

	worktreePath := filepath.Join(erksDir, rec.Header.WorktreeName)

	if err := preflightcheck.Check(ctx, p.Git, preflightcheck.Options{
		RepoRoot:     repoRoot,
		WorktreePath: worktreePath,
		Branch:       rec.Header.WorktreeName,
		ForSubmit:    true,
	}); err != nil {
		return nil, err
	}

	var results []SubmitResult
	for _, step := range submitSequence {
		res, err := p.Executor.RunBlocking(ctx, worktreePath, step.Command)
		results = append(results, SubmitResult{Step: step.Name, Result: res})
		if err != nil {
			return results, err
		}
		if !res.Success {
			return results, domainerr.New(domainerr.KindSubprocess, fmt.Sprintf("submit step %q failed: %s", step.Name, res.ErrorMessage))
		}
	}

	return results, nil
}

// Dispatch validates issueNumber is an open erk-plan issue, then
// triggers a remote workflow dispatch carrying the issue number as
// input.
func (p *Pipeline) Dispatch(ctx context.Context, issueNumber int, workflowFile, ref string) error {
	if _, err := p.requireOpenPlanIssue(ctx, issueNumber); err != nil {
		return err
	}
	return p.Host.DispatchWorkflow(ctx, p.Repo, workflowFile, ref, map[string]any{"issue_number": issueNumber})
}
