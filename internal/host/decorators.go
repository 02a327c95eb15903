package host

import (
	"context"
	"fmt"
	"io"

	"github.com/erkhq/erk/internal/trace"
)

// DryRun wraps a Host, passing reads through and recording destructive
// calls without performing real HTTP writes.
type DryRun struct {
	Inner Host

	WouldCreateIssue []Issue
	WouldUpdateIssue []int
	WouldAddComment  []int
	WouldEnsureLabel []string
	WouldCreatePR    []PullRequest
	WouldClosePR     []int
	WouldDispatch    []string

	nextIssueNumber int
	nextPRNumber    int
}

// NewDryRun wraps inner in a DryRun decorator.
func NewDryRun(inner Host) *DryRun {
	return &DryRun{Inner: inner, nextIssueNumber: 100001, nextPRNumber: 200001}
}

func (d *DryRun) CreateIssue(ctx context.Context, repo Repo, title, body string, labels []string) (Issue, error) {
	iss := Issue{Number: d.nextIssueNumber, Title: title, Body: body, State: "open", Labels: labels}
	d.nextIssueNumber++
	d.WouldCreateIssue = append(d.WouldCreateIssue, iss)
	return iss, nil
}

func (d *DryRun) GetIssue(ctx context.Context, repo Repo, number int) (Issue, error) {
	return d.Inner.GetIssue(ctx, repo, number)
}

func (d *DryRun) UpdateIssue(ctx context.Context, repo Repo, number int, title, body, state *string) (Issue, error) {
	d.WouldUpdateIssue = append(d.WouldUpdateIssue, number)
	return d.Inner.GetIssue(ctx, repo, number)
}

func (d *DryRun) AddComment(ctx context.Context, repo Repo, number int, body string) (Comment, error) {
	d.WouldAddComment = append(d.WouldAddComment, number)
	return Comment{Body: body}, nil
}

func (d *DryRun) EnsureLabel(ctx context.Context, repo Repo, name, color string) error {
	d.WouldEnsureLabel = append(d.WouldEnsureLabel, name)
	return nil
}

func (d *DryRun) CreatePullRequest(ctx context.Context, repo Repo, title, body, head, base string) (PullRequest, error) {
	pr := PullRequest{Number: d.nextPRNumber, Title: title, Body: body, Head: head, Base: base, State: "open"}
	d.nextPRNumber++
	d.WouldCreatePR = append(d.WouldCreatePR, pr)
	return pr, nil
}

func (d *DryRun) GetPullRequest(ctx context.Context, repo Repo, number int) (PullRequest, error) {
	return d.Inner.GetPullRequest(ctx, repo, number)
}

func (d *DryRun) ClosePullRequest(ctx context.Context, repo Repo, number int) (PullRequest, error) {
	d.WouldClosePR = append(d.WouldClosePR, number)
	return d.Inner.GetPullRequest(ctx, repo, number)
}

func (d *DryRun) FindPullRequestByBranch(ctx context.Context, repo Repo, branch string) (*PullRequest, error) {
	return d.Inner.FindPullRequestByBranch(ctx, repo, branch)
}

func (d *DryRun) GetWorkflowRun(ctx context.Context, repo Repo, id int64) (WorkflowRun, error) {
	return d.Inner.GetWorkflowRun(ctx, repo, id)
}

func (d *DryRun) ListWorkflowRunsByLabel(ctx context.Context, repo Repo, label string) ([]WorkflowRun, error) {
	return d.Inner.ListWorkflowRunsByLabel(ctx, repo, label)
}

func (d *DryRun) ListWorkflowRunsForBranch(ctx context.Context, repo Repo, branch string) ([]WorkflowRun, error) {
	return d.Inner.ListWorkflowRunsForBranch(ctx, repo, branch)
}

func (d *DryRun) DispatchWorkflow(ctx context.Context, repo Repo, workflowFile, ref string, inputs map[string]any) error {
	d.WouldDispatch = append(d.WouldDispatch, workflowFile)
	return nil
}

func (d *DryRun) dryRunMarker() bool { return true }

type isDryRun interface{ dryRunMarker() bool }

// Printing wraps any Host implementation and emits a one-line command
// trace for every call to W.
type Printing struct {
	Inner Host
	W     io.Writer
}

// NewPrinting wraps inner in a Printing decorator writing traces to w.
func NewPrinting(inner Host, w io.Writer) *Printing {
	return &Printing{Inner: inner, W: w}
}

func (p *Printing) isDryRun() bool {
	if dr, ok := p.Inner.(isDryRun); ok {
		return dr.dryRunMarker()
	}
	return false
}

func (p *Printing) trace(op string, repo Repo, args ...any) {
	trace.Line(p.W, fmt.Sprintf("host %s %s %v", op, repo.RepoSlug(), args), p.isDryRun())
}

func (p *Printing) CreateIssue(ctx context.Context, repo Repo, title, body string, labels []string) (Issue, error) {
	p.trace("create_issue", repo, title)
	return p.Inner.CreateIssue(ctx, repo, title, body, labels)
}

func (p *Printing) GetIssue(ctx context.Context, repo Repo, number int) (Issue, error) {
	return p.Inner.GetIssue(ctx, repo, number)
}

func (p *Printing) UpdateIssue(ctx context.Context, repo Repo, number int, title, body, state *string) (Issue, error) {
	p.trace("update_issue", repo, number)
	return p.Inner.UpdateIssue(ctx, repo, number, title, body, state)
}

func (p *Printing) AddComment(ctx context.Context, repo Repo, number int, body string) (Comment, error) {
	p.trace("add_comment", repo, number)
	return p.Inner.AddComment(ctx, repo, number, body)
}

func (p *Printing) EnsureLabel(ctx context.Context, repo Repo, name, color string) error {
	p.trace("ensure_label", repo, name)
	return p.Inner.EnsureLabel(ctx, repo, name, color)
}

func (p *Printing) CreatePullRequest(ctx context.Context, repo Repo, title, body, head, base string) (PullRequest, error) {
	p.trace("create_pull_request", repo, title)
	return p.Inner.CreatePullRequest(ctx, repo, title, body, head, base)
}

func (p *Printing) GetPullRequest(ctx context.Context, repo Repo, number int) (PullRequest, error) {
	return p.Inner.GetPullRequest(ctx, repo, number)
}

func (p *Printing) ClosePullRequest(ctx context.Context, repo Repo, number int) (PullRequest, error) {
	p.trace("close_pull_request", repo, number)
	return p.Inner.ClosePullRequest(ctx, repo, number)
}

func (p *Printing) FindPullRequestByBranch(ctx context.Context, repo Repo, branch string) (*PullRequest, error) {
	return p.Inner.FindPullRequestByBranch(ctx, repo, branch)
}

func (p *Printing) GetWorkflowRun(ctx context.Context, repo Repo, id int64) (WorkflowRun, error) {
	return p.Inner.GetWorkflowRun(ctx, repo, id)
}

func (p *Printing) ListWorkflowRunsByLabel(ctx context.Context, repo Repo, label string) ([]WorkflowRun, error) {
	return p.Inner.ListWorkflowRunsByLabel(ctx, repo, label)
}

func (p *Printing) ListWorkflowRunsForBranch(ctx context.Context, repo Repo, branch string) ([]WorkflowRun, error) {
	return p.Inner.ListWorkflowRunsForBranch(ctx, repo, branch)
}

func (p *Printing) DispatchWorkflow(ctx context.Context, repo Repo, workflowFile, ref string, inputs map[string]any) error {
	p.trace("dispatch_workflow", repo, workflowFile)
	return p.Inner.DispatchWorkflow(ctx, repo, workflowFile, ref, inputs)
}

// Fake is an in-memory Host for tests. Constructor-only initial state;
// mutation operations record the call in the corresponding tracking slice
// (CreatedIssues, UpdatedIssues, AddedComments, ...).
type Fake struct {
	Issues        map[int]Issue
	PullRequests  map[int]PullRequest
	WorkflowRuns  map[int64]WorkflowRun
	Labels        map[string]bool
	nextIssue     int
	nextPR        int

	CreatedIssues    []int
	UpdatedIssues    []int
	AddedComments    []int
	EnsuredLabels    []string
	CreatedPRs       []int
	ClosedPRs        []int
	DispatchedRuns   []string
}

// NewFake constructs an empty Fake Host.
func NewFake() *Fake {
	return &Fake{
		Issues:       map[int]Issue{},
		PullRequests: map[int]PullRequest{},
		WorkflowRuns: map[int64]WorkflowRun{},
		Labels:       map[string]bool{},
		nextIssue:    1,
		nextPR:       1,
	}
}

func (f *Fake) CreateIssue(ctx context.Context, repo Repo, title, body string, labels []string) (Issue, error) {
	iss := Issue{Number: f.nextIssue, Title: title, Body: body, State: "open", Labels: labels}
	f.Issues[iss.Number] = iss
	f.CreatedIssues = append(f.CreatedIssues, iss.Number)
	f.nextIssue++
	return iss, nil
}

func (f *Fake) GetIssue(ctx context.Context, repo Repo, number int) (Issue, error) {
	iss, ok := f.Issues[number]
	if !ok {
		return Issue{}, fmt.Errorf("issue %d not found", number)
	}
	return iss, nil
}

func (f *Fake) UpdateIssue(ctx context.Context, repo Repo, number int, title, body, state *string) (Issue, error) {
	iss, ok := f.Issues[number]
	if !ok {
		return Issue{}, fmt.Errorf("issue %d not found", number)
	}
	if title != nil {
		iss.Title = *title
	}
	if body != nil {
		iss.Body = *body
	}
	if state != nil {
		iss.State = *state
	}
	f.Issues[number] = iss
	f.UpdatedIssues = append(f.UpdatedIssues, number)
	return iss, nil
}

func (f *Fake) AddComment(ctx context.Context, repo Repo, number int, body string) (Comment, error) {
	iss, ok := f.Issues[number]
	if !ok {
		return Comment{}, fmt.Errorf("issue %d not found", number)
	}
	c := Comment{ID: int64(len(iss.Comments) + 1), Body: body}
	iss.Comments = append(iss.Comments, c)
	f.Issues[number] = iss
	f.AddedComments = append(f.AddedComments, number)
	return c, nil
}

func (f *Fake) EnsureLabel(ctx context.Context, repo Repo, name, color string) error {
	f.Labels[name] = true
	f.EnsuredLabels = append(f.EnsuredLabels, name)
	return nil
}

func (f *Fake) CreatePullRequest(ctx context.Context, repo Repo, title, body, head, base string) (PullRequest, error) {
	pr := PullRequest{Number: f.nextPR, Title: title, Body: body, Head: head, Base: base, State: "open"}
	f.PullRequests[pr.Number] = pr
	f.CreatedPRs = append(f.CreatedPRs, pr.Number)
	f.nextPR++
	return pr, nil
}

func (f *Fake) GetPullRequest(ctx context.Context, repo Repo, number int) (PullRequest, error) {
	pr, ok := f.PullRequests[number]
	if !ok {
		return PullRequest{}, fmt.Errorf("pr %d not found", number)
	}
	return pr, nil
}

func (f *Fake) ClosePullRequest(ctx context.Context, repo Repo, number int) (PullRequest, error) {
	pr, ok := f.PullRequests[number]
	if !ok {
		return PullRequest{}, fmt.Errorf("pr %d not found", number)
	}
	pr.State = "closed"
	f.PullRequests[number] = pr
	f.ClosedPRs = append(f.ClosedPRs, number)
	return pr, nil
}

func (f *Fake) FindPullRequestByBranch(ctx context.Context, repo Repo, branch string) (*PullRequest, error) {
	for _, pr := range f.PullRequests {
		if pr.Head == branch {
			found := pr
			return &found, nil
		}
	}
	return nil, nil
}

func (f *Fake) GetWorkflowRun(ctx context.Context, repo Repo, id int64) (WorkflowRun, error) {
	run, ok := f.WorkflowRuns[id]
	if !ok {
		return WorkflowRun{}, fmt.Errorf("run %d not found", id)
	}
	return run, nil
}

func (f *Fake) ListWorkflowRunsByLabel(ctx context.Context, repo Repo, label string) ([]WorkflowRun, error) {
	var result []WorkflowRun
	for _, r := range f.WorkflowRuns {
		result = append(result, r)
	}
	return result, nil
}

func (f *Fake) ListWorkflowRunsForBranch(ctx context.Context, repo Repo, branch string) ([]WorkflowRun, error) {
	var result []WorkflowRun
	for _, r := range f.WorkflowRuns {
		if r.HeadBranch == branch {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *Fake) DispatchWorkflow(ctx context.Context, repo Repo, workflowFile, ref string, inputs map[string]any) error {
	f.DispatchedRuns = append(f.DispatchedRuns, workflowFile)
	return nil
}
