// Package host implements the Host capability interface: create/read/
// update issues, labels, PRs, and workflow runs, behind Real/DryRun/
// Printing/Fake variants.
//
// Real wraps google/go-github/v66: a thin struct holding a client, one
// method per operation, domain errors on failure. Auth is delegated to
// an external token source (env var or `gh auth token`) and never
// stored by the core.
package host

import (
	"context"
	"fmt"

	"github.com/google/go-github/v66/github"

	"github.com/erkhq/erk/internal/domainerr"
)

// Issue is the subset of GitHub issue fields erk reads and writes.
type Issue struct {
	Number   int
	Title    string
	Body     string
	State    string
	Labels   []string
	Comments []Comment
}

// Comment is one issue/PR comment.
type Comment struct {
	ID   int64
	Body string
}

// PullRequest is the subset of PR fields erk reads and writes.
type PullRequest struct {
	Number int
	Title  string
	Body   string
	State  string
	Head   string
	Base   string
	URL    string
}

// WorkflowRun is one CI workflow run as erk's status collector reads it.
type WorkflowRun struct {
	ID         int64
	Name       string
	Status     string
	Conclusion string
	URL        string
	HeadBranch string
}

// Repo identifies an owner/name pair on the host.
type Repo struct {
	Owner string
	Name  string
}

// Host is the capability interface for the configured code-hosting
// provider (GitHub by default).
type Host interface {
	CreateIssue(ctx context.Context, repo Repo, title, body string, labels []string) (Issue, error)
	GetIssue(ctx context.Context, repo Repo, number int) (Issue, error)
	UpdateIssue(ctx context.Context, repo Repo, number int, title, body, state *string) (Issue, error)
	AddComment(ctx context.Context, repo Repo, number int, body string) (Comment, error)
	EnsureLabel(ctx context.Context, repo Repo, name, color string) error

	CreatePullRequest(ctx context.Context, repo Repo, title, body, head, base string) (PullRequest, error)
	GetPullRequest(ctx context.Context, repo Repo, number int) (PullRequest, error)
	ClosePullRequest(ctx context.Context, repo Repo, number int) (PullRequest, error)
	FindPullRequestByBranch(ctx context.Context, repo Repo, branch string) (*PullRequest, error)

	GetWorkflowRun(ctx context.Context, repo Repo, id int64) (WorkflowRun, error)
	ListWorkflowRunsByLabel(ctx context.Context, repo Repo, label string) ([]WorkflowRun, error)
	ListWorkflowRunsForBranch(ctx context.Context, repo Repo, branch string) ([]WorkflowRun, error)
	DispatchWorkflow(ctx context.Context, repo Repo, workflowFile, ref string, inputs map[string]any) error
}

// Real is the production Host backed by google/go-github.
type Real struct {
	Client *github.Client
}

// NewReal constructs a Real Host from an authenticated github.Client.
func NewReal(client *github.Client) *Real {
	return &Real{Client: client}
}

func wrapHostErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return domainerr.Wrap(domainerr.KindRemote, "host "+op+" failed", err)
}

func (h *Real) CreateIssue(ctx context.Context, repo Repo, title, body string, labels []string) (Issue, error) {
	req := &github.IssueRequest{Title: &title, Body: &body}
	if len(labels) > 0 {
		req.Labels = &labels
	}
	iss, _, err := h.Client.Issues.Create(ctx, repo.Owner, repo.Name, req)
	if err != nil {
		return Issue{}, wrapHostErr("create_issue", err)
	}
	return fromGithubIssue(iss), nil
}

func (h *Real) GetIssue(ctx context.Context, repo Repo, number int) (Issue, error) {
	iss, _, err := h.Client.Issues.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return Issue{}, wrapHostErr("get_issue", err)
	}
	result := fromGithubIssue(iss)

	comments, _, err := h.Client.Issues.ListComments(ctx, repo.Owner, repo.Name, number, nil)
	if err != nil {
		return Issue{}, wrapHostErr("list_comments", err)
	}
	for _, c := range comments {
		result.Comments = append(result.Comments, Comment{ID: c.GetID(), Body: c.GetBody()})
	}
	return result, nil
}

func (h *Real) UpdateIssue(ctx context.Context, repo Repo, number int, title, body, state *string) (Issue, error) {
	req := &github.IssueRequest{Title: title, Body: body, State: state}
	iss, _, err := h.Client.Issues.Edit(ctx, repo.Owner, repo.Name, number, req)
	if err != nil {
		return Issue{}, wrapHostErr("update_issue", err)
	}
	return fromGithubIssue(iss), nil
}

func (h *Real) AddComment(ctx context.Context, repo Repo, number int, body string) (Comment, error) {
	c, _, err := h.Client.Issues.CreateComment(ctx, repo.Owner, repo.Name, number, &github.IssueComment{Body: &body})
	if err != nil {
		return Comment{}, wrapHostErr("add_comment", err)
	}
	return Comment{ID: c.GetID(), Body: c.GetBody()}, nil
}

func (h *Real) EnsureLabel(ctx context.Context, repo Repo, name, color string) error {
	_, _, err := h.Client.Issues.GetLabel(ctx, repo.Owner, repo.Name, name)
	if err == nil {
		return nil
	}
	_, _, err = h.Client.Issues.CreateLabel(ctx, repo.Owner, repo.Name, &github.Label{Name: &name, Color: &color})
	return wrapHostErr("ensure_label", err)
}

func (h *Real) CreatePullRequest(ctx context.Context, repo Repo, title, body, head, base string) (PullRequest, error) {
	pr, _, err := h.Client.PullRequests.Create(ctx, repo.Owner, repo.Name, &github.NewPullRequest{
		Title: &title, Body: &body, Head: &head, Base: &base,
	})
	if err != nil {
		return PullRequest{}, wrapHostErr("create_pull_request", err)
	}
	return fromGithubPR(pr), nil
}

func (h *Real) GetPullRequest(ctx context.Context, repo Repo, number int) (PullRequest, error) {
	pr, _, err := h.Client.PullRequests.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return PullRequest{}, wrapHostErr("get_pull_request", err)
	}
	return fromGithubPR(pr), nil
}

func (h *Real) ClosePullRequest(ctx context.Context, repo Repo, number int) (PullRequest, error) {
	closed := "closed"
	pr, _, err := h.Client.PullRequests.Edit(ctx, repo.Owner, repo.Name, number, &github.PullRequest{State: &closed})
	if err != nil {
		return PullRequest{}, wrapHostErr("close_pull_request", err)
	}
	return fromGithubPR(pr), nil
}

func (h *Real) FindPullRequestByBranch(ctx context.Context, repo Repo, branch string) (*PullRequest, error) {
	prs, _, err := h.Client.PullRequests.List(ctx, repo.Owner, repo.Name, &github.PullRequestListOptions{
		Head: fmt.Sprintf("%s:%s", repo.Owner, branch),
	})
	if err != nil {
		return nil, wrapHostErr("find_pull_request_by_branch", err)
	}
	if len(prs) == 0 {
		return nil, nil
	}
	pr := fromGithubPR(prs[0])
	return &pr, nil
}

func (h *Real) GetWorkflowRun(ctx context.Context, repo Repo, id int64) (WorkflowRun, error) {
	run, _, err := h.Client.Actions.GetWorkflowRunByID(ctx, repo.Owner, repo.Name, id)
	if err != nil {
		return WorkflowRun{}, wrapHostErr("get_workflow_run", err)
	}
	return fromGithubRun(run), nil
}

func (h *Real) ListWorkflowRunsByLabel(ctx context.Context, repo Repo, label string) ([]WorkflowRun, error) {
	issues, _, err := h.Client.Issues.ListByRepo(ctx, repo.Owner, repo.Name, &github.IssueListByRepoOptions{
		Labels: []string{label},
	})
	if err != nil {
		return nil, wrapHostErr("list_workflow_runs_by_label", err)
	}
	_ = issues // label→run correlation is resolved by the caller via commit SHA
	runs, _, err := h.Client.Actions.ListRepositoryWorkflowRuns(ctx, repo.Owner, repo.Name, nil)
	if err != nil {
		return nil, wrapHostErr("list_workflow_runs_by_label", err)
	}
	var result []WorkflowRun
	for _, r := range runs.WorkflowRuns {
		result = append(result, fromGithubRun(r))
	}
	return result, nil
}

func (h *Real) ListWorkflowRunsForBranch(ctx context.Context, repo Repo, branch string) ([]WorkflowRun, error) {
	runs, _, err := h.Client.Actions.ListRepositoryWorkflowRuns(ctx, repo.Owner, repo.Name, &github.ListWorkflowRunsOptions{
		Branch: branch,
	})
	if err != nil {
		return nil, wrapHostErr("list_workflow_runs_for_branch", err)
	}
	var result []WorkflowRun
	for _, r := range runs.WorkflowRuns {
		result = append(result, fromGithubRun(r))
	}
	return result, nil
}

func (h *Real) DispatchWorkflow(ctx context.Context, repo Repo, workflowFile, ref string, inputs map[string]any) error {
	_, err := h.Client.Actions.CreateWorkflowDispatchEventByFileName(ctx, repo.Owner, repo.Name, workflowFile, github.CreateWorkflowDispatchEventRequest{
		Ref:    ref,
		Inputs: inputs,
	})
	return wrapHostErr("dispatch_workflow", err)
}

func fromGithubIssue(iss *github.Issue) Issue {
	var labels []string
	for _, l := range iss.Labels {
		labels = append(labels, l.GetName())
	}
	return Issue{
		Number: iss.GetNumber(),
		Title:  iss.GetTitle(),
		Body:   iss.GetBody(),
		State:  iss.GetState(),
		Labels: labels,
	}
}

func fromGithubPR(pr *github.PullRequest) PullRequest {
	return PullRequest{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		Body:   pr.GetBody(),
		State:  pr.GetState(),
		Head:   pr.GetHead().GetRef(),
		Base:   pr.GetBase().GetRef(),
		URL:    pr.GetHTMLURL(),
	}
}

func fromGithubRun(r *github.WorkflowRun) WorkflowRun {
	return WorkflowRun{
		ID:         r.GetID(),
		Name:       r.GetName(),
		Status:     r.GetStatus(),
		Conclusion: r.GetConclusion(),
		URL:        r.GetHTMLURL(),
		HeadBranch: r.GetHeadBranch(),
	}
}

// RepoSlug formats a Repo as "owner/name" for traces and display.
func (r Repo) RepoSlug() string { return fmt.Sprintf("%s/%s", r.Owner, r.Name) }
