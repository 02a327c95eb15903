// Package statusrender renders status collector results in two
// variants: text (to stderr) and JSON (to stdout), in the fixed
// logical order worktree, plan, stack, PR, git, related regardless of
// collector completion order.
//
// Rendering is a plain sequential writer with no template engine,
// colorized via the executor package's shared ANSI constants.
package statusrender

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/erkhq/erk/internal/executor"
	"github.com/erkhq/erk/internal/statuscollector"
)

// Data is the fully-resolved status view for one worktree, assembled
// from statuscollector.Result values keyed by collector name.
type Data struct {
	WorktreeName string
	Branch       string

	Plan    *statuscollector.PlanFolderResult
	PlanErr string

	Stack    *statuscollector.StackResult
	StackErr string

	PR    *statuscollector.PRResult
	PRErr string

	Git    *statuscollector.GitStatusResult
	GitErr string

	Related    *statuscollector.RelatedWorktreesResult
	RelatedErr string
}

// FromResults maps statuscollector.Run's unordered results onto Data by
// collector name, so the renderer never depends on completion order.
func FromResults(worktreeName, branch string, results []statuscollector.Result) Data {
	d := Data{WorktreeName: worktreeName, Branch: branch}
	for _, r := range results {
		switch r.Name {
		case "plan_folder":
			if r.Err != nil {
				d.PlanErr = r.Err.Error()
			} else if p, ok := r.Payload.(statuscollector.PlanFolderResult); ok {
				d.Plan = &p
			}
		case "stack":
			if r.Err != nil {
				d.StackErr = r.Err.Error()
			} else if s, ok := r.Payload.(statuscollector.StackResult); ok {
				d.Stack = &s
			}
		case "pull_request":
			if r.Err != nil {
				d.PRErr = r.Err.Error()
			} else if p, ok := r.Payload.(statuscollector.PRResult); ok {
				d.PR = &p
			}
		case "git_status":
			if r.Err != nil {
				d.GitErr = r.Err.Error()
			} else if g, ok := r.Payload.(statuscollector.GitStatusResult); ok {
				d.Git = &g
			}
		case "related_worktrees":
			if r.Err != nil {
				d.RelatedErr = r.Err.Error()
			} else if rel, ok := r.Payload.(statuscollector.RelatedWorktreesResult); ok {
				d.Related = &rel
			}
		}
	}
	return d
}

// RenderText writes the human-readable status view to w, in the fixed
// logical order: worktree, plan, stack, PR, git, related.
func RenderText(w io.Writer, d Data) {
	fmt.Fprintf(w, "%sWorktree%s %s (%s)\n", executor.Dim, executor.Reset, d.WorktreeName, d.Branch)

	if d.Plan != nil && d.Plan.Present {
		fmt.Fprintf(w, "  plan:    %s (%d%%)\n", d.Plan.Objective, int(d.Plan.ProgressFraction*100))
	} else if d.PlanErr != "" {
		fmt.Fprintf(w, "  plan:    %s(unavailable)%s\n", executor.Dim, executor.Reset)
	} else {
		fmt.Fprintln(w, "  plan:    (none)")
	}

	if d.Stack != nil && d.Stack.Position >= 0 {
		fmt.Fprintf(w, "  stack:   #%d of %d", d.Stack.Position+1, len(d.Stack.Branches))
		if d.Stack.Parent != "" {
			fmt.Fprintf(w, ", below %s", d.Stack.Parent)
		}
		fmt.Fprintln(w)
	} else if d.StackErr != "" {
		fmt.Fprintf(w, "  stack:   %s(unavailable)%s\n", executor.Dim, executor.Reset)
	}

	if d.PR != nil && d.PR.Number != 0 {
		checks := "failing"
		if d.PR.ChecksPassing {
			checks = "passing"
		}
		fmt.Fprintf(w, "  pr:      #%d %s (checks %s)\n", d.PR.Number, d.PR.State, checks)
	} else if d.PRErr != "" {
		fmt.Fprintf(w, "  %s(pr: unavailable)%s\n", executor.BoldRed, executor.Reset)
	}

	if d.Git != nil {
		fmt.Fprintf(w, "  git:     %d staged, %d modified, %d untracked\n",
			len(d.Git.Staged), len(d.Git.Modified), len(d.Git.Untracked))
	} else if d.GitErr != "" {
		fmt.Fprintf(w, "  git:     %s(unavailable)%s\n", executor.Dim, executor.Reset)
	}

	if d.Related != nil && len(d.Related.Siblings) > 0 {
		fmt.Fprintf(w, "  related: %v\n", d.Related.Siblings)
	}
}

// jsonStatus is the strict JSON schema: optional sections are null
// when absent, never omitted.
type jsonStatus struct {
	WorktreeName string       `json:"worktree_name"`
	Branch       string       `json:"branch"`
	Plan         *jsonPlan    `json:"plan_status"`
	Stack        *jsonStack   `json:"stack_status"`
	PR           *jsonPR      `json:"pr_status"`
	Git          *jsonGit     `json:"git_status"`
	Related      *jsonRelated `json:"related_worktrees"`
}

type jsonPlan struct {
	Present          bool    `json:"present"`
	Objective        string  `json:"objective"`
	ProgressFraction float64 `json:"progress_fraction"`
}

type jsonStack struct {
	Position int      `json:"position"`
	Parent   string   `json:"parent"`
	Child    string   `json:"child"`
	Branches []string `json:"branches"`
}

type jsonPR struct {
	Number        int    `json:"number"`
	State         string `json:"state"`
	URL           string `json:"url"`
	ChecksPassing bool   `json:"checks_passing"`
}

type jsonGit struct {
	Staged    []string `json:"staged"`
	Modified  []string `json:"modified"`
	Untracked []string `json:"untracked"`
}

type jsonRelated struct {
	Siblings []string `json:"siblings"`
}

// RenderJSON writes the strict-schema JSON status view to w, keeping
// every absent optional section explicitly null.
func RenderJSON(w io.Writer, d Data) error {
	out := jsonStatus{WorktreeName: d.WorktreeName, Branch: d.Branch}
	if d.Plan != nil {
		out.Plan = &jsonPlan{Present: d.Plan.Present, Objective: d.Plan.Objective, ProgressFraction: d.Plan.ProgressFraction}
	}
	if d.Stack != nil {
		out.Stack = &jsonStack{Position: d.Stack.Position, Parent: d.Stack.Parent, Child: d.Stack.Child, Branches: d.Stack.Branches}
	}
	if d.PR != nil && d.PR.Number != 0 {
		out.PR = &jsonPR{Number: d.PR.Number, State: d.PR.State, URL: d.PR.URL, ChecksPassing: d.PR.ChecksPassing}
	}
	if d.Git != nil {
		out.Git = &jsonGit{Staged: d.Git.Staged, Modified: d.Git.Modified, Untracked: d.Git.Untracked}
	}
	if d.Related != nil {
		out.Related = &jsonRelated{Siblings: d.Related.Siblings}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

// RenderLine writes a single condensed line for shell-prompt
// integration (`erk refresh-statusline`): worktree, plan progress, PR
// state. Unavailable sections are simply omitted rather than padded,
// since a prompt line has no room for "(unavailable)" diagnostics.
func RenderLine(w io.Writer, d Data) {
	fmt.Fprintf(w, "%s", d.WorktreeName)
	if d.Plan != nil && d.Plan.Present {
		fmt.Fprintf(w, " %d%%", int(d.Plan.ProgressFraction*100))
	}
	if d.PR != nil && d.PR.Number != 0 {
		mark := "✓"
		if !d.PR.ChecksPassing {
			mark = "✗"
		}
		fmt.Fprintf(w, " #%d%s", d.PR.Number, mark)
	}
	fmt.Fprintln(w)
}
