package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/erkcontext"
	"github.com/erkhq/erk/internal/host"
	"github.com/erkhq/erk/internal/planpipeline"
	"github.com/erkhq/erk/internal/planstore"
	"github.com/erkhq/erk/internal/worktree"
)

// buildPipeline resolves the repo's host.Repo from its origin remote and
// wires a planpipeline.Pipeline around the invocation's capabilities.
func buildPipeline(ctx context.Context, ec *erkcontext.Context) (*planpipeline.Pipeline, host.Repo, error) {
	repo, err := hostRepo(ctx, ec.Git, ec.Repo.Root)
	if err != nil {
		return nil, host.Repo{}, err
	}
	store := planstore.NewStore(ec.Host, repo)
	wt := worktree.NewManager(ec.Git, ec.FS, nil)
	createdBy := os.Getenv("USER")
	if createdBy == "" {
		createdBy = "erk"
	}
	return planpipeline.New(store, wt, ec.Git, ec.Host, repo, ec.ClaudeExecutor, ec.Clock, createdBy), repo, nil
}

// readBody reads a plan body from --body, falling back to reading all of
// stdin when --body is empty (so `erk plan-save title < plan.md` works).
func readBody(body string, stdin io.Reader) (string, error) {
	if body != "" {
		return body, nil
	}
	data, err := io.ReadAll(bufio.NewReader(stdin))
	if err != nil {
		return "", domainerr.Wrap(domainerr.KindEnvironment, "reading plan body from stdin", err)
	}
	return string(data), nil
}

func planSaveCmd() *cobra.Command {
	var body string
	cmd := &cobra.Command{
		Use:   "plan-save <title>",
		Short: "Open a new erk-plan issue from a title and body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGlobalFlags(cmd)
			if err != nil {
				return err
			}
			d, err := defaultDeps()
			if err != nil {
				return err
			}
			ec, err := buildContext(cmd.Context(), d, g, "")
			if err != nil {
				return err
			}
			if err := requireRepo(ec); err != nil {
				return err
			}

			planBody, err := readBody(body, cmd.InOrStdin())
			if err != nil {
				return err
			}

			p, _, err := buildPipeline(cmd.Context(), ec)
			if err != nil {
				return err
			}
			rec, err := p.Save(cmd.Context(), args[0], planBody)
			if err != nil {
				return err
			}
			fmt.Fprintf(ec.Stdout, "#%d\n", rec.IssueNumber)
			return nil
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "plan body markdown (reads stdin if omitted)")
	return cmd
}

func planEnrichCmd() *cobra.Command {
	var update bool
	var workdir string
	cmd := &cobra.Command{
		Use:   "plan-enrich <issue-number>",
		Short: "Run the enrichment subagent over a plan and update or fork it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issueNumber, err := strconv.Atoi(args[0])
			if err != nil {
				return domainerr.New(domainerr.KindUserInput, "invalid issue number: "+args[0])
			}
			g, err := readGlobalFlags(cmd)
			if err != nil {
				return err
			}
			d, err := defaultDeps()
			if err != nil {
				return err
			}
			ec, err := buildContext(cmd.Context(), d, g, "")
			if err != nil {
				return err
			}
			if err := requireRepo(ec); err != nil {
				return err
			}

			p, repo, err := buildPipeline(cmd.Context(), ec)
			if err != nil {
				return err
			}
			store := planstore.NewStore(ec.Host, repo)
			rec, err := store.Load(cmd.Context(), issueNumber)
			if err != nil {
				return err
			}

			if workdir == "" {
				workdir = d.cwd
			}
			updated, err := p.Enrich(cmd.Context(), workdir, rec, update)
			if err != nil {
				return err
			}
			fmt.Fprintf(ec.Stdout, "#%d\n", updated.IssueNumber)
			return nil
		},
	}
	cmd.Flags().BoolVar(&update, "update", true, "update the issue in place instead of forking a new one")
	cmd.Flags().StringVar(&workdir, "workdir", "", "directory the enrichment subagent runs in (default: cwd)")
	return cmd
}

func planSaveEnrichedCmd() *cobra.Command {
	var body string
	cmd := &cobra.Command{
		Use:   "plan-save-enriched <title>",
		Short: "Save a plan and immediately run it through the enrichment subagent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGlobalFlags(cmd)
			if err != nil {
				return err
			}
			d, err := defaultDeps()
			if err != nil {
				return err
			}
			ec, err := buildContext(cmd.Context(), d, g, "")
			if err != nil {
				return err
			}
			if err := requireRepo(ec); err != nil {
				return err
			}

			planBody, err := readBody(body, cmd.InOrStdin())
			if err != nil {
				return err
			}

			p, _, err := buildPipeline(cmd.Context(), ec)
			if err != nil {
				return err
			}
			rec, err := p.Save(cmd.Context(), args[0], planBody)
			if err != nil {
				return err
			}
			enriched, err := p.Enrich(cmd.Context(), d.cwd, rec, true)
			if err != nil {
				return err
			}
			fmt.Fprintf(ec.Stdout, "#%d\n", enriched.IssueNumber)
			return nil
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "plan body markdown (reads stdin if omitted)")
	return cmd
}

func planCloneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan-clone <issue-number>",
		Short: "Fork an open plan issue into a new one and close the original",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issueNumber, err := strconv.Atoi(args[0])
			if err != nil {
				return domainerr.New(domainerr.KindUserInput, "invalid issue number: "+args[0])
			}
			g, err := readGlobalFlags(cmd)
			if err != nil {
				return err
			}
			d, err := defaultDeps()
			if err != nil {
				return err
			}
			ec, err := buildContext(cmd.Context(), d, g, "")
			if err != nil {
				return err
			}
			if err := requireRepo(ec); err != nil {
				return err
			}

			p, _, err := buildPipeline(cmd.Context(), ec)
			if err != nil {
				return err
			}
			clone, err := p.Clone(cmd.Context(), issueNumber)
			if err != nil {
				return err
			}
			fmt.Fprintf(ec.Stdout, "#%d\n", clone.IssueNumber)
			return nil
		},
	}
	return cmd
}

func planEnqueueCmd() *cobra.Command {
	var workflow, ref string
	cmd := &cobra.Command{
		Use:   "plan-enqueue <issue-number>",
		Short: "Dispatch a remote workflow to build and submit a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issueNumber, err := strconv.Atoi(args[0])
			if err != nil {
				return domainerr.New(domainerr.KindUserInput, "invalid issue number: "+args[0])
			}
			g, err := readGlobalFlags(cmd)
			if err != nil {
				return err
			}
			d, err := defaultDeps()
			if err != nil {
				return err
			}
			ec, err := buildContext(cmd.Context(), d, g, "")
			if err != nil {
				return err
			}
			if err := requireRepo(ec); err != nil {
				return err
			}

			p, _, err := buildPipeline(cmd.Context(), ec)
			if err != nil {
				return err
			}
			if err := p.Dispatch(cmd.Context(), issueNumber, workflow, ref); err != nil {
				return err
			}
			if !g.script {
				fmt.Fprintf(ec.Stderr, "dispatched %s for #%d\n", workflow, issueNumber)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&workflow, "workflow", "queue-plan.yml", "workflow file to dispatch")
	cmd.Flags().StringVar(&ref, "ref", "", "git ref to run the workflow on (default: trunk)")
	return cmd
}

// queuePlanCmd is the hidden counterpart to plan-enqueue: invoked inside
// the dispatched CI workflow, it runs the plan's full implement ->
// fast-ci -> submit-pr sequence non-interactively.
func queuePlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "queue-plan <issue-number>",
		Short:  "Internal: run a dispatched plan's implement/submit sequence",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issueNumber, err := strconv.Atoi(args[0])
			if err != nil {
				return domainerr.New(domainerr.KindUserInput, "invalid issue number: "+args[0])
			}
			g, err := readGlobalFlags(cmd)
			if err != nil {
				return err
			}
			d, err := defaultDeps()
			if err != nil {
				return err
			}
			ec, err := buildContext(cmd.Context(), d, g, "")
			if err != nil {
				return err
			}
			if err := requireRepo(ec); err != nil {
				return err
			}

			p, _, err := buildPipeline(cmd.Context(), ec)
			if err != nil {
				return err
			}
			results, err := p.Submit(cmd.Context(), issueNumber, ec.Repo.Root, ec.Repo.ErksDir)
			for _, r := range results {
				fmt.Fprintf(ec.Stdout, "%s: success=%v\n", r.Step, r.Result.Success)
			}
			return err
		},
	}
	return cmd
}
