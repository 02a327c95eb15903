package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/erkhq/erk/internal/statuscollector"
	"github.com/erkhq/erk/internal/statusrender"
)

// defaultStatusTimeout is the status collectors' global deadline,
// configurable per invocation.
const defaultStatusTimeout = 30 * time.Second

func runStatus(cmd *cobra.Command, g globalFlags) error {
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

	branch, err := ec.Git.CurrentBranch(cmd.Context(), ec.Cwd)
	if err != nil {
		return err
	}

	collectors := []statuscollector.Collector{
		&statuscollector.GitStatusCollector{Git: ec.Git},
		&statuscollector.PlanFolderCollector{},
		&statuscollector.RelatedWorktreesCollector{Git: ec.Git, ErksDir: ec.Repo.ErksDir},
	}
	if ec.Stack != nil {
		collectors = append(collectors, &statuscollector.StackCollector{Stack: ec.Stack, Branch: branch})
	}
	if ec.Host != nil {
		if repo, err := hostRepo(cmd.Context(), ec.Git, ec.Repo.Root); err == nil {
			collectors = append(collectors, &statuscollector.PRCollector{Host: ec.Host, Repo: repo, Branch: branch})
		}
	}

	results := statuscollector.Run(cmd.Context(), collectors, ec.Cwd, ec.Repo.Root, defaultStatusTimeout)
	data := statusrender.FromResults(ec.Repo.RepoName, branch, results)

	if g.wantsJSON() {
		return statusrender.RenderJSON(ec.Stdout, data)
	}
	statusrender.RenderText(ec.Stderr, data)
	return nil
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show worktree, plan, stack, PR, and git status",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGlobalFlags(cmd)
			if err != nil {
				return err
			}
			return runStatus(cmd, g)
		},
	}
}

func refreshStatuslineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-statusline",
		Short: "Print a condensed one-line status for shell-prompt integration",
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
			if !ec.InRepo() {
				return nil
			}

			branch, err := ec.Git.CurrentBranch(cmd.Context(), ec.Cwd)
			if err != nil {
				return nil
			}

			collectors := []statuscollector.Collector{&statuscollector.PlanFolderCollector{}}
			if ec.Host != nil {
				if repo, err := hostRepo(cmd.Context(), ec.Git, ec.Repo.Root); err == nil {
					collectors = append(collectors, &statuscollector.PRCollector{Host: ec.Host, Repo: repo, Branch: branch})
				}
			}
			results := statuscollector.Run(cmd.Context(), collectors, ec.Cwd, ec.Repo.Root, defaultStatusTimeout)
			data := statusrender.FromResults(ec.Repo.RepoName, branch, results)
			statusrender.RenderLine(ec.Stdout, data)
			return nil
		},
	}
}
