package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erkhq/erk/internal/domainerr"
)

func submitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <issue-number>",
		Short: "Run implement -> fast-ci -> submit-pr through the assistant, stopping at the first failure",
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

			results, err := p.Submit(cmd.Context(), issueNumber, ec.Repo.Root, ec.Repo.ErksDir)
			for _, r := range results {
				fmt.Fprintf(ec.Stderr, "%s: success=%v\n", r.Step, r.Result.Success)
				for _, line := range r.Result.FilteredMessages {
					fmt.Fprintln(ec.Stderr, line)
				}
			}
			if err != nil {
				return err
			}

			last := results[len(results)-1]
			if last.Result.PRURL != "" {
				fmt.Fprintln(ec.Stdout, last.Result.PRURL)
			}
			return nil
		},
	}
	return cmd
}
