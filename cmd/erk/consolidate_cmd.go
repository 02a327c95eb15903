package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/erkhq/erk/internal/worktree"
)

// confirmOverwrite asks the user via a huh.Confirm whether to overwrite
// a conflicting plan folder during consolidate: a conflicting pair is
// never merged silently.
func confirmOverwrite(prompt string) (bool, error) {
	ok := false
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Overwrite").
				Negative("Skip").
				Value(&ok),
		),
	).Run()
	return ok, err
}

func consolidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consolidate <target> <source>...",
		Short: "Merge related worktrees' plan folders into one and remove the merged sources",
		Args:  cobra.MinimumNArgs(2),
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

			mgr := worktree.NewManager(ec.Git, ec.FS, nil)
			result, err := mgr.Consolidate(cmd.Context(), ec.Repo, args[0], args[1:], confirmOverwrite)
			if err != nil {
				return err
			}

			for _, name := range result.Merged {
				fmt.Fprintf(ec.Stderr, "merged %s into %s\n", name, result.Target)
			}
			for _, name := range result.Skipped {
				fmt.Fprintf(ec.Stderr, "skipped %s (conflicting plan folder, not overwritten)\n", name)
			}
			for name, mergeErr := range result.Errors {
				fmt.Fprintf(ec.Stderr, "failed to merge %s: %v\n", name, mergeErr)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("consolidate failed for %d worktree(s)", len(result.Errors))
			}
			return nil
		},
	}
	return cmd
}
