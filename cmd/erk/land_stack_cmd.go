package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erkhq/erk/internal/domainerr"
)

// landStackCmd syncs the stack with its remote and restacks the current
// branch onto trunk, the local side of "landing" a stacked PR once its
// base has merged. Gated by GlobalConfig.UseStackTool, the same feature
// flag StatusCollector's StackCollector checks before running.
func landStackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "land-stack",
		Short: "Sync the stack with its remote and restack the current branch onto trunk",
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
			if ec.Stack == nil {
				return domainerr.New(domainerr.KindUserInput, "stack tool is not enabled").
					WithSuggestions("run `erk config set use_stack_tool true`", "install the stack binary configured under stack_binary")
			}

			if err := ec.Stack.Sync(cmd.Context(), ec.Repo.Root); err != nil {
				return err
			}
			if err := ec.Stack.Restack(cmd.Context(), ec.Repo.Root, ec.TrunkBranch); err != nil {
				return err
			}

			if !g.script {
				fmt.Fprintln(ec.Stderr, "stack synced and restacked onto "+ec.TrunkBranch)
			}
			return nil
		},
	}
	return cmd
}
