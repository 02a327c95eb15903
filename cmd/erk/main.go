// Command erk manages a fleet of per-feature git worktrees ("erks") and
// drives the plan-capture -> implementation -> PR-submission lifecycle
// through an AI assistant subprocess.
//
// Wiring is a root cobra command with one subcommand per top-level
// operation; each subcommand's RunE resolves shared flags then
// delegates into the internal packages.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "erk",
		Short:         "Per-feature git worktree fleet manager with plan-driven AI assistance",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Bool("dry-run", false, "install the DryRun capability wrapper; no destructive operation is performed")
	root.PersistentFlags().String("format", "text", "output format: text or json")
	root.PersistentFlags().Bool("json", false, "shorthand for --format json on commands with only two output modes")
	root.PersistentFlags().Bool("script", false, "shell-integration mode: suppress diagnostics so stdout carries only the activation script path")
	root.PersistentFlags().BoolP("verbose", "v", false, "install the Printing capability wrapper; trace every capability call")
	root.PersistentFlags().Bool("dangerous", false, "skip the clean-worktree precondition in preflight checks")

	root.AddCommand(initCmd())
	root.AddCommand(configCmd())
	root.AddCommand(createCmd())
	root.AddCommand(deleteCmd())
	root.AddCommand(renameCmd())
	root.AddCommand(checkoutCmd())
	root.AddCommand(consolidateCmd())
	root.AddCommand(currentCmd())
	root.AddCommand(listCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(refreshStatuslineCmd())
	root.AddCommand(implementCmd())
	root.AddCommand(submitCmd())
	root.AddCommand(planSaveCmd())
	root.AddCommand(planEnrichCmd())
	root.AddCommand(planSaveEnrichedCmd())
	root.AddCommand(planCloneCmd())
	root.AddCommand(planEnqueueCmd())
	root.AddCommand(queuePlanCmd())
	root.AddCommand(landStackCmd())

	if err := root.Execute(); err != nil {
		g, gErr := readGlobalFlags(root)
		if gErr != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		w := os.Stderr
		if g.wantsJSON() {
			w = os.Stdout
		}
		exitWithErr(g, w, err)
	}
}
