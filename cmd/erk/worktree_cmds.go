package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/erkcontext"
	"github.com/erkhq/erk/internal/worktree"
)

// activate writes an activation script for cwd and prints its path on
// stdout as the sole line of machine output, so the invoking shell can
// `source <(erk ... --script)` to change its own directory. Caller
// diagnostics (already on stderr) are unaffected by --script; that flag
// only suppresses them, which individual commands do by checking
// g.script before writing anything extra to stderr.
func activate(ctx context.Context, ec *erkcontext.Context, cwd string, env []string) error {
	path, err := ec.ScriptWriter.Write(ctx, cwd, env)
	if err != nil {
		return domainerr.Wrap(domainerr.KindEnvironment, "writing activation script", err)
	}
	fmt.Fprintln(ec.Stdout, path)
	return nil
}

func createCmd() *cobra.Command {
	var name, trunk string
	cmd := &cobra.Command{
		Use:   "create [plan-title]",
		Short: "Create a new worktree for a feature",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGlobalFlags(cmd)
			if err != nil {
				return err
			}
			d, err := defaultDeps()
			if err != nil {
				return err
			}
			ec, err := buildContext(cmd.Context(), d, g, trunk)
			if err != nil {
				return err
			}
			if err := requireRepo(ec); err != nil {
				return err
			}

			req := worktree.FeatureRequest{Name: name}
			if name == "" && len(args) == 1 {
				req.PlanTitle = args[0]
			}

			mgr := worktree.NewManager(ec.Git, ec.FS, nil)
			wt, err := mgr.Create(cmd.Context(), ec.Repo, ec.LocalConfig, req)
			if err != nil {
				return err
			}

			if !g.script {
				fmt.Fprintf(ec.Stderr, "created worktree %s at %s\n", wt.Name, wt.Path)
			}
			return activate(cmd.Context(), ec, wt.Path, nil)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "explicit worktree name (overrides the derived slug)")
	cmd.Flags().StringVar(&trunk, "trunk", "", "trunk branch override for this invocation")
	return cmd
}

func deleteCmd() *cobra.Command {
	var deleteBranch, force bool
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a worktree and optionally its branch",
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

			// If the shell is currently inside the worktree being removed,
			// relocate cwd to a safe anchor first. The repo root always
			// has trunk checked out, so it doubles as the trunk worktree
			// when no dedicated one exists.
			target := filepath.Join(ec.Repo.ErksDir, args[0])
			inTarget := ec.Cwd == target || strings.HasPrefix(ec.Cwd, target+string(filepath.Separator))
			if inTarget {
				if err := activate(cmd.Context(), ec, ec.Repo.Root, nil); err != nil {
					return err
				}
			}

			mgr := worktree.NewManager(ec.Git, ec.FS, nil)
			if err := mgr.Delete(cmd.Context(), ec.Repo, args[0], deleteBranch, force); err != nil {
				return err
			}
			if !g.script {
				fmt.Fprintf(ec.Stderr, "removed worktree %s\n", args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&deleteBranch, "delete-branch", false, "also delete the branch")
	cmd.Flags().BoolVar(&force, "force", false, "force removal of a worktree with uncommitted changes")
	return cmd
}

func renameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <old-name> <new-name>",
		Short: "Rename a worktree's directory and branch",
		Args:  cobra.ExactArgs(2),
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
			if err := mgr.Rename(cmd.Context(), ec.Repo, args[0], args[1]); err != nil {
				return err
			}
			if !g.script {
				fmt.Fprintf(ec.Stderr, "renamed worktree %s -> %s\n", args[0], args[1])
			}
			return nil
		},
	}
	return cmd
}

func checkoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout <name>",
		Short: "Switch the invoking shell into an existing worktree",
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

			mgr := worktree.NewManager(ec.Git, ec.FS, nil)
			all, err := mgr.List(cmd.Context(), ec.Repo)
			if err != nil {
				return err
			}
			for _, wt := range all {
				if wt.Name == args[0] {
					return activate(cmd.Context(), ec, wt.Path, nil)
				}
			}
			return domainerr.New(domainerr.KindUserInput, "no such worktree: "+args[0])
		},
	}
	return cmd
}

// currentJSON is the JSON schema `erk current --json` prints, e.g.
// `{"name":"root","path":"<repo_root_absolute>","is_root":true}`.
type currentJSON struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	IsRoot bool   `json:"is_root"`
}

func currentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "current",
		Short: "Print the worktree the current directory belongs to",
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

			branch, err := ec.Git.CurrentBranch(cmd.Context(), ec.Cwd)
			if err != nil {
				return err
			}
			isRoot := ec.Cwd == ec.Repo.Root
			name := filepath.Base(ec.Cwd)
			if isRoot {
				name = "root"
			}

			if g.wantsJSON() {
				enc := json.NewEncoder(ec.Stdout)
				return enc.Encode(currentJSON{Name: name, Path: ec.Cwd, IsRoot: isRoot})
			}
			fmt.Fprintf(ec.Stdout, "%s (%s)\n", branch, ec.Cwd)
			return nil
		},
	}
	return cmd
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the worktrees managed under this repo's erks directory",
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
			all, err := mgr.List(cmd.Context(), ec.Repo)
			if err != nil {
				return err
			}

			if g.wantsJSON() {
				enc := json.NewEncoder(ec.Stdout)
				return enc.Encode(all)
			}
			for _, wt := range all {
				marker := " "
				if wt.IsRoot {
					marker = "*"
				}
				fmt.Fprintf(ec.Stdout, "%s %-20s %s\n", marker, wt.Name, wt.Branch)
			}
			return nil
		},
	}
	return cmd
}
