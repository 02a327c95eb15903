package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/planpipeline"
	"github.com/erkhq/erk/internal/uiexec"
)

// sessionContextEnv builds the SESSION_CONTEXT env entry, correlating
// one command's assistant logs with a fresh session id.
func sessionContextEnv() string {
	return "SESSION_CONTEXT=session_id=" + uuid.NewString()
}

func implementCmd() *cobra.Command {
	var run bool
	cmd := &cobra.Command{
		Use:   "implement <issue-number>",
		Short: "Seed a worktree from a plan issue and optionally run the assistant",
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

			if run && !g.script {
				uiexec.RenderHeader(ec.Stderr, "", ec.TrunkBranch, "/implement")
			}

			wt, err := p.Implement(cmd.Context(), issueNumber, planpipeline.ImplementOptions{
				RepoRoot:     ec.Repo.Root,
				ErksDir:      ec.Repo.ErksDir,
				Trunk:        ec.TrunkBranch,
				RunAssistant: run,
				Out:          ec.Stderr,
			})
			if err != nil {
				return err
			}

			if !g.script {
				fmt.Fprintf(ec.Stderr, "implementing #%d in worktree %s\n", issueNumber, wt.Name)
			}
			return activate(cmd.Context(), ec, wt.Path, nil)
		},
	}
	cmd.Flags().BoolVar(&run, "run", true, "drive the implementation slash-command through the assistant")
	return cmd
}
