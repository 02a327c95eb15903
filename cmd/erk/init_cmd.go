package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erkhq/erk/internal/onboarding"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactively configure erk for first use",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := defaultDeps()
			if err != nil {
				return err
			}

			st, err := onboarding.Detect(d.home)
			if err != nil {
				return err
			}
			if st.AlreadyConfigured {
				fmt.Fprintf(d.stderr, "erk is already configured; re-running init will overwrite erks_root=%s\n", st.Defaults.ErksRoot)
			}

			cfg, err := onboarding.RunForm(st)
			if err != nil {
				return err
			}
			if err := onboarding.Apply(d.home, cfg); err != nil {
				return err
			}
			fmt.Fprintf(d.stdout, "erk configured: erks_root=%s\n", cfg.ErksRoot)
			return nil
		},
	}
}
