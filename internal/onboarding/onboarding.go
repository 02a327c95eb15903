// Package onboarding implements erk's first-run setup, the `erk init`
// command's interactive collection of GlobalConfig values: Detect
// inspects existing state and available tools, RunForm collects user
// input via a charmbracelet/huh form (GlobalConfig's handful of fields
// suit a one-shot form better than a sequential Q&A scan), and Apply
// writes the result.
package onboarding

import (
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/erkhq/erk/internal/config"
	"github.com/erkhq/erk/internal/shellprobe"
)

// State is the detected environment, the seed for both defaults and
// the form.
type State struct {
	AlreadyConfigured bool
	Probe             *shellprobe.Probe
	Defaults          config.GlobalConfig
}

// Detect inspects whether erk has already been configured for this user
// and what tools are available on PATH.
func Detect(home string) (*State, error) {
	probe := shellprobe.Detect(nil, "", "")

	existing, err := config.LoadGlobal(config.GlobalConfigPath(home))
	if err != nil {
		return nil, err
	}

	st := &State{
		Probe:             probe,
		AlreadyConfigured: existing.ErksRoot != "",
		Defaults:          *existing,
	}
	if st.Defaults.ErksRoot == "" {
		st.Defaults.ErksRoot = filepath.Join(home, "erks")
	}
	if !st.AlreadyConfigured {
		st.Defaults.UseStackTool = probe.HasStackTool()
		st.Defaults.ShowPRInfo = probe.HasHostCLI()
		st.Defaults.ShowPRChecks = probe.HasHostCLI()
	}
	return st, nil
}

// RunForm collects erks_root, use_stack_tool, show_pr_info, and
// show_pr_checks from the user, seeded with st.Defaults.
func RunForm(st *State) (*config.GlobalConfig, error) {
	cfg := st.Defaults

	stackHint := "not found on PATH"
	if st.Probe.HasStackTool() {
		stackHint = "found at " + st.Probe.Tools.StackTool
	}
	hostHint := "not found on PATH"
	if st.Probe.HasHostCLI() {
		hostHint = "found at " + st.Probe.Tools.Host
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Where should erk create worktrees?").
				Description("erks_root").
				Value(&cfg.ErksRoot),
			huh.NewConfirm().
				Title("Use a stacked-branch tool for create/submit?").
				Description(stackHint).
				Value(&cfg.UseStackTool),
			huh.NewConfirm().
				Title("Show pull request info in status/statusline?").
				Description(hostHint).
				Value(&cfg.ShowPRInfo),
			huh.NewConfirm().
				Title("Show CI check results in status/statusline?").
				Description(hostHint).
				Value(&cfg.ShowPRChecks),
		),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Apply writes cfg to the global config path under home, creating parent
// directories as needed.
func Apply(home string, cfg *config.GlobalConfig) error {
	return cfg.Save(config.GlobalConfigPath(home))
}
