package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erkhq/erk/internal/config"
	"github.com/erkhq/erk/internal/domainerr"
)

// configFields enumerates GlobalConfig's settable keys for `config get/set`,
// keeping the reflection-free mapping explicit rather than relying on
// generic marshaling.
var configFields = map[string]struct {
	get func(*config.GlobalConfig) string
	set func(*config.GlobalConfig, string) error
}{
	"erks_root": {
		get: func(c *config.GlobalConfig) string { return c.ErksRoot },
		set: func(c *config.GlobalConfig, v string) error { c.ErksRoot = v; return nil },
	},
	"use_stack_tool": {
		get: func(c *config.GlobalConfig) string { return strconv.FormatBool(c.UseStackTool) },
		set: func(c *config.GlobalConfig, v string) error { return setBool(&c.UseStackTool, v) },
	},
	"show_pr_info": {
		get: func(c *config.GlobalConfig) string { return strconv.FormatBool(c.ShowPRInfo) },
		set: func(c *config.GlobalConfig, v string) error { return setBool(&c.ShowPRInfo, v) },
	},
	"show_pr_checks": {
		get: func(c *config.GlobalConfig) string { return strconv.FormatBool(c.ShowPRChecks) },
		set: func(c *config.GlobalConfig, v string) error { return setBool(&c.ShowPRChecks, v) },
	},
	"host_cli": {
		get: func(c *config.GlobalConfig) string { return c.HostCLI },
		set: func(c *config.GlobalConfig, v string) error { c.HostCLI = v; return nil },
	},
	"stack_binary": {
		get: func(c *config.GlobalConfig) string { return c.StackBinary },
		set: func(c *config.GlobalConfig, v string) error { c.StackBinary = v; return nil },
	},
}

func setBool(dst *bool, v string) error {
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return domainerr.New(domainerr.KindUserInput, "expected true/false, got "+v)
	}
	*dst = parsed
	return nil
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or write global configuration",
	}
	cmd.AddCommand(configGetCmd(), configSetCmd(), configListCmd())
	return cmd
}

func configGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a single config value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := defaultDeps()
			if err != nil {
				return err
			}
			cfg, err := config.LoadGlobal(config.GlobalConfigPath(d.home))
			if err != nil {
				return err
			}
			field, ok := configFields[args[0]]
			if !ok {
				return domainerr.New(domainerr.KindUserInput, "unknown config key: "+args[0])
			}
			fmt.Fprintln(d.stdout, field.get(cfg))
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a single config value and persist it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := defaultDeps()
			if err != nil {
				return err
			}
			path := config.GlobalConfigPath(d.home)
			cfg, err := config.LoadGlobal(path)
			if err != nil {
				return err
			}
			field, ok := configFields[args[0]]
			if !ok {
				return domainerr.New(domainerr.KindUserInput, "unknown config key: "+args[0])
			}
			if err := field.set(cfg, args[1]); err != nil {
				return err
			}
			return cfg.Save(path)
		},
	}
}

func configListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every config key and its current value",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := defaultDeps()
			if err != nil {
				return err
			}
			cfg, err := config.LoadGlobal(config.GlobalConfigPath(d.home))
			if err != nil {
				return err
			}
			for _, key := range []string{"erks_root", "use_stack_tool", "show_pr_info", "show_pr_checks", "host_cli", "stack_binary"} {
				fmt.Fprintf(d.stdout, "%s=%s\n", key, configFields[key].get(cfg))
			}
			return nil
		},
	}
}
