// Package config loads erk's two-tier configuration: GlobalConfig
// (user-wide settings) and RepoConfig (per-repo settings), via a
// gopkg.in/yaml.v3-backed Load/validate/applyDefaults pipeline with a
// maximum file size guard.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/erkhq/erk/internal/vcs"
)

// maxConfigSize is the maximum config file size Load will read (64 KiB).
const maxConfigSize = 64 * 1024

// GlobalConfig holds process-wide user settings: created on first
// init, read at every command start, mutated only by config
// subcommands.
type GlobalConfig struct {
	ErksRoot           string `yaml:"erks_root"`
	UseStackTool       bool   `yaml:"use_stack_tool"`
	ShowPRInfo         bool   `yaml:"show_pr_info"`
	ShowPRChecks       bool   `yaml:"show_pr_checks"`
	ShellSetupComplete bool   `yaml:"shell_setup_complete"`
	HostCLI            string `yaml:"host_cli"`
	StackBinary        string `yaml:"stack_binary"`
}

// GlobalConfigPath returns the path to the global config file under home.
func GlobalConfigPath(home string) string {
	return filepath.Join(home, ".config", "erk", "config.yaml")
}

// LoadGlobal reads the GlobalConfig from path. A missing file is not an
// error: an unconfigured default is returned so `erk init` can detect
// first-run state.
func LoadGlobal(path string) (*GlobalConfig, error) {
	cfg := &GlobalConfig{}
	data, err := readBounded(path)
	if os.IsNotExist(err) {
		cfg.applyDefaults()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading global config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid global config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the GlobalConfig to path, creating parent directories.
func (c *GlobalConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling global config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing global config: %w", err)
	}
	return nil
}

func (c *GlobalConfig) validate() error {
	if c.ErksRoot != "" && !filepath.IsAbs(c.ErksRoot) {
		return fmt.Errorf("erks_root must be an absolute path, got %q", c.ErksRoot)
	}
	return nil
}

func (c *GlobalConfig) applyDefaults() {
	if c.HostCLI == "" {
		c.HostCLI = "gh"
	}
	if c.StackBinary == "" {
		c.StackBinary = "gt"
	}
}

// RepoConfig holds per-repo settings at {erks_root}/{repo_name}/config.
type RepoConfig struct {
	TrunkBranch         string            `yaml:"trunk_branch,omitempty"`
	Env                 map[string]string `yaml:"env,omitempty"`
	PostCreateShell     string            `yaml:"post_create_shell,omitempty"`
	PostCreateCommands  []string          `yaml:"post_create_commands,omitempty"`
	Sandbox             bool              `yaml:"sandbox,omitempty"`
	SandboxImageTag     string            `yaml:"sandbox_image_tag,omitempty"`
	SandboxNetworkAllow []string          `yaml:"sandbox_network_allowlist,omitempty"`
}

// RepoConfigPath returns the path to a repo's config file.
func RepoConfigPath(erksDir string) string {
	return filepath.Join(erksDir, "config")
}

// LoadRepo reads a RepoConfig from path. A missing file yields zero
// values so the config is created lazily on first write.
func LoadRepo(path string) (*RepoConfig, error) {
	cfg := &RepoConfig{}
	data, err := readBounded(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading repo config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing repo config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid repo config: %w", err)
	}
	return cfg, nil
}

// Save writes the RepoConfig to path, creating parent directories.
func (c *RepoConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling repo config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating repo config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing repo config: %w", err)
	}
	return nil
}

func (c *RepoConfig) validate() error {
	if c.Sandbox && c.SandboxImageTag == "" {
		return fmt.Errorf("sandbox_image_tag required when sandbox is enabled")
	}
	return nil
}

// ResolveEnv renders RepoConfig.Env into a flat key=value slice:
// templated ${NAME} placeholders are resolved against keys already
// rendered, then fall back to the process environment. Env is a map, so
// keys are rendered in Go map iteration order, not file order; a
// placeholder naming another Env key resolves only when that key
// happened to be rendered first.
func (c *RepoConfig) ResolveEnv(name string, processEnv []string) []string {
	resolved := map[string]string{"NAME": name}
	processLookup := map[string]string{}
	for _, kv := range processEnv {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			processLookup[kv[:i]] = kv[i+1:]
		}
	}

	var ordered []string
	for key := range c.Env {
		ordered = append(ordered, key)
	}
	// Plain map iteration: the order is unspecified and differs between
	// runs, so only keys with no dependency on each other resolve reliably.
	result := make([]string, 0, len(c.Env))
	for _, key := range ordered {
		tmpl := c.Env[key]
		val := substitute(tmpl, resolved, processLookup)
		resolved[key] = val
		result = append(result, key+"="+val)
	}
	return result
}

func substitute(tmpl string, resolved, processLookup map[string]string) string {
	var b strings.Builder
	i := 0
	for i < len(tmpl) {
		if tmpl[i] == '$' && i+1 < len(tmpl) && tmpl[i+1] == '{' {
			end := strings.IndexByte(tmpl[i+2:], '}')
			if end >= 0 {
				name := tmpl[i+2 : i+2+end]
				if v, ok := resolved[name]; ok {
					b.WriteString(v)
				} else if v, ok := processLookup[name]; ok {
					b.WriteString(v)
				}
				i += 2 + end + 1
				continue
			}
		}
		b.WriteByte(tmpl[i])
		i++
	}
	return b.String()
}

// PlanPathForBranch returns the branch-specific plan file path under a
// worktree's .plan/ directory, sanitized the way git branch names are
// sanitized for filesystem paths.
func PlanPathForBranch(branch string) string {
	return "plan_" + vcs.SanitizeBranch(branch) + ".md"
}

func readBounded(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}
	return os.ReadFile(path)
}
