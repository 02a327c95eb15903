// Package shellprobe detects the invoking shell family and the paths to
// external tools erk shells out to. It is read-only: it never mutates
// the environment.
package shellprobe

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Family identifies a shell family understood by ActivationProtocol.
type Family string

// Supported shell families.
const (
	FamilyBash    Family = "bash"
	FamilyZsh     Family = "zsh"
	FamilyFish    Family = "fish"
	FamilyUnknown Family = "unknown"
)

// shellSignals maps a shell binary's basename to its Family.
var shellSignals = map[string]Family{
	"bash": FamilyBash,
	"zsh":  FamilyZsh,
	"fish": FamilyFish,
}

// ToolPaths holds resolved paths to external tools erk depends on.
type ToolPaths struct {
	Git       string
	Host      string // e.g. "gh"
	StackTool string // e.g. "gt"
	Claude    string
}

// Probe is the detection result for one invocation.
type Probe struct {
	Shell     Family
	ShellPath string
	Tools     ToolPaths
}

// LookupFunc mirrors exec.LookPath's signature so tests can substitute a
// fake PATH resolver without touching the real filesystem.
type LookupFunc func(file string) (string, error)

// Detect inspects $SHELL and $PATH to build a Probe. hostBin and stackBin
// name the configured host CLI and stack tool binaries (defaults "gh" and
// "gt" when empty).
func Detect(lookup LookupFunc, hostBin, stackBin string) *Probe {
	if lookup == nil {
		lookup = exec.LookPath
	}
	if hostBin == "" {
		hostBin = "gh"
	}
	if stackBin == "" {
		stackBin = "gt"
	}

	p := &Probe{Shell: FamilyUnknown}

	shellEnv := os.Getenv("SHELL")
	if shellEnv != "" {
		base := filepath.Base(shellEnv)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		if fam, ok := shellSignals[base]; ok {
			p.Shell = fam
			p.ShellPath = shellEnv
		}
	}

	if path, err := lookup("git"); err == nil {
		p.Tools.Git = path
	}
	if path, err := lookup(hostBin); err == nil {
		p.Tools.Host = path
	}
	if path, err := lookup(stackBin); err == nil {
		p.Tools.StackTool = path
	}
	if path, err := lookup("claude"); err == nil {
		p.Tools.Claude = path
	}

	return p
}

// HasStackTool reports whether a stacked-branch tool was found on PATH.
func (p *Probe) HasStackTool() bool { return p.Tools.StackTool != "" }

// HasHostCLI reports whether the configured host CLI was found on PATH.
func (p *Probe) HasHostCLI() bool { return p.Tools.Host != "" }

// ActivationSyntax returns the shell-specific function wrapper snippet the
// user installs to source erk's activation scripts.
func (p *Probe) ActivationSyntax() string {
	switch p.Shell {
	case FamilyFish:
		return `function erk; command erk $argv --script | read -l f; and source $f; end`
	default: // bash/zsh/unknown fall back to POSIX sh syntax
		return `erk() { local f; f="$(command erk --script "$@")" && source "$f"; }`
	}
}
