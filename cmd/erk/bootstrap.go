package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/erkhq/erk/internal/activation"
	"github.com/erkhq/erk/internal/clockcap"
	"github.com/erkhq/erk/internal/config"
	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/erkcontext"
	"github.com/erkhq/erk/internal/executor"
	"github.com/erkhq/erk/internal/host"
	"github.com/erkhq/erk/internal/shellprobe"
	"github.com/erkhq/erk/internal/stack"
	"github.com/erkhq/erk/internal/subprocess"
	"github.com/erkhq/erk/internal/vcs"
)

// globalFlags are the shared flags every subcommand accepts, read once
// per invocation and threaded into bootstrap rather than into every
// capability constructor.
type globalFlags struct {
	dryRun    bool
	format    string
	jsonMode  bool
	script    bool
	verbose   bool
	dangerous bool
}

func readGlobalFlags(cmd *cobra.Command) (globalFlags, error) {
	var g globalFlags
	var err error
	if g.dryRun, err = cmd.Flags().GetBool("dry-run"); err != nil {
		return g, err
	}
	if g.format, err = cmd.Flags().GetString("format"); err != nil {
		return g, err
	}
	if g.jsonMode, err = cmd.Flags().GetBool("json"); err != nil {
		return g, err
	}
	if g.script, err = cmd.Flags().GetBool("script"); err != nil {
		return g, err
	}
	if g.verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return g, err
	}
	if g.dangerous, err = cmd.Flags().GetBool("dangerous"); err != nil {
		return g, err
	}
	return g, nil
}

// wantsJSON reports whether the resolved flags ask for machine-readable
// output, covering both --json and --format=json.
func (g globalFlags) wantsJSON() bool {
	return g.jsonMode || g.format == "json"
}

// resolveErksRoot applies the override order: ERK_ROOT env var, then
// GlobalConfig.ErksRoot, then {home}/erks.
func resolveErksRoot(envRoot, cfgRoot, home string) string {
	if envRoot != "" {
		return envRoot
	}
	if cfgRoot != "" {
		return cfgRoot
	}
	return filepath.Join(home, "erks")
}

// wrapGit layers DryRun and/or Printing over a real vcs.Git: Printing
// (outermost, for trace output) wraps DryRun (which wraps Real).
func wrapGit(real vcs.Git, g globalFlags, out io.Writer) vcs.Git {
	var git vcs.Git = real
	if g.dryRun {
		git = vcs.NewDryRun(git)
	}
	if g.verbose {
		git = vcs.NewPrinting(git, out)
	}
	return git
}

func wrapHost(real host.Host, g globalFlags, out io.Writer) host.Host {
	var h host.Host = real
	if g.dryRun {
		h = host.NewDryRun(h)
	}
	if g.verbose {
		h = host.NewPrinting(h, out)
	}
	return h
}

func wrapStack(real stack.Stack, g globalFlags, out io.Writer) stack.Stack {
	if real == nil {
		return nil
	}
	var s stack.Stack = real
	if g.dryRun {
		s = stack.NewDryRun(s)
	}
	if g.verbose {
		s = stack.NewPrinting(s, out)
	}
	return s
}

// deps are the process-wide constructors a production run needs;
// tests substitute a deps with fakes instead of calling buildContext.
type deps struct {
	home   string
	cwd    string
	stdout io.Writer
	stderr io.Writer
}

func defaultDeps() (*deps, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, domainerr.Wrap(domainerr.KindEnvironment, "resolving home directory", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, domainerr.Wrap(domainerr.KindEnvironment, "resolving working directory", err)
	}
	return &deps{home: home, cwd: cwd, stdout: os.Stdout, stderr: os.Stderr}, nil
}

// buildContext assembles the per-invocation erkcontext.Context, wiring
// real capabilities behind their DryRun/Printing decorators according
// to the resolved global flags.
func buildContext(ctx context.Context, d *deps, g globalFlags, trunkOverride string) (*erkcontext.Context, error) {
	globalCfg, err := config.LoadGlobal(config.GlobalConfigPath(d.home))
	if err != nil {
		return nil, err
	}

	erksRoot := resolveErksRoot(os.Getenv("ERK_ROOT"), globalCfg.ErksRoot, d.home)
	globalCfg.ErksRoot = erksRoot

	run := subprocess.Real{}
	clock := clockcap.RealClock{}
	probe := shellprobe.Detect(nil, globalCfg.HostCLI, globalCfg.StackBinary)

	realGit := vcs.NewReal(run)
	gitCap := wrapGit(realGit, g, d.stderr)

	var stackCap stack.Stack
	if globalCfg.UseStackTool && probe.HasStackTool() {
		stackCap = wrapStack(stack.NewReal(run, globalCfg.StackBinary), g, d.stderr)
	}

	token, tokenErr := host.ResolveToken(ctx, run)
	var hostCap host.Host
	if tokenErr == nil {
		hostCap = wrapHost(host.NewReal(host.NewClient(ctx, token)), g, d.stderr)
	}

	ec := &erkcontext.Context{
		Git:            gitCap,
		Host:           hostCap,
		Stack:          stackCap,
		Config:         globalCfg,
		Clock:          clock,
		FS:             erkcontext.RealFS{},
		Shell:          probe,
		Subprocess:     run,
		ClaudeExecutor: sessionExecutor(run, clock),
		ScriptWriter:   activation.NewWriter(filepath.Join(erksRoot, ".activation-scripts"), clock),
		Cwd:            d.cwd,
		Stdout:         d.stdout,
		Stderr:         d.stderr,
	}

	root, err := erkcontext.DiscoverRoot(ctx, gitCap, d.cwd)
	if err != nil {
		ec.NoRepo = &erkcontext.NoRepoSentinel{}
		return ec, nil
	}

	repoCfgPath := config.RepoConfigPath(filepath.Join(erksRoot, filepath.Base(root)))
	repoCfg, err := config.LoadRepo(repoCfgPath)
	if err != nil {
		return nil, err
	}
	ec.LocalConfig = repoCfg

	repoCtx, err := erkcontext.BuildRepoContext(ctx, gitCap, root, erksRoot, firstNonEmpty(trunkOverride, repoCfg.TrunkBranch))
	if err != nil {
		return nil, err
	}
	ec.Repo = repoCtx
	ec.TrunkBranch = repoCtx.TrunkBranch

	return ec, nil
}

// hostRepo resolves the host.Repo (owner/name) a repo's plan/status
// commands talk to, from the origin remote URL.
func hostRepo(ctx context.Context, git interface {
	RemoteURL(ctx context.Context, root, remote string) (string, error)
}, root string) (host.Repo, error) {
	url, err := git.RemoteURL(ctx, root, "origin")
	if err != nil {
		return host.Repo{}, domainerr.Wrap(domainerr.KindEnvironment, "resolving origin remote", err)
	}
	return host.ParseRepoSlug(url)
}

// sessionExecutor builds the ClaudeExecutor with a fresh SESSION_CONTEXT
// env entry so assistant logs from this invocation can be correlated.
func sessionExecutor(run subprocess.Runner, clock clockcap.Clock) *executor.Real {
	real := executor.NewReal(run, clock, "")
	real.Env = []string{sessionContextEnv()}
	return real
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// requireRepo returns a user-facing error when a command that needs a
// RepoContext is run outside a git repository.
func requireRepo(ec *erkcontext.Context) error {
	if !ec.InRepo() {
		return domainerr.New(domainerr.KindUserInput, "not inside a git repository").
			WithSuggestions("cd into a repository managed by erk", "run `erk init` first if this is a new repo")
	}
	return nil
}

func exitWithErr(g globalFlags, w io.Writer, err error) {
	code := renderErr(w, err, g.wantsJSON())
	os.Exit(code)
}
