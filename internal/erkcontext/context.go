package erkcontext

import (
	"context"
	"io"
	"os"

	"github.com/erkhq/erk/internal/clockcap"
	"github.com/erkhq/erk/internal/config"
	"github.com/erkhq/erk/internal/host"
	"github.com/erkhq/erk/internal/shellprobe"
	"github.com/erkhq/erk/internal/stack"
	"github.com/erkhq/erk/internal/subprocess"
	"github.com/erkhq/erk/internal/vcs"
)

// FS abstracts the filesystem operations erk performs, so tests can
// substitute an in-memory double without touching disk.
type FS interface {
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(path string, data []byte, perm os.FileMode) error
	ReadFile(path string) ([]byte, error)
	RemoveAll(path string) error
	Exists(path string) bool
}

// ScriptWriter emits an activation script to a per-command temp file
// and returns its path.
type ScriptWriter interface {
	Write(ctx context.Context, cwd string, env []string) (path string, err error)
}

// ClaudeExecutor drives the AI-assistant subprocess.
type ClaudeExecutor interface {
	RunBlocking(ctx context.Context, workdir, prompt string) (CommandResult, error)
	RunStreaming(ctx context.Context, workdir, prompt string, out io.Writer) (CommandResult, error)
	RunInteractive(ctx context.Context, workdir, prompt string) error
}

// CommandResult is the final record of one assistant-command run.
type CommandResult struct {
	Success          bool
	PRURL            string
	DurationSeconds  float64
	ErrorMessage     string
	FilteredMessages []string
}

// NoRepoSentinel marks a Context built outside any git repository.
type NoRepoSentinel struct{}

// Context is the per-invocation immutable injection record. It is
// built once per command and never shared across goroutines.
type Context struct {
	Git            vcs.Git
	Host           host.Host
	Stack          stack.Stack
	Config         *config.GlobalConfig
	LocalConfig    *config.RepoConfig
	Clock          clockcap.Clock
	FS             FS
	Shell          *shellprobe.Probe
	Subprocess     subprocess.Runner
	ClaudeExecutor ClaudeExecutor
	ScriptWriter   ScriptWriter

	Cwd         string
	TrunkBranch string

	Repo    *RepoContext
	NoRepo  *NoRepoSentinel
	Stderr  io.Writer
	Stdout  io.Writer
}

// InRepo reports whether this Context was built inside a git repository.
func (c *Context) InRepo() bool { return c.Repo != nil }
