package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/erkhq/erk/internal/clockcap"
	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/erkcontext"
	"github.com/erkhq/erk/internal/subprocess"
)

// Real drives the `claude` CLI across erk's three execution modes:
// blocking enrich/submit calls, streaming implement runs, and an
// interactive terminal handoff.
type Real struct {
	Run    subprocess.Runner
	Clock  clockcap.Clock
	Binary string
	// Env carries additional "KEY=VALUE" entries (e.g. SESSION_CONTEXT)
	// appended to the streaming subprocess's environment.
	Env []string
}

// NewReal constructs a Real executor. binary defaults to "claude".
func NewReal(run subprocess.Runner, clock clockcap.Clock, binary string) *Real {
	if binary == "" {
		binary = "claude"
	}
	return &Real{Run: run, Clock: clock, Binary: binary}
}

// RunBlocking invokes claude with a prompt and waits for completion,
// returning its final text as a single CommandResult (used by
// plan-enrich, submit's fixed sequence, and implement when it has no
// output stream).
func (r *Real) RunBlocking(ctx context.Context, workdir, prompt string) (erkcontext.CommandResult, error) {
	start := r.Clock.Now()
	res, err := r.Run.Run(ctx, workdir, r.Binary, "-p", prompt, "--output-format", "json")
	elapsed := r.Clock.Now().Sub(start).Seconds()
	if err != nil {
		return erkcontext.CommandResult{Success: false, DurationSeconds: elapsed, ErrorMessage: err.Error()}, nil
	}
	return erkcontext.CommandResult{
		Success:          true,
		DurationSeconds:  elapsed,
		FilteredMessages: []string{res.Stdout},
	}, nil
}

// RunStreaming invokes claude in stream-json mode, rendering events to
// out as they arrive and returning the accumulated run result once the
// process exits.
func (r *Real) RunStreaming(ctx context.Context, workdir, prompt string, out io.Writer) (erkcontext.CommandResult, error) {
	start := r.Clock.Now()

	path, err := r.Run.LookPath(r.Binary)
	if err != nil {
		return erkcontext.CommandResult{}, domainerr.Wrap(domainerr.KindEnvironment, "locating claude binary", err)
	}

	cmd := exec.CommandContext(ctx, path, "-p", prompt, "--output-format", "stream-json", "--verbose")
	cmd.Dir = workdir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return erkcontext.CommandResult{}, domainerr.Wrap(domainerr.KindSubprocess, "piping claude stdout", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return erkcontext.CommandResult{}, domainerr.Wrap(domainerr.KindSubprocess, "starting claude", err)
	}

	stats, procErr := Process(stdout, out)
	waitErr := cmd.Wait()
	elapsed := r.Clock.Now().Sub(start).Seconds()

	if waitErr != nil {
		return erkcontext.CommandResult{
			Success:         false,
			DurationSeconds: elapsed,
			ErrorMessage:    stderr.String(),
		}, nil
	}
	if procErr != nil {
		return erkcontext.CommandResult{}, domainerr.Wrap(domainerr.KindSubprocess, "parsing claude stream", procErr)
	}

	return erkcontext.CommandResult{
		Success:          true,
		DurationSeconds:  elapsed,
		FilteredMessages: []string{fmt.Sprintf("cost=$%.4f peak_context=%s tool_calls=%d",
			stats.Cost, FormatTokens(stats.PeakContext), stats.ToolCalls)},
	}, nil
}

// RunInteractive hands the terminal to claude directly, for ad-hoc
// assistant sessions; no erk command calls it.
func (r *Real) RunInteractive(ctx context.Context, workdir, prompt string) error {
	var args []string
	if prompt != "" {
		args = append(args, prompt)
	}
	return r.Run.RunInteractive(ctx, workdir, nil, r.Binary, args...)
}

// Fake is an in-memory ClaudeExecutor for tests.
type Fake struct {
	BlockingFunc    func(ctx context.Context, workdir, prompt string) (erkcontext.CommandResult, error)
	StreamingFunc   func(ctx context.Context, workdir, prompt string, out io.Writer) (erkcontext.CommandResult, error)
	InteractiveFunc func(ctx context.Context, workdir, prompt string) error

	BlockingCalls    []string
	StreamingCalls   []string
	InteractiveCalls []string
}

// NewFake constructs an empty Fake executor.
func NewFake() *Fake { return &Fake{} }

func (f *Fake) RunBlocking(ctx context.Context, workdir, prompt string) (erkcontext.CommandResult, error) {
	f.BlockingCalls = append(f.BlockingCalls, prompt)
	if f.BlockingFunc != nil {
		return f.BlockingFunc(ctx, workdir, prompt)
	}
	return erkcontext.CommandResult{Success: true}, nil
}

func (f *Fake) RunStreaming(ctx context.Context, workdir, prompt string, out io.Writer) (erkcontext.CommandResult, error) {
	f.StreamingCalls = append(f.StreamingCalls, prompt)
	if f.StreamingFunc != nil {
		return f.StreamingFunc(ctx, workdir, prompt, out)
	}
	return erkcontext.CommandResult{Success: true}, nil
}

func (f *Fake) RunInteractive(ctx context.Context, workdir, prompt string) error {
	f.InteractiveCalls = append(f.InteractiveCalls, prompt)
	if f.InteractiveFunc != nil {
		return f.InteractiveFunc(ctx, workdir, prompt)
	}
	return nil
}
