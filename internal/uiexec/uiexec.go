// Package uiexec renders the shared streaming-command UI: a header
// banner and a per-run summary line (`erk implement` prints only the
// header). It also carries a single-shot "no
// commits produced" warning, since erk runs a command once per
// invocation rather than looping: a single post-run HEAD comparison
// stands in for a multi-iteration staleness detector.
package uiexec

import (
	"fmt"
	"io"

	"github.com/erkhq/erk/internal/executor"
)

const contextLimit = 200_000

// RenderHeader prints the configuration bar at the start of an
// `implement` run.
func RenderHeader(w io.Writer, worktreeName, branch string, prompt string) {
	bar := executor.BoldCyan + "────────────────────────────────────────" + executor.Reset
	fmt.Fprintln(w, bar)
	fmt.Fprintf(w, "  %sWorktree%s  %s%s%s\n", executor.Dim, executor.Reset, executor.White, worktreeName, executor.Reset)
	fmt.Fprintf(w, "  %sBranch%s    %s%s%s\n", executor.Dim, executor.Reset, executor.BoldCyan, branch, executor.Reset)
	fmt.Fprintf(w, "  %sPrompt%s    %s%s%s\n", executor.Dim, executor.Reset, executor.White, prompt, executor.Reset)
	fmt.Fprintln(w, bar)
}

// RenderSummary prints the context/cost line and log path after a run.
func RenderSummary(w io.Writer, stats *executor.IterationStats, logPath string) {
	pct := stats.PeakContext * 100 / contextLimit
	fmt.Fprintf(w, "\n  %s────%s %s / %s context (%d%%)",
		executor.Dim, executor.Reset,
		executor.FormatTokens(stats.PeakContext), executor.FormatTokens(contextLimit), pct)
	if stats.Cost > 0 {
		fmt.Fprintf(w, "  %s$%.4f%s", executor.Yellow, stats.Cost, executor.Reset)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %sraw log: %s%s\n", executor.Dim, logPath, executor.Reset)
}

// RenderNoCommitsWarning prints the single-shot "no commits produced"
// warning after a run whose worktree HEAD did not move.
func RenderNoCommitsWarning(w io.Writer) {
	fmt.Fprintf(w, "%sNo new commits were produced by this run%s\n", executor.BoldRed, executor.Reset)
}

// StaleCheck reports whether headBefore == headAfter, i.e. the run
// produced no commits.
func StaleCheck(headBefore, headAfter string) bool {
	return headBefore == headAfter
}
