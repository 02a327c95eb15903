package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/executor"
)

// jsonError is the structured shape errors take in --json/--format=json
// mode: stdout stays pure JSON, so errors are emitted as a single
// {error, error_type, exit_code} object rather than human-readable text.
type jsonError struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
	ExitCode  int    `json:"exit_code"`
}

// renderErr prints err to w as a title line, details, and 2-3 suggested
// actions, and returns the process exit code. Unexpected (non-domainerr)
// errors get a short identifier and exit code 2.
func renderErr(w io.Writer, err error, jsonMode bool) int {
	var derr *domainerr.Error
	if !errors.As(err, &derr) {
		if jsonMode {
			emitJSONError(w, err.Error(), "unexpected", 2)
		} else {
			fmt.Fprintf(w, "%serror%s: %v\n", executor.BoldRed, executor.Reset, err)
		}
		return 2
	}

	if jsonMode {
		emitJSONError(w, derr.Error(), string(derr.Kind), derr.Kind.ExitCode())
		return derr.Kind.ExitCode()
	}

	fmt.Fprintf(w, "%serror%s: %s\n", executor.BoldRed, executor.Reset, derr.Message)
	if derr.Err != nil {
		fmt.Fprintf(w, "  %s%v%s\n", executor.Dim, derr.Err, executor.Reset)
	}
	if derr.Details != "" {
		fmt.Fprintf(w, "  %s%s%s\n", executor.Dim, derr.Details, executor.Reset)
	}
	for _, s := range derr.Suggestions {
		fmt.Fprintf(w, "  %s-%s %s\n", executor.Dim, executor.Reset, s)
	}
	return derr.Kind.ExitCode()
}

func emitJSONError(w io.Writer, message, kind string, exitCode int) {
	data, err := json.Marshal(jsonError{Error: message, ErrorType: kind, ExitCode: exitCode})
	if err != nil {
		fmt.Fprintf(w, `{"error":%q,"error_type":"unexpected","exit_code":2}`+"\n", err.Error())
		return
	}
	fmt.Fprintln(w, string(data))
}
