// Package stack implements the optional Stack capability: read the
// current stacked-branch order, move up/down, restack, sync with
// remote. Availability is a GlobalConfig feature flag.
//
// Real shells out to an external binary (default "gt") via the shared
// subprocess.Runner, with trimmed-output parsing.
package stack

import (
	"context"
	"strings"

	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/subprocess"
)

// Stack is the capability interface for an optional stacked-branch tool.
type Stack interface {
	CurrentStack(ctx context.Context, root string) ([]string, error)
	Up(ctx context.Context, root string) error
	Down(ctx context.Context, root string) error
	Restack(ctx context.Context, root, onto string) error
	Sync(ctx context.Context, root string) error
	InStack(ctx context.Context, root, branch string) (bool, error)
}

// Real is the production Stack backed by an external CLI (default "gt").
type Real struct {
	Run    subprocess.Runner
	Binary string
}

// NewReal constructs a Real Stack. binary defaults to "gt" when empty.
func NewReal(run subprocess.Runner, binary string) *Real {
	if binary == "" {
		binary = "gt"
	}
	return &Real{Run: run, Binary: binary}
}

func (s *Real) run(ctx context.Context, root string, args ...string) (string, error) {
	res, err := s.Run.Run(ctx, root, s.Binary, args...)
	if err != nil {
		return "", domainerr.Wrap(domainerr.KindSubprocess, s.Binary+" "+args[0]+" failed", err).
			WithDetails(res.Stderr)
	}
	return res.Stdout, nil
}

// CurrentStack implements Stack via `gt log short`.
func (s *Real) CurrentStack(ctx context.Context, root string) ([]string, error) {
	out, err := s.run(ctx, root, "log", "short")
	if err != nil {
		return nil, err
	}
	var branches []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			branches = append(branches, line)
		}
	}
	return branches, nil
}

// Up implements Stack via `gt up`.
func (s *Real) Up(ctx context.Context, root string) error {
	_, err := s.run(ctx, root, "up")
	return err
}

// Down implements Stack via `gt down`.
func (s *Real) Down(ctx context.Context, root string) error {
	_, err := s.run(ctx, root, "down")
	return err
}

// Restack implements Stack via `gt restack --onto <onto>`.
func (s *Real) Restack(ctx context.Context, root, onto string) error {
	_, err := s.run(ctx, root, "restack", "--onto", onto)
	return err
}

// Sync implements Stack via `gt sync`.
func (s *Real) Sync(ctx context.Context, root string) error {
	_, err := s.run(ctx, root, "sync")
	return err
}

// InStack implements Stack by checking whether branch appears in CurrentStack.
func (s *Real) InStack(ctx context.Context, root, branch string) (bool, error) {
	branches, err := s.CurrentStack(ctx, root)
	if err != nil {
		return false, err
	}
	for _, b := range branches {
		if b == branch {
			return true, nil
		}
	}
	return false, nil
}
