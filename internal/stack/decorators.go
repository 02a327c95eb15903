package stack

import (
	"context"
	"fmt"
	"io"

	"github.com/erkhq/erk/internal/trace"
)

// DryRun wraps a Stack, passing reads through and recording destructive
// calls without mutating the real stack.
type DryRun struct {
	Inner Stack

	WouldUp      int
	WouldDown    int
	WouldRestack []string
	WouldSync    int
}

// NewDryRun wraps inner in a DryRun decorator.
func NewDryRun(inner Stack) *DryRun { return &DryRun{Inner: inner} }

func (d *DryRun) CurrentStack(ctx context.Context, root string) ([]string, error) {
	return d.Inner.CurrentStack(ctx, root)
}

func (d *DryRun) Up(ctx context.Context, root string) error {
	d.WouldUp++
	return nil
}

func (d *DryRun) Down(ctx context.Context, root string) error {
	d.WouldDown++
	return nil
}

func (d *DryRun) Restack(ctx context.Context, root, onto string) error {
	d.WouldRestack = append(d.WouldRestack, onto)
	return nil
}

func (d *DryRun) Sync(ctx context.Context, root string) error {
	d.WouldSync++
	return nil
}

func (d *DryRun) InStack(ctx context.Context, root, branch string) (bool, error) {
	return d.Inner.InStack(ctx, root, branch)
}

func (d *DryRun) dryRunMarker() bool { return true }

type isDryRun interface{ dryRunMarker() bool }

// Printing wraps any Stack implementation and emits a one-line command
// trace to W for Up, Down, Restack and Sync; CurrentStack and InStack
// pass through untraced.
type Printing struct {
	Inner Stack
	W     io.Writer
}

// NewPrinting wraps inner in a Printing decorator writing traces to w.
func NewPrinting(inner Stack, w io.Writer) *Printing {
	return &Printing{Inner: inner, W: w}
}

func (p *Printing) isDryRun() bool {
	if dr, ok := p.Inner.(isDryRun); ok {
		return dr.dryRunMarker()
	}
	return false
}

func (p *Printing) trace(command string) {
	trace.Line(p.W, command, p.isDryRun())
}

func (p *Printing) CurrentStack(ctx context.Context, root string) ([]string, error) {
	return p.Inner.CurrentStack(ctx, root)
}

func (p *Printing) Up(ctx context.Context, root string) error {
	p.trace("gt up")
	return p.Inner.Up(ctx, root)
}

func (p *Printing) Down(ctx context.Context, root string) error {
	p.trace("gt down")
	return p.Inner.Down(ctx, root)
}

func (p *Printing) Restack(ctx context.Context, root, onto string) error {
	p.trace(fmt.Sprintf("gt restack --onto %s", onto))
	return p.Inner.Restack(ctx, root, onto)
}

func (p *Printing) Sync(ctx context.Context, root string) error {
	p.trace("gt sync")
	return p.Inner.Sync(ctx, root)
}

func (p *Printing) InStack(ctx context.Context, root, branch string) (bool, error) {
	return p.Inner.InStack(ctx, root, branch)
}

// Fake is an in-memory Stack for tests. Constructor-only initial state.
type Fake struct {
	Branches []string

	UpCalls      int
	DownCalls    int
	RestackCalls []string
	SyncCalls    int
}

// NewFake constructs a Fake Stack with the given branch order.
func NewFake(branches ...string) *Fake {
	return &Fake{Branches: branches}
}

func (f *Fake) CurrentStack(ctx context.Context, root string) ([]string, error) {
	return append([]string(nil), f.Branches...), nil
}

func (f *Fake) Up(ctx context.Context, root string) error {
	f.UpCalls++
	return nil
}

func (f *Fake) Down(ctx context.Context, root string) error {
	f.DownCalls++
	return nil
}

func (f *Fake) Restack(ctx context.Context, root, onto string) error {
	f.RestackCalls = append(f.RestackCalls, onto)
	return nil
}

func (f *Fake) Sync(ctx context.Context, root string) error {
	f.SyncCalls++
	return nil
}

func (f *Fake) InStack(ctx context.Context, root, branch string) (bool, error) {
	for _, b := range f.Branches {
		if b == branch {
			return true, nil
		}
	}
	return false, nil
}
