package host

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

var repo = Repo{Owner: "erkhq", Name: "erk"}

func TestFakeCreateAndGetIssue(t *testing.T) {
	ctx := context.Background()
	f := NewFake()

	iss, err := f.CreateIssue(ctx, repo, "plan title", "plan body", []string{"erk-plan"})
	require.NoError(t, err)
	require.Equal(t, 1, iss.Number)

	got, err := f.GetIssue(ctx, repo, iss.Number)
	require.NoError(t, err)
	require.Equal(t, "plan title", got.Title)
	require.Equal(t, []int{1}, f.CreatedIssues)
}

func TestFakeCommentsAccumulate(t *testing.T) {
	ctx := context.Background()
	f := NewFake()
	iss, _ := f.CreateIssue(ctx, repo, "t", "b", nil)

	_, err := f.AddComment(ctx, repo, iss.Number, "progress update")
	require.NoError(t, err)
	got, _ := f.GetIssue(ctx, repo, iss.Number)
	require.Len(t, got.Comments, 1)
	require.Equal(t, "progress update", got.Comments[0].Body)
}

func TestDryRunDoesNotMutateInner(t *testing.T) {
	ctx := context.Background()
	inner := NewFake()
	dry := NewDryRun(inner)

	iss, err := dry.CreateIssue(ctx, repo, "t", "b", nil)
	require.NoError(t, err)
	require.Equal(t, 100001, iss.Number)
	require.Empty(t, inner.CreatedIssues, "inner fake must not be mutated by DryRun")
	require.Len(t, dry.WouldCreateIssue, 1)
}

func TestPrintingEmitsTraceWithDryRunMarker(t *testing.T) {
	ctx := context.Background()
	dry := NewDryRun(NewFake())
	var buf bytes.Buffer
	p := NewPrinting(dry, &buf)

	_, err := p.CreateIssue(ctx, repo, "t", "b", nil)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "(dry run)")
	require.Contains(t, buf.String(), "erkhq/erk")
}
