package planfolder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirForPrefersCanonical(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, CanonicalDir), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, LegacyDir), 0o755))
	require.Equal(t, filepath.Join(dir, CanonicalDir), DirFor(dir))
}

func TestDirForFallsBackToLegacy(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, LegacyDir), 0o755))
	require.Equal(t, filepath.Join(dir, LegacyDir), DirFor(dir))
}

func TestWriteAndReadProgressRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteProgress(dir, Progress{CompletedSteps: 2, TotalSteps: 5}))

	p, err := ReadProgress(dir)
	require.NoError(t, err)
	require.Equal(t, 2, p.CompletedSteps)
	require.Equal(t, 5, p.TotalSteps)
}

func TestReadProgressMissingFileReturnsZeroValue(t *testing.T) {
	p, err := ReadProgress(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, Progress{}, p)
}

func TestIssueRefRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteIssueRef(dir, IssueRef{IssueNumber: 42, IssueURL: "https://example.com/42"}))

	ref, err := ReadIssueRef(dir)
	require.NoError(t, err)
	require.NotNil(t, ref)
	require.Equal(t, 42, ref.IssueNumber)
}

func TestParseStepsTracksCheckboxes(t *testing.T) {
	body := "### Task 1 - Add login\n- [x] write handler\n\n### Task 2 - Add logout\n- [ ] write handler\n"
	steps := ParseSteps(body)
	require.Len(t, steps, 2)
	require.Equal(t, "Add login", steps[0].Title)
	require.True(t, steps[0].Done)
	require.Equal(t, "Add logout", steps[1].Title)
	require.False(t, steps[1].Done)
}
