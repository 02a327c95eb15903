package statusrender

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erkhq/erk/internal/statuscollector"
)

func TestFromResultsMapsByNameRegardlessOfOrder(t *testing.T) {
	results := []statuscollector.Result{
		{Name: "pull_request", Payload: statuscollector.PRResult{Number: 42, State: "open", ChecksPassing: true}},
		{Name: "plan_folder", Payload: statuscollector.PlanFolderResult{Present: true, Objective: "Add widget export", ProgressFraction: 0.5}},
		{Name: "git_status", Payload: statuscollector.GitStatusResult{Modified: []string{"main.go"}}},
	}

	d := FromResults("feature-x", "feature-x", results)

	require.NotNil(t, d.Plan)
	require.Equal(t, "Add widget export", d.Plan.Objective)
	require.NotNil(t, d.PR)
	require.Equal(t, 42, d.PR.Number)
	require.NotNil(t, d.Git)
	require.Equal(t, []string{"main.go"}, d.Git.Modified)
	require.Nil(t, d.Stack)
	require.Nil(t, d.Related)
}

func TestFromResultsRecordsPerCollectorFailure(t *testing.T) {
	results := []statuscollector.Result{
		{Name: "pull_request", Err: errors.New("host: 503")},
	}

	d := FromResults("feature-x", "feature-x", results)

	require.Nil(t, d.PR)
	require.Equal(t, "host: 503", d.PRErr)
}

func TestRenderTextShowsPRUnavailableOnPartialFailure(t *testing.T) {
	d := Data{
		WorktreeName: "feature-x",
		Branch:       "feature-x",
		Git:          &statuscollector.GitStatusResult{},
		PRErr:        "host: 503",
	}

	var buf bytes.Buffer
	RenderText(&buf, d)

	require.Contains(t, buf.String(), "(pr: unavailable)")
	require.Contains(t, buf.String(), "git:")
}

func TestRenderJSONKeepsAbsentSectionsNull(t *testing.T) {
	d := Data{WorktreeName: "feature-x", Branch: "feature-x"}

	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, d))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Nil(t, decoded["plan_status"])
	require.Nil(t, decoded["stack_status"])
	require.Nil(t, decoded["pr_status"])
	require.Nil(t, decoded["git_status"])
	require.Nil(t, decoded["related_worktrees"])
}

func TestRenderJSONOmitsZeroValuePR(t *testing.T) {
	d := Data{
		WorktreeName: "feature-x",
		Branch:       "feature-x",
		PR:           &statuscollector.PRResult{}, // no PR found, collector returns zero value
	}

	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, d))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Nil(t, decoded["pr_status"])
}

func TestRenderLineOmitsUnavailableSections(t *testing.T) {
	d := Data{
		WorktreeName: "feature-x",
		Plan:         &statuscollector.PlanFolderResult{Present: true, ProgressFraction: 0.75},
	}

	var buf bytes.Buffer
	RenderLine(&buf, d)

	require.Equal(t, "feature-x 75%\n", buf.String())
}
