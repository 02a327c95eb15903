package planstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erkhq/erk/internal/host"
)

var repo = host.Repo{Owner: "erkhq", Name: "erk"}

func TestMarshalParseHeaderRoundTrip(t *testing.T) {
	h := Header{
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC),
		CreatedBy:     "dev",
		WorktreeName:  "feature-x",
	}
	block, err := MarshalHeader(h)
	require.NoError(t, err)
	require.Contains(t, block, "<!-- erk:metadata-block:plan-header -->")
	require.Contains(t, block, "<!-- /erk:metadata-block:plan-header -->")
	require.Contains(t, block, "<details><summary><code>plan-header</code></summary>")
	require.Contains(t, block, "```yaml")
	require.Contains(t, block, `schema_version: "2"`)

	body := "Some preamble.\n\n" + block + "\nMore text."
	parsed, err := ParseHeader(body)
	require.NoError(t, err)
	require.Equal(t, h.WorktreeName, parsed.WorktreeName)
	require.Equal(t, h.SchemaVersion, parsed.SchemaVersion)
}

func TestParseHeaderFailsClosedWithoutBlock(t *testing.T) {
	_, err := ParseHeader("no metadata here")
	require.Error(t, err)
}

func TestMarshalParseBodyRoundTrip(t *testing.T) {
	comment := MarshalBody("# My Plan\n\nDo the thing.")
	body, err := ParseBody(comment)
	require.NoError(t, err)
	require.Equal(t, "# My Plan\n\nDo the thing.", body)
}

func TestParseBodyFailsClosedWithoutBlock(t *testing.T) {
	_, err := ParseBody("just a regular comment")
	require.Error(t, err)
}

func TestStoreCreateAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	fakeHost := host.NewFake()
	store := NewStore(fakeHost, repo)

	header := Header{SchemaVersion: SchemaVersion, WorktreeName: "feature-x", CreatedBy: "dev"}
	rec, err := store.Create(ctx, header, "# Plan body")
	require.NoError(t, err)
	require.Equal(t, 1, rec.IssueNumber)
	require.Contains(t, fakeHost.EnsuredLabels, PlanLabel)

	loaded, err := store.Load(ctx, rec.IssueNumber)
	require.NoError(t, err)
	require.Equal(t, "feature-x", loaded.Header.WorktreeName)
	require.Equal(t, "# Plan body", loaded.Body)
}

func TestUpdateDispatchPersistsRunID(t *testing.T) {
	ctx := context.Background()
	fakeHost := host.NewFake()
	store := NewStore(fakeHost, repo)
	rec, err := store.Create(ctx, Header{WorktreeName: "feature-x"}, "body")
	require.NoError(t, err)

	at := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateDispatch(ctx, rec, 999, at))

	loaded, err := store.Load(ctx, rec.IssueNumber)
	require.NoError(t, err)
	require.Equal(t, int64(999), loaded.Header.LastDispatchedRunID)
}
