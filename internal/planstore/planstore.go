// Package planstore implements a host-backed plan representation: a
// hosting-platform issue labeled "erk-plan" whose body carries a
// plan-header metadata block and whose first comment carries the
// plan-body markdown.
//
// The metadata-block format (YAML inside a collapsed <details>
// disclosure, delimited by an explicit HTML-comment marker) follows an
// explicit-marker, strict-regex, fail-closed approach to structured
// text embedded in free-form markdown.
package planstore

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/host"
)

// PlanLabel is the host label every erk-managed plan issue carries.
const PlanLabel = "erk-plan"

// SchemaVersion is the current plan-header schema, carried as the
// literal string "2" (not a YAML integer).
const SchemaVersion = "2"

// Header is the plan-header metadata block.
type Header struct {
	SchemaVersion       string    `yaml:"schema_version"`
	CreatedAt           time.Time `yaml:"created_at"`
	CreatedBy           string    `yaml:"created_by"`
	WorktreeName        string    `yaml:"worktree_name"`
	LastDispatchedRunID int64     `yaml:"last_dispatched_run_id,omitempty"`
	LastDispatchedAt    time.Time `yaml:"last_dispatched_at,omitempty"`
}

// metadataBlock renders the literal marker/disclosure wrapper around
// inner for the given block id ("plan-header"/"plan-body").
func metadataBlock(id, inner string) string {
	return fmt.Sprintf(
		"<!-- erk:metadata-block:%s -->\n<details><summary><code>%s</code></summary>\n\n%s\n\n</details>\n<!-- /erk:metadata-block:%s -->\n",
		id, id, inner, id,
	)
}

func metadataBlockRe(id string) *regexp.Regexp {
	return regexp.MustCompile(
		`(?s)<!-- erk:metadata-block:` + id + ` -->\s*<details><summary><code>` + id + `</code></summary>\s*\n(.*?)\n\s*</details>\s*<!-- /erk:metadata-block:` + id + ` -->`,
	)
}

var headerBlockRe = metadataBlockRe("plan-header")
var bodyBlockRe = metadataBlockRe("plan-body")
var yamlFenceRe = regexp.MustCompile("(?s)```yaml\\s*\\n(.*?)\\n```")

// MarshalHeader renders a Header as the plan-header metadata block
// embedded in an issue body: a collapsed <details> disclosure wrapping
// a fenced YAML block, delimited by the erk:metadata-block marker.
func MarshalHeader(h Header) (string, error) {
	data, err := yaml.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("marshaling plan-header: %w", err)
	}
	fenced := fmt.Sprintf("```yaml\n%s```", string(data))
	return metadataBlock("plan-header", fenced), nil
}

// ParseHeader extracts and parses the plan-header block from an issue
// body. Fails closed: a missing or malformed block is an error, never a
// silently zero-valued Header.
func ParseHeader(issueBody string) (Header, error) {
	m := headerBlockRe.FindStringSubmatch(issueBody)
	if m == nil {
		return Header{}, domainerr.New(domainerr.KindValidation, "issue body has no plan-header block")
	}
	fence := yamlFenceRe.FindStringSubmatch(m[1])
	if fence == nil {
		return Header{}, domainerr.New(domainerr.KindValidation, "plan-header block has no yaml fence")
	}
	var h Header
	if err := yaml.Unmarshal([]byte(fence[1]), &h); err != nil {
		return Header{}, domainerr.Wrap(domainerr.KindValidation, "parsing plan-header block", err)
	}
	return h, nil
}

// MarshalBody renders planMarkdown as the plan-body metadata block
// embedded in the first comment, with markers identical in shape to
// MarshalHeader's but wrapping markdown instead of YAML.
func MarshalBody(planMarkdown string) string {
	return metadataBlock("plan-body", planMarkdown)
}

// ParseBody extracts the plan markdown from a comment carrying a
// plan-body block.
func ParseBody(commentBody string) (string, error) {
	m := bodyBlockRe.FindStringSubmatch(commentBody)
	if m == nil {
		return "", domainerr.New(domainerr.KindValidation, "comment has no plan-body block")
	}
	return strings.TrimSpace(m[1]), nil
}

// Record is the fully assembled PlanRecord: the host issue plus its
// parsed header and body.
type Record struct {
	IssueNumber int
	Header      Header
	Body        string
	Comments    []host.Comment
}

// Store reads and writes PlanRecords against the Host capability.
type Store struct {
	Host host.Host
	Repo host.Repo
}

// NewStore constructs a Store.
func NewStore(h host.Host, repo host.Repo) *Store {
	return &Store{Host: h, Repo: repo}
}

// Create opens a new plan issue: header in the issue body, plan markdown
// in the first comment.
func (s *Store) Create(ctx context.Context, header Header, planMarkdown string) (*Record, error) {
	headerBlock, err := MarshalHeader(header)
	if err != nil {
		return nil, err
	}

	if err := s.Host.EnsureLabel(ctx, s.Repo, PlanLabel, "6f42c1"); err != nil {
		return nil, domainerr.Wrap(domainerr.KindRemote, "ensuring erk-plan label", err)
	}

	title := fmt.Sprintf("erk plan: %s", header.WorktreeName)
	iss, err := s.Host.CreateIssue(ctx, s.Repo, title, headerBlock, []string{PlanLabel})
	if err != nil {
		return nil, err
	}

	bodyBlock := MarshalBody(planMarkdown)
	if _, err := s.Host.AddComment(ctx, s.Repo, iss.Number, bodyBlock); err != nil {
		return nil, err
	}

	return &Record{IssueNumber: iss.Number, Header: header, Body: planMarkdown}, nil
}

// Load reads a PlanRecord by issue number.
func (s *Store) Load(ctx context.Context, issueNumber int) (*Record, error) {
	iss, err := s.Host.GetIssue(ctx, s.Repo, issueNumber)
	if err != nil {
		return nil, err
	}
	header, err := ParseHeader(iss.Body)
	if err != nil {
		return nil, err
	}

	var body string
	for _, c := range iss.Comments {
		if b, err := ParseBody(c.Body); err == nil {
			body = b
			break
		}
	}

	return &Record{IssueNumber: issueNumber, Header: header, Body: body, Comments: iss.Comments}, nil
}

// UpdateDispatch records a workflow dispatch on the plan header's
// last_dispatched_run_id/last_dispatched_at fields.
func (s *Store) UpdateDispatch(ctx context.Context, rec *Record, runID int64, at time.Time) error {
	rec.Header.LastDispatchedRunID = runID
	rec.Header.LastDispatchedAt = at
	headerBlock, err := MarshalHeader(rec.Header)
	if err != nil {
		return err
	}
	_, err = s.Host.UpdateIssue(ctx, s.Repo, rec.IssueNumber, nil, &headerBlock, nil)
	return err
}

// AddEnrichment appends an enrichment-context comment ("planning
// context", "worktree creation", "progress update").
func (s *Store) AddEnrichment(ctx context.Context, rec *Record, kind, content string) error {
	body := fmt.Sprintf("<!-- plan-enrichment: %s -->\n%s\n", kind, content)
	_, err := s.Host.AddComment(ctx, s.Repo, rec.IssueNumber, body)
	return err
}
