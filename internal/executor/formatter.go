package executor

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ANSI escape codes shared with internal/trace's command tracing.
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	White  = "\033[37m"
	Cyan   = "\033[36m"
	Green  = "\033[32m"
	Red    = "\033[31m"
	Yellow = "\033[33m"

	BoldCyan = Bold + Cyan
	BoldRed  = Bold + Red
)

// FormatTokens renders a token count the way erk's status line and
// streaming output do ("45.3k", "1.5M"), truncating rather than rounding
// the decimal digit.
func FormatTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%d.%dM", n/1_000_000, (n%1_000_000)/100_000)
	case n >= 1_000:
		return fmt.Sprintf("%d.%dk", n/1_000, (n%1_000)/100)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// Formatter renders Events to a human-readable stream.
type Formatter struct {
	w io.Writer
}

// NewFormatter constructs a Formatter writing to w.
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// Format writes evt's human-readable rendering, or nothing for event
// types erk doesn't display (system, result).
func (f *Formatter) Format(evt *Event) error {
	switch evt.Type {
	case eventAssistant:
		return f.formatAssistant(evt)
	case eventUser:
		return f.formatUser(evt)
	default:
		return nil
	}
}

func (f *Formatter) formatAssistant(evt *Event) error {
	if evt.Message == nil {
		return nil
	}
	for _, block := range evt.Message.Content {
		switch block.Type {
		case contentText:
			if _, err := fmt.Fprintf(f.w, "%s%s%s%s\n", Bold, White, block.Text, Reset); err != nil {
				return err
			}
		case contentToolUse:
			if err := f.formatToolUse(block); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Formatter) formatToolUse(block ContentBlock) error {
	if block.Name == toolNameTask {
		return f.formatTaskToolUse(block)
	}
	param := extractParam(block.Input)
	_, err := fmt.Fprintf(f.w, "%s· %s %s%s\n", Dim, block.Name, param, Reset)
	return err
}

func (f *Formatter) formatTaskToolUse(block ContentBlock) error {
	var input struct {
		Description  string `json:"description"`
		SubagentType string `json:"subagent_type"`
		Model        string `json:"model"`
		MaxTurns     int    `json:"max_turns"`
	}
	_ = json.Unmarshal(block.Input, &input)

	agent := input.SubagentType
	if agent == "" {
		agent = "agent"
	}

	var extras []string
	if input.Model != "" {
		extras = append(extras, fmt.Sprintf("model=%s", input.Model))
	}
	if input.MaxTurns > 0 {
		extras = append(extras, fmt.Sprintf("max_turns=%d", input.MaxTurns))
	}

	line := fmt.Sprintf("%s▶ %s %q", BoldCyan, agent, input.Description)
	if len(extras) > 0 {
		line += " (" + strings.Join(extras, ", ") + ")"
	}
	_, err := fmt.Fprintf(f.w, "%s%s\n", line, Reset)
	return err
}

func (f *Formatter) formatUser(evt *Event) error {
	r := evt.ToolUseResult
	if r == nil || r.TotalTokens <= 0 {
		return nil
	}

	duration := (r.TotalDurationMs + 500) / 1000
	if r.Status == "error" {
		_, err := fmt.Fprintf(f.w, "%s✗ %s%s\n", BoldRed, r.Status, Reset)
		return err
	}

	_, err := fmt.Fprintf(f.w, "%s✓ %ds · %d tool calls · %s tokens%s\n",
		Green, duration, r.TotalToolUseCount, FormatTokens(r.TotalTokens), Reset)
	return err
}

// paramPriority lists the input keys extractParam prefers, in order.
var paramPriority = []string{"file_path", "description", "command", "pattern"}

// extractParam picks the most relevant field from a tool_use input for
// a one-line summary, falling back to a sorted key list when nothing
// recognized is present. Truncates to 60 runes plus an ellipsis.
func extractParam(input json.RawMessage) string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(input, &m); err != nil {
		return ""
	}

	for _, key := range paramPriority {
		raw, ok := m[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return truncateParam(s)
		}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return truncateParam(strings.Join(keys, ", "))
}

func truncateParam(s string) string {
	const maxLen = 60
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "…"
}
