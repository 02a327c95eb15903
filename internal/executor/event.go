// Package executor drives the `claude` CLI subprocess in blocking,
// streaming, and interactive modes, parsing its stream-json output into
// a renderable event feed and accumulated iteration stats.
package executor

import "encoding/json"

// Event is one JSONL line from `claude --output-format stream-json`.
type Event struct {
	Type          string         `json:"type"`
	Message       *Message       `json:"message,omitempty"`
	ToolUseResult *ToolUseResult `json:"tool_use_result,omitempty"`
	TotalCostUSD  float64        `json:"total_cost_usd,omitempty"`
}

// Message is a Claude message with role, content, and token usage.
type Message struct {
	Model   string         `json:"model,omitempty"`
	Role    string         `json:"role,omitempty"`
	Content []ContentBlock `json:"content,omitempty"`
	Usage   *Usage         `json:"usage,omitempty"`
}

// ContentBlock is one content element within a message.
type ContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// ToolUseResult carries the outcome of a tool invocation, including the
// subagent-completion fields distinguished by TotalTokens > 0.
type ToolUseResult struct {
	Stdout string `json:"stdout,omitempty"`

	Status            string `json:"status,omitempty"`
	TotalTokens       int    `json:"totalTokens,omitempty"`
	TotalDurationMs   int    `json:"totalDurationMs,omitempty"`
	TotalToolUseCount int    `json:"totalToolUseCount,omitempty"`
}

// Usage tracks token consumption for a single response.
type Usage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

const (
	eventAssistant = "assistant"
	eventUser      = "user"
	eventResult    = "result"

	contentText    = "text"
	contentToolUse = "tool_use"

	toolNameTask = "Task"
)
