package executor

import (
	"errors"
	"io"
)

// Process reads a claude stream-json feed from r, rendering each event
// to w and accumulating run stats. The per-run summary line is the
// caller's job, not this function's.
func Process(r io.Reader, w io.Writer) (*IterationStats, error) {
	parser := NewParser(r)
	formatter := NewFormatter(w)
	stats := &IterationStats{}

	for {
		evt, err := parser.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}

		switch evt.Type {
		case eventAssistant:
			if evt.Message != nil {
				stats.observeAssistant(evt.Message.Usage)
				for _, block := range evt.Message.Content {
					if block.Type == contentToolUse {
						stats.observeToolUse()
					}
				}
			}
		case eventUser:
			if evt.ToolUseResult != nil && evt.ToolUseResult.TotalTokens > 0 {
				stats.observeSubagent(evt.ToolUseResult.TotalTokens)
			}
		case eventResult:
			stats.observeResult(evt.TotalCostUSD)
		}

		if err := formatter.Format(evt); err != nil {
			return stats, err
		}
	}

	return stats, nil
}
