package executor

// IterationStats accumulates observations across a single run of
// `claude`: peak context size, spend, subagent token usage, and tool
// call count.
type IterationStats struct {
	PeakContext    int
	Cost           float64
	SubagentTokens int
	ToolCalls      int
}

func (s *IterationStats) observeAssistant(usage *Usage) {
	if usage == nil {
		return
	}
	total := usage.InputTokens + usage.CacheCreationInputTokens + usage.CacheReadInputTokens
	if total > s.PeakContext {
		s.PeakContext = total
	}
}

func (s *IterationStats) observeToolUse() { s.ToolCalls++ }

func (s *IterationStats) observeSubagent(tokens int) { s.SubagentTokens += tokens }

func (s *IterationStats) observeResult(cost float64) { s.Cost = cost }
