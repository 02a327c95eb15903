package executor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcessAccumulatesStatsAndFormats(t *testing.T) {
	lines := []string{
		`{"type":"assistant","message":{"content":[{"type":"text","text":"hi"}],"usage":{"input_tokens":100,"cache_creation_input_tokens":20,"cache_read_input_tokens":5}}}`,
		`{"type":"assistant","message":{"content":[{"type":"tool_use","name":"Read","input":{"file_path":"/a.go"}}]}}`,
		`{"type":"user","tool_use_result":{"totalTokens":500}}`,
		`{"type":"result","total_cost_usd":0.42}`,
	}
	r := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var buf bytes.Buffer

	stats, err := Process(r, &buf)
	require.NoError(t, err)
	require.Equal(t, 125, stats.PeakContext)
	require.Equal(t, 1, stats.ToolCalls)
	require.Equal(t, 500, stats.SubagentTokens)
	require.InDelta(t, 0.42, stats.Cost, 0.0001)
	require.Contains(t, buf.String(), "hi")
}

func TestProcessSkipsMalformedLines(t *testing.T) {
	r := strings.NewReader("not json\n" + `{"type":"assistant"}` + "\n")
	var buf bytes.Buffer
	stats, err := Process(r, &buf)
	require.NoError(t, err)
	require.NotNil(t, stats)
}
