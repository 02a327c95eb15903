package executor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Parser reads JSONL lines from a `claude --output-format stream-json`
// run and decodes them into Events.
type Parser struct {
	scanner *bufio.Scanner
}

// NewParser constructs a Parser reading from r.
func NewParser(r io.Reader) *Parser {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 1024*1024), 1024*1024)
	return &Parser{scanner: s}
}

// Next returns the next event, or io.EOF once the stream is exhausted.
// Malformed lines are skipped rather than failing the whole run.
func (p *Parser) Next() (*Event, error) {
	for p.scanner.Scan() {
		line := p.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var evt Event
		if err := json.Unmarshal(line, &evt); err != nil {
			continue
		}
		return &evt, nil
	}
	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning claude stream: %w", err)
	}
	return nil, io.EOF
}
