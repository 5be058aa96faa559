package batch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/core"
)

// ParseStats counts what ParseResults did with an output file.
type ParseStats struct {
	Lines   int
	Skipped int // unreadable lines or lines without a custom_id
	Failed  int // requests the provider reports as failed
}

// resultLine is one line of a job output file.
type resultLine struct {
	CustomID string `json:"custom_id"`
	Response *struct {
		StatusCode int             `json:"status_code"`
		Body       json.RawMessage `json:"body"`
	} `json:"response"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// chatBody covers both the chat completions and the responses reply shapes.
type chatBody struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Output []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

func (b *chatBody) text() string {
	if len(b.Choices) > 0 {
		return b.Choices[0].Message.Content
	}
	for _, out := range b.Output {
		for _, c := range out.Content {
			if c.Text != "" {
				return c.Text
			}
		}
	}
	return ""
}

// ParseResults turns a job output file into classification records.
// Requests the provider failed are left out so a later run can retry them;
// replies that arrive but do not parse become parse_error records.
func ParseResults(content []byte) ([]*core.Record, ParseStats) {
	var (
		records []*core.Record
		stats   ParseStats
	)
	for line := range bytes.Lines(content) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		stats.Lines++

		var rl resultLine
		if err := json.Unmarshal(line, &rl); err != nil || rl.CustomID == "" {
			stats.Skipped++
			continue
		}
		if rl.Error != nil || rl.Response == nil || rl.Response.StatusCode >= 300 {
			stats.Failed++
			continue
		}

		var body chatBody
		if err := json.Unmarshal(rl.Response.Body, &body); err != nil {
			records = append(records, core.NewParseErrorRecord(rl.CustomID, string(rl.Response.Body),
				fmt.Errorf("unreadable response body: %w", err)))
			continue
		}
		records = append(records, ai.ParseClassification(rl.CustomID, body.text()))
	}
	return records, stats
}
