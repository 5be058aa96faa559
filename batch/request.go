package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/chunking"
	"github.com/poiesic/lexcorpus/core"
)

// MethodPost is the only method the bulk API accepts.
const MethodPost = "POST"

// ResponseFormat asks the model for a JSON object reply.
type ResponseFormat struct {
	Type string `json:"type"`
}

// Body is the chat completion request sent for one item.
type Body struct {
	Model          string         `json:"model"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat ResponseFormat `json:"response_format"`
	Messages       []ai.Message   `json:"messages"`
}

// Request is one line of a bulk request file.
// CustomID carries the item identity so results can be joined back.
type Request struct {
	CustomID string `json:"custom_id"`
	Method   string `json:"method"`
	URL      string `json:"url"`
	Body     Body   `json:"body"`
}

// BuildClassificationRequests creates one request per document with text.
// Text longer than maxChars is truncated; maxChars <= 0 disables truncation.
func BuildClassificationRequests(docs []*core.Document, model, endpoint string, maxChars int) []Request {
	reqs := make([]Request, 0, len(docs))
	for _, doc := range docs {
		if doc.Text == "" {
			continue
		}
		text := chunking.Truncate(doc.Text, maxChars)
		reqs = append(reqs, Request{
			CustomID: doc.ID,
			Method:   MethodPost,
			URL:      endpoint,
			Body: Body{
				Model:          model,
				Temperature:    0,
				ResponseFormat: ResponseFormat{Type: "json_object"},
				Messages:       ai.ClassificationMessages(doc.ID, text),
			},
		})
	}
	return reqs
}

// ValidateRequests checks that every request has a unique, non-empty custom id.
func ValidateRequests(reqs []Request) error {
	if len(reqs) == 0 {
		return ErrNoRequests
	}
	seen := make(map[string]struct{}, len(reqs))
	for i, req := range reqs {
		if req.CustomID == "" {
			return fmt.Errorf("%w: request %d", ErrEmptyCustomID, i)
		}
		if _, ok := seen[req.CustomID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateCustomID, req.CustomID)
		}
		seen[req.CustomID] = struct{}{}
	}
	return nil
}

// EncodeRequests writes requests as JSON lines.
func EncodeRequests(w io.Writer, reqs []Request) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, req := range reqs {
		if err := enc.Encode(req); err != nil {
			return fmt.Errorf("failed to encode request %s: %w", req.CustomID, err)
		}
	}
	return nil
}

// MarshalRequests returns the request file content for reqs.
func MarshalRequests(reqs []Request) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeRequests(&buf, reqs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeRequests reads a request file written by EncodeRequests.
func DecodeRequests(r io.Reader) ([]Request, error) {
	var reqs []Request
	dec := json.NewDecoder(r)
	for dec.More() {
		var req Request
		if err := dec.Decode(&req); err != nil {
			return nil, fmt.Errorf("failed to decode request %d: %w", len(reqs), err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Fingerprint identifies a request file by its content.
func Fingerprint(content []byte) string {
	return core.Fingerprint(string(content))
}
