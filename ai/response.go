package ai

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/lexcorpus/core"
)

// CleanReply strips markdown code fences and repairs unquoted keys.
func CleanReply(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return repairJSON(strings.TrimSpace(text))
}

// ParseClassification turns a raw classifier reply into a record for id.
//
// The record identity is always id, whatever the model echoed back. A reply that is
// empty or not a JSON object yields a parse_error record that keeps the raw reply.
// An object outside the classification schema is kept as is, with the violations
// listed under KeySchemaErrors.
func ParseClassification(id, raw string) *core.Record {
	cleaned := CleanReply(raw)
	if cleaned == "" {
		return core.NewParseErrorRecord(id, raw, ErrEmptyReply)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return core.NewParseErrorRecord(id, raw, err)
	}
	fields, ok := payload.(map[string]any)
	if !ok {
		return core.NewParseErrorRecord(id, raw, ErrNotObject)
	}
	delete(fields, core.FieldID)
	delete(fields, core.FieldStatus)
	delete(fields, KeySchemaErrors)

	if err := ValidateClassification(cleaned); err != nil {
		slog.Warn("classification reply outside schema", "id", id, "err", err)
		fields[KeySchemaErrors] = err.Error()
	}
	return core.NewRecord(id, fields)
}

// repairJSON inserts the opening quote of object keys that a model dropped,
// turning `{ tipo": 1}` into `{ "tipo": 1}`. Everything else is copied unchanged.
func repairJSON(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+16)

	for i := 0; i < len(in); {
		ch := in[i]
		out = append(out, ch)
		i++
		if ch != '{' && ch != ',' {
			continue
		}

		for i < len(in) && isSpace(in[i]) {
			out = append(out, in[i])
			i++
		}
		if i >= len(in) || !isKeyStart(in[i]) {
			continue
		}

		end := i
		for end < len(in) && isKeyRune(in[end]) {
			end++
		}
		if end+1 < len(in) && in[end] == '"' && in[end+1] == ':' {
			out = append(out, '"')
		}
		out = append(out, in[i:end]...)
		i = end
	}
	return string(out)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

func isKeyStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isKeyRune(r rune) bool {
	return isKeyStart(r) || r == '_' || (r >= '0' && r <= '9')
}
