package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
)

// RecordStatus tags the outcome of processing one item.
type RecordStatus string

const (
	// StatusOK marks a record whose service response was parsed.
	StatusOK RecordStatus = "ok"
	// StatusParseError marks a record whose response could not be parsed.
	// The raw response is kept under FieldRawResponse.
	StatusParseError RecordStatus = "parse_error"
)

// Well known record field names.
const (
	FieldID          = "id"
	FieldStatus      = "status"
	FieldDocumentID  = "document_id"
	FieldCustomID    = "custom_id"
	FieldDocID       = "doc_id"
	FieldChunkIndex  = "chunk_index"
	FieldContent     = "content"
	FieldEmbedding   = "embedding"
	FieldRawResponse = "raw_response"
	FieldParseError  = "parse_error"
)

// Record is one line of a record log: the result of processing a single item.
// ID is required and equals the identity of the originating document or chunk.
// Everything else the service returned lives in Fields.
type Record struct {
	ID     string
	Status RecordStatus
	Fields map[string]any
}

// NewRecord creates an ok record for id with the given fields.
func NewRecord(id string, fields map[string]any) *Record {
	if fields == nil {
		fields = map[string]any{}
	}
	return &Record{ID: id, Status: StatusOK, Fields: fields}
}

// NewParseErrorRecord creates a record for a response that could not be parsed.
func NewParseErrorRecord(id, raw string, cause error) *Record {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &Record{
		ID:     id,
		Status: StatusParseError,
		Fields: map[string]any{
			FieldRawResponse: raw,
			FieldParseError:  msg,
		},
	}
}

// MarshalJSON writes the record as one flat JSON object.
// Keys are emitted in sorted order so equal records encode to equal bytes.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+2)
	maps.Copy(out, r.Fields)
	out[FieldID] = r.ID
	status := r.Status
	if status == "" {
		status = StatusOK
	}
	out[FieldStatus] = string(status)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON reads a flat JSON object and resolves its identity once.
// Identity is taken from "id", then "document_id", then "custom_id", then
// "doc_id" combined with "chunk_index". Objects with no resolvable identity
// are rejected with ErrMissingIdentity.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("%w: null record", ErrInvalidRecord)
	}

	id := resolveID(fields)
	if id == "" {
		return ErrMissingIdentity
	}

	status := StatusOK
	if s, ok := fields[FieldStatus].(string); ok && s != "" {
		status = RecordStatus(s)
	} else if _, ok := fields[FieldParseError]; ok {
		status = StatusParseError
	}
	delete(fields, FieldID)
	delete(fields, FieldStatus)

	r.ID = id
	r.Status = status
	r.Fields = fields
	return nil
}

func resolveID(fields map[string]any) string {
	for _, key := range []string{FieldID, FieldDocumentID, FieldCustomID} {
		if s := stringValue(fields[key]); s != "" {
			return s
		}
	}
	docID := stringValue(fields[FieldDocID])
	if docID == "" {
		return ""
	}
	idx, ok := intValue(fields[FieldChunkIndex])
	if !ok {
		return ""
	}
	return ChunkID(docID, idx)
}

// Get returns the raw value stored under key.
func (r *Record) Get(key string) (any, bool) {
	if key == FieldID {
		return r.ID, true
	}
	if key == FieldStatus {
		return string(r.Status), true
	}
	v, ok := r.Fields[key]
	return v, ok
}

// String returns the field under key as a string, or "" when absent.
func (r *Record) String(key string) string {
	v, _ := r.Get(key)
	return stringValue(v)
}

// Int returns the field under key as an int.
func (r *Record) Int(key string) (int, bool) {
	v, ok := r.Get(key)
	if !ok {
		return 0, false
	}
	return intValue(v)
}

// Floats returns the field under key as a float32 vector.
// It accepts both freshly built []float32 values and decoded JSON arrays.
func (r *Record) Floats(key string) ([]float32, bool) {
	v, ok := r.Fields[key]
	if !ok {
		return nil, false
	}
	switch vec := v.(type) {
	case []float32:
		return vec, true
	case []float64:
		out := make([]float32, len(vec))
		for i, f := range vec {
			out[i] = float32(f)
		}
		return out, true
	case []any:
		out := make([]float32, len(vec))
		for i, elem := range vec {
			f, ok := floatValue(elem)
			if !ok {
				return nil, false
			}
			out[i] = float32(f)
		}
		return out, true
	}
	return nil, false
}

// EmbeddingRow converts an embedding record into the sink tuple.
func (r *Record) EmbeddingRow() (*EmbeddingRow, error) {
	docID := r.String(FieldDocID)
	if docID == "" {
		docID = r.ID
	}
	idx, _ := r.Int(FieldChunkIndex)
	vec, ok := r.Floats(FieldEmbedding)
	if !ok || len(vec) == 0 {
		return nil, fmt.Errorf("%w: record %s", ErrMissingEmbedding, r.ID)
	}
	return &EmbeddingRow{
		DocID:      docID,
		ChunkIndex: idx,
		Content:    r.String(FieldContent),
		Embedding:  vec,
	}, nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	}
	return ""
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
