package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_MarshalJSON(t *testing.T) {
	rec := NewRecord("doc-1", map[string]any{"risco": 2, "resumo": "a <b>"})
	data, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"id":"doc-1","resumo":"a <b>","risco":2,"status":"ok"}`, string(data))
}

func TestRecord_MarshalJSON_IDOverridesField(t *testing.T) {
	rec := NewRecord("real", map[string]any{"id": "from-model"})
	data, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"real"`)
	assert.NotContains(t, string(data), "from-model")
}

func TestRecord_ParseErrorRoundTrip(t *testing.T) {
	rec := NewParseErrorRecord("doc-9", "not json", errors.New("unexpected token"))
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded Record
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "doc-9", decoded.ID)
	assert.Equal(t, StatusParseError, decoded.Status)
	assert.Equal(t, "not json", decoded.String(FieldRawResponse))
	assert.Equal(t, "unexpected token", decoded.String(FieldParseError))
}

func TestRecord_UnmarshalJSON_IdentityResolution(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"id", `{"id":"a","document_id":"b"}`, "a"},
		{"document_id", `{"document_id":"b","custom_id":"c"}`, "b"},
		{"custom_id", `{"custom_id":"c"}`, "c"},
		{"chunk pair", `{"doc_id":"d","chunk_index":4}`, "d#4"},
		{"numeric id", `{"id":17}`, "17"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Record
			require.NoError(t, json.Unmarshal([]byte(tt.input), &rec))
			assert.Equal(t, tt.want, rec.ID)
		})
	}
}

func TestRecord_UnmarshalJSON_NoIdentity(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`{"resumo":"x"}`), &rec)
	assert.ErrorIs(t, err, ErrMissingIdentity)

	err = json.Unmarshal([]byte(`{"doc_id":"d"}`), &rec)
	assert.ErrorIs(t, err, ErrMissingIdentity)
}

func TestRecord_UnmarshalJSON_StatusInference(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","parse_error":"bad"}`), &rec))
	assert.Equal(t, StatusParseError, rec.Status)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"y"}`), &rec))
	assert.Equal(t, StatusOK, rec.Status)
}

func TestRecord_EmbeddingRow(t *testing.T) {
	line := `{"id":"d#1","doc_id":"d","chunk_index":1,"content":"texto","embedding":[0.5,0.25]}`
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(line), &rec))

	row, err := rec.EmbeddingRow()
	require.NoError(t, err)
	assert.Equal(t, "d", row.DocID)
	assert.Equal(t, 1, row.ChunkIndex)
	assert.Equal(t, "texto", row.Content)
	assert.Equal(t, []float32{0.5, 0.25}, row.Embedding)
}

func TestRecord_EmbeddingRow_Missing(t *testing.T) {
	rec := NewRecord("d#0", map[string]any{"doc_id": "d"})
	_, err := rec.EmbeddingRow()
	assert.ErrorIs(t, err, ErrMissingEmbedding)
}

func TestRecord_Floats_Native(t *testing.T) {
	rec := NewRecord("x", map[string]any{"embedding": []float32{1, 2}})
	v, ok := rec.Floats("embedding")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, v)
}
