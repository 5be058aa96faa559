package batch

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/core"
)

func testDocs() []*core.Document {
	return []*core.Document{
		{ID: "doc-1", Text: "Petição inicial de ação de cobrança."},
		{ID: "doc-2", Text: ""},
		{ID: "doc-3", Text: strings.Repeat("x", 50)},
	}
}

func TestBuildClassificationRequests(t *testing.T) {
	reqs := BuildClassificationRequests(testDocs(), "gpt-4o-mini", ai.DefaultBatchEndpoint, 20)
	require.Len(t, reqs, 2, "documents without text are left out")

	first := reqs[0]
	assert.Equal(t, "doc-1", first.CustomID)
	assert.Equal(t, MethodPost, first.Method)
	assert.Equal(t, "/v1/chat/completions", first.URL)
	assert.Equal(t, "gpt-4o-mini", first.Body.Model)
	assert.Equal(t, "json_object", first.Body.ResponseFormat.Type)
	require.Len(t, first.Body.Messages, 2)
	assert.Equal(t, "system", first.Body.Messages[0].Role)
	assert.Equal(t, ai.FormatClassificationInput("doc-1", "Petição inicial de a"), first.Body.Messages[1].Content)

	assert.Equal(t, ai.FormatClassificationInput("doc-3", strings.Repeat("x", 20)), reqs[1].Body.Messages[1].Content)
}

func TestValidateRequests(t *testing.T) {
	assert.ErrorIs(t, ValidateRequests(nil), ErrNoRequests)
	assert.ErrorIs(t, ValidateRequests([]Request{{CustomID: ""}}), ErrEmptyCustomID)
	assert.ErrorIs(t, ValidateRequests([]Request{{CustomID: "a"}, {CustomID: "a"}}), ErrDuplicateCustomID)
	assert.NoError(t, ValidateRequests([]Request{{CustomID: "a"}, {CustomID: "b"}}))
}

func TestEncodeDecodeRequests(t *testing.T) {
	reqs := BuildClassificationRequests(testDocs(), "m", "/v1/chat/completions", 0)

	var buf bytes.Buffer
	require.NoError(t, EncodeRequests(&buf, reqs))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "Petição", "non-ASCII text is written as is")
	assert.Contains(t, buf.String(), `"custom_id":"doc-1"`)

	decoded, err := DecodeRequests(&buf)
	require.NoError(t, err)
	assert.Equal(t, reqs, decoded)
}

func TestDecodeRequests_Invalid(t *testing.T) {
	_, err := DecodeRequests(strings.NewReader(`{"custom_id":"a"}` + "\n{broken\n"))
	assert.Error(t, err)
}

func TestFingerprint_StableForContent(t *testing.T) {
	reqs := BuildClassificationRequests(testDocs(), "m", "/v1/chat/completions", 0)
	a, err := MarshalRequests(reqs)
	require.NoError(t, err)
	b, err := MarshalRequests(reqs)
	require.NoError(t, err)
	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	other, err := MarshalRequests(reqs[:1])
	require.NoError(t, err)
	assert.NotEqual(t, Fingerprint(a), Fingerprint(other))
}
