package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		rejected bool
	}{
		{"bad key", errors.New("API returned unexpected status code: 401: Incorrect API key provided"), true},
		{"bad request", errors.New("API returned unexpected status code: 400: 'messages' is a required property"), true},
		{"unknown model", errors.New("API returned unexpected status code: 404: model not found"), true},
		{"context too long", errors.New("This model's maximum context length is 8192 tokens"), true},
		{"rate limited", errors.New("API returned unexpected status code: 429: Rate limit reached"), false},
		{"server error", errors.New("API returned unexpected status code: 500: internal server error"), false},
		{"unavailable", errors.New("API returned unexpected status code: 503: service unavailable"), false},
		{"network", errors.New("network error: failed to reach API server"), false},
		{"canceled", fmt.Errorf("call: %w", context.Canceled), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			require.Error(t, got)
			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, tt.rejected, errors.Is(got, ai.ErrRejected))
		})
	}

	assert.NoError(t, classifyError(nil))
}

// errorServer answers every request with status and an OpenAI-style error body.
func errorServer(t *testing.T, status int, message string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error":{"message":%q,"type":"invalid_request_error"}}`, message)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClassifier_RejectedRequest(t *testing.T) {
	server := errorServer(t, http.StatusUnauthorized, "Incorrect API key provided")
	classifier, err := NewClassifier(ai.NewConfig(ai.WithHost(server.URL)))
	require.NoError(t, err)

	_, err = classifier.Classify(context.Background(), "doc-1", "contrato de locação")
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrRejected)
	assert.Contains(t, err.Error(), "401")
}

func TestClassifier_TransientFailure(t *testing.T) {
	server := errorServer(t, http.StatusServiceUnavailable, "service unavailable")
	classifier, err := NewClassifier(ai.NewConfig(ai.WithHost(server.URL)))
	require.NoError(t, err)

	_, err = classifier.Classify(context.Background(), "doc-1", "contrato de locação")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ai.ErrRejected)
}

func TestEmbedder_RejectedRequest(t *testing.T) {
	server := errorServer(t, http.StatusUnauthorized, "Incorrect API key provided")
	embedder, err := NewEmbedder(ai.NewConfig(ai.WithHost(server.URL)))
	require.NoError(t, err)

	_, err = embedder.EmbedText(context.Background(), "cláusula penal")
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrRejected)
	assert.True(t, strings.Contains(err.Error(), "401"))
}
