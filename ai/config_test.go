package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, DefaultHost, cfg.EmbeddingHost)
	assert.Equal(t, DefaultHost, cfg.ClassifierHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, "gpt-4o-mini", cfg.ClassifierModel)
	assert.Equal(t, 1536, cfg.EmbeddingDimensions)
	assert.Equal(t, "/v1/chat/completions", cfg.BatchEndpoint)
	assert.Equal(t, "24h", cfg.CompletionWindow)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultHost, cfg.EmbeddingHost)
		assert.Empty(t, cfg.APIKey)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.ClassifierHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithClassifierHost("http://classify:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://classify:9090/v1", cfg.ClassifierHost)
	})

	t.Run("with models and key", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("nomic-embed-text"),
			WithClassifierModel("qwen2.5:7b"),
			WithEmbeddingDimensions(768),
			WithAPIKey("sk-test"),
			WithBatchEndpoint("/v1/responses"),
		)

		assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
		assert.Equal(t, "qwen2.5:7b", cfg.ClassifierModel)
		assert.Equal(t, 768, cfg.EmbeddingDimensions)
		assert.Equal(t, "sk-test", cfg.Token())
		assert.Equal(t, "/v1/responses", cfg.BatchEndpoint)
	})
}

func TestConfig_Token(t *testing.T) {
	assert.Equal(t, "none", DefaultConfig().Token())
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"already has v1", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"missing v1", "http://localhost:11434", "http://localhost:11434/v1"},
		{"trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host, ClassifierHost: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.EmbeddingHost)
			assert.Equal(t, tt.want, cfg.ClassifierHost)
		})
	}

	cfg := &Config{BatchEndpoint: "v1/chat/completions"}
	cfg.Normalize()
	assert.Equal(t, "/v1/chat/completions", cfg.BatchEndpoint)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid default", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = "" }, "EmbeddingHost is required"},
		{"missing classifier host", func(c *Config) { c.ClassifierHost = "" }, "ClassifierHost is required"},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel is required"},
		{"missing classifier model", func(c *Config) { c.ClassifierModel = "" }, "ClassifierModel is required"},
		{"zero dimensions", func(c *Config) { c.EmbeddingDimensions = 0 }, "EmbeddingDimensions must be positive"},
		{"missing endpoint", func(c *Config) { c.BatchEndpoint = "" }, "BatchEndpoint is required"},
		{"missing window", func(c *Config) { c.CompletionWindow = "" }, "CompletionWindow is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
