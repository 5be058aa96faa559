// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
)

const (
	// DefaultHost is the public OpenAI endpoint.
	DefaultHost = "https://api.openai.com/v1"
	// DefaultBatchEndpoint is the per-request url of bulk classification jobs.
	DefaultBatchEndpoint = "/v1/chat/completions"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	EmbeddingHost string

	// ClassifierHost is the base URL for the chat and batch APIs.
	ClassifierHost string

	// APIKey is the bearer token. Local OpenAI-compatible servers accept any value.
	APIKey string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "text-embedding-3-small"
	EmbeddingModel string

	// ClassifierModel is the model identifier to use for classification.
	// Example: "gpt-4o-mini"
	ClassifierModel string

	// EmbeddingDimensions is the fixed length of every embedding vector.
	// It sizes the vector column of the row store.
	// Default: 1536
	EmbeddingDimensions int

	// BatchEndpoint is the request url written into bulk request files.
	// Default: "/v1/chat/completions"
	BatchEndpoint string

	// CompletionWindow is the bulk job deadline requested from the provider.
	// Default: "24h"
	CompletionWindow string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithClassifierHost sets the classifier service host URL.
func WithClassifierHost(host string) ConfigOption {
	return func(c *Config) {
		c.ClassifierHost = host
	}
}

// WithHost sets both embedding and classifier hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ClassifierHost = host
	}
}

// WithAPIKey sets the bearer token.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithClassifierModel sets the classifier model identifier.
func WithClassifierModel(model string) ConfigOption {
	return func(c *Config) {
		c.ClassifierModel = model
	}
}

// WithEmbeddingDimensions sets the embedding vector length.
func WithEmbeddingDimensions(dims int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingDimensions = dims
	}
}

// WithBatchEndpoint sets the url used in bulk request lines.
func WithBatchEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.BatchEndpoint = endpoint
	}
}

// DefaultConfig returns a Config pointed at the public OpenAI API.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:       DefaultHost,
		ClassifierHost:      DefaultHost,
		EmbeddingModel:      "text-embedding-3-small",
		ClassifierModel:     "gpt-4o-mini",
		EmbeddingDimensions: 1536,
		BatchEndpoint:       DefaultBatchEndpoint,
		CompletionWindow:    "24h",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithClassifierModel("qwen2.5:7b"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Token returns the API key, or a placeholder accepted by unauthenticated local servers.
func (c *Config) Token() string {
	if c.APIKey == "" {
		return "none"
	}
	return c.APIKey
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to hosts if missing, which OpenAI-compatible APIs require.
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.ClassifierHost = normalizeHost(c.ClassifierHost)
	if c.BatchEndpoint != "" && !strings.HasPrefix(c.BatchEndpoint, "/") {
		c.BatchEndpoint = "/" + c.BatchEndpoint
	}
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.ClassifierHost == "" {
		return errors.New("ai config: ClassifierHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.ClassifierModel == "" {
		return errors.New("ai config: ClassifierModel is required")
	}
	if c.EmbeddingDimensions <= 0 {
		return errors.New("ai config: EmbeddingDimensions must be positive")
	}
	if c.BatchEndpoint == "" {
		return errors.New("ai config: BatchEndpoint is required")
	}
	if c.CompletionWindow == "" {
		return errors.New("ai config: CompletionWindow is required")
	}
	return nil
}
