package openai

import (
	"log/slog"

	"github.com/poiesic/lexcorpus/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
type Provider struct {
	config     *ai.Config
	classifier *Classifier
	embedder   *Embedder
	batches    *BatchService
	logger     *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	classifier, err := newClassifier(config)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	batches, err := newBatchService(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:     config,
		classifier: classifier,
		embedder:   embedder,
		batches:    batches,
		logger:     slog.Default().With("component", "openai-provider"),
	}, nil
}

// Classifier returns the classification service.
func (p *Provider) Classifier() ai.Classifier {
	return p.classifier
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Batches returns the bulk job service.
func (p *Provider) Batches() ai.BatchService {
	return p.batches
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
