package openai

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.Token()),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	// Chunk boundaries are arbitrary, so newlines carry no meaning for the model.
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText embeds one chunk. A missing or zero-length vector is reported as
// ai.ErrEmptyEmbedding.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts embeds chunks in one call and returns the vectors in input order.
// Every text gets exactly one non-empty vector or the call fails.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	e.logger.Debug("embedding chunks", "count", len(texts))

	// EmbedDocuments rewrites newlines in place.
	input := slices.Clone(texts)
	vectors, err := e.embedder.EmbedDocuments(ctx, input)
	if err != nil {
		e.logger.Debug("embedding call failed", "count", len(texts), "err", err)
		return nil, classifyError(err)
	}

	if len(vectors) != len(texts) {
		e.logger.Warn("embedding count mismatch", "want", len(texts), "got", len(vectors))
		return nil, fmt.Errorf("%w: %d vectors for %d texts", ai.ErrEmptyEmbedding, len(vectors), len(texts))
	}
	for i, vec := range vectors {
		if len(vec) == 0 {
			e.logger.Warn("provider returned an empty vector", "index", i)
			return nil, fmt.Errorf("%w: text %d", ai.ErrEmptyEmbedding, i)
		}
	}
	return vectors, nil
}
