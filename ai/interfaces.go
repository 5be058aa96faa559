package ai

import (
	"context"

	"github.com/poiesic/lexcorpus/core"
)

// Classifier sends one document to a chat model and returns its raw reply.
// Implementations must be thread-safe for concurrent use.
type Classifier interface {
	// Classify returns the unparsed model output for the document. An error means the
	// call itself failed (network, rate limit, server error) and may be retried;
	// a reply that is not valid JSON is not an error at this level.
	Classify(ctx context.Context, id, text string) (string, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// An empty vector is reported as ErrEmptyEmbedding rather than returned.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// BatchService is the bulk asynchronous job API of a provider.
// Jobs advance on the provider side; callers can only observe them.
type BatchService interface {
	// UploadBatchFile stores a JSONL request file and returns its file id.
	UploadBatchFile(ctx context.Context, name string, content []byte) (string, error)

	// CreateBatch starts a job over an uploaded request file.
	CreateBatch(ctx context.Context, inputFileID, endpoint string) (*core.BatchJob, error)

	// RetrieveBatch returns the current snapshot of a job.
	RetrieveBatch(ctx context.Context, jobID string) (*core.BatchJob, error)

	// FileContent downloads a file such as a job's output or error artifact.
	FileContent(ctx context.Context, fileID string) ([]byte, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Classifier returns the document classification service.
	Classifier() Classifier

	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Batches returns the bulk job service.
	Batches() BatchService

	// Close releases resources held by the provider and its services.
	Close() error
}
