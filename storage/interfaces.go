package storage

import (
	"context"

	"github.com/poiesic/lexcorpus/core"
)

// RecordLog is an append-only log of processing records keyed by record id.
// Implementations must be thread-safe and support concurrent access.
type RecordLog interface {
	// ProcessedIDs reads the whole log and returns the set of ids it holds.
	// Lines that cannot be parsed are skipped.
	ProcessedIDs(ctx context.Context) (map[string]struct{}, error)

	// Append writes records to the end of the log and makes them durable
	// before returning. Previously committed records are never rewritten.
	Append(ctx context.Context, records ...*core.Record) error

	// Close releases the underlying file.
	Close() error
}

// RowSink receives embedding rows for the downstream row store.
type RowSink interface {
	// EnsureSchema creates the destination table when it is missing.
	EnsureSchema(ctx context.Context) error

	// InsertRows writes rows in bulk batches within a single transaction and
	// returns the number inserted. Nothing is committed when an error is returned.
	InsertRows(ctx context.Context, rows []*core.EmbeddingRow) (int, error)

	// Close releases the connection pool.
	Close() error
}

// ChunkIndex stores embedded chunks for local similarity search.
type ChunkIndex interface {
	// PutRows stores rows keyed by chunk identity, replacing existing entries.
	PutRows(ctx context.Context, rows ...*core.EmbeddingRow) error

	// FindSimilar returns rows with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// Count returns the number of indexed chunks.
	Count(ctx context.Context) (int, error)

	// Close closes the index and releases resources.
	Close() error
}

// SubmissionLedger remembers which request sets were submitted as bulk jobs.
type SubmissionLedger interface {
	// RecordSubmission stores a submission under its fingerprint.
	RecordSubmission(ctx context.Context, sub *core.Submission) error

	// FindSubmission returns the submission for a fingerprint.
	// Returns nil, nil if the fingerprint was never submitted.
	FindSubmission(ctx context.Context, fingerprint string) (*core.Submission, error)
}
