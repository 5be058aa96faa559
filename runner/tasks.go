package runner

import (
	"context"
	"errors"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/chunking"
	"github.com/poiesic/lexcorpus/core"
)

// Task names used for logging and metrics.
const (
	TaskClassify = "classify"
	TaskEmbed    = "embed"
)

// ClassificationProcessor classifies one document per item.
type ClassificationProcessor struct {
	classifier ai.Classifier
}

var _ Processor = (*ClassificationProcessor)(nil)

// NewClassificationProcessor creates a processor over classifier.
func NewClassificationProcessor(classifier ai.Classifier) *ClassificationProcessor {
	return &ClassificationProcessor{classifier: classifier}
}

// Process sends the payload to the classifier. A failed call is returned as an
// error, permanent when the provider rejected the request; any reply is parsed
// into a record, parse_error included.
func (p *ClassificationProcessor) Process(ctx context.Context, item Item) (*core.Record, error) {
	raw, err := p.classifier.Classify(ctx, item.ID, item.Payload)
	if err != nil {
		return nil, providerError(err)
	}
	return ai.ParseClassification(item.ID, raw), nil
}

// EmbeddingProcessor embeds one chunk per item.
type EmbeddingProcessor struct {
	embedder ai.Embedder
}

var _ Processor = (*EmbeddingProcessor)(nil)

// NewEmbeddingProcessor creates a processor over embedder.
func NewEmbeddingProcessor(embedder ai.Embedder) *EmbeddingProcessor {
	return &EmbeddingProcessor{embedder: embedder}
}

// Process embeds the payload and returns a record carrying the chunk location,
// its text and the vector. An empty embedding becomes a parse_error record.
func (p *EmbeddingProcessor) Process(ctx context.Context, item Item) (*core.Record, error) {
	vec, err := p.embedder.EmbedText(ctx, item.Payload)
	if errors.Is(err, ai.ErrEmptyEmbedding) {
		return core.NewParseErrorRecord(item.ID, "", err), nil
	}
	if err != nil {
		return nil, providerError(err)
	}
	if len(vec) == 0 {
		return core.NewParseErrorRecord(item.ID, "", ai.ErrEmptyEmbedding), nil
	}

	docID, _ := item.Meta[core.FieldDocID].(string)
	if docID == "" {
		docID = item.ID
	}
	idx, _ := item.Meta[core.FieldChunkIndex].(int)

	return core.NewRecord(item.ID, map[string]any{
		core.FieldDocID:      docID,
		core.FieldChunkIndex: idx,
		core.FieldContent:    item.Payload,
		core.FieldEmbedding:  vec,
	}), nil
}

// providerError stops retries for requests the provider has rejected outright.
func providerError(err error) error {
	if errors.Is(err, ai.ErrRejected) {
		return Permanent(err)
	}
	return err
}

// DocumentItems turns documents into one item each, keyed by document id.
func DocumentItems(docs []*core.Document) []Item {
	items := make([]Item, 0, len(docs))
	for _, doc := range docs {
		items = append(items, Item{ID: doc.ID, Payload: doc.Text})
	}
	return items
}

// ChunkItems splits every document into chunks of at most maxChars characters
// and returns one item per chunk, keyed by the chunk id.
func ChunkItems(docs []*core.Document, maxChars int) ([]Item, error) {
	var items []Item
	for _, doc := range docs {
		chunks, err := chunking.Split(doc.ID, doc.Text, maxChars)
		if err != nil {
			return nil, err
		}
		for _, c := range chunks {
			items = append(items, Item{
				ID:      c.ID(),
				Payload: c.Text,
				Meta: map[string]any{
					core.FieldDocID:      c.DocID,
					core.FieldChunkIndex: c.Index,
				},
			})
		}
	}
	return items, nil
}
