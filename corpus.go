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


package lexcorpus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/ai/openai"
	"github.com/poiesic/lexcorpus/batch"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/runner"
	"github.com/poiesic/lexcorpus/search"
	"github.com/poiesic/lexcorpus/storage"
	"github.com/poiesic/lexcorpus/storage/badger"
	"github.com/poiesic/lexcorpus/storage/jsonl"
)

// Corpus wires the AI provider, the local index and the pipeline stages together.
type Corpus struct {
	backend  *badger.Backend
	index    *badger.ChunkIndex
	ledger   *badger.SubmissionLedger
	provider ai.AIProvider
	observer runner.Observer
	logger   *slog.Logger
}

// CorpusOption configures a Corpus.
type CorpusOption func(*corpusOptions)

type corpusOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	observer runner.Observer
	logger   *slog.Logger
	inMemory bool
}

// WithAIConfig sets the provider configuration used when no provider is given.
func WithAIConfig(cfg *ai.Config) CorpusOption {
	return func(o *corpusOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider uses an existing provider instead of building an OpenAI one.
func WithProvider(provider ai.AIProvider) CorpusOption {
	return func(o *corpusOptions) {
		o.provider = provider
	}
}

// WithObserver attaches an observer to every runner the corpus creates.
func WithObserver(observer runner.Observer) CorpusOption {
	return func(o *corpusOptions) {
		o.observer = observer
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CorpusOption {
	return func(o *corpusOptions) {
		o.logger = logger
	}
}

// InMemory keeps the index and ledger in memory; the path given to Open is ignored.
func InMemory() CorpusOption {
	return func(o *corpusOptions) {
		o.inMemory = true
	}
}

// Open opens the corpus index stored under indexDir.
func Open(indexDir string, opts ...CorpusOption) (*Corpus, error) {
	options := &corpusOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(indexDir, options.inMemory)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &Corpus{
		backend:  backend,
		index:    badger.NewChunkIndex(backend),
		ledger:   badger.NewSubmissionLedger(backend),
		provider: provider,
		observer: options.observer,
		logger:   options.logger,
	}, nil
}

// Close shuts down the AI provider, the chunk index and the badger store, in that order.
func (c *Corpus) Close() error {
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
	}
	if err := c.index.Close(); err != nil {
		c.logger.Error("error closing chunk index", "err", err)
		return err
	}
	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Provider returns the AI provider the corpus was opened with.
func (c *Corpus) Provider() ai.AIProvider {
	return c.provider
}

// ChunkIndex returns the local badger-backed chunk index.
func (c *Corpus) ChunkIndex() storage.ChunkIndex {
	return c.index
}

// SubmissionLedger returns the ledger of submitted batch jobs.
func (c *Corpus) SubmissionLedger() storage.SubmissionLedger {
	return c.ledger
}

func (c *Corpus) runnerOptions(task string, opts []runner.Option) []runner.Option {
	base := []runner.Option{runner.WithTask(task), runner.WithLogger(c.logger)}
	if c.observer != nil {
		base = append(base, runner.WithObserver(c.observer))
	}
	return append(base, opts...)
}

// NewClassificationRunner creates a runner that classifies documents into log.
func (c *Corpus) NewClassificationRunner(log storage.RecordLog, cfg *runner.Config, progress io.Writer, opts ...runner.Option) (*runner.Runner, error) {
	proc := runner.NewClassificationProcessor(c.provider.Classifier())
	return runner.NewRunner(log, proc, cfg, progress, c.runnerOptions(runner.TaskClassify, opts)...)
}

// NewEmbeddingRunner creates a runner that embeds chunks into log.
func (c *Corpus) NewEmbeddingRunner(log storage.RecordLog, cfg *runner.Config, progress io.Writer, opts ...runner.Option) (*runner.Runner, error) {
	proc := runner.NewEmbeddingProcessor(c.provider.Embedder())
	return runner.NewRunner(log, proc, cfg, progress, c.runnerOptions(runner.TaskEmbed, opts)...)
}

// NewBatchManager creates a bulk job manager that records submissions in the corpus ledger.
func (c *Corpus) NewBatchManager(opts ...batch.Option) *batch.Manager {
	base := []batch.Option{batch.WithLedger(c.ledger), batch.WithLogger(c.logger)}
	return batch.NewManager(c.provider.Batches(), append(base, opts...)...)
}

// NewSearcher creates a semantic searcher over the chunk index, embedding queries with the corpus provider.
func (c *Corpus) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(c.index, c.provider, opts...)
}

// Classify runs classification for docs against the log at logPath.
func (c *Corpus) Classify(ctx context.Context, docs []*core.Document, logPath string, cfg *runner.Config, progress io.Writer) (*runner.Summary, error) {
	log, err := jsonl.OpenRecordLog(logPath, jsonl.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}
	defer log.Close()

	r, err := c.NewClassificationRunner(log, cfg, progress)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, runner.DocumentItems(docs))
}

// Embed chunks docs into windows of chunkChars and embeds them into the log at logPath.
func (c *Corpus) Embed(ctx context.Context, docs []*core.Document, logPath string, chunkChars int, cfg *runner.Config, progress io.Writer) (*runner.Summary, error) {
	items, err := runner.ChunkItems(docs, chunkChars)
	if err != nil {
		return nil, err
	}
	log, err := jsonl.OpenRecordLog(logPath, jsonl.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}
	defer log.Close()

	r, err := c.NewEmbeddingRunner(log, cfg, progress)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, items)
}

// IndexEmbeddings loads an embedding log into the local chunk index.
func (c *Corpus) IndexEmbeddings(ctx context.Context, logPath string) (search.IndexStats, error) {
	return search.IndexLog(ctx, c.index, logPath, c.logger)
}

// Reassemble returns the indexed text of a document with its chunks joined in order.
func (c *Corpus) Reassemble(ctx context.Context, docID string) (string, error) {
	rows, err := c.index.DocumentChunks(ctx, docID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(row.Content)
	}
	return b.String(), nil
}

// ImportStats counts what ImportEmbeddings did.
type ImportStats struct {
	Inserted int
	Skipped  int // records without an embedding
	Invalid  int // unreadable log lines
}

// ImportEmbeddings sends every embedding record of the log at logPath to sink in
// one transaction. Records lacking a vector are skipped.
func ImportEmbeddings(ctx context.Context, sink storage.RowSink, logPath string, logger *slog.Logger) (ImportStats, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		stats ImportStats
		rows  []*core.EmbeddingRow
	)
	scan, err := jsonl.ReadRecordFile(ctx, logPath, func(rec *core.Record) error {
		row, err := rec.EmbeddingRow()
		if errors.Is(err, core.ErrMissingEmbedding) {
			stats.Skipped++
			return nil
		}
		if err != nil {
			return err
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return stats, err
	}
	stats.Invalid = scan.Skipped

	if err := sink.EnsureSchema(ctx); err != nil {
		return stats, err
	}
	n, err := sink.InsertRows(ctx, rows)
	if err != nil {
		return stats, err
	}
	stats.Inserted = n
	logger.Info("embeddings imported", "path", logPath, "inserted", n, "skipped", stats.Skipped)
	return stats, nil
}
