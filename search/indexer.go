package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage"
	"github.com/poiesic/lexcorpus/storage/jsonl"
)

// indexBatchSize is the number of rows written per index transaction.
const indexBatchSize = 256

// IndexStats counts what IndexLog did.
type IndexStats struct {
	Indexed int
	Skipped int // records without an embedding, parse_error records included
	Invalid int // unreadable log lines
}

// IndexLog loads every embedding record of the log at path into index.
// Records are keyed by chunk identity, so indexing the same log twice is harmless.
func IndexLog(ctx context.Context, index storage.ChunkIndex, path string, logger *slog.Logger) (IndexStats, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		stats IndexStats
		batch []*core.EmbeddingRow
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := index.PutRows(ctx, batch...); err != nil {
			return err
		}
		stats.Indexed += len(batch)
		batch = batch[:0]
		return nil
	}

	scan, err := jsonl.ReadRecordFile(ctx, path, func(rec *core.Record) error {
		row, err := rec.EmbeddingRow()
		if err != nil {
			stats.Skipped++
			return nil
		}
		batch = append(batch, row)
		if len(batch) >= indexBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	if err := flush(); err != nil {
		return stats, err
	}
	stats.Invalid = scan.Skipped

	logger.Info("embedding log indexed", "path", path, "indexed", stats.Indexed, "skipped", stats.Skipped)
	return stats, nil
}
