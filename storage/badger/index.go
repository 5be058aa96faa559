package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage"
)

// ChunkIndex implements storage.ChunkIndex for BadgerDB.
// Vectors are stored unit-normalized so similarity is a dot product.
type ChunkIndex struct {
	backend *Backend
}

var _ storage.ChunkIndex = (*ChunkIndex)(nil)

// NewChunkIndex creates a new ChunkIndex.
func NewChunkIndex(backend *Backend) *ChunkIndex {
	return &ChunkIndex{backend: backend}
}

// PutRows stores rows, replacing chunks with the same identity.
// Every vector must match the width of the vectors already indexed.
func (r *ChunkIndex) PutRows(ctx context.Context, rows ...*core.EmbeddingRow) error {
	if len(rows) == 0 {
		return nil
	}
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		dims, err := readDims(tx)
		if err != nil {
			return err
		}

		for _, row := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(row.Embedding) == 0 {
				return fmt.Errorf("%w: chunk %s", core.ErrMissingEmbedding, row.ID())
			}
			if dims == 0 {
				dims = len(row.Embedding)
			} else if len(row.Embedding) != dims {
				return fmt.Errorf("%w: chunk %s has %d values, index holds %d",
					storage.ErrDimensionMismatch, row.ID(), len(row.Embedding), dims)
			}

			stored := *row
			stored.Embedding = core.NormalizeVector(row.Embedding)
			value, err := json.Marshal(&stored)
			if err != nil {
				return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
			}
			if err := setEntry(tx, makeChunkKey(row.DocID, row.ChunkIndex), value); err != nil {
				return err
			}
		}

		dimBuf := make([]byte, 4)
		binary.BigEndian.PutUint32(dimBuf, uint32(dims))
		if err := tx.Set([]byte(chunkDimsKey), dimBuf); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// setEntry writes a key, surfacing badger's transaction size limit with context.
func setEntry(tx *badger.Txn, key, value []byte) error {
	err := tx.Set(key, value)
	if errors.Is(err, badger.ErrTxnTooBig) {
		return fmt.Errorf("too many rows for one transaction: %w", err)
	}
	return err
}

func readDims(tx *badger.Txn) (int, error) {
	item, err := tx.Get([]byte(chunkDimsKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var dims int
	err = item.Value(func(val []byte) error {
		if len(val) != 4 {
			return storage.ErrSerializationFailed
		}
		dims = int(binary.BigEndian.Uint32(val))
		return nil
	})
	return dims, err
}

// FindSimilar finds chunks similar to the given vector.
func (r *ChunkIndex) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	query := core.NormalizeVector(vector)

	var results []*core.SearchResult
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var row core.EmbeddingRow
			if err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &row)
			}); err != nil {
				return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
			}

			similarity := core.DotProduct(query, row.Embedding)
			if similarity >= minSimilarity {
				results = append(results, &core.SearchResult{Row: &row, Score: similarity})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// DocumentChunks returns the indexed chunks of a document in chunk order.
func (r *ChunkIndex) DocumentChunks(ctx context.Context, docID string) ([]*core.EmbeddingRow, error) {
	var rows []*core.EmbeddingRow
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkDocKey(docID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			row := &core.EmbeddingRow{}
			if err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, row)
			}); err != nil {
				return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
			}
			rows = append(rows, row)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, storage.ErrNotFound
	}
	return rows, nil
}

// Count returns the number of indexed chunks.
func (r *ChunkIndex) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Close is a no-op; the backend owns the database.
func (r *ChunkIndex) Close() error {
	return nil
}
