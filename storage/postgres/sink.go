package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage"
)

const (
	// DefaultTable is the destination table name.
	DefaultTable = "lw_embeddings"

	// DefaultBatchSize is the number of rows queued per round trip.
	DefaultBatchSize = 500

	// DefaultDimensions is the vector column width.
	DefaultDimensions = 1536
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Sink writes embedding rows into a pgvector table.
type Sink struct {
	pool       *pgxpool.Pool
	table      string
	dimensions int
	batchSize  int
	logger     *slog.Logger
}

var _ storage.RowSink = (*Sink)(nil)

// Option configures a Sink.
type Option func(*Sink) error

// WithTable sets the destination table.
func WithTable(name string) Option {
	return func(s *Sink) error {
		if !identifierPattern.MatchString(name) {
			return fmt.Errorf("invalid table name %q", name)
		}
		s.table = name
		return nil
	}
}

// WithDimensions sets the embedding width of the vector column.
func WithDimensions(dims int) Option {
	return func(s *Sink) error {
		if dims <= 0 {
			return errors.New("dimensions must be positive")
		}
		s.dimensions = dims
		return nil
	}
}

// WithBatchSize sets how many inserts are queued per round trip.
func WithBatchSize(size int) Option {
	return func(s *Sink) error {
		if size <= 0 {
			return errors.New("batch size must be positive")
		}
		s.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger for the sink.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) error {
		s.logger = logger
		return nil
	}
}

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string, opts ...Option) (*Sink, error) {
	s := &Sink{
		table:      DefaultTable,
		dimensions: DefaultDimensions,
		batchSize:  DefaultBatchSize,
		logger:     slog.Default().With("component", "postgres-sink"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s.pool = pool
	return s, nil
}

// EnsureSchema enables the vector extension and creates the table when missing.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to enable vector extension: %w", err)
	}
	if _, err := s.pool.Exec(ctx, createTableSQL(s.table, s.dimensions)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

// InsertRows inserts all rows in one transaction. Rows are queued in batches of
// the configured size; the transaction commits only after every batch succeeded.
func (s *Sink) InsertRows(ctx context.Context, rows []*core.EmbeddingRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	for _, row := range rows {
		if len(row.Embedding) != s.dimensions {
			return 0, fmt.Errorf("%w: chunk %s has %d values, table expects %d",
				storage.ErrDimensionMismatch, row.ID(), len(row.Embedding), s.dimensions)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := insertSQL(s.table)
	inserted := 0
	for start := 0; start < len(rows); start += s.batchSize {
		end := min(start+s.batchSize, len(rows))

		batch := &pgx.Batch{}
		for _, row := range rows[start:end] {
			batch.Queue(query, row.DocID, row.ChunkIndex, row.Content, VectorLiteral(row.Embedding))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("failed to insert rows %d-%d: %w", start, end-1, err)
		}
		inserted += end - start
		s.logger.Debug("batch inserted", "rows", end-start, "total", inserted)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	s.logger.Info("rows imported", "table", s.table, "rows", inserted)
	return inserted, nil
}

// Close closes the connection pool.
func (s *Sink) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// VectorLiteral renders v in pgvector's text form, e.g. "[0.1,0.2]".
func VectorLiteral(v []float32) string {
	return pgvector.NewVector(v).String()
}

func createTableSQL(table string, dims int) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    doc_id      text,
    chunk_index integer,
    content     text,
    embedding   vector(%d),
    created_at  timestamptz DEFAULT now()
)`, table, dims)
}

func insertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (doc_id, chunk_index, content, embedding) VALUES ($1, $2, $3, $4::vector)`, table)
}
