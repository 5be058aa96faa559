package jsonl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage"
)

// RecordLog is a storage.RecordLog backed by an append-only JSONL file.
//
// The file is only ever opened in append mode. Every Append is followed by an
// fsync, so a record that Append returned for survives a crash, and a crash during
// Append can damage at most the final line.
type RecordLog struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	file   *os.File
	closed bool
}

var _ storage.RecordLog = (*RecordLog)(nil)

// Option configures a RecordLog.
type Option func(*RecordLog)

// WithLogger sets a custom logger for the log.
func WithLogger(logger *slog.Logger) Option {
	return func(l *RecordLog) {
		l.logger = logger
	}
}

// OpenRecordLog prepares the log at path. The file is created on first append.
func OpenRecordLog(path string, opts ...Option) (*RecordLog, error) {
	if path == "" {
		return nil, errors.New("record log path is required")
	}
	l := &RecordLog{
		path:   path,
		logger: slog.Default().With("component", "record-log"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Path returns the file path of the log.
func (l *RecordLog) Path() string {
	return l.path
}

// ProcessedIDs reads the whole log and returns the ids it holds.
// A log that does not exist yet holds no ids.
func (l *RecordLog) ProcessedIDs(ctx context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return ids, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open record log: %w", err)
	}
	defer f.Close()

	stats, err := ScanRecords(ctx, f, func(rec *core.Record) error {
		ids[rec.ID] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read record log: %w", err)
	}
	if stats.Skipped > 0 {
		l.logger.Warn("skipped malformed log lines", "path", l.path, "skipped", stats.Skipped)
	}
	l.logger.Debug("record log loaded", "path", l.path, "lines", stats.Lines, "ids", len(ids))
	return ids, nil
}

// Append writes records as JSON lines and syncs the file.
func (l *RecordLog) Append(ctx context.Context, records ...*core.Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf []byte
	for _, rec := range records {
		if err := core.ValidateRecord(rec); err != nil {
			return err
		}
		// json.Marshal would re-escape <, > and & in the record's own encoding.
		line, err := rec.MarshalJSON()
		if err != nil {
			return fmt.Errorf("%w: record %s: %w", storage.ErrSerializationFailed, rec.ID, err)
		}
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return storage.ErrStorageClosed
	}
	if l.file == nil {
		if err := l.open(); err != nil {
			return err
		}
	}
	if _, err := l.file.Write(buf); err != nil {
		return fmt.Errorf("failed to append to record log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync record log: %w", err)
	}
	return nil
}

// open opens the file for appending. When the existing content does not end in a
// newline, one is written first so the next record starts on its own line.
func (l *RecordLog) open() error {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	needsNewline, err := lacksTrailingNewline(l.path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open record log: %w", err)
	}
	if needsNewline {
		l.logger.Warn("record log ends with a partial line", "path", l.path)
		if _, err := f.Write([]byte{'\n'}); err != nil {
			f.Close()
			return fmt.Errorf("failed to terminate partial line: %w", err)
		}
	}
	l.file = f
	return nil
}

func lacksTrailingNewline(path string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect record log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to inspect record log: %w", err)
	}
	return last[0] != '\n', nil
}

// Close closes the underlying file. Appending after Close fails.
func (l *RecordLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
