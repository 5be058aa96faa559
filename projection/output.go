package projection

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/curation"
	"github.com/poiesic/lexcorpus/storage/jsonl"
)

// Table is a projected record log.
type Table struct {
	Header []string
	Rows   [][]string
	// Skipped counts unreadable log lines.
	Skipped int
}

// ProjectFile projects every record of the log at path.
func ProjectFile(ctx context.Context, schema *Schema, path string) (*Table, error) {
	table := &Table{Header: schema.Header()}
	stats, err := jsonl.ReadRecordFile(ctx, path, func(rec *core.Record) error {
		table.Rows = append(table.Rows, schema.Project(rec))
		return nil
	})
	if err != nil {
		return nil, err
	}
	table.Skipped = stats.Skipped
	return table, nil
}

// Write writes the table in the format named by ext (".csv" or ".xlsx").
func (t *Table) Write(w io.Writer, ext string) error {
	switch strings.ToLower(ext) {
	case ".csv":
		return curation.WriteCSV(w, ',', t.Header, t.Rows)
	case ".xlsx":
		return curation.WriteXLSX(w, "curadoria", t.Header, t.Rows)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// FormatFor returns the output format implied by a file name.
func FormatFor(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ".csv"
	}
	return ext
}
