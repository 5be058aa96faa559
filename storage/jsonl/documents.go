package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/poiesic/lexcorpus/core"
)

// ScanDocuments decodes every document line of r and calls fn for each.
// Lines that do not decode or fail core.ValidateDocument are skipped.
func ScanDocuments(ctx context.Context, r io.Reader, fn func(*core.Document) error) (ScanStats, error) {
	var stats ScanStats
	err := scanLines(ctx, r, func(line []byte) error {
		stats.Lines++
		var doc core.Document
		if err := json.Unmarshal(line, &doc); err != nil || core.ValidateDocument(&doc) != nil {
			stats.Skipped++
			return nil
		}
		return fn(&doc)
	})
	return stats, err
}

// ReadDocumentFile loads every document of the stream at path.
// A missing file is reported as storage.ErrLogNotFound.
func ReadDocumentFile(ctx context.Context, path string) ([]*core.Document, ScanStats, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, ScanStats{}, err
	}
	defer f.Close()

	var docs []*core.Document
	stats, err := ScanDocuments(ctx, f, func(doc *core.Document) error {
		docs = append(docs, doc)
		return nil
	})
	return docs, stats, err
}

// DocumentWriter writes documents as one JSON object per line.
type DocumentWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
	n   int
}

// NewDocumentWriter creates a writer over w. Call Flush when done.
func NewDocumentWriter(w io.Writer) *DocumentWriter {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &DocumentWriter{w: bw, enc: enc}
}

// Write appends one document line.
func (dw *DocumentWriter) Write(doc *core.Document) error {
	if err := dw.enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode document %s: %w", doc.ID, err)
	}
	dw.n++
	return nil
}

// Count returns the number of documents written.
func (dw *DocumentWriter) Count() int {
	return dw.n
}

// Flush writes any buffered data to the underlying writer.
func (dw *DocumentWriter) Flush() error {
	return dw.w.Flush()
}
