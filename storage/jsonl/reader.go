package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage"
)

// ScanStats counts the lines seen by a scan.
type ScanStats struct {
	Lines   int
	Skipped int
}

// scanLines calls fn with every non-blank line of r, without its newline.
// Lines have no length limit; embedding records easily exceed bufio.Scanner's default.
func scanLines(ctx context.Context, r io.Reader, fn func(line []byte) error) error {
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := br.ReadBytes('\n')
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			if fnErr := fn(trimmed); fnErr != nil {
				return fnErr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// ScanRecords decodes every record line of r and calls fn for each.
// Lines that are not JSON objects or carry no identity are skipped.
func ScanRecords(ctx context.Context, r io.Reader, fn func(*core.Record) error) (ScanStats, error) {
	var stats ScanStats
	err := scanLines(ctx, r, func(line []byte) error {
		stats.Lines++
		var rec core.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			stats.Skipped++
			return nil
		}
		return fn(&rec)
	})
	return stats, err
}

// ReadRecordFile scans the record log at path.
// A missing file is reported as storage.ErrLogNotFound.
func ReadRecordFile(ctx context.Context, path string, fn func(*core.Record) error) (ScanStats, error) {
	f, err := openInput(path)
	if err != nil {
		return ScanStats{}, err
	}
	defer f.Close()
	return ScanRecords(ctx, f, fn)
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrLogNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}
