package extraction

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/lexcorpus/core"
)

// Stats counts what a walk did.
type Stats struct {
	Found   int // .docx files seen
	Failed  int // files that could not be read
	Empty   int // files without text
	Written int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithConcurrency bounds the number of files read at once.
func WithConcurrency(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// Extractor turns a directory tree of .docx files into Documents.
type Extractor struct {
	concurrency int
	logger      *slog.Logger
}

// NewExtractor creates an extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		concurrency: runtime.NumCPU(),
		logger:      slog.Default().With("component", "extraction"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Walk extracts every .docx under root. Unreadable and empty files are logged and
// skipped. Documents come back in path order.
func (e *Extractor) Walk(ctx context.Context, root string) ([]*core.Document, Stats, error) {
	var stats Stats

	paths, err := findDOCX(root)
	if err != nil {
		return nil, stats, err
	}
	stats.Found = len(paths)
	e.logger.Info("scanning documents", "root", root, "files", len(paths))

	results := make([]*core.Document, len(paths))
	failed := make([]bool, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			text, err := ExtractDOCX(path)
			if err != nil {
				e.logger.Warn("failed to read document", "path", path, "err", err)
				failed[i] = true
				return nil
			}
			text = strings.TrimSpace(text)
			if text == "" {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				rel = filepath.Base(path)
			}
			results[i] = &core.Document{
				ID:          filepath.ToSlash(rel),
				Path:        path,
				Words:       core.CountWords(text),
				Text:        text,
				Fingerprint: core.Fingerprint(text),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	docs := make([]*core.Document, 0, len(results))
	for i, doc := range results {
		switch {
		case failed[i]:
			stats.Failed++
		case doc == nil:
			stats.Empty++
		default:
			docs = append(docs, doc)
		}
	}
	stats.Written = len(docs)

	if len(docs) == 0 {
		return nil, stats, fmt.Errorf("%w under %s", ErrNoDocuments, root)
	}
	e.logger.Info("extraction complete", "documents", stats.Written, "failed", stats.Failed, "empty", stats.Empty)
	return docs, stats, nil
}

func findDOCX(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		// Word lock files share the extension.
		if strings.HasPrefix(name, "~$") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".docx") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return paths, nil
}
