package extraction

import (
	"fmt"

	"github.com/poiesic/lexcorpus/core"
)

const (
	DefaultMinWords = 300
	DefaultMaxWords = 25000
)

// FilterStats counts the outcome of a filter pass.
type FilterStats struct {
	Total      int
	Kept       int
	TooSmall   int
	TooLarge   int
	Duplicates int
}

// Filter keeps documents whose word count lies in [MinWords, MaxWords].
type Filter struct {
	MinWords int
	MaxWords int
	// Dedupe drops documents whose text fingerprint was already kept.
	Dedupe bool
}

// DefaultFilter returns the filter with the standard bounds.
func DefaultFilter() *Filter {
	return &Filter{MinWords: DefaultMinWords, MaxWords: DefaultMaxWords}
}

// Validate checks the bounds.
func (f *Filter) Validate() error {
	if f.MinWords < 0 || f.MaxWords < f.MinWords {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, f.MinWords, f.MaxWords)
	}
	return nil
}

// Apply returns the documents that pass, in input order.
func (f *Filter) Apply(docs []*core.Document) ([]*core.Document, FilterStats) {
	stats := FilterStats{Total: len(docs)}
	seen := make(map[string]struct{})
	kept := make([]*core.Document, 0, len(docs))

	for _, doc := range docs {
		switch {
		case doc.Words < f.MinWords:
			stats.TooSmall++
			continue
		case doc.Words > f.MaxWords:
			stats.TooLarge++
			continue
		}
		if f.Dedupe {
			fp := doc.Fingerprint
			if fp == "" {
				fp = core.Fingerprint(doc.Text)
			}
			if _, ok := seen[fp]; ok {
				stats.Duplicates++
				continue
			}
			seen[fp] = struct{}{}
		}
		kept = append(kept, doc)
	}
	stats.Kept = len(kept)
	return kept, stats
}
