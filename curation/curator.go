package curation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Flag columns recomputed on every run.
const (
	GoldColumn   = "RAG_GOLD"
	SilverColumn = "RAG_SILVER"
)

// DefaultScoreColumn is the score header looked up when none is configured.
const DefaultScoreColumn = "nota"

// Output file stems written by WriteOutputs.
const (
	GoldOutput    = "dataset_gold"
	SilverOutput  = "dataset_silver"
	CuratedOutput = "dataset_curado"
)

// Result holds the curated subsets of one dataset.
// Every row is aligned with Header and carries freshly computed flag columns.
type Result struct {
	Header    []string
	Delimiter rune
	Gold      [][]string
	Silver    [][]string
	Curated   [][]string
	Total     int
	Skipped   int // rows whose score was blank or not numeric
}

// Curator splits a scored dataset into gold and silver tiers.
type Curator struct {
	scoreColumn string
	logger      *slog.Logger
}

// Option configures a Curator.
type Option func(*Curator)

// WithScoreColumn sets the header name of the score column.
func WithScoreColumn(name string) Option {
	return func(c *Curator) {
		if name != "" {
			c.scoreColumn = name
		}
	}
}

// WithLogger sets a custom logger for the curator.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Curator) {
		c.logger = logger
	}
}

// NewCurator creates a Curator.
func NewCurator(opts ...Option) *Curator {
	c := &Curator{
		scoreColumn: DefaultScoreColumn,
		logger:      slog.Default().With("component", "curator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Curate recomputes the tier flags of every row and collects the gold and silver subsets.
// Flag values in the input are ignored. Rows without a numeric score are skipped.
func (c *Curator) Curate(ds *Dataset) (*Result, error) {
	scoreIdx := FindColumn(ds.Header, c.scoreColumn)
	if scoreIdx < 0 {
		return nil, fmt.Errorf("%w: %q (columns: %s)", ErrScoreColumnNotFound, c.scoreColumn, strings.Join(ds.Header, ", "))
	}
	if len(ds.Rows) == 0 {
		return nil, ErrEmptyDataset
	}

	header := append([]string(nil), ds.Header...)
	goldIdx := indexOf(header, GoldColumn)
	if goldIdx < 0 {
		header = append(header, GoldColumn)
		goldIdx = len(header) - 1
	}
	silverIdx := indexOf(header, SilverColumn)
	if silverIdx < 0 {
		header = append(header, SilverColumn)
		silverIdx = len(header) - 1
	}

	res := &Result{Header: header, Delimiter: ds.Delimiter, Total: len(ds.Rows)}
	for _, row := range ds.Rows {
		if scoreIdx >= len(row) {
			res.Skipped++
			continue
		}
		score, ok := ParseScore(row[scoreIdx])
		if !ok {
			res.Skipped++
			continue
		}

		tier := Classify(score)
		if !tier.Curated() {
			continue
		}

		out := make([]string, len(header))
		copy(out, row)
		out[goldIdx], out[silverIdx] = tier.Labels()

		if tier.Gold {
			res.Gold = append(res.Gold, out)
		} else {
			res.Silver = append(res.Silver, out)
		}
		res.Curated = append(res.Curated, out)
	}

	c.logger.Info("dataset curated",
		"score_column", ds.Header[scoreIdx],
		"total", res.Total,
		"gold", len(res.Gold),
		"silver", len(res.Silver),
		"skipped", res.Skipped)
	return res, nil
}

// WriteOutputs writes the gold, silver and curated subsets into dir using the
// format implied by ext (".csv" or ".xlsx"). Empty subsets produce no file.
// It returns the paths written.
func (c *Curator) WriteOutputs(res *Result, dir, ext string) ([]string, error) {
	ext = strings.ToLower(ext)
	if ext != ".csv" && ext != ".xlsx" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	outputs := []struct {
		stem string
		rows [][]string
	}{
		{GoldOutput, res.Gold},
		{SilverOutput, res.Silver},
		{CuratedOutput, res.Curated},
	}

	var written []string
	for _, o := range outputs {
		if len(o.rows) == 0 {
			c.logger.Warn("no rows for output, skipping", "output", o.stem)
			continue
		}
		path := filepath.Join(dir, o.stem+ext)
		if err := writeFile(path, ext, res, o.rows); err != nil {
			return written, err
		}
		c.logger.Info("output written", "path", path, "rows", len(o.rows))
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path, ext string, res *Result, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if ext == ".xlsx" {
		err = WriteXLSX(f, "dataset", res.Header, rows)
	} else {
		delim := res.Delimiter
		if delim == 0 {
			delim = ','
		}
		err = WriteCSV(f, delim, res.Header, rows)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
