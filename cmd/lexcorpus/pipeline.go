package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/extraction"
	"github.com/poiesic/lexcorpus/runner"
	"github.com/poiesic/lexcorpus/storage/jsonl"
)

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:   "extract",
		Usage:  "Extract the text of every .docx under a directory into a documents file",
		Action: extractAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Directory to scan",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Documents JSONL file to write",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Number of files extracted in parallel (0 uses every CPU)",
			},
		},
	}
}

func extractAction(c *cli.Context) error {
	s := settingsFrom(c)
	opts := []extraction.Option{extraction.WithLogger(s.logger)}
	if n := c.Int("concurrency"); n > 0 {
		opts = append(opts, extraction.WithConcurrency(n))
	}

	docs, stats, err := extraction.NewExtractor(opts...).Walk(c.Context, c.String("input"))
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if err := writeDocuments(c.String("output"), docs); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Found %d files: %d extracted, %d empty, %d failed\n",
		stats.Found, len(docs), stats.Empty, stats.Failed)
	return nil
}

func filterCommand() *cli.Command {
	return &cli.Command{
		Name:   "filter",
		Usage:  "Keep documents whose word count lies within a range",
		Action: filterAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Documents JSONL file to read",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Documents JSONL file to write",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "min-words",
				Usage: "Smallest word count kept",
			},
			&cli.IntFlag{
				Name:  "max-words",
				Usage: "Largest word count kept",
			},
			&cli.BoolFlag{
				Name:  "dedupe",
				Usage: "Drop documents whose text duplicates one already kept",
			},
		},
	}
}

func filterAction(c *cli.Context) error {
	filter := settingsFrom(c).cfg.DocumentFilter()
	if c.IsSet("min-words") {
		filter.MinWords = c.Int("min-words")
	}
	if c.IsSet("max-words") {
		filter.MaxWords = c.Int("max-words")
	}
	filter.Dedupe = c.Bool("dedupe")
	if err := filter.Validate(); err != nil {
		return err
	}

	docs, err := readDocuments(c, c.String("input"))
	if err != nil {
		return err
	}
	kept, stats := filter.Apply(docs)
	if err := writeDocuments(c.String("output"), kept); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Total: %d\n", stats.Total)
	fmt.Fprintf(os.Stderr, "Kept (%d-%d words): %d\n", filter.MinWords, filter.MaxWords, stats.Kept)
	fmt.Fprintf(os.Stderr, "Too small: %d\n", stats.TooSmall)
	fmt.Fprintf(os.Stderr, "Too large: %d\n", stats.TooLarge)
	if filter.Dedupe {
		fmt.Fprintf(os.Stderr, "Duplicates: %d\n", stats.Duplicates)
	}
	return nil
}

func runnerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Usage:    "Documents JSONL file to read",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Usage:    "Record log to append to; existing ids are skipped",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "max-attempts",
			Usage: "Maximum attempts per item before the run aborts",
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Fixed delay between attempts",
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "Number of items in flight",
		},
		&cli.IntFlag{
			Name:  "report-interval",
			Usage: "Report progress every N items",
		},
		indexDirFlag(),
	}
}

// runnerConfig applies explicitly set flags over the loaded configuration.
func runnerConfig(c *cli.Context) (*runner.Config, error) {
	cfg := settingsFrom(c).cfg.RunnerConfig()
	if c.IsSet("max-attempts") {
		cfg.MaxAttempts = c.Int("max-attempts")
	}
	if c.IsSet("retry-delay") {
		cfg.RetryDelay = c.Duration("retry-delay")
	}
	if c.IsSet("concurrency") {
		cfg.Concurrency = c.Int("concurrency")
	}
	if c.IsSet("report-interval") {
		cfg.ReportInterval = c.Int("report-interval")
	}
	if c.IsSet("max-chars") {
		cfg.MaxChars = c.Int("max-chars")
	}
	return cfg, cfg.Validate()
}

func classifyCommand() *cli.Command {
	flags := append(runnerFlags(),
		&cli.StringFlag{
			Name:  "model",
			Usage: "Classifier model name",
		},
		&cli.IntFlag{
			Name:  "max-chars",
			Usage: "Truncate document text to this many characters (0 disables)",
		},
	)
	return &cli.Command{
		Name:   "classify",
		Usage:  "Classify documents one call at a time into a resumable record log",
		Action: classifyAction,
		Flags:  flags,
	}
}

func classifyAction(c *cli.Context) error {
	cfg, err := runnerConfig(c)
	if err != nil {
		return err
	}
	docs, err := readDocuments(c, c.String("input"))
	if err != nil {
		return err
	}

	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	if _, err := corpus.Classify(c.Context, docs, c.String("output"), cfg, os.Stderr); err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}
	return nil
}

func embedCommand() *cli.Command {
	flags := append(runnerFlags(),
		&cli.IntFlag{
			Name:  "chunk-chars",
			Usage: "Width of each embedded chunk in characters",
		},
	)
	return &cli.Command{
		Name:   "embed",
		Usage:  "Chunk documents and embed every chunk into a resumable record log",
		Action: embedAction,
		Flags:  flags,
	}
}

func embedAction(c *cli.Context) error {
	cfg, err := runnerConfig(c)
	if err != nil {
		return err
	}
	// chunks are already bounded
	cfg.MaxChars = 0

	chunkChars := settingsFrom(c).cfg.Runner.ChunkChars
	if c.IsSet("chunk-chars") {
		chunkChars = c.Int("chunk-chars")
	}

	docs, err := readDocuments(c, c.String("input"))
	if err != nil {
		return err
	}

	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	if _, err := corpus.Embed(c.Context, docs, c.String("output"), chunkChars, cfg, os.Stderr); err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	return nil
}

func readDocuments(c *cli.Context, path string) ([]*core.Document, error) {
	docs, stats, err := jsonl.ReadDocumentFile(c.Context, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	if stats.Skipped > 0 {
		settingsFrom(c).logger.Warn("skipped unreadable document lines", "path", path, "skipped", stats.Skipped)
	}
	return docs, nil
}

func writeDocuments(path string, docs []*core.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := jsonl.NewDocumentWriter(f)
	for _, doc := range docs {
		if err := w.Write(doc); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
