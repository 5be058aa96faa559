package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/lexcorpus"
	"github.com/poiesic/lexcorpus/curation"
	"github.com/poiesic/lexcorpus/projection"
	"github.com/poiesic/lexcorpus/search"
	"github.com/poiesic/lexcorpus/storage/postgres"
)

var errNoDatabaseURL = errors.New("no database URL: set LEXCORPUS_DATABASE_URL or --database-url")

func projectCommand() *cli.Command {
	return &cli.Command{
		Name:   "project",
		Usage:  "Flatten a record log into a CSV or XLSX table",
		Action: projectAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Record log to read",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Table to write; the extension picks the format",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "schema",
				Usage: "Column layout (" + strings.Join(projection.SchemaNames(), ", ") + ")",
				Value: projection.ClassificationSchema.Name,
			},
		},
	}
}

func projectAction(c *cli.Context) error {
	schema, err := projection.LookupSchema(c.String("schema"))
	if err != nil {
		return err
	}
	table, err := projection.ProjectFile(c.Context, schema, c.String("input"))
	if err != nil {
		return fmt.Errorf("projection failed: %w", err)
	}

	out := c.String("output")
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer f.Close()
	if err := table.Write(f, projection.FormatFor(out)); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Wrote %d rows to %s (%d unreadable lines skipped)\n", len(table.Rows), out, table.Skipped)
	return nil
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:   "import",
		Usage:  "Insert an embedding log into a pgvector table",
		Action: importAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Embedding record log to read",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "database-url",
				Usage: "Postgres connection string",
			},
			&cli.StringFlag{
				Name:  "table",
				Usage: "Destination table",
			},
		},
	}
}

func importAction(c *cli.Context) error {
	s := settingsFrom(c)
	url := s.cfg.Storage.DatabaseURL
	if c.IsSet("database-url") {
		url = c.String("database-url")
	}
	if url == "" {
		return errNoDatabaseURL
	}
	table := s.cfg.Storage.Table
	if c.IsSet("table") {
		table = c.String("table")
	}

	sink, err := postgres.Connect(c.Context, url,
		postgres.WithTable(table),
		postgres.WithDimensions(s.cfg.AI.EmbeddingDimensions),
		postgres.WithLogger(s.logger),
	)
	if err != nil {
		return err
	}
	defer sink.Close()

	stats, err := lexcorpus.ImportEmbeddings(c.Context, sink, c.String("input"), s.logger)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Inserted %d rows into %s (%d without embedding, %d unreadable lines)\n",
		stats.Inserted, table, stats.Skipped, stats.Invalid)
	return nil
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:   "index",
		Usage:  "Load an embedding log into the local chunk index",
		Action: indexAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Embedding record log to read",
				Required: true,
			},
			indexDirFlag(),
		},
	}
}

func indexAction(c *cli.Context) error {
	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	stats, err := corpus.IndexEmbeddings(c.Context, c.String("input"))
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Indexed %d chunks (%d without embedding, %d unreadable lines)\n",
		stats.Indexed, stats.Skipped, stats.Invalid)

	total, err := corpus.ChunkIndex().Count(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Index holds %d chunks\n", total)
	return nil
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print the indexed text of a document",
		ArgsUsage: "<document id>",
		Action:    showAction,
		Flags:     []cli.Flag{indexDirFlag()},
	}
}

func showAction(c *cli.Context) error {
	docID := c.Args().First()
	if docID == "" {
		return errors.New("a document id is required")
	}

	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	text, err := corpus.Reassemble(c.Context, docID)
	if err != nil {
		return fmt.Errorf("document %s: %w", docID, err)
	}
	fmt.Fprintln(c.App.Writer, text)
	return nil
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find the indexed chunks closest to a query",
		ArgsUsage: "<query>",
		Action:    searchAction,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of hits",
				Value:   10,
			},
			&cli.Float64Flag{
				Name:  "min-similarity",
				Usage: "Smallest cosine similarity reported",
				Value: search.DefaultMinSimilarity,
			},
			indexDirFlag(),
		},
	}
}

func searchAction(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return search.ErrEmptyQuery
	}

	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	searcher, err := corpus.NewSearcher(
		search.WithLogger(settingsFrom(c).logger),
		search.WithMinSimilarity(float32(c.Float64("min-similarity"))),
	)
	if err != nil {
		return err
	}
	results, err := searcher.FindSimilar(c.Context, query, c.Int("limit"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	for _, res := range results {
		marker := ""
		if res.Verbatim {
			marker = " *"
		}
		fmt.Fprintf(w, "%.3f %s%s\n", res.Score, res.Row.ID(), marker)
		fmt.Fprintf(w, "    %s\n", snippet(res.Row.Content, 160))
	}
	if len(results) == 0 {
		fmt.Fprintln(os.Stderr, "No matches")
	}
	return nil
}

func snippet(text string, maxRunes int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "..."
}

func curateCommand() *cli.Command {
	return &cli.Command{
		Name:   "curate",
		Usage:  "Split a scored dataset into gold and silver subsets",
		Action: curateAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Scored dataset (.csv or .xlsx)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory for the curated files (defaults to the input's directory)",
			},
			&cli.StringFlag{
				Name:  "score-column",
				Usage: "Header of the score column, matched case-insensitively",
				Value: curation.DefaultScoreColumn,
			},
		},
	}
}

func curateAction(c *cli.Context) error {
	in := c.String("input")
	ds, err := curation.ReadDataset(in)
	if err != nil {
		return err
	}

	curator := curation.NewCurator(
		curation.WithScoreColumn(c.String("score-column")),
		curation.WithLogger(settingsFrom(c).logger),
	)
	res, err := curator.Curate(ds)
	if err != nil {
		return err
	}

	dir := c.String("output-dir")
	if dir == "" {
		dir = filepath.Dir(in)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(in))
	if ext == ".txt" {
		ext = ".csv"
	}
	written, err := curator.WriteOutputs(res, dir, ext)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Total: %d\n", res.Total)
	fmt.Fprintf(os.Stderr, "Gold: %d\n", len(res.Gold))
	fmt.Fprintf(os.Stderr, "Silver: %d\n", len(res.Silver))
	fmt.Fprintf(os.Stderr, "Curated: %d\n", len(res.Curated))
	fmt.Fprintf(os.Stderr, "Skipped: %d\n", res.Skipped)
	for _, path := range written {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	}
	return nil
}
