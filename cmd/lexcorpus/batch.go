package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/lexcorpus/batch"
	"github.com/poiesic/lexcorpus/storage/jsonl"
)

var errAlreadySubmitted = errors.New("request file already submitted")

func jobFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "job",
		Aliases:  []string{"j"},
		Usage:    "Batch job id",
		Required: true,
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Classify documents through an asynchronous bulk job",
		Subcommands: []*cli.Command{
			{
				Name:   "prepare",
				Usage:  "Write one classification request per document",
				Action: batchPrepareAction,
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
						Usage:    "Request file to write",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Classifier model name",
					},
					&cli.IntFlag{
						Name:  "max-chars",
						Usage: "Truncate document text to this many characters (0 disables)",
					},
				},
			},
			{
				Name:   "submit",
				Usage:  "Upload a request file and start a job over it",
				Action: batchSubmitAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "requests",
						Aliases:  []string{"r"},
						Usage:    "Request file written by prepare",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Submit even if the same request file was submitted before",
					},
					indexDirFlag(),
				},
			},
			{
				Name:   "status",
				Usage:  "Show the status of a job",
				Action: batchStatusAction,
				Flags:  []cli.Flag{jobFlag(), indexDirFlag()},
			},
			{
				Name:   "wait",
				Usage:  "Poll a job until it finishes",
				Action: batchWaitAction,
				Flags: []cli.Flag{
					jobFlag(),
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "Mean delay between polls",
						Value: batch.DefaultPollInterval,
					},
					indexDirFlag(),
				},
			},
			{
				Name:   "errors",
				Usage:  "Download the error file of a job",
				Action: batchErrorsAction,
				Flags: []cli.Flag{
					jobFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "File to write (defaults to stdout)",
					},
					indexDirFlag(),
				},
			},
			{
				Name:   "ingest",
				Usage:  "Append the results of a finished job to a record log",
				Action: batchIngestAction,
				Flags: []cli.Flag{
					jobFlag(),
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Record log to append to; existing ids are skipped",
						Required: true,
					},
					indexDirFlag(),
				},
			},
		},
	}
}

func batchPrepareAction(c *cli.Context) error {
	s := settingsFrom(c)
	aiConfig := s.cfg.AIConfig()
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}
	model := aiConfig.ClassifierModel
	if c.IsSet("model") {
		model = c.String("model")
	}
	maxChars := s.cfg.Runner.MaxChars
	if c.IsSet("max-chars") {
		maxChars = c.Int("max-chars")
	}

	docs, err := readDocuments(c, c.String("input"))
	if err != nil {
		return err
	}
	reqs := batch.BuildClassificationRequests(docs, model, aiConfig.BatchEndpoint, maxChars)
	if err := batch.ValidateRequests(reqs); err != nil {
		return err
	}

	f, err := os.Create(c.String("output"))
	if err != nil {
		return fmt.Errorf("failed to create request file: %w", err)
	}
	defer f.Close()
	if err := batch.EncodeRequests(f, reqs); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Wrote %d requests to %s\n", len(reqs), c.String("output"))
	return nil
}

func readRequests(path string) ([]batch.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open request file: %w", err)
	}
	defer f.Close()
	return batch.DecodeRequests(f)
}

func batchSubmitAction(c *cli.Context) error {
	reqs, err := readRequests(c.String("requests"))
	if err != nil {
		return err
	}

	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()
	manager := corpus.NewBatchManager()

	prev, err := manager.PreviousSubmission(c.Context, reqs)
	if err != nil {
		return err
	}
	if prev != nil {
		if !c.Bool("force") {
			return fmt.Errorf("%w as job %s at %s; use --force to submit again",
				errAlreadySubmitted, prev.JobID, prev.SubmittedAt.Format("2006-01-02 15:04:05"))
		}
		settingsFrom(c).logger.Warn("resubmitting request file", "previous_job", prev.JobID)
	}

	job, err := manager.Submit(c.Context, reqs)
	if err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}
	fmt.Fprintln(c.App.Writer, job.ID)
	return nil
}

func batchStatusAction(c *cli.Context) error {
	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	job, err := corpus.NewBatchManager().Poll(c.Context, c.String("job"))
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "Job: %s\n", job.ID)
	fmt.Fprintf(w, "Status: %s\n", job.Status)
	fmt.Fprintf(w, "Requests: %d total, %d completed, %d failed\n", job.Total, job.Completed, job.Failed)
	if job.OutputRef != "" {
		fmt.Fprintf(w, "Output file: %s\n", job.OutputRef)
	}
	if job.ErrorRef != "" {
		fmt.Fprintf(w, "Error file: %s\n", job.ErrorRef)
	}
	return nil
}

func batchWaitAction(c *cli.Context) error {
	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	manager := corpus.NewBatchManager(batch.WithPollInterval(c.Duration("interval")))
	job, err := manager.Wait(c.Context, c.String("job"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Job %s finished: %s\n", job.ID, job.Status)
	return nil
}

func batchErrorsAction(c *cli.Context) error {
	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	content, err := corpus.NewBatchManager().FetchErrors(c.Context, c.String("job"))
	if err != nil {
		return err
	}
	if content == nil {
		fmt.Fprintln(os.Stderr, "Job has no error file")
		return nil
	}

	out := c.String("output")
	if out == "" {
		_, err = c.App.Writer.Write(content)
		return err
	}
	if err := os.WriteFile(out, content, 0o644); err != nil {
		return fmt.Errorf("failed to write error file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s\n", len(content), out)
	return nil
}

func batchIngestAction(c *cli.Context) error {
	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	records, stats, err := corpus.NewBatchManager().FetchResults(c.Context, c.String("job"))
	if err != nil {
		return err
	}

	log, err := jsonl.OpenRecordLog(c.String("output"), jsonl.WithLogger(settingsFrom(c).logger))
	if err != nil {
		return err
	}
	defer log.Close()

	n, err := batch.Ingest(c.Context, log, records)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Appended %d of %d results (%d failed requests, %d unreadable lines)\n",
		n, len(records), stats.Failed, stats.Skipped)
	return nil
}
