package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/lexcorpus/chunking"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage"
)

const (
	// DefaultMaxAttempts is the attempt ceiling for a single item.
	DefaultMaxAttempts = 1000
	// DefaultRetryDelay is the pause between attempts.
	DefaultRetryDelay = 5 * time.Second
	// DefaultReportInterval controls how often progress is printed.
	DefaultReportInterval = 10
)

// Item is one unit of work. ID is the identity recorded in the log.
type Item struct {
	ID      string
	Payload string
	Meta    map[string]any
}

// Processor performs the external call for one item.
// A returned error means the call failed and may be retried. A reply that
// arrives but cannot be understood must come back as a parse_error record
// with a nil error.
type Processor interface {
	Process(ctx context.Context, item Item) (*core.Record, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, item Item) (*core.Record, error)

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, item Item) (*core.Record, error) {
	return f(ctx, item)
}

// Config holds configuration for a run.
type Config struct {
	// MaxAttempts is the number of calls made for an item before giving up
	MaxAttempts int
	// RetryDelay is the fixed pause between attempts
	RetryDelay time.Duration
	// MaxChars truncates payloads before the call; 0 disables truncation
	MaxChars int
	// ReportInterval prints progress every N committed items
	ReportInterval int
	// Concurrency is the number of in-flight calls
	Concurrency int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:    DefaultMaxAttempts,
		RetryDelay:     DefaultRetryDelay,
		MaxChars:       0,
		ReportInterval: DefaultReportInterval,
		Concurrency:    1,
	}
}

// Validate checks the config values.
func (c *Config) Validate() error {
	if c.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay must not be negative", ErrInvalidConfig)
	}
	if c.MaxChars < 0 {
		return fmt.Errorf("%w: max chars must not be negative", ErrInvalidConfig)
	}
	if c.ReportInterval <= 0 {
		return fmt.Errorf("%w: report interval must be greater than 0", ErrInvalidConfig)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be greater than 0", ErrInvalidConfig)
	}
	return nil
}

// Summary describes what a run did.
type Summary struct {
	Total       int
	Skipped     int
	Duplicates  int
	Invalid     int
	Processed   int
	ParseErrors int
	Retries     int
	Elapsed     time.Duration
}

// Pending returns the items the run still had to process.
func (s *Summary) Pending() int {
	return s.Total - s.Skipped - s.Duplicates - s.Invalid
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithObserver attaches an observer to the run.
func WithObserver(observer Observer) Option {
	return func(r *Runner) {
		if observer != nil {
			r.observer = observer
		}
	}
}

// WithTask names the run in logs and observer calls.
func WithTask(name string) Option {
	return func(r *Runner) {
		r.task = name
	}
}

// Runner orchestrates a resumable run over a record log.
type Runner struct {
	log      storage.RecordLog
	proc     Processor
	config   *Config
	progress io.Writer
	logger   *slog.Logger
	observer Observer
	task     string
}

// NewRunner creates a new runner.
// progress may be nil to suppress progress output.
func NewRunner(log storage.RecordLog, proc Processor, config *Config, progress io.Writer, opts ...Option) (*Runner, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = io.Discard
	}

	r := &Runner{
		log:      log,
		proc:     proc,
		config:   config,
		progress: progress,
		logger:   slog.Default(),
		observer: noopObserver{},
		task:     "run",
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("task", r.task)
	return r, nil
}

// runState is shared by the workers of one run.
type runState struct {
	mu        sync.Mutex
	summary   *Summary
	committed map[string]struct{}
	tracker   *ProgressTracker
}

// Run processes every item whose id is not already in the log.
// It returns the summary even when it stops on an error, so callers can report
// partial progress. Records committed before the error stay in the log.
func (r *Runner) Run(ctx context.Context, items []Item) (*Summary, error) {
	done, err := r.log.ProcessedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load processed ids: %w", err)
	}

	summary := &Summary{Total: len(items)}
	seen := make(map[string]struct{}, len(items))
	pending := make([]Item, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			summary.Invalid++
			r.logger.Warn("item without id ignored")
			continue
		}
		if _, ok := done[item.ID]; ok {
			summary.Skipped++
			r.observer.ItemSkipped(r.task)
			continue
		}
		if _, ok := seen[item.ID]; ok {
			summary.Duplicates++
			r.logger.Warn("duplicate item id in input", "item", item.ID)
			continue
		}
		seen[item.ID] = struct{}{}
		pending = append(pending, item)
	}

	fmt.Fprintf(r.progress, "Starting %s of %d items (%d already done)\n", r.task, len(pending), summary.Skipped)
	r.logger.Info("run starting", "total", summary.Total, "pending", len(pending), "skipped", summary.Skipped)

	state := &runState{
		summary:   summary,
		committed: make(map[string]struct{}, len(pending)),
		tracker:   NewProgressTracker(r.progress, len(pending), summary.Skipped, r.config.ReportInterval),
	}
	state.tracker.Start()

	if r.config.Concurrency > 1 {
		err = r.runPooled(ctx, pending, state)
	} else {
		err = r.runSequential(ctx, pending, state)
	}

	state.tracker.Finish()
	summary.Elapsed = state.tracker.Elapsed()
	r.observer.RunFinished(r.task, summary)

	if err != nil {
		r.logger.Error("run stopped", "processed", summary.Processed, "err", err)
		return summary, err
	}

	rate := 0.0
	if summary.Elapsed > 0 {
		rate = float64(summary.Processed) / summary.Elapsed.Seconds()
	}
	fmt.Fprintf(r.progress, "Run complete. Processed %d items in %v (%.1f items/sec)\n",
		summary.Processed, summary.Elapsed.Round(time.Millisecond), rate)
	r.logger.Info("run complete", "processed", summary.Processed, "parse_errors", summary.ParseErrors, "retries", summary.Retries)
	return summary, nil
}

func (r *Runner) runSequential(ctx context.Context, pending []Item, state *runState) error {
	for _, item := range pending {
		if err := r.processItem(ctx, item, state); err != nil {
			return err
		}
	}
	return nil
}

// processItem calls the processor with retries and commits the resulting record.
func (r *Runner) processItem(ctx context.Context, item Item, state *runState) error {
	call := Item{
		ID:      item.ID,
		Payload: chunking.Truncate(item.Payload, r.config.MaxChars),
		Meta:    item.Meta,
	}

	var rec *core.Record
	err := RetryFixed(ctx, func(attempt int) error {
		var err error
		rec, err = r.proc.Process(ctx, call)
		if err != nil && attempt < r.config.MaxAttempts && !IsPermanent(err) {
			r.logger.Warn("call failed, retrying",
				"item", item.ID, "attempt", attempt, "max_attempts", r.config.MaxAttempts, "err", err)
			state.mu.Lock()
			state.summary.Retries++
			state.mu.Unlock()
			r.observer.ItemRetried(r.task, err)
		}
		return err
	}, r.config.MaxAttempts, r.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("item %s: %w", item.ID, err)
	}
	if rec == nil {
		return fmt.Errorf("item %s: %w", item.ID, ErrNoRecord)
	}

	// The log is keyed by the item id regardless of what the reply claims.
	rec.ID = item.ID
	return r.commit(ctx, rec, state)
}

// commit appends rec unless its id has already been committed in this run.
// Appends are serialized so concurrent workers never interleave lines.
func (r *Runner) commit(ctx context.Context, rec *core.Record, state *runState) error {
	state.mu.Lock()
	defer state.mu.Unlock()

	if _, ok := state.committed[rec.ID]; ok {
		state.summary.Duplicates++
		return nil
	}
	if err := r.log.Append(ctx, rec); err != nil {
		return fmt.Errorf("failed to commit %s: %w", rec.ID, err)
	}
	state.committed[rec.ID] = struct{}{}

	state.summary.Processed++
	if rec.Status == core.StatusParseError {
		state.summary.ParseErrors++
		r.logger.Warn("unparseable reply recorded", "item", rec.ID)
	}
	r.observer.ItemCommitted(r.task, rec.Status)
	state.tracker.Increment(1)
	return nil
}
