package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lthibault/jitterbug/v2"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage"
)

// DefaultPollInterval is the cadence used by Wait.
const DefaultPollInterval = 30 * time.Second

// Option configures a Manager.
type Option func(*Manager)

// WithLedger records every submission so repeated request sets can be detected.
func WithLedger(ledger storage.SubmissionLedger) Option {
	return func(m *Manager) {
		m.ledger = ledger
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithPollInterval sets the cadence used by Wait.
func WithPollInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.pollInterval = interval
		}
	}
}

// WithEndpoint sets the endpoint jobs are created for.
func WithEndpoint(endpoint string) Option {
	return func(m *Manager) {
		m.endpoint = endpoint
	}
}

// Manager drives bulk jobs through an ai.BatchService.
type Manager struct {
	service      ai.BatchService
	ledger       storage.SubmissionLedger
	logger       *slog.Logger
	pollInterval time.Duration
	endpoint     string
}

// NewManager creates a manager over service.
func NewManager(service ai.BatchService, opts ...Option) *Manager {
	m := &Manager{
		service:      service,
		logger:       slog.Default().With("component", "batch"),
		pollInterval: DefaultPollInterval,
		endpoint:     ai.DefaultBatchEndpoint,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PreviousSubmission returns the earlier submission of an identical request set,
// or nil when there is none or no ledger is configured.
func (m *Manager) PreviousSubmission(ctx context.Context, reqs []Request) (*core.Submission, error) {
	if m.ledger == nil {
		return nil, nil
	}
	content, err := MarshalRequests(reqs)
	if err != nil {
		return nil, err
	}
	return m.ledger.FindSubmission(ctx, Fingerprint(content))
}

// Submit uploads reqs as one request file and creates a job over it.
// Every call creates a new job.
func (m *Manager) Submit(ctx context.Context, reqs []Request) (*core.BatchJob, error) {
	if err := ValidateRequests(reqs); err != nil {
		return nil, err
	}
	content, err := MarshalRequests(reqs)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("batch-%s.jsonl", uuid.NewString())
	fileID, err := m.service.UploadBatchFile(ctx, name, content)
	if err != nil {
		return nil, fmt.Errorf("failed to upload request file: %w", err)
	}
	m.logger.Info("request file uploaded", "file", fileID, "requests", len(reqs), "bytes", len(content))

	job, err := m.service.CreateBatch(ctx, fileID, m.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch job: %w", err)
	}
	m.logger.Info("batch job created", "job", job.ID, "status", job.Status)

	if m.ledger != nil {
		sub := &core.Submission{
			Fingerprint: Fingerprint(content),
			JobID:       job.ID,
			InputFileID: fileID,
			Requests:    len(reqs),
		}
		if err := m.ledger.RecordSubmission(ctx, sub); err != nil {
			m.logger.Warn("failed to record submission", "job", job.ID, "err", err)
		}
	}
	return job, nil
}

// Poll returns the current snapshot of a job.
func (m *Manager) Poll(ctx context.Context, jobID string) (*core.BatchJob, error) {
	job, err := m.service.RetrieveBatch(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve batch %s: %w", jobID, err)
	}
	return job, nil
}

// Wait polls until the job reaches a terminal state. A job that ends in any
// state other than completed is returned together with ErrJobFailed.
func (m *Manager) Wait(ctx context.Context, jobID string) (*core.BatchJob, error) {
	job, err := m.Poll(ctx, jobID)
	if err != nil {
		return nil, err
	}

	ticker := jitterbug.New(m.pollInterval, &jitterbug.Norm{Stdev: m.pollInterval / 10})
	defer ticker.Stop()

	for !job.Status.Terminal() {
		m.logger.Debug("batch job pending", "job", jobID, "status", job.Status,
			"completed", job.Completed, "total", job.Total)
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
		if job, err = m.Poll(ctx, jobID); err != nil {
			return nil, err
		}
	}

	if job.Status != core.BatchCompleted {
		return job, fmt.Errorf("%w: %s is %s", ErrJobFailed, jobID, job.Status)
	}
	return job, nil
}

// FetchErrors downloads the error artifact of a job. It returns nil content when
// the job has none, which means every request in it succeeded.
func (m *Manager) FetchErrors(ctx context.Context, jobID string) ([]byte, error) {
	job, err := m.Poll(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ErrorRef == "" {
		return nil, nil
	}
	content, err := m.service.FileContent(ctx, job.ErrorRef)
	if err != nil {
		return nil, fmt.Errorf("failed to download error file %s: %w", job.ErrorRef, err)
	}
	return content, nil
}

// FetchResults downloads the output of a completed job and parses it into records.
func (m *Manager) FetchResults(ctx context.Context, jobID string) ([]*core.Record, ParseStats, error) {
	job, err := m.Poll(ctx, jobID)
	if err != nil {
		return nil, ParseStats{}, err
	}
	if !job.Status.Terminal() {
		return nil, ParseStats{}, fmt.Errorf("%w: %s is %s", ErrNotFinished, jobID, job.Status)
	}
	if job.OutputRef == "" {
		return nil, ParseStats{}, fmt.Errorf("%w: %s", ErrNoOutput, jobID)
	}

	content, err := m.service.FileContent(ctx, job.OutputRef)
	if err != nil {
		return nil, ParseStats{}, fmt.Errorf("failed to download output file %s: %w", job.OutputRef, err)
	}
	records, stats := ParseResults(content)
	m.logger.Info("batch results parsed", "job", jobID, "records", len(records),
		"failed_requests", stats.Failed, "skipped_lines", stats.Skipped)
	return records, stats, nil
}

// Ingest appends the records whose ids are not yet in log and returns how many
// were appended.
func Ingest(ctx context.Context, log storage.RecordLog, records []*core.Record) (int, error) {
	done, err := log.ProcessedIDs(ctx)
	if err != nil {
		return 0, err
	}
	fresh := make([]*core.Record, 0, len(records))
	for _, rec := range records {
		if _, ok := done[rec.ID]; ok {
			continue
		}
		done[rec.ID] = struct{}{}
		fresh = append(fresh, rec)
	}
	if err := log.Append(ctx, fresh...); err != nil {
		return 0, err
	}
	return len(fresh), nil
}
