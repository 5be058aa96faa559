package openai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/core"
	goopenai "github.com/sashabaranov/go-openai"
)

// BatchService implements ai.BatchService over the OpenAI files and batches endpoints.
type BatchService struct {
	client *goopenai.Client
	window string
	logger *slog.Logger
}

func newBatchService(config *ai.Config) (*BatchService, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientConfig := goopenai.DefaultConfig(config.Token())
	clientConfig.BaseURL = config.ClassifierHost

	return &BatchService{
		client: goopenai.NewClientWithConfig(clientConfig),
		window: config.CompletionWindow,
		logger: slog.Default().With("component", "openai-batches"),
	}, nil
}

// NewBatchService creates a bulk job client using the provided configuration.
//
// Returns ai.BatchService interface to enforce abstraction.
func NewBatchService(config *ai.Config) (ai.BatchService, error) {
	return newBatchService(config)
}

// UploadBatchFile uploads a JSONL request file with the batch purpose.
func (s *BatchService) UploadBatchFile(ctx context.Context, name string, content []byte) (string, error) {
	s.logger.Debug("uploading batch file", "name", name, "bytes", len(content))

	file, err := s.client.CreateFileBytes(ctx, goopenai.FileBytesRequest{
		Name:    name,
		Bytes:   content,
		Purpose: goopenai.PurposeBatch,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload batch file: %w", err)
	}
	return file.ID, nil
}

// CreateBatch starts a job over an uploaded request file.
func (s *BatchService) CreateBatch(ctx context.Context, inputFileID, endpoint string) (*core.BatchJob, error) {
	resp, err := s.client.CreateBatch(ctx, goopenai.CreateBatchRequest{
		InputFileID:      inputFileID,
		Endpoint:         goopenai.BatchEndpoint(endpoint),
		CompletionWindow: s.window,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}
	return toBatchJob(resp.Batch), nil
}

// RetrieveBatch returns the current snapshot of a job.
func (s *BatchService) RetrieveBatch(ctx context.Context, jobID string) (*core.BatchJob, error) {
	resp, err := s.client.RetrieveBatch(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve batch %s: %w", jobID, err)
	}
	return toBatchJob(resp.Batch), nil
}

// FileContent downloads the content of a file.
func (s *BatchService) FileContent(ctx context.Context, fileID string) ([]byte, error) {
	raw, err := s.client.GetFileContent(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer raw.Close()

	data, err := io.ReadAll(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return data, nil
}

func toBatchJob(b goopenai.Batch) *core.BatchJob {
	job := &core.BatchJob{
		ID:        b.ID,
		Status:    core.BatchStatus(b.Status),
		InputRef:  b.InputFileID,
		CreatedAt: time.Unix(int64(b.CreatedAt), 0).UTC(),
		Total:     b.RequestCounts.Total,
		Completed: b.RequestCounts.Completed,
		Failed:    b.RequestCounts.Failed,
	}
	if b.OutputFileID != nil {
		job.OutputRef = *b.OutputFileID
	}
	if b.ErrorFileID != nil {
		job.ErrorRef = *b.ErrorFileID
	}
	return job
}
