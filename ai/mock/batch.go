package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/poiesic/lexcorpus/core"
)

// MockBatchService is an in-memory test double for ai.BatchService.
// Jobs never advance on their own; tests drive them with SetStatus and Complete.
type MockBatchService struct {
	// UploadFunc is called by UploadBatchFile if set, before anything is stored.
	UploadFunc func(ctx context.Context, name string, content []byte) error

	// RetrieveFunc is called by RetrieveBatch if set, in place of the stored job.
	RetrieveFunc func(ctx context.Context, jobID string) (*core.BatchJob, error)

	mu      sync.Mutex
	files   map[string][]byte
	names   map[string]string
	jobs    map[string]*core.BatchJob
	nextID  int
	creates int
}

// NewMockBatchService creates an empty in-memory batch service.
func NewMockBatchService() *MockBatchService {
	return &MockBatchService{
		files: make(map[string][]byte),
		names: make(map[string]string),
		jobs:  make(map[string]*core.BatchJob),
	}
}

func (m *MockBatchService) newID(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

// UploadBatchFile stores the content and returns a new file id.
func (m *MockBatchService) UploadBatchFile(ctx context.Context, name string, content []byte) (string, error) {
	if m.UploadFunc != nil {
		if err := m.UploadFunc(ctx, name, content); err != nil {
			return "", err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.newID("file")
	m.files[id] = append([]byte(nil), content...)
	m.names[id] = name
	return id, nil
}

// CreateBatch creates a validating job over an uploaded file.
func (m *MockBatchService) CreateBatch(ctx context.Context, inputFileID, endpoint string) (*core.BatchJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[inputFileID]; !ok {
		return nil, fmt.Errorf("mock: unknown input file %s", inputFileID)
	}
	m.creates++
	job := &core.BatchJob{
		ID:        m.newID("batch"),
		Status:    core.BatchValidating,
		InputRef:  inputFileID,
		CreatedAt: time.Now().UTC(),
	}
	m.jobs[job.ID] = job
	snapshot := *job
	return &snapshot, nil
}

// RetrieveBatch returns a copy of the stored job.
func (m *MockBatchService) RetrieveBatch(ctx context.Context, jobID string) (*core.BatchJob, error) {
	if m.RetrieveFunc != nil {
		return m.RetrieveFunc(ctx, jobID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("mock: unknown batch %s", jobID)
	}
	snapshot := *job
	return &snapshot, nil
}

// FileContent returns a stored file.
func (m *MockBatchService) FileContent(ctx context.Context, fileID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[fileID]
	if !ok {
		return nil, fmt.Errorf("mock: unknown file %s", fileID)
	}
	return append([]byte(nil), data...), nil
}

// SetStatus moves a job to status without producing artifacts.
func (m *MockBatchService) SetStatus(jobID string, status core.BatchStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		job.Status = status
	}
}

// Complete finishes a job with the given output and error artifacts.
// A nil artifact leaves the corresponding reference empty.
func (m *MockBatchService) Complete(jobID string, output, errs []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return
	}
	job.Status = core.BatchCompleted
	if output != nil {
		job.OutputRef = m.newID("file")
		m.files[job.OutputRef] = output
	}
	if errs != nil {
		job.ErrorRef = m.newID("file")
		m.files[job.ErrorRef] = errs
	}
}

// Upload returns the content and name of an uploaded file.
func (m *MockBatchService) Upload(fileID string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[fileID]
	return data, m.names[fileID], ok
}

// CreateCount returns the number of jobs created.
func (m *MockBatchService) CreateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates
}
