package batch

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexcorpus/ai/mock"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage/badger"
	"github.com/poiesic/lexcorpus/storage/jsonl"
)

func newTestManager(t *testing.T, service *mock.MockBatchService, opts ...Option) *Manager {
	t.Helper()
	_, ledger, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	opts = append([]Option{WithLedger(ledger), WithPollInterval(5 * time.Millisecond)}, opts...)
	return NewManager(service, opts...)
}

func TestManager_Submit(t *testing.T) {
	ctx := context.Background()
	service := mock.NewMockBatchService()
	m := newTestManager(t, service)

	reqs := BuildClassificationRequests(testDocs(), "m", "/v1/chat/completions", 0)
	job, err := m.Submit(ctx, reqs)
	require.NoError(t, err)
	assert.Equal(t, core.BatchValidating, job.Status)
	assert.Equal(t, 1, service.CreateCount())

	content, name, ok := service.Upload(job.InputRef)
	require.True(t, ok)
	assert.Regexp(t, `^batch-[0-9a-f-]{36}\.jsonl$`, name)
	decoded, err := DecodeRequests(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, reqs, decoded)

	prev, err := m.PreviousSubmission(ctx, reqs)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, job.ID, prev.JobID)
	assert.Equal(t, 2, prev.Requests)
	assert.False(t, prev.SubmittedAt.IsZero())

	// Submitting again is allowed and creates a second job.
	again, err := m.Submit(ctx, reqs)
	require.NoError(t, err)
	assert.NotEqual(t, job.ID, again.ID)
	assert.Equal(t, 2, service.CreateCount())
}

func TestManager_PreviousSubmission_None(t *testing.T) {
	m := newTestManager(t, mock.NewMockBatchService())
	prev, err := m.PreviousSubmission(context.Background(), []Request{{CustomID: "x"}})
	require.NoError(t, err)
	assert.Nil(t, prev)

	bare := NewManager(mock.NewMockBatchService())
	prev, err = bare.PreviousSubmission(context.Background(), []Request{{CustomID: "x"}})
	require.NoError(t, err)
	assert.Nil(t, prev)
}

func TestManager_SubmitErrors(t *testing.T) {
	ctx := context.Background()
	service := mock.NewMockBatchService()
	m := newTestManager(t, service)

	_, err := m.Submit(ctx, nil)
	assert.ErrorIs(t, err, ErrNoRequests)

	service.UploadFunc = func(context.Context, string, []byte) error {
		return errors.New("upload refused")
	}
	_, err = m.Submit(ctx, []Request{{CustomID: "a"}})
	assert.ErrorContains(t, err, "upload refused")
	assert.Equal(t, 0, service.CreateCount())
}

func TestManager_WaitAndFetch(t *testing.T) {
	ctx := context.Background()
	service := mock.NewMockBatchService()
	m := newTestManager(t, service)

	job, err := m.Submit(ctx, []Request{{CustomID: "doc-1"}, {CustomID: "doc-3"}})
	require.NoError(t, err)

	_, _, err = m.FetchResults(ctx, job.ID)
	assert.ErrorIs(t, err, ErrNotFinished)

	service.SetStatus(job.ID, core.BatchInProgress)
	go func() {
		time.Sleep(20 * time.Millisecond)
		service.Complete(job.ID, []byte(outputFile), []byte(`{"custom_id":"doc-3","error":{"message":"boom"}}`+"\n"))
	}()

	done, err := m.Wait(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.BatchCompleted, done.Status)

	errs, err := m.FetchErrors(ctx, job.ID)
	require.NoError(t, err)
	assert.Contains(t, string(errs), "boom")

	records, stats, err := m.FetchResults(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, 2, stats.Failed)
}

func TestManager_WaitFailedJob(t *testing.T) {
	ctx := context.Background()
	service := mock.NewMockBatchService()
	m := newTestManager(t, service)

	job, err := m.Submit(ctx, []Request{{CustomID: "a"}})
	require.NoError(t, err)
	service.SetStatus(job.ID, core.BatchExpired)

	got, err := m.Wait(ctx, job.ID)
	assert.ErrorIs(t, err, ErrJobFailed)
	require.NotNil(t, got)
	assert.Equal(t, core.BatchExpired, got.Status)

	_, _, err = m.FetchResults(ctx, job.ID)
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestManager_WaitCanceled(t *testing.T) {
	service := mock.NewMockBatchService()
	m := newTestManager(t, service)

	job, err := m.Submit(context.Background(), []Request{{CustomID: "a"}})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = m.Wait(ctx, job.ID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManager_FetchErrors_None(t *testing.T) {
	ctx := context.Background()
	service := mock.NewMockBatchService()
	m := newTestManager(t, service)

	job, err := m.Submit(ctx, []Request{{CustomID: "a"}})
	require.NoError(t, err)
	service.Complete(job.ID, []byte(""), nil)

	errs, err := m.FetchErrors(ctx, job.ID)
	require.NoError(t, err)
	assert.Nil(t, errs)
}

func TestIngest_SkipsKnownIDs(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "classified.jsonl")
	log, err := jsonl.OpenRecordLog(path)
	require.NoError(t, err)
	defer log.Close()

	require.NoError(t, log.Append(ctx, core.NewRecord("doc-1", map[string]any{"risco": 1})))

	records, _ := ParseResults([]byte(outputFile))
	n, err := Ingest(ctx, log, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = Ingest(ctx, log, records)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	ids, err := log.ProcessedIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}
