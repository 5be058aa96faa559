package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/ai/mock"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage/jsonl"
)

func testConfig() *Config {
	config := DefaultConfig()
	config.RetryDelay = 0
	return config
}

func openLog(t *testing.T) (*jsonl.RecordLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out", "classified.jsonl")
	log, err := jsonl.OpenRecordLog(path)
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log, path
}

func readRecords(t *testing.T, path string) []*core.Record {
	t.Helper()
	var records []*core.Record
	_, err := jsonl.ReadRecordFile(context.Background(), path, func(rec *core.Record) error {
		records = append(records, rec)
		return nil
	})
	require.NoError(t, err)
	return records
}

func items(ids ...string) []Item {
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, Item{ID: id, Payload: "texto do documento " + id})
	}
	return out
}

func newClassifyRunner(t *testing.T, log *jsonl.RecordLog, classifier *mock.MockClassifier, config *Config, opts ...Option) *Runner {
	t.Helper()
	r, err := NewRunner(log, NewClassificationProcessor(classifier), config, nil, opts...)
	require.NoError(t, err)
	return r
}

func TestRun_ProcessesAllAndResumes(t *testing.T) {
	ctx := context.Background()
	log, path := openLog(t)
	classifier := mock.NewMockClassifier()
	r := newClassifyRunner(t, log, classifier, testConfig())

	summary, err := r.Run(ctx, items("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 3, classifier.CallCount())

	records := readRecords(t, path)
	require.Len(t, records, 3)
	for _, rec := range records {
		assert.Equal(t, core.StatusOK, rec.Status)
	}

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	classifier.Reset()
	summary, err = r.Run(ctx, items("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, 0, classifier.CallCount(), "completed items must not be called again")
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 0, summary.Processed)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "a run with nothing to do must leave the log untouched")
}

func TestRun_RetriesTransientFailure(t *testing.T) {
	log, path := openLog(t)
	classifier := mock.NewMockClassifier()

	var mu sync.Mutex
	failures := 0
	classifier.ClassifyFunc = func(ctx context.Context, id, text string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if id == "b" && failures < 2 {
			failures++
			return "", errors.New("503 service unavailable")
		}
		return mock.DefaultReply(id), nil
	}

	r := newClassifyRunner(t, log, classifier, testConfig())
	summary, err := r.Run(context.Background(), items("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Retries)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 4, classifier.CallCount())

	records := readRecords(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[1].ID)
	assert.Equal(t, core.StatusOK, records[1].Status)
}

func TestRun_ParseErrorIsRecordedNotRetried(t *testing.T) {
	log, path := openLog(t)
	classifier := mock.NewMockClassifier()
	classifier.ClassifyFunc = func(ctx context.Context, id, text string) (string, error) {
		return "desculpe, não consigo", nil
	}

	r := newClassifyRunner(t, log, classifier, testConfig())
	summary, err := r.Run(context.Background(), items("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, classifier.CallCount())
	assert.Equal(t, 1, summary.ParseErrors)

	records := readRecords(t, path)
	require.Len(t, records, 1)
	assert.Equal(t, core.StatusParseError, records[0].Status)
	assert.Equal(t, "desculpe, não consigo", records[0].String(core.FieldRawResponse))

	// parse_error records count as done
	classifier.Reset()
	_, err = r.Run(context.Background(), items("x"))
	require.NoError(t, err)
	assert.Equal(t, 0, classifier.CallCount())
}

func TestRun_RejectedRequestIsNotRetried(t *testing.T) {
	log, path := openLog(t)
	classifier := mock.NewMockClassifier()
	classifier.ClassifyFunc = func(ctx context.Context, id, text string) (string, error) {
		return "", fmt.Errorf("%w (authentication): 401 incorrect api key", ai.ErrRejected)
	}

	r := newClassifyRunner(t, log, classifier, testConfig())
	summary, err := r.Run(context.Background(), items("a", "b"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrRejected)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 1, classifier.CallCount())
	assert.Equal(t, 0, summary.Retries)
	assert.Equal(t, 0, summary.Processed)
	assert.Empty(t, readRecords(t, path))
}

func TestRun_RetryExhaustionStopsAndResumes(t *testing.T) {
	ctx := context.Background()
	log, path := openLog(t)
	classifier := mock.NewMockClassifier()
	classifier.ClassifyFunc = func(ctx context.Context, id, text string) (string, error) {
		if id == "b" {
			return "", errors.New("connection reset")
		}
		return mock.DefaultReply(id), nil
	}

	config := testConfig()
	config.MaxAttempts = 3
	r := newClassifyRunner(t, log, classifier, config)

	summary, err := r.Run(ctx, items("a", "b", "c"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Contains(t, err.Error(), "item b")
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 2, summary.Retries)

	records := readRecords(t, path)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].ID)

	classifier.Reset()
	summary, err = r.Run(ctx, items("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, classifier.Calls())
	assert.Equal(t, 1, summary.Skipped)
	assert.Len(t, readRecords(t, path), 3)
}

func TestRun_CanceledContext(t *testing.T) {
	log, path := openLog(t)
	classifier := mock.NewMockClassifier()
	r := newClassifyRunner(t, log, classifier, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	classifier.ClassifyFunc = func(_ context.Context, id, text string) (string, error) {
		if id == "b" {
			cancel()
			return "", context.Canceled
		}
		return mock.DefaultReply(id), nil
	}

	summary, err := r.Run(ctx, items("a", "b", "c"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Processed)
	assert.Len(t, readRecords(t, path), 1)
}

func TestRun_DuplicateInputIDs(t *testing.T) {
	log, path := openLog(t)
	classifier := mock.NewMockClassifier()
	r := newClassifyRunner(t, log, classifier, testConfig())

	summary, err := r.Run(context.Background(), items("a", "a", "b"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 2, summary.Pending())
	assert.Equal(t, 2, classifier.CallCount())
	assert.Len(t, readRecords(t, path), 2)
}

func TestRun_ForcesItemIdentity(t *testing.T) {
	log, path := openLog(t)
	proc := ProcessorFunc(func(ctx context.Context, item Item) (*core.Record, error) {
		return core.NewRecord("something-else", map[string]any{"resumo": "x"}), nil
	})
	r, err := NewRunner(log, proc, testConfig(), nil)
	require.NoError(t, err)

	_, err = r.Run(context.Background(), items("doc-1"))
	require.NoError(t, err)

	records := readRecords(t, path)
	require.Len(t, records, 1)
	assert.Equal(t, "doc-1", records[0].ID)
}

func TestRun_NilRecordIsAnError(t *testing.T) {
	log, _ := openLog(t)
	proc := ProcessorFunc(func(ctx context.Context, item Item) (*core.Record, error) {
		return nil, nil
	})
	r, err := NewRunner(log, proc, testConfig(), nil)
	require.NoError(t, err)

	_, err = r.Run(context.Background(), items("a"))
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestRun_TruncatesPayload(t *testing.T) {
	log, _ := openLog(t)
	classifier := mock.NewMockClassifier()

	var got string
	classifier.ClassifyFunc = func(ctx context.Context, id, text string) (string, error) {
		got = text
		return mock.DefaultReply(id), nil
	}

	config := testConfig()
	config.MaxChars = 5
	r := newClassifyRunner(t, log, classifier, config)

	_, err := r.Run(context.Background(), []Item{{ID: "a", Payload: "ação civil pública"}})
	require.NoError(t, err)
	assert.Equal(t, "ação ", got)
}

func TestRun_Pooled(t *testing.T) {
	log, path := openLog(t)
	classifier := mock.NewMockClassifier()

	var ids []string
	for i := range 50 {
		ids = append(ids, fmt.Sprintf("doc-%02d", i))
	}

	config := testConfig()
	config.Concurrency = 8
	r := newClassifyRunner(t, log, classifier, config)

	summary, err := r.Run(context.Background(), items(ids...))
	require.NoError(t, err)
	assert.Equal(t, 50, summary.Processed)
	assert.Equal(t, 50, classifier.CallCount())

	records := readRecords(t, path)
	require.Len(t, records, 50)
	seen := make(map[string]bool)
	for _, rec := range records {
		assert.False(t, seen[rec.ID], "id %s committed twice", rec.ID)
		seen[rec.ID] = true
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 50, strings.Count(string(data), "\n"))
}

func TestRun_PooledStopsOnFailure(t *testing.T) {
	log, _ := openLog(t)
	classifier := mock.NewMockClassifier()
	classifier.ClassifyFunc = func(ctx context.Context, id, text string) (string, error) {
		if id == "doc-03" {
			return "", Permanent(errors.New("invalid api key"))
		}
		return mock.DefaultReply(id), nil
	}

	var ids []string
	for i := range 20 {
		ids = append(ids, fmt.Sprintf("doc-%02d", i))
	}

	config := testConfig()
	config.Concurrency = 4
	r := newClassifyRunner(t, log, classifier, config)

	summary, err := r.Run(context.Background(), items(ids...))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
	assert.Less(t, summary.Processed, 20)
}

type countingObserver struct {
	mu        sync.Mutex
	skipped   int
	retried   int
	committed map[core.RecordStatus]int
	finished  *Summary
}

func (o *countingObserver) ItemSkipped(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.skipped++
}

func (o *countingObserver) ItemRetried(string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.retried++
}

func (o *countingObserver) ItemCommitted(_ string, status core.RecordStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.committed == nil {
		o.committed = make(map[core.RecordStatus]int)
	}
	o.committed[status]++
}

func (o *countingObserver) RunFinished(_ string, s *Summary) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = s
}

func TestRun_Observer(t *testing.T) {
	log, _ := openLog(t)
	require.NoError(t, log.Append(context.Background(), core.NewRecord("done", nil)))

	classifier := mock.NewMockClassifier()
	calls := 0
	classifier.ClassifyFunc = func(ctx context.Context, id, text string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("timeout")
		}
		if id == "bad" {
			return "???", nil
		}
		return mock.DefaultReply(id), nil
	}

	observer := &countingObserver{}
	r := newClassifyRunner(t, log, classifier, testConfig(), WithObserver(observer), WithTask(TaskClassify))

	_, err := r.Run(context.Background(), items("done", "good", "bad"))
	require.NoError(t, err)
	assert.Equal(t, 1, observer.skipped)
	assert.Equal(t, 1, observer.retried)
	assert.Equal(t, 1, observer.committed[core.StatusOK])
	assert.Equal(t, 1, observer.committed[core.StatusParseError])
	require.NotNil(t, observer.finished)
	assert.Equal(t, 3, observer.finished.Total)
}

func TestRun_ProgressOutput(t *testing.T) {
	log, _ := openLog(t)
	var out strings.Builder
	r, err := NewRunner(log, NewClassificationProcessor(mock.NewMockClassifier()), testConfig(), &out, WithTask(TaskClassify))
	require.NoError(t, err)

	_, err = r.Run(context.Background(), items("a", "b"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Starting classify of 2 items (0 already done)")
	assert.Contains(t, out.String(), "Run complete. Processed 2 items")
}

func TestNewRunner_InvalidConfig(t *testing.T) {
	log, _ := openLog(t)
	proc := NewClassificationProcessor(mock.NewMockClassifier())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }},
		{"negative delay", func(c *Config) { c.RetryDelay = -1 }},
		{"negative max chars", func(c *Config) { c.MaxChars = -1 }},
		{"zero interval", func(c *Config) { c.ReportInterval = 0 }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig()
			tt.mutate(config)
			_, err := NewRunner(log, proc, config, nil)
			assert.Error(t, err)
		})
	}
}
