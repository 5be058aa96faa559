package search

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/lexcorpus/ai/mock"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage/badger"
	"github.com/poiesic/lexcorpus/storage/jsonl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T) *badger.ChunkIndex {
	t.Helper()
	index, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		index.Close()
		backend.Close()
	})
	return index
}

func providerWithQueryVector(vec []float32) *mock.MockProvider {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vec, nil
	}
	return mock.NewMockProviderWithServices(mock.NewMockClassifier(), embedder, mock.NewMockBatchService()).(*mock.MockProvider)
}

func TestNewSearcher(t *testing.T) {
	index := newIndex(t)
	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(index, provider)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(index, provider, WithLogger(nil), WithMinSimilarity(0.5))
		require.NoError(t, err)
		assert.Equal(t, slog.Default(), searcher.logger)
		assert.Equal(t, float32(0.5), searcher.minSimilarity)
	})

	t.Run("nil chunk index", func(t *testing.T) {
		_, err := NewSearcher(nil, provider)
		assert.Equal(t, ErrChunkIndexRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(index, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestFindSimilar_EmptyIndex(t *testing.T) {
	searcher, err := NewSearcher(newIndex(t), mock.NewMockProvider())
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "prescrição intercorrente", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = searcher.FindSimilar(context.Background(), "   ", 10)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestFindSimilar_RanksAndBoostsVerbatim(t *testing.T) {
	ctx := context.Background()
	index := newIndex(t)

	require.NoError(t, index.PutRows(ctx,
		&core.EmbeddingRow{DocID: "a", ChunkIndex: 0, Content: "Trata-se de recurso sobre dano moral.", Embedding: []float32{0.8, 0.2, 0.0}},
		&core.EmbeddingRow{DocID: "b", ChunkIndex: 0, Content: "Contestação em ação de cobrança.", Embedding: []float32{0.9, 0.1, 0.0}},
		&core.EmbeddingRow{DocID: "c", ChunkIndex: 3, Content: "Receita de bolo.", Embedding: []float32{0.0, 0.1, 0.9}},
	))

	searcher, err := NewSearcher(index, providerWithQueryVector([]float32{0.9, 0.1, 0.0}))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	results, err := searcher.FindSimilarWithMonitor(ctx, "dano moral", 10, monitor)
	require.NoError(t, err)
	require.Len(t, results, 2, "the unrelated chunk falls below the similarity floor")

	assert.Equal(t, "a#0", results[0].Row.ID(), "verbatim boost moves the quoting chunk first")
	assert.True(t, results[0].Verbatim)
	assert.False(t, results[1].Verbatim)
	assert.Greater(t, results[0].Score, results[1].Score)

	assert.Equal(t, "dano moral", monitor.query)
	assert.Len(t, monitor.candidates, 2)
	assert.Equal(t, 1, monitor.verbatim)
	assert.Equal(t, 1, monitor.semantic)
	assert.Len(t, monitor.final, 2)
}

func TestFindSimilar_MaxHits(t *testing.T) {
	ctx := context.Background()
	index := newIndex(t)
	for i := range 5 {
		require.NoError(t, index.PutRows(ctx, &core.EmbeddingRow{
			DocID: "d", ChunkIndex: i, Content: "texto", Embedding: []float32{1, float32(i) / 10},
		}))
	}

	searcher, err := NewSearcher(index, providerWithQueryVector([]float32{1, 0}))
	require.NoError(t, err)

	results, err := searcher.FindSimilar(ctx, "qualquer", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "d#0", results[0].Row.ID())
}

func TestFindSimilar_EmbedderError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockClassifier(), embedder, mock.NewMockBatchService())

	searcher, err := NewSearcher(newIndex(t), provider)
	require.NoError(t, err)

	_, err = searcher.FindSimilar(context.Background(), "consulta", 5)
	assert.ErrorContains(t, err, "embedding service down")
}

func TestIndexLog(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "embeddings.jsonl")
	log, err := jsonl.OpenRecordLog(path)
	require.NoError(t, err)
	require.NoError(t, log.Append(ctx,
		core.NewRecord("d#0", map[string]any{"doc_id": "d", "chunk_index": 0, "content": "um", "embedding": []float32{1, 0}}),
		core.NewRecord("d#1", map[string]any{"doc_id": "d", "chunk_index": 1, "content": "dois", "embedding": []float32{0, 1}}),
		core.NewParseErrorRecord("e#0", "", errors.New("empty embedding")),
	))
	require.NoError(t, log.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{truncated\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	index := newIndex(t)
	stats, err := IndexLog(ctx, index, path, nil)
	require.NoError(t, err)
	assert.Equal(t, IndexStats{Indexed: 2, Skipped: 1, Invalid: 1}, stats)

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Re-indexing replaces entries instead of duplicating them.
	_, err = IndexLog(ctx, index, path, nil)
	require.NoError(t, err)
	count, err = index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestContainsAllQueryWords(t *testing.T) {
	tests := []struct {
		doc, query string
		want       bool
	}{
		{"Recurso sobre DANO MORAL.", "dano moral", true},
		{"Recurso sobre dano material", "dano moral", false},
		{"qualquer texto", "de da do", false},
		{"Art. 5º da Constituição", "art constituição", true},
	}
	for _, tt := range tests {
		t.Run(tt.query+"/"+strings.Fields(tt.doc)[0], func(t *testing.T) {
			assert.Equal(t, tt.want, containsAllQueryWords(tt.doc, tt.query))
		})
	}
}

type recordingMonitor struct {
	query      string
	candidates []string
	semantic   int
	verbatim   int
	final      []*core.SearchResult
}

func (m *recordingMonitor) Start(query string)                  { m.query = query }
func (m *recordingMonitor) AfterSemanticSearch(ids []string)    { m.candidates = ids }
func (m *recordingMonitor) SemanticHit(_ *core.SearchResult)    { m.semantic++ }
func (m *recordingMonitor) VerbatimHit(_ *core.SearchResult)    { m.verbatim++ }
func (m *recordingMonitor) Finish(results []*core.SearchResult) { m.final = results }
