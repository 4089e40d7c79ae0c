// ABOUTME: Tests for similarity search and distance-to-score conversion
// ABOUTME: Verifies empty-store short-circuit, filtering, ordering and clamping
package core

import (
	"context"
	"testing"

	"github.com/harper/docqa/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T, store *memoryStore, docID string, contents ...string) {
	t.Helper()
	records := make([]models.ChunkRecord, len(contents))
	for i, c := range contents {
		records[i] = models.ChunkRecord{
			ID:           models.ChunkID(docID, i),
			DocumentID:   docID,
			DocumentName: docID + ".txt",
			ChunkIndex:   i,
			TotalChunks:  len(contents),
			Content:      c,
			Embedding:    letterVector(c),
		}
	}
	require.NoError(t, store.Upsert(context.Background(), records))
}

func TestSearch_EmptyStoreSkipsEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{}
	engine := NewRetrievalEngine(embedder, newMemoryStore(), 5)

	results, err := engine.Search(context.Background(), "anything", 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
	assert.Equal(t, 0, embedder.callCount())
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := newMemoryStore()
	seedStore(t, store, "doc", "zzzz", "abc abc", "xyz")

	engine := NewRetrievalEngine(embedder, store, 5)
	results, err := engine.Search(context.Background(), "abc", 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "abc abc", results[0].Content)
	assert.Equal(t, 1.0, results[0].Score)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.Equal(t, 1, embedder.callCount())
	assert.Equal(t, []string{"abc"}, embedder.batches[0])
}

func TestSearch_FilterByDocuments(t *testing.T) {
	store := newMemoryStore()
	seedStore(t, store, "alpha", "abc")
	seedStore(t, store, "beta", "abc")
	seedStore(t, store, "gamma", "abc")

	engine := NewRetrievalEngine(&fakeEmbedder{}, store, 5)

	one, err := engine.Search(context.Background(), "abc", 5, []string{"beta"})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "beta", one[0].DocumentID)

	two, err := engine.Search(context.Background(), "abc", 5, []string{"alpha", "gamma"})
	require.NoError(t, err)
	require.Len(t, two, 2)
	for _, r := range two {
		assert.Contains(t, []string{"alpha", "gamma"}, r.DocumentID)
	}

	all, err := engine.Search(context.Background(), "abc", 5, []string{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSearch_DefaultTopK(t *testing.T) {
	store := newMemoryStore()
	seedStore(t, store, "doc", "a", "b", "c", "d")

	engine := NewRetrievalEngine(&fakeEmbedder{}, store, 3)
	results, err := engine.Search(context.Background(), "a", 0, nil)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	assert.Equal(t, DefaultTopK, NewRetrievalEngine(&fakeEmbedder{}, store, 0).topK)
}

func TestSearch_ResortsByScore(t *testing.T) {
	store := newMemoryStore()
	seedStore(t, store, "doc", "a", "b", "c")
	// store hands back distances out of order
	store.distances = []float64{0.5, 0.1, 1.4}

	engine := NewRetrievalEngine(&fakeEmbedder{}, store, 5)
	results, err := engine.Search(context.Background(), "a", 3, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []float64{0.9, 0.5, 0}, []float64{results[0].Score, results[1].Score, results[2].Score})
}

func TestSearch_EmbeddingFailure(t *testing.T) {
	store := newMemoryStore()
	seedStore(t, store, "doc", "a")

	engine := NewRetrievalEngine(&fakeEmbedder{err: errProvider}, store, 5)
	_, err := engine.Search(context.Background(), "a", 5, nil)
	assert.ErrorIs(t, err, errProvider)
}

func TestScoreFromDistance(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		metric   Metric
		want     float64
	}{
		{"identical", 0, MetricCosine, 1},
		{"orthogonal", 1, MetricCosine, 0},
		{"opposite clamps", 2, MetricCosine, 0},
		{"negative rounding noise", -1e-9, MetricCosine, 1},
		{"rounded to four places", 0.123456, MetricCosine, 0.8765},
		{"l2 zero", 0, MetricL2, 1},
		{"l2 one", 1, MetricL2, 0.5},
		{"l2 three", 3, MetricL2, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreFromDistance(tt.distance, tt.metric))
		})
	}
}
