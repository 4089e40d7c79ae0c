// ABOUTME: RetrievalEngine embeds a question and ranks stored chunks by similarity
// ABOUTME: Converts store distances into scores in [0,1] for citation
package core

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/harper/docqa/internal/logging"
	"github.com/harper/docqa/internal/models"
)

// DefaultTopK is used when neither the caller nor the configuration sets a result count
const DefaultTopK = 5

// RetrievalEngine answers similarity searches over the vector store
type RetrievalEngine struct {
	embedder Embedder
	store    VectorStore
	topK     int
}

// NewRetrievalEngine creates a RetrievalEngine; topK <= 0 falls back to DefaultTopK
func NewRetrievalEngine(embedder Embedder, store VectorStore, topK int) *RetrievalEngine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RetrievalEngine{embedder: embedder, store: store, topK: topK}
}

// Search returns up to topK chunks most similar to query, best first.
// An empty documentIDs searches every document. An empty store short-circuits
// without calling the embedding provider.
func (r *RetrievalEngine) Search(ctx context.Context, query string, topK int, documentIDs []string) ([]models.SourceChunk, error) {
	if topK <= 0 {
		topK = r.topK
	}

	count, err := r.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}
	if count == 0 {
		return []models.SourceChunk{}, nil
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding provider returned %d vectors for 1 query", len(vectors))
	}

	matches, err := r.store.Query(ctx, vectors[0], topK, models.ChunkFilter{DocumentIDs: documentIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to query vector store: %w", err)
	}

	metric := r.store.Metric()
	sources := make([]models.SourceChunk, len(matches))
	for i, m := range matches {
		sources[i] = models.SourceChunk{
			DocumentID:   m.DocumentID,
			DocumentName: m.DocumentName,
			ChunkIndex:   m.ChunkIndex,
			Content:      m.Content,
			Score:        ScoreFromDistance(m.Distance, metric),
		}
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Score > sources[j].Score
	})

	logging.Debug("retrieved chunks", "results", len(sources), "top_k", topK, "filtered", len(documentIDs) > 0)
	return sources, nil
}

// ScoreFromDistance maps a distance to a similarity in [0,1] rounded to 4 decimals.
// Cosine uses 1-d; L2 uses 1/(1+d).
func ScoreFromDistance(distance float64, metric Metric) float64 {
	var score float64
	switch metric {
	case MetricL2:
		score = 1 / (1 + math.Max(0, distance))
	default:
		score = 1 - distance
	}
	score = math.Max(0, math.Min(1, score))
	return math.Round(score*10000) / 10000
}
