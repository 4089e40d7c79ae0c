// ABOUTME: Collaborator contracts consumed by the ingestion, retrieval and generation engines
// ABOUTME: Embedding provider, vector store, document registry, text extractor and chat model
package core

import (
	"context"

	"github.com/harper/docqa/internal/models"
)

// Embedder maps texts to vectors in one batched, order-preserving call
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Metric names the distance function a vector store ranks by
type Metric string

const (
	MetricCosine Metric = "cosine"
	MetricL2     Metric = "l2"
)

// VectorStore persists chunk vectors and answers nearest-neighbour queries
type VectorStore interface {
	Upsert(ctx context.Context, records []models.ChunkRecord) error
	Query(ctx context.Context, vector []float64, k int, filter models.ChunkFilter) ([]models.QueryMatch, error)
	GetIDs(ctx context.Context, filter models.ChunkFilter) ([]string, error)
	Delete(ctx context.Context, ids []string) error
	Count(ctx context.Context) (int, error)
	Metric() Metric
}

// Registry persists document records and original file bytes independently of the vector store
type Registry interface {
	Save(ctx context.Context, doc models.Document, raw []byte) error
	List(ctx context.Context) ([]models.Document, error)
	Get(ctx context.Context, id string) (*models.Document, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// TextExtractor converts raw document bytes into plain text
type TextExtractor interface {
	Extract(data []byte, filename string) (string, error)
}

// TextChunker splits extracted text into ordered segments
type TextChunker interface {
	Chunk(text string) []string
}

// GenerateOptions holds sampling parameters for the chat model
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// DeltaStream yields incremental text deltas. Recv returns io.EOF when the stream ends.
type DeltaStream interface {
	Recv() (string, error)
	Close() error
}

// ChatModel generates answers from an ordered message list
type ChatModel interface {
	Complete(ctx context.Context, messages []models.ChatMessage, opts GenerateOptions) (string, error)
	Stream(ctx context.Context, messages []models.ChatMessage, opts GenerateOptions) (DeltaStream, error)
}
