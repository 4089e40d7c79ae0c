// ABOUTME: Chunk records stored in the vector store and retrieval results
// ABOUTME: Defines ChunkRecord, QueryMatch, ChunkFilter and SourceChunk
package models

import "fmt"

// ChunkRecord is one stored text segment of a document with its embedding
type ChunkRecord struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"document_id"`
	DocumentName string    `json:"document_name"`
	ChunkIndex   int       `json:"chunk_index"`
	TotalChunks  int       `json:"total_chunks"`
	Content      string    `json:"content"`
	Embedding    []float64 `json:"embedding,omitempty"`
}

// ChunkID returns the store identifier for the chunk at index i of a document
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// QueryMatch is a nearest-neighbour hit returned by a vector store.
// Distance is measured with the store's configured metric.
type QueryMatch struct {
	ID           string
	DocumentID   string
	DocumentName string
	ChunkIndex   int
	TotalChunks  int
	Content      string
	Distance     float64
}

// ChunkFilter restricts store operations to a set of documents.
// An empty filter matches every chunk.
type ChunkFilter struct {
	DocumentIDs []string
}

// ForDocument builds a filter matching exactly one document
func ForDocument(documentID string) ChunkFilter {
	return ChunkFilter{DocumentIDs: []string{documentID}}
}

// IsEmpty reports whether the filter matches everything
func (f ChunkFilter) IsEmpty() bool {
	return len(f.DocumentIDs) == 0
}

// SourceChunk is a retrieval result handed to the prompt and back to callers for citation
type SourceChunk struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	ChunkIndex   int     `json:"chunk_index"`
	Content      string  `json:"content"`
	Score        float64 `json:"score"`
}
