// ABOUTME: IngestionPipeline turns an uploaded file into stored, embedded chunks and a registry record
// ABOUTME: Extract → identify → replace old chunks → chunk → embed → upsert → save
package core

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/docqa/internal/logging"
	"github.com/harper/docqa/internal/models"
)

const maxStemLength = 20

// IngestionPipeline coordinates extraction, chunking, embedding and storage of documents
type IngestionPipeline struct {
	extractor TextExtractor
	chunker   TextChunker
	embedder  Embedder
	store     VectorStore
	registry  Registry
	locks     *keyedMutex
	now       func() time.Time
}

// NewIngestionPipeline creates a pipeline over the given collaborators
func NewIngestionPipeline(extractor TextExtractor, chunker TextChunker, embedder Embedder, store VectorStore, registry Registry) *IngestionPipeline {
	return &IngestionPipeline{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		registry:  registry,
		locks:     newKeyedMutex(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Ingest extracts, chunks, embeds and stores a document, replacing any previous
// version with the same ID. Store and registry writes are not transactional:
// if the registry save fails the new chunks stay in the store.
func (p *IngestionPipeline) Ingest(ctx context.Context, data []byte, filename string, fileSize int64) (*models.Document, error) {
	start := time.Now()

	text, err := p.extractor.Extract(data, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, models.ErrEmptyContent
	}

	docID := DocumentID(filename, text)
	unlock := p.locks.Lock(docID)
	defer unlock()

	existing, err := p.store.GetIDs(ctx, models.ForDocument(docID))
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing chunks: %w", err)
	}
	if len(existing) > 0 {
		if err := p.store.Delete(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to delete existing chunks: %w", err)
		}
		logging.Debug("replaced previous version", "document_id", docID, "chunks", len(existing))
	}

	chunks := p.chunker.Chunk(text)
	if len(chunks) == 0 {
		return nil, models.ErrChunkingFailed
	}

	embeddings, err := p.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d chunks", len(embeddings), len(chunks))
	}

	records := make([]models.ChunkRecord, len(chunks))
	for i, content := range chunks {
		records[i] = models.ChunkRecord{
			ID:           models.ChunkID(docID, i),
			DocumentID:   docID,
			DocumentName: filename,
			ChunkIndex:   i,
			TotalChunks:  len(chunks),
			Content:      content,
			Embedding:    embeddings[i],
		}
	}
	if err := p.store.Upsert(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	doc := models.Document{
		ID:         docID,
		Filename:   filename,
		FileType:   strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."),
		ChunkCount: len(chunks),
		UploadedAt: p.now(),
		FileSize:   fileSize,
	}
	if err := p.registry.Save(ctx, doc, data); err != nil {
		logging.Warn("chunks stored but registry save failed", "document_id", docID, "error", err)
		return nil, fmt.Errorf("failed to save document record: %w", err)
	}

	logging.Info("ingested document",
		"document_id", docID,
		"filename", filename,
		"chunks", len(chunks),
		"duration", time.Since(start).Round(time.Millisecond))

	return &doc, nil
}

// List returns all registered documents, newest first
func (p *IngestionPipeline) List(ctx context.Context) ([]models.Document, error) {
	docs, err := p.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// Get returns one document record or models.ErrDocumentNotFound
func (p *IngestionPipeline) Get(ctx context.Context, id string) (*models.Document, error) {
	doc, err := p.registry.Get(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return doc, nil
}

// Delete removes a document's chunks and registry artifacts.
// It reports whether anything existed to remove.
func (p *IngestionPipeline) Delete(ctx context.Context, id string) (bool, error) {
	unlock := p.locks.Lock(id)
	defer unlock()

	ids, err := p.store.GetIDs(ctx, models.ForDocument(id))
	if err != nil {
		return false, fmt.Errorf("failed to look up chunks: %w", err)
	}
	if len(ids) > 0 {
		if err := p.store.Delete(ctx, ids); err != nil {
			return false, fmt.Errorf("failed to delete chunks: %w", err)
		}
	}

	removed, err := p.registry.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete document record: %w", err)
	}

	deleted := removed || len(ids) > 0
	if deleted {
		logging.Info("deleted document", "document_id", id, "chunks", len(ids))
	}
	return deleted, nil
}

// DocumentID derives the deterministic document ID from the filename stem and extracted text:
// the sanitized stem cut to 20 characters, an underscore, then 8 hex digits of the text's MD5.
func DocumentID(filename, text string) string {
	sum := md5.Sum([]byte(text))
	stem := sanitizeStem(fileStem(filename))
	if len(stem) > maxStemLength {
		stem = stem[:maxStemLength]
	}
	return stem + "_" + hex.EncodeToString(sum[:])[:8]
}

// fileStem strips the final extension; names like ".txt" keep their leading dot
func fileStem(filename string) string {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	i := strings.LastIndex(name, ".")
	if i > 0 && i < len(name)-1 {
		return name[:i]
	}
	return name
}

// sanitizeStem replaces every character outside [A-Za-z0-9] with an underscore
func sanitizeStem(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
