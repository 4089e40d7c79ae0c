// ABOUTME: Chunk vector store on SQLite
// ABOUTME: Stores embeddings as BLOBs and answers nearest-neighbour queries by brute-force scan
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/harper/docqa/internal/core"
	"github.com/harper/docqa/internal/models"
)

const (
	metaMetric    = "metric"
	metaDimension = "dimension"
)

// VectorStore persists chunk records and ranks them by vector distance
type VectorStore struct {
	db     *DB
	metric core.Metric
}

// NewVectorStore opens the chunk index in db with the given metric.
// The metric is fixed when the store is first created; reopening with a different one fails.
func NewVectorStore(ctx context.Context, db *DB, metric core.Metric) (*VectorStore, error) {
	if metric != core.MetricCosine && metric != core.MetricL2 {
		return nil, fmt.Errorf("unsupported distance metric %q", metric)
	}

	_, err := db.ExecContext(ctx, `INSERT INTO store_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`,
		metaMetric, string(metric))
	if err != nil {
		return nil, fmt.Errorf("failed to record metric: %w", err)
	}

	var stored string
	if err := db.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = ?`, metaMetric).Scan(&stored); err != nil {
		return nil, fmt.Errorf("failed to read metric: %w", err)
	}
	if core.Metric(stored) != metric {
		return nil, fmt.Errorf("store was created with metric %q, not %q", stored, metric)
	}

	return &VectorStore{db: db, metric: metric}, nil
}

// Metric returns the distance metric used by Query
func (s *VectorStore) Metric() core.Metric {
	return s.metric
}

// Dimension returns the vector dimension fixed by the first insert, or 0 for a fresh store
func (s *VectorStore) Dimension(ctx context.Context) (int, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = ?`, metaDimension).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// Upsert inserts or replaces records in one transaction.
// All vectors must share the dimension of those already stored.
func (s *VectorStore) Upsert(ctx context.Context, records []models.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	dim, err := s.Dimension(ctx)
	if err != nil {
		return fmt.Errorf("failed to read dimension: %w", err)
	}
	if dim == 0 {
		dim = len(records[0].Embedding)
	}
	for _, r := range records {
		if len(r.Embedding) == 0 || len(r.Embedding) != dim {
			return fmt.Errorf("invalid embedding dimension for %s: expected %d, got %d", r.ID, dim, len(r.Embedding))
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO store_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`,
		metaDimension, strconv.Itoa(dim)); err != nil {
		return fmt.Errorf("failed to record dimension: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, document_name, chunk_index, total_chunks, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			document_name = excluded.document_name,
			chunk_index = excluded.chunk_index,
			total_chunks = excluded.total_chunks,
			content = excluded.content,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, r.DocumentID, r.DocumentName, r.ChunkIndex, r.TotalChunks,
			r.Content, vectorToBlob(r.Embedding), now); err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// Query returns the k records nearest to vector, closest first
func (s *VectorStore) Query(ctx context.Context, vector []float64, k int, filter models.ChunkFilter) ([]models.QueryMatch, error) {
	if k <= 0 {
		return []models.QueryMatch{}, nil
	}

	where, args := filterClause(filter)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, document_name, chunk_index, total_chunks, content, embedding
		FROM chunks`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []models.QueryMatch
	for rows.Next() {
		var (
			m    models.QueryMatch
			blob []byte
		)
		if err := rows.Scan(&m.ID, &m.DocumentID, &m.DocumentName, &m.ChunkIndex, &m.TotalChunks, &m.Content, &blob); err != nil {
			return nil, err
		}

		stored := blobToVector(blob)
		if len(stored) != len(vector) {
			return nil, fmt.Errorf("query dimension %d does not match stored dimension %d", len(vector), len(stored))
		}
		m.Distance = s.distance(vector, stored)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Sort by distance ascending, ties broken by id for stable output
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance == matches[j].Distance {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Distance < matches[j].Distance
	})

	// Limit results
	if len(matches) > k {
		matches = matches[:k]
	}
	if matches == nil {
		matches = []models.QueryMatch{}
	}

	return matches, nil
}

// GetIDs returns the ids of records matching filter
func (s *VectorStore) GetIDs(ctx context.Context, filter models.ChunkFilter) ([]string, error) {
	where, args := filterClause(filter)
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM chunks`+where+` ORDER BY document_id, chunk_index`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes records by id in one transaction
func (s *VectorStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM chunks WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("failed to delete chunk %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// Count returns the number of stored records
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

// DocumentCount returns the number of distinct documents with stored chunks
func (s *VectorStore) DocumentCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT document_id) FROM chunks`).Scan(&n)
	return n, err
}

func (s *VectorStore) distance(a, b []float64) float64 {
	if s.metric == core.MetricL2 {
		return L2Distance(a, b)
	}
	return 1 - CosineSimilarity(a, b)
}

// filterClause renders a document filter as a WHERE clause with placeholders
func filterClause(filter models.ChunkFilter) (string, []any) {
	switch len(filter.DocumentIDs) {
	case 0:
		return "", nil
	case 1:
		return " WHERE document_id = ?", []any{filter.DocumentIDs[0]}
	}

	args := make([]any, len(filter.DocumentIDs))
	for i, id := range filter.DocumentIDs {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")
	return " WHERE document_id IN (" + placeholders + ")", args
}

// vectorToBlob converts a float64 slice to binary blob
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob to float64 slice
func blobToVector(blob []byte) []float64 {
	count := len(blob) / 8
	vector := make([]float64, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(blob[i*8:])
		vector[i] = math.Float64frombits(bits)
	}
	return vector
}

// CosineSimilarity calculates cosine similarity between two vectors
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// L2Distance calculates the Euclidean distance between two vectors
func L2Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
