// ABOUTME: In-memory test doubles for the engine collaborators
// ABOUTME: Deterministic embedder, brute-force vector store, map registry and scripted chat model
package core

import (
	"context"
	"errors"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/harper/docqa/internal/models"
)

// fakeEmbedder hashes letters into a fixed-size bag-of-characters vector
type fakeEmbedder struct {
	mu      sync.Mutex
	calls   int
	batches [][]string
	err     error
	short   bool
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.batches = append(f.batches, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = letterVector(text)
	}
	if f.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func letterVector(text string) []float64 {
	v := make([]float64, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}

// memoryStore is a brute-force cosine vector store
type memoryStore struct {
	mu        sync.Mutex
	records   map[string]models.ChunkRecord
	metric    Metric
	distances []float64
	upsertErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]models.ChunkRecord), metric: MetricCosine}
}

func (s *memoryStore) Upsert(_ context.Context, records []models.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return nil
}

func (s *memoryStore) Query(_ context.Context, vector []float64, k int, filter models.ChunkFilter) ([]models.QueryMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []models.QueryMatch
	for _, r := range s.records {
		if !matchesFilter(r.DocumentID, filter) {
			continue
		}
		matches = append(matches, models.QueryMatch{
			ID:           r.ID,
			DocumentID:   r.DocumentID,
			DocumentName: r.DocumentName,
			ChunkIndex:   r.ChunkIndex,
			TotalChunks:  r.TotalChunks,
			Content:      r.Content,
			Distance:     1 - cosine(vector, r.Embedding),
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance == matches[j].Distance {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	// scripted distances override computed ones, in returned order
	for i := range matches {
		if i < len(s.distances) {
			matches[i].Distance = s.distances[i]
		}
	}
	return matches, nil
}

func (s *memoryStore) GetIDs(_ context.Context, filter models.ChunkFilter) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, r := range s.records {
		if matchesFilter(r.DocumentID, filter) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *memoryStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.records, id)
	}
	return nil
}

func (s *memoryStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

func (s *memoryStore) Metric() Metric { return s.metric }

func (s *memoryStore) countFor(docID string) int {
	ids, _ := s.GetIDs(context.Background(), models.ForDocument(docID))
	return len(ids)
}

func matchesFilter(docID string, filter models.ChunkFilter) bool {
	if filter.IsEmpty() {
		return true
	}
	for _, id := range filter.DocumentIDs {
		if id == docID {
			return true
		}
	}
	return false
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// memoryRegistry keeps document records and raw bytes in maps
type memoryRegistry struct {
	mu      sync.Mutex
	docs    map[string]models.Document
	raw     map[string][]byte
	saveErr error
}

func newMemoryRegistry() *memoryRegistry {
	return &memoryRegistry{docs: make(map[string]models.Document), raw: make(map[string][]byte)}
}

func (r *memoryRegistry) Save(_ context.Context, doc models.Document, raw []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.docs[doc.ID] = doc
	r.raw[doc.ID] = raw
	return nil
}

func (r *memoryRegistry) List(_ context.Context) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := make([]models.Document, 0, len(r.docs))
	for _, d := range r.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].UploadedAt.After(docs[j].UploadedAt) })
	return docs, nil
}

func (r *memoryRegistry) Get(_ context.Context, id string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, models.ErrDocumentNotFound
	}
	return &d, nil
}

func (r *memoryRegistry) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.docs[id]
	delete(r.docs, id)
	delete(r.raw, id)
	return ok, nil
}

// plainExtractor treats every input as UTF-8 text
type plainExtractor struct{}

func (plainExtractor) Extract(data []byte, filename string) (string, error) {
	if !strings.HasSuffix(filename, ".txt") {
		return "", models.ErrUnsupportedFileType
	}
	return string(data), nil
}

// scriptedModel replays fixed deltas or errors
type scriptedModel struct {
	answer    string
	deltas    []string
	recvErr   error
	openErr   error

	lastMessages []models.ChatMessage
	lastOpts     GenerateOptions
	stream       *scriptedStream
}

func (m *scriptedModel) Complete(_ context.Context, messages []models.ChatMessage, opts GenerateOptions) (string, error) {
	m.lastMessages = messages
	m.lastOpts = opts
	if m.openErr != nil {
		return "", m.openErr
	}
	return m.answer, nil
}

func (m *scriptedModel) Stream(_ context.Context, messages []models.ChatMessage, opts GenerateOptions) (DeltaStream, error) {
	m.lastMessages = messages
	m.lastOpts = opts
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.stream = &scriptedStream{deltas: m.deltas, err: m.recvErr}
	return m.stream, nil
}

type scriptedStream struct {
	deltas []string
	pos    int
	err    error
	closed bool
}

func (s *scriptedStream) Recv() (string, error) {
	if s.pos < len(s.deltas) {
		d := s.deltas[s.pos]
		s.pos++
		return d, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

var errProvider = errors.New("provider unavailable")
