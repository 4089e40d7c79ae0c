// ABOUTME: File-backed document registry in the upload directory
// ABOUTME: Stores {id}.json records and {id}_{filename} originals, written atomically
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/harper/docqa/internal/logging"
	"github.com/harper/docqa/internal/models"
)

// FileRegistry persists document records and original bytes as files in one directory
type FileRegistry struct {
	dir string
}

// NewFileRegistry creates the directory if needed and returns a registry rooted there
func NewFileRegistry(dir string) (*FileRegistry, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FileRegistry{dir: dir}, nil
}

// Dir returns the registry directory
func (r *FileRegistry) Dir() string {
	return r.dir
}

// Save writes the original bytes and then the JSON record, replacing any earlier version
func (r *FileRegistry) Save(ctx context.Context, doc models.Document, raw []byte) error {
	if !validID(doc.ID) {
		return fmt.Errorf("invalid document id %q", doc.ID)
	}

	previous, err := r.Get(ctx, doc.ID)
	if err != nil && !errors.Is(err, models.ErrDocumentNotFound) {
		logging.Debug("ignoring unreadable previous record", "document_id", doc.ID, "error", err)
	}

	if err := writeAtomic(r.rawPath(doc.ID, doc.Filename), raw); err != nil {
		return fmt.Errorf("failed to write document file: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := writeAtomic(r.recordPath(doc.ID), data); err != nil {
		return fmt.Errorf("failed to write document record: %w", err)
	}

	// same content under a new filename leaves the old original behind
	if previous != nil && r.rawPath(doc.ID, previous.Filename) != r.rawPath(doc.ID, doc.Filename) {
		_ = os.Remove(r.rawPath(doc.ID, previous.Filename))
	}

	return nil
}

// List returns every readable record, newest first. Unreadable records are skipped.
func (r *FileRegistry) List(ctx context.Context) ([]models.Document, error) {
	paths, err := filepath.Glob(filepath.Join(r.dir, "*.json"))
	if err != nil {
		return nil, err
	}

	docs := make([]models.Document, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := readRecord(path)
		if err != nil {
			logging.Debug("skipping unreadable document record", "path", path, "error", err)
			continue
		}
		docs = append(docs, *doc)
	}

	sortNewestFirst(docs)
	return docs, nil
}

// Get reads one record or returns models.ErrDocumentNotFound
func (r *FileRegistry) Get(_ context.Context, id string) (*models.Document, error) {
	if !validID(id) {
		return nil, models.ErrDocumentNotFound
	}

	doc, err := readRecord(r.recordPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, models.ErrDocumentNotFound
	}
	return doc, err
}

// Delete removes the record and original file, reporting whether either existed
func (r *FileRegistry) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}

	deleted := false

	var rawFiles []string
	if doc, err := readRecord(r.recordPath(id)); err == nil {
		rawFiles = []string{r.rawPath(id, doc.Filename)}
	} else {
		rawFiles, err = r.orphanedRawFiles(id)
		if err != nil {
			return false, err
		}
	}

	for _, path := range rawFiles {
		if err := os.Remove(path); err == nil {
			deleted = true
		} else if !errors.Is(err, os.ErrNotExist) {
			return deleted, fmt.Errorf("failed to delete document file: %w", err)
		}
	}

	if err := os.Remove(r.recordPath(id)); err == nil {
		deleted = true
	} else if !errors.Is(err, os.ErrNotExist) {
		return deleted, fmt.Errorf("failed to delete document record: %w", err)
	}

	return deleted, nil
}

// orphanedRawFiles finds {id}_* originals when the record is gone, ignoring
// files that belong to another document whose id extends this one
func (r *FileRegistry) orphanedRawFiles(id string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(r.dir, id+"_*"))
	if err != nil {
		return nil, err
	}

	records, err := filepath.Glob(filepath.Join(r.dir, id+"_*.json"))
	if err != nil {
		return nil, err
	}
	var others []string
	for _, rec := range records {
		others = append(others, strings.TrimSuffix(filepath.Base(rec), ".json"))
	}

	var files []string
	for _, path := range matches {
		name := filepath.Base(path)
		if strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".tmp") {
			continue
		}
		owned := true
		for _, other := range others {
			if strings.HasPrefix(name, other+"_") {
				owned = false
				break
			}
		}
		if owned {
			files = append(files, path)
		}
	}
	return files, nil
}

// RawPath returns where the original bytes of a document are stored
func (r *FileRegistry) RawPath(doc models.Document) string {
	return r.rawPath(doc.ID, doc.Filename)
}

func (r *FileRegistry) recordPath(id string) string {
	return filepath.Join(r.dir, id+".json")
}

func (r *FileRegistry) rawPath(id, filename string) string {
	return filepath.Join(r.dir, id+"_"+filepath.Base(filename))
}

func readRecord(path string) (*models.Document, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, err
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document record: %w", err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("document record %s has no id", filepath.Base(path))
	}
	return &doc, nil
}

// writeAtomic writes to a uniquely named temp file and renames it over path
func writeAtomic(path string, data []byte) error {
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
