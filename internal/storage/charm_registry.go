// ABOUTME: Charm KV-backed document registry for records that follow the user across machines
// ABOUTME: Records are JSON under document:{id}; original bytes under file:{id}
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/docqa/internal/charm"
	"github.com/harper/docqa/internal/logging"
	"github.com/harper/docqa/internal/models"
)

// KVStore is the subset of the charm client the registry needs
type KVStore interface {
	Set(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	SetJSON(key string, value any) error
	GetJSON(key string, dest any) error
	ListKeys(prefix string) ([]string, error)
	Sync() error
}

// CharmRegistry stores document records in charm KV
type CharmRegistry struct {
	kv KVStore
}

// NewCharmRegistry creates a registry over a charm client or any KVStore
func NewCharmRegistry(kv KVStore) *CharmRegistry {
	return &CharmRegistry{kv: kv}
}

// Save stores the original bytes and the record
func (r *CharmRegistry) Save(_ context.Context, doc models.Document, raw []byte) error {
	if !validID(doc.ID) {
		return fmt.Errorf("invalid document id %q", doc.ID)
	}
	if err := r.kv.Set(charm.FileKey(doc.ID), raw); err != nil {
		return fmt.Errorf("failed to store document file: %w", err)
	}
	if err := r.kv.SetJSON(charm.DocumentKey(doc.ID), doc); err != nil {
		return fmt.Errorf("failed to store document record: %w", err)
	}
	return nil
}

// List returns every readable record, newest first
func (r *CharmRegistry) List(ctx context.Context) ([]models.Document, error) {
	keys, err := r.kv.ListKeys(charm.DocumentPrefix)
	if err != nil {
		return nil, err
	}

	docs := make([]models.Document, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var doc models.Document
		if err := r.kv.GetJSON(key, &doc); err != nil || doc.ID == "" {
			logging.Debug("skipping unreadable document record", "key", key, "error", err)
			continue
		}
		docs = append(docs, doc)
	}

	sortNewestFirst(docs)
	return docs, nil
}

// Get returns one record or models.ErrDocumentNotFound
func (r *CharmRegistry) Get(_ context.Context, id string) (*models.Document, error) {
	if !validID(id) {
		return nil, models.ErrDocumentNotFound
	}

	var doc models.Document
	err := r.kv.GetJSON(charm.DocumentKey(id), &doc)
	if errors.Is(err, charm.ErrNotFound) {
		return nil, models.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Raw returns the stored original bytes of a document
func (r *CharmRegistry) Raw(id string) ([]byte, error) {
	data, err := r.kv.Get(charm.FileKey(id))
	if errors.Is(err, charm.ErrNotFound) {
		return nil, models.ErrDocumentNotFound
	}
	return data, err
}

// Delete removes the record and original bytes, reporting whether either existed
func (r *CharmRegistry) Delete(_ context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}

	deleted := false
	for _, key := range []string{charm.FileKey(id), charm.DocumentKey(id)} {
		exists, err := r.has(key)
		if err != nil {
			return deleted, err
		}
		if !exists {
			continue
		}
		if err := r.kv.Delete(key); err != nil {
			return deleted, err
		}
		deleted = true
	}
	return deleted, nil
}

// Sync pushes and pulls registry changes with the charm server
func (r *CharmRegistry) Sync() error {
	return r.kv.Sync()
}

func (r *CharmRegistry) has(key string) (bool, error) {
	keys, err := r.kv.ListKeys(key)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k == key {
			return true, nil
		}
	}
	return false, nil
}
