// ABOUTME: Document registry backends shared helpers
// ABOUTME: ID validation and newest-first ordering used by the file and charm registries
package storage

import (
	"sort"

	"github.com/harper/docqa/internal/models"
)

// validID reports whether id can only name a document and never a path or pattern
func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_') {
			return false
		}
	}
	return true
}

// sortNewestFirst orders documents by upload time descending, ties by ID
func sortNewestFirst(docs []models.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
}
