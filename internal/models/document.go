// ABOUTME: Document represents one ingested file in the document registry
// ABOUTME: Serialized as a JSON record keyed by the deterministic document ID
package models

import "time"

// Document is the registry record for an ingested file
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	ChunkCount int       `json:"chunk_count"`
	UploadedAt time.Time `json:"uploaded_at"`
	FileSize   int64     `json:"file_size"`
}
