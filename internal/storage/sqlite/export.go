// ABOUTME: Export of the chunk index for inspection and backup
// ABOUTME: Supports YAML, Markdown, and JSON (with vectors) export formats
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ExportData represents the complete exportable index
type ExportData struct {
	Version    string           `yaml:"version" json:"version"`
	ExportedAt string           `yaml:"exported_at" json:"exported_at"`
	Tool       string           `yaml:"tool" json:"tool"`
	Metric     string           `yaml:"metric" json:"metric"`
	Dimension  int              `yaml:"dimension" json:"dimension"`
	Documents  []ExportDocument `yaml:"documents" json:"documents"`
}

// ExportDocument groups the chunks of one document
type ExportDocument struct {
	DocumentID   string        `yaml:"document_id" json:"document_id"`
	DocumentName string        `yaml:"document_name" json:"document_name"`
	Chunks       []ExportChunk `yaml:"chunks" json:"chunks"`
}

// ExportChunk represents a stored chunk for export; Vector is only filled for JSON
type ExportChunk struct {
	ID         string    `yaml:"id" json:"id"`
	ChunkIndex int       `yaml:"chunk_index" json:"chunk_index"`
	Content    string    `yaml:"content" json:"content"`
	Vector     []float64 `yaml:"-" json:"vector,omitempty"`
}

// Export reads every chunk grouped by document, in chunk order
func (s *VectorStore) Export(ctx context.Context, withVectors bool) (*ExportData, error) {
	dim, err := s.Dimension(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read dimension: %w", err)
	}

	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "docqa",
		Metric:     string(s.metric),
		Dimension:  dim,
		Documents:  []ExportDocument{},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, document_name, chunk_index, content, embedding
		FROM chunks
		ORDER BY document_id, chunk_index
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			chunk        ExportChunk
			documentID   string
			documentName string
			blob         []byte
		)
		if err := rows.Scan(&chunk.ID, &documentID, &documentName, &chunk.ChunkIndex, &chunk.Content, &blob); err != nil {
			return nil, err
		}
		if withVectors {
			chunk.Vector = blobToVector(blob)
		}

		n := len(data.Documents)
		if n == 0 || data.Documents[n-1].DocumentID != documentID {
			data.Documents = append(data.Documents, ExportDocument{DocumentID: documentID, DocumentName: documentName})
			n++
		}
		data.Documents[n-1].Chunks = append(data.Documents[n-1].Chunks, chunk)
	}

	return data, rows.Err()
}

// ExportToYAML exports the index to a YAML file
func (s *VectorStore) ExportToYAML(ctx context.Context, outputPath string) error {
	data, err := s.Export(ctx, false)
	if err != nil {
		return err
	}

	return writeFile(outputPath, func(w io.Writer) error {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return encoder.Close()
	})
}

// ExportToMarkdown exports the index to a Markdown file
func (s *VectorStore) ExportToMarkdown(ctx context.Context, outputPath string) error {
	data, err := s.Export(ctx, false)
	if err != nil {
		return err
	}

	return writeFile(outputPath, func(file io.Writer) error {
		_, _ = fmt.Fprintf(file, "# Document Index Export - %s\n\n", time.Now().Format("2006-01-02"))
		_, _ = fmt.Fprintf(file, "Generated: %s\n\n", data.ExportedAt)
		_, _ = fmt.Fprintf(file, "- **Metric:** %s\n- **Dimension:** %d\n- **Documents:** %d\n\n", data.Metric, data.Dimension, len(data.Documents))

		for _, doc := range data.Documents {
			_, _ = fmt.Fprintf(file, "## %s\n\n", doc.DocumentName)
			_, _ = fmt.Fprintf(file, "*ID: %s, %d chunks*\n\n", doc.DocumentID, len(doc.Chunks))
			for _, chunk := range doc.Chunks {
				_, _ = fmt.Fprintf(file, "### Chunk %d\n\n%s\n\n", chunk.ChunkIndex, chunk.Content)
			}
			_, _ = fmt.Fprintln(file, "---")
			_, _ = fmt.Fprintln(file)
		}
		return nil
	})
}

// ExportToJSON exports the index including embedding vectors to a JSON file
func (s *VectorStore) ExportToJSON(ctx context.Context, outputPath string) error {
	data, err := s.Export(ctx, true)
	if err != nil {
		return err
	}

	return writeFile(outputPath, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	})
}

func writeFile(outputPath string, write func(io.Writer) error) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
