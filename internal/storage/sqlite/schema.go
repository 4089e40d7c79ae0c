// ABOUTME: SQLite database schema for the chunk vector index
// ABOUTME: Chunks with their embeddings, plus store settings recorded at creation
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Document chunks with embedding vectors
CREATE TABLE IF NOT EXISTS chunks (
    id TEXT PRIMARY KEY,
    document_id TEXT NOT NULL,
    document_name TEXT NOT NULL,
    chunk_index INTEGER NOT NULL,
    total_chunks INTEGER NOT NULL,
    content TEXT NOT NULL,
    embedding BLOB NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Store settings (distance metric, vector dimension)
CREATE TABLE IF NOT EXISTS store_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 2
