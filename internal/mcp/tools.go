// ABOUTME: MCP tool definitions and registration for the docqa server
// ABOUTME: Declares JSON schemas for the six document tools and binds their handlers
package mcp

import (
	"github.com/harper/docqa/internal/app"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, a *app.App) *Handlers {
	handlers := NewHandlers(a)

	// 1. upload_document - ingest a PDF or TXT file
	server.AddTool(mcp.Tool{
		Name:        "upload_document",
		Description: "Ingest a .pdf or .txt document so it can be searched and asked about. Pass either a local file path, or a filename with plain-text content.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path of a .pdf or .txt file readable by the server",
				},
				"filename": map[string]interface{}{
					"type":        "string",
					"description": "Name to store inline content under (must end in .txt)",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Inline plain-text document content",
				},
			},
		},
	}, handlers.UploadDocument)

	// 2. list_documents - registry listing, newest first
	server.AddTool(mcp.Tool{
		Name:        "list_documents",
		Description: "List all ingested documents, newest first.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListDocuments)

	// 3. get_document - one registry record
	server.AddTool(mcp.Tool{
		Name:        "get_document",
		Description: "Get the metadata of one ingested document.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Document ID returned by upload_document or list_documents",
				},
			},
			Required: []string{"document_id"},
		},
	}, handlers.GetDocument)

	// 4. delete_document - remove chunks and registry record
	server.AddTool(mcp.Tool{
		Name:        "delete_document",
		Description: "Delete a document, its indexed chunks and its stored file.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Document ID to delete",
				},
			},
			Required: []string{"document_id"},
		},
	}, handlers.DeleteDocument)

	// 5. search_documents - similarity search without generation
	server.AddTool(mcp.Tool{
		Name:        "search_documents",
		Description: "Find the passages most similar to a query across ingested documents.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of passages to return (default: 5)",
					"default":     5,
				},
				"document_ids": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Restrict the search to these document IDs",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchDocuments)

	// 6. ask_documents - retrieval-augmented answer with sources
	server.AddTool(mcp.Tool{
		Name:        "ask_documents",
		Description: "Answer a question from the ingested documents, returning the answer and the passages it was based on.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Question to answer",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Number of passages to retrieve (default: 5)",
					"default":     5,
				},
				"document_ids": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Restrict retrieval to these document IDs",
				},
				"history": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"role":    map[string]interface{}{"type": "string", "enum": []string{"user", "assistant"}},
							"content": map[string]interface{}{"type": "string"},
						},
						"required": []string{"role", "content"},
					},
					"description": "Earlier conversation turns; only the last 6 are used",
				},
			},
			Required: []string{"question"},
		},
	}, handlers.AskDocuments)

	return handlers
}
