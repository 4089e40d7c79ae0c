// ABOUTME: MCP tool handler implementations for the docqa server
// ABOUTME: Tool failures are reported as error results; responses are JSON text
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harper/docqa/internal/app"
	"github.com/harper/docqa/internal/logging"
	"github.com/harper/docqa/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	app *app.App
}

// NewHandlers creates handlers backed by a
func NewHandlers(a *app.App) *Handlers {
	return &Handlers{app: a}
}

// UploadDocument handles the upload_document tool
func (h *Handlers) UploadDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	filename := request.GetString("filename", "")
	content := request.GetString("content", "")

	var (
		doc *models.Document
		err error
	)
	switch {
	case path != "":
		doc, err = h.app.IngestFile(ctx, path)
	case filename != "":
		doc, err = h.app.IngestBytes(ctx, []byte(content), filename)
	default:
		return mcp.NewToolResultError("either path, or filename with content, is required"), nil
	}
	if err != nil {
		return h.failure(request, "upload failed", err), nil
	}

	return jsonResult(map[string]interface{}{
		"document": doc,
		"message":  fmt.Sprintf("Ingested %s into %d chunks", doc.Filename, doc.ChunkCount),
	})
}

// ListDocuments handles the list_documents tool
func (h *Handlers) ListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := h.app.Pipeline.List(ctx)
	if err != nil {
		return h.failure(request, "failed to list documents", err), nil
	}

	return jsonResult(map[string]interface{}{
		"documents": docs,
		"total":     len(docs),
	})
}

// GetDocument handles the get_document tool
func (h *Handlers) GetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError("document_id argument is required and must be a string"), nil
	}

	doc, err := h.app.Pipeline.Get(ctx, id)
	if errors.Is(err, models.ErrDocumentNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("document %s not found", id)), nil
	}
	if err != nil {
		return h.failure(request, "failed to get document", err), nil
	}

	return jsonResult(map[string]interface{}{
		"document":    doc,
		"uploaded_at": doc.UploadedAt.Format(time.RFC3339),
	})
}

// DeleteDocument handles the delete_document tool
func (h *Handlers) DeleteDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError("document_id argument is required and must be a string"), nil
	}

	deleted, err := h.app.Pipeline.Delete(ctx, id)
	if err != nil {
		return h.failure(request, "delete failed", err), nil
	}
	if !deleted {
		return mcp.NewToolResultError(fmt.Sprintf("document %s not found", id)), nil
	}

	return jsonResult(map[string]interface{}{
		"success":     true,
		"document_id": id,
	})
}

// SearchDocuments handles the search_documents tool
func (h *Handlers) SearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	topK := request.GetInt("top_k", 0)
	documentIDs := stringArray(request, "document_ids")

	sources, err := h.app.Retrieval.Search(ctx, query, topK, documentIDs)
	if err != nil {
		return h.failure(request, "search failed", err), nil
	}

	return jsonResult(map[string]interface{}{
		"query":   query,
		"results": sources,
	})
}

// AskDocuments handles the ask_documents tool
func (h *Handlers) AskDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}

	history, err := historyArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := h.app.Ask(ctx, question, request.GetInt("top_k", 0), stringArray(request, "document_ids"), history)
	if err != nil {
		return h.failure(request, "ask failed", err), nil
	}

	return jsonResult(resp)
}

// failure logs a tool error under a request id and converts it into an error result
func (h *Handlers) failure(request mcp.CallToolRequest, msg string, err error) *mcp.CallToolResult {
	requestID := uuid.New().String()[:8]
	if models.IsClientError(err) || errors.Is(err, app.ErrUploadTooLarge) {
		logging.Debug(msg, "tool", request.Params.Name, "request_id", requestID, "err", err)
	} else {
		logging.Error(msg, "tool", request.Params.Name, "request_id", requestID, "err", err)
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v (request %s)", msg, err, requestID))
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// stringArray reads an optional array of strings, ignoring non-string items
func stringArray(request mcp.CallToolRequest, key string) []string {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		if str, ok := item.(string); ok && str != "" {
			result = append(result, str)
		}
	}
	return result
}

// historyArg decodes the optional history array into chat messages
func historyArg(request mcp.CallToolRequest) ([]models.ChatMessage, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil, nil
	}
	raw, ok := args["history"]
	if !ok || raw == nil {
		return nil, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	var history []models.ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("history must be an array of {role, content} objects: %w", err)
	}
	if err := models.ValidateHistory(history); err != nil {
		return nil, err
	}
	return history, nil
}
