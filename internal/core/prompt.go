// ABOUTME: PromptBuilder assembles the chat messages sent to the generation model
// ABOUTME: System guidelines with document excerpts, a bounded history window, then the question
package core

import (
	"fmt"
	"strings"

	"github.com/harper/docqa/internal/models"
)

// MaxHistoryMessages bounds how much prior conversation is replayed to the model
const MaxHistoryMessages = 6

const systemGuidelines = `You are a helpful assistant that answers questions based on the provided document excerpts.

Guidelines:
- Answer questions using ONLY the information from the provided context
- If the context doesn't contain enough information, say so clearly
- Be concise but thorough
- When relevant, mention which document(s) the information comes from
- If asked about something not in the documents, politely explain you can only answer based on the uploaded documents`

const noDocumentsNote = "\n\nNote: No documents have been uploaded yet. Please ask the user to upload documents first."

const excerptSeparator = "\n\n---\n\n"

// BuildPrompt returns the system message, at most the last MaxHistoryMessages of history, and the question
func BuildPrompt(question string, sources []models.SourceChunk, history []models.ChatMessage) []models.ChatMessage {
	system := systemGuidelines
	if len(sources) > 0 {
		excerpts := make([]string, len(sources))
		for i, src := range sources {
			excerpts[i] = fmt.Sprintf("[Excerpt %d from '%s']:\n%s", i+1, src.DocumentName, src.Content)
		}
		system += "\n\n## Document Context:\n\n" + strings.Join(excerpts, excerptSeparator)
	} else {
		system += noDocumentsNote
	}

	if len(history) > MaxHistoryMessages {
		history = history[len(history)-MaxHistoryMessages:]
	}

	messages := make([]models.ChatMessage, 0, len(history)+2)
	messages = append(messages, models.ChatMessage{Role: models.RoleSystem, Content: system})
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: models.RoleUser, Content: question})
	return messages
}
