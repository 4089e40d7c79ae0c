// ABOUTME: Conversation messages exchanged with the generation model
// ABOUTME: Covers caller-supplied history and the final chat response
package models

import "fmt"

// Role identifies the author of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single message in a conversation
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Validate checks that a history message has a user or assistant role
func (m ChatMessage) Validate() error {
	switch m.Role {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return fmt.Errorf("invalid history role %q: must be %q or %q", m.Role, RoleUser, RoleAssistant)
	}
}

// ValidateHistory validates every message in a conversation history
func ValidateHistory(history []ChatMessage) error {
	for i, msg := range history {
		if err := msg.Validate(); err != nil {
			return fmt.Errorf("history[%d]: %w", i, err)
		}
	}
	return nil
}

// ChatResponse is the result of a single-shot generation
type ChatResponse struct {
	Answer  string        `json:"answer"`
	Sources []SourceChunk `json:"sources"`
}
