// ABOUTME: Tests for prompt assembly
// ABOUTME: Covers the no-documents note, excerpt formatting and the history window
package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/harper/docqa/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt_NoSources(t *testing.T) {
	msgs := BuildPrompt("What is this?", nil, nil)
	require.Len(t, msgs, 2)

	assert.Equal(t, models.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "No documents have been uploaded yet")
	assert.NotContains(t, msgs[0].Content, "## Document Context:")
	assert.Equal(t, models.ChatMessage{Role: models.RoleUser, Content: "What is this?"}, msgs[1])
}

func TestBuildPrompt_WithSources(t *testing.T) {
	sources := []models.SourceChunk{
		{DocumentName: "a.txt", Content: "Alpha content\nline two"},
		{DocumentName: "b.pdf", Content: "Beta content"},
	}
	msgs := BuildPrompt("q", sources, nil)
	system := msgs[0].Content

	assert.NotContains(t, system, "No documents have been uploaded yet")
	assert.Contains(t, system, "## Document Context:")
	assert.Contains(t, system, "[Excerpt 1 from 'a.txt']:\nAlpha content\nline two")
	assert.Contains(t, system, "[Excerpt 2 from 'b.pdf']:\nBeta content")
	assert.Contains(t, system, "line two\n\n---\n\n[Excerpt 2")
	assert.True(t, strings.HasPrefix(system, "You are a helpful assistant"))
}

func TestBuildPrompt_HistoryWindow(t *testing.T) {
	var history []models.ChatMessage
	for i := 0; i < 9; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		history = append(history, models.ChatMessage{Role: role, Content: fmt.Sprintf("m%d", i)})
	}

	msgs := BuildPrompt("final?", nil, history)
	require.Len(t, msgs, 1+MaxHistoryMessages+1)

	assert.Equal(t, history[3:], msgs[1:7])
	assert.Equal(t, "final?", msgs[len(msgs)-1].Content)
	assert.Equal(t, models.RoleUser, msgs[len(msgs)-1].Role)
}

func TestBuildPrompt_ShortHistoryKept(t *testing.T) {
	history := []models.ChatMessage{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello"},
	}
	msgs := BuildPrompt("next", nil, history)
	require.Len(t, msgs, 4)
	assert.Equal(t, history, msgs[1:3])
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	sources := []models.SourceChunk{{DocumentName: "a", Content: "c"}}
	history := []models.ChatMessage{{Role: models.RoleUser, Content: "h"}}
	assert.Equal(t, BuildPrompt("q", sources, history), BuildPrompt("q", sources, history))
}
