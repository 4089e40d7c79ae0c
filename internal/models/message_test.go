// ABOUTME: Tests for chat message role validation
// ABOUTME: History accepts only user and assistant messages
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatMessage_Validate(t *testing.T) {
	tests := []struct {
		role    Role
		wantErr bool
	}{
		{RoleUser, false},
		{RoleAssistant, false},
		{RoleSystem, true},
		{Role("tool"), true},
		{Role(""), true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			err := ChatMessage{Role: tt.role, Content: "x"}.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateHistory(t *testing.T) {
	assert.NoError(t, ValidateHistory(nil))
	assert.NoError(t, ValidateHistory([]ChatMessage{
		{Role: RoleUser, Content: "q"},
		{Role: RoleAssistant, Content: "a"},
	}))

	err := ValidateHistory([]ChatMessage{
		{Role: RoleUser, Content: "q"},
		{Role: RoleSystem, Content: "override"},
	})
	assert.ErrorContains(t, err, "history[1]")
}
