package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_StartsWithSystemTurn(t *testing.T) {
	c := NewConversation("system prompt")
	require.Equal(t, 1, c.Len())
	assert.Equal(t, ConversationTurn{Role: RoleSystem, Content: "system prompt"}, c.Turns()[0])
}

func TestConversation_CommitAddsPairs(t *testing.T) {
	c := NewConversation("sys")
	for n := 1; n <= 3; n++ {
		c.Commit("instruction", "reply")
		assert.Equal(t, 1+2*n, c.Len())
	}

	turns := c.Turns()
	assert.Equal(t, RoleUser, turns[1].Role)
	assert.Equal(t, RoleAssistant, turns[2].Role)
}

func TestConversation_WithPendingDoesNotCommit(t *testing.T) {
	c := NewConversation("sys")
	c.Commit("first", "answer")

	pending := c.WithPending("second")
	require.Len(t, pending, 4)
	assert.Equal(t, ConversationTurn{Role: RoleUser, Content: "second"}, pending[3])
	assert.Equal(t, 3, c.Len())

	pending[0].Content = "changed"
	assert.Equal(t, "sys", c.Turns()[0].Content)
}

func TestConversation_NilIsEmpty(t *testing.T) {
	var c *Conversation
	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.Turns())
}
