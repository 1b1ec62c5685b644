package models

// Role represents the author of a conversation turn
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one role-tagged message exchanged with the search model
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the append-only history replayed on every search call.
// The first turn is always the system turn; turns are only ever added in
// user+assistant pairs through Commit.
type Conversation struct {
	turns []ConversationTurn
}

// NewConversation starts a conversation with its system turn
func NewConversation(systemPrompt string) *Conversation {
	return &Conversation{
		turns: []ConversationTurn{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// Len returns the number of turns
func (c *Conversation) Len() int {
	if c == nil {
		return 0
	}
	return len(c.turns)
}

// Turns returns a copy of the history
func (c *Conversation) Turns() []ConversationTurn {
	if c == nil {
		return nil
	}
	out := make([]ConversationTurn, len(c.turns))
	copy(out, c.turns)
	return out
}

// WithPending returns a copy of the history followed by a not yet committed user turn
func (c *Conversation) WithPending(instruction string) []ConversationTurn {
	out := make([]ConversationTurn, 0, c.Len()+1)
	out = append(out, c.Turns()...)
	return append(out, ConversationTurn{Role: RoleUser, Content: instruction})
}

// Commit appends a completed exchange
func (c *Conversation) Commit(instruction, reply string) {
	c.turns = append(c.turns,
		ConversationTurn{Role: RoleUser, Content: instruction},
		ConversationTurn{Role: RoleAssistant, Content: reply},
	)
}
