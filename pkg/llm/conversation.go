package llm

import "context"

// Conversation is an append-only multi-turn message log over a TextBackend.
// The system prompt is fixed for the conversation's lifetime and history
// only grows; it has no knowledge of content semantics.
type Conversation struct {
	backend      TextBackend
	systemPrompt string
	messages     []Message
}

// NewConversation creates a conversation with a fixed system prompt.
func NewConversation(backend TextBackend, systemPrompt string) *Conversation {
	return &Conversation{
		backend:      backend,
		systemPrompt: systemPrompt,
	}
}

// Send appends a user turn, calls the backend with the full accumulated
// history, appends the assistant reply, and returns it. On failure the
// pending user turn is dropped so the log keeps alternating turns.
func (c *Conversation) Send(ctx context.Context, userMessage string) (string, error) {
	c.messages = append(c.messages, Message{Role: RoleUser, Content: userMessage})

	reply, err := c.backend.Generate(ctx, c.systemPrompt, c.messages)
	if err != nil {
		c.messages = c.messages[:len(c.messages)-1]
		return "", err
	}

	c.messages = append(c.messages, Message{Role: RoleAssistant, Content: reply})
	return reply, nil
}

// TurnCount is the number of completed user/assistant exchanges.
func (c *Conversation) TurnCount() int {
	return len(c.messages) / 2
}

// SystemPrompt returns the conversation's fixed system prompt.
func (c *Conversation) SystemPrompt() string {
	return c.systemPrompt
}

// Messages returns a copy of the message log.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}
