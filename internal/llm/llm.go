// Package llm provides the model clients used for test generation.
// Two providers are supported, Gemini over its REST API and OpenAI via
// the official-style SDK. Both sit behind a small Client interface so
// the generator and the repair loop never know which one they talk to.
package llm

import (
	"context"
	"errors"
)

// ErrNoAPIKey is returned when the selected provider has no key
// configured.
var ErrNoAPIKey = errors.New("llm: no API key configured")

// ErrEmptyResponse is returned when the provider answered without any
// usable text.
var ErrEmptyResponse = errors.New("llm: provider returned no content")

// Role tags a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content string
}

// Client generates text from a system prompt and conversation history.
type Client interface {
	// ID identifies the provider, "gemini" or "openai".
	ID() string

	// Generate returns the model's reply to the given conversation.
	Generate(ctx context.Context, system string, messages []Message) (string, error)
}

// Conversation wraps a Client with chat history so follow-up turns,
// refinements and repairs, see the earlier exchange.
type Conversation struct {
	client  Client
	system  string
	history []Message
}

// NewConversation starts a conversation with a fixed system prompt.
func NewConversation(client Client, system string) *Conversation {
	return &Conversation{client: client, system: system}
}

// Send appends the user message, asks the model, and records the reply.
// On error the history is left untouched so the turn can be retried.
func (c *Conversation) Send(ctx context.Context, text string) (string, error) {
	messages := append(append([]Message{}, c.history...), Message{Role: RoleUser, Content: text})
	reply, err := c.client.Generate(ctx, c.system, messages)
	if err != nil {
		return "", err
	}
	c.history = append(messages, Message{Role: RoleAssistant, Content: reply})
	return reply, nil
}

// Reset clears the chat history, keeping the system prompt.
func (c *Conversation) Reset() {
	c.history = nil
}

// Len returns the number of recorded turns.
func (c *Conversation) Len() int {
	return len(c.history)
}
