// internal/providers/provider.go

// Package providers defines the interfaces for talking to the embedding and
// chat-completion backends. Implementations live in the openai and ollama
// sub-packages; callers depend only on these types.
package providers

import (
	"context"
	"time"
)

// Roles used in ChatMessage.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a chat conversation.
// It contains the role of the message sender (e.g., "user", "assistant") and the message content.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a single non-streamed completion request.
type ChatRequest struct {
	Model    string
	Messages []ChatMessage
}

// ChatResponse carries the assistant message and basic accounting for one completion.
type ChatResponse struct {
	Message          ChatMessage
	Model            string
	PromptTokens     int
	CompletionTokens int
	Duration         time.Duration
}

// ChatProvider produces a chat completion for a list of messages.
type ChatProvider interface {
	// Complete sends the messages and returns the assistant reply.
	Complete(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// Close cleans up any resources used by the provider.
	Close() error
}

// Embedder turns a batch of texts into vectors, one per text and in input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}
