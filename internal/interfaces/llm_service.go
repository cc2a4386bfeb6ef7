package interfaces

import (
	"context"
	"errors"
)

// ErrMissingCredential is returned when an operation requires a provider API
// key and none is configured. Callers treat this as a soft failure: no network
// call is attempted and no error dialog is shown to the user.
var ErrMissingCredential = errors.New("missing API credential")

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// CompletionRequest describes a single text completion call.
type CompletionRequest struct {
	Prompt            string
	SystemInstruction string
	Model             string // Empty uses the provider default
	MaxTokens         int
	Temperature       float32
}

// LLMService defines the interface for language model operations: embeddings,
// one-shot completions, and grounded chat. Implementations may route to
// different cloud providers based on the requested model string.
type LLMService interface {
	// Complete generates a single completion for the request prompt.
	Complete(ctx context.Context, req *CompletionRequest) (string, error)

	// Chat generates a completion response based on the conversation history.
	// The messages slice should contain the full conversation context including
	// system prompts and user messages.
	Chat(ctx context.Context, messages []Message, model string, temperature float32) (string, error)

	// Embed generates one embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates one embedding vector per input text. The returned
	// slice preserves input order and has exactly one vector per input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// HasCredential reports whether an API key is configured for the default
	// provider. Services short-circuit to their no-result path when false.
	HasCredential() bool

	// Close releases provider clients.
	Close() error
}
