package llm

import "context"

// CompletionRequest represents a single-turn completion request
type CompletionRequest struct {
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// CompletionResponse represents a completion response
type CompletionResponse struct {
	Content    string `json:"content"`
	TokensUsed int    `json:"tokens_used"`
}

// Client is the interface for LLM vendor clients
type Client interface {
	// Complete sends a completion request and returns the response
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
	// GetModelName returns the model name
	GetModelName() string
}

// ClientFactory constructs a vendor client for one call, bound to an API
// key and a model
type ClientFactory func(apiKey, model string) (Client, error)

// Model represents an LLM model exposed by the catalogue endpoint
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Description string `json:"description,omitempty"`
}
