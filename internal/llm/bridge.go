package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkognitroz/Virtual-Company/internal/logger"
)

// Provider identifies an LLM vendor
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenRouter Provider = "openrouter"
	ProviderGoogle     Provider = "google"
)

// ErrMissingAPIKey is reported when neither the caller nor the server
// configuration supplies a key for the selected provider.
var ErrMissingAPIKey = errors.New("Please configure an API key to use AI features.")

// Rule maps a model-name prefix to a provider
type Rule struct {
	Prefix   string
	Provider Provider
}

// DefaultRules returns the standard model-prefix dispatch table
func DefaultRules() []Rule {
	return []Rule{
		{Prefix: "gpt", Provider: ProviderOpenAI},
		{Prefix: "o1", Provider: ProviderOpenAI},
		{Prefix: "claude", Provider: ProviderAnthropic},
		{Prefix: "gemini", Provider: ProviderGoogle},
	}
}

// Outcome is the tagged result of a completion attempt. Err is nil on
// success. The bridge never propagates a Go error to its callers; every
// failure is carried here and rendered by Text.
type Outcome struct {
	Content    string
	Model      string
	TokensUsed int
	Err        error
}

// Failed reports whether the attempt failed
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Text returns the user-visible reply: the generated content on success,
// an explanatory message on failure.
func (o Outcome) Text() string {
	if o.Err == nil {
		return o.Content
	}
	return o.Err.Error()
}

// GenerateRequest is one bridge invocation
type GenerateRequest struct {
	Prompt       string
	Model        string
	SystemPrompt string
	// APIKey overrides the configured provider key for this call only
	APIKey string
}

// Keys holds the configured provider credentials
type Keys struct {
	OpenAI     string
	Anthropic  string
	OpenRouter string
	Google     string
}

// Bridge selects a provider for a model name and runs the completion.
// It is the completion capability the chat session handler depends on.
type Bridge struct {
	rules           []Rule
	defaultProvider Provider
	defaultModel    string
	keys            Keys
	factories       map[Provider]ClientFactory
}

// NewBridge creates a Bridge wired to the real vendor clients
func NewBridge(keys Keys, defaultModel string) *Bridge {
	if defaultModel == "" {
		defaultModel = "gpt-3.5-turbo"
	}

	return &Bridge{
		rules:           DefaultRules(),
		defaultProvider: ProviderOpenRouter,
		defaultModel:    defaultModel,
		keys:            keys,
		factories: map[Provider]ClientFactory{
			ProviderOpenAI:     NewOpenAIClient,
			ProviderAnthropic:  NewAnthropicClient,
			ProviderOpenRouter: NewOpenRouterClient,
			ProviderGoogle:     NewGoogleClient,
		},
	}
}

// ProviderFor returns the provider the given model name dispatches to
func (b *Bridge) ProviderFor(model string) Provider {
	for _, rule := range b.rules {
		if strings.HasPrefix(model, rule.Prefix) {
			return rule.Provider
		}
	}
	return b.defaultProvider
}

// DefaultModel returns the model used when a request names none
func (b *Bridge) DefaultModel() string {
	return b.defaultModel
}

func (b *Bridge) keyFor(provider Provider) string {
	switch provider {
	case ProviderOpenAI:
		return b.keys.OpenAI
	case ProviderAnthropic:
		return b.keys.Anthropic
	case ProviderGoogle:
		return b.keys.Google
	default:
		return b.keys.OpenRouter
	}
}

// Generate runs one completion. It never returns a Go error; provider
// failures and configuration gaps are folded into the Outcome so the
// caller's persistence and broadcast path stays error-free.
func (b *Bridge) Generate(ctx context.Context, req GenerateRequest) Outcome {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = b.defaultModel
	}

	provider := b.ProviderFor(model)

	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		key = b.keyFor(provider)
	}
	if key == "" {
		return Outcome{Model: model, Err: ErrMissingAPIKey}
	}

	factory := b.factories[provider]
	client, err := factory(key, model)
	if err != nil {
		logger.Error("LLM bridge: failed to create %s client: %v", provider, err)
		return Outcome{Model: model, Err: fmt.Errorf("Error calling %s API: %v", providerLabel(provider), err)}
	}

	resp, err := client.Complete(ctx, &CompletionRequest{
		Prompt:       req.Prompt,
		SystemPrompt: req.SystemPrompt,
	})
	if err != nil {
		logger.Error("LLM bridge: %s completion failed for model %s: %v", provider, model, err)
		return Outcome{Model: model, Err: fmt.Errorf("Error calling %s API: %v", providerLabel(provider), err)}
	}

	return Outcome{
		Content:    resp.Content,
		Model:      model,
		TokensUsed: resp.TokensUsed,
	}
}

func providerLabel(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderAnthropic:
		return "Anthropic"
	case ProviderGoogle:
		return "Google"
	default:
		return "OpenRouter"
	}
}
