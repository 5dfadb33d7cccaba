package ai

import "context"

// Provider defines the contract each AI provider implementation must satisfy.
type Provider interface {
	Name() ProviderName

	// SupportsTools indicates whether the provider supports tool/function calling.
	SupportsTools() bool
}

// ChatProvider extends Provider with actual LLM chat completion capabilities.
type ChatProvider interface {
	Provider

	// Chat sends a chat completion request with tool calling support.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
