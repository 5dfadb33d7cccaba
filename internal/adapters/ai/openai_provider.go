package ai

import (
	"context"
	"time"

	"stockpulse/pkg/errors"
)

const openaiAPIURL = "https://api.openai.com/v1/chat/completions"

// Ensure OpenAIProvider implements ChatProvider
var _ ChatProvider = (*OpenAIProvider)(nil)

// OpenAIProvider implements chat completions against the OpenAI API.
type OpenAIProvider struct {
	apiKey      string
	timeout     time.Duration
	rateLimiter RateLimiter
}

// NewOpenAIProvider creates a new OpenAI provider instance.
func NewOpenAIProvider(apiKey string, timeout time.Duration, limiter RateLimiter) *OpenAIProvider {
	if limiter == nil {
		limiter = NewNoOpLimiter()
	}
	return &OpenAIProvider{apiKey: apiKey, timeout: timeout, rateLimiter: limiter}
}

// Name returns provider name.
func (p *OpenAIProvider) Name() ProviderName { return ProviderNameOpenAI }

// SupportsTools indicates tool calling support.
func (p *OpenAIProvider) SupportsTools() bool { return true }

// Chat sends a chat completion request to the OpenAI API.
func (p *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "openai API key not configured")
	}

	// Wait for rate limiter
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{
			Provider: ProviderNameOpenAI,
			Limit:    p.rateLimiter.Limit(),
			Err:      err,
		}
	}

	return doChatRequest(ctx, openaiAPIURL, p.apiKey, p.timeout, ProviderNameOpenAI, req)
}
