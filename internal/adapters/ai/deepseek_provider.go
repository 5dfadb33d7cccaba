package ai

import (
	"context"
	"time"

	"stockpulse/pkg/errors"
)

const deepseekAPIURL = "https://api.deepseek.com/v1/chat/completions"

// Ensure DeepSeekProvider implements ChatProvider
var _ ChatProvider = (*DeepSeekProvider)(nil)

// DeepSeekProvider implements chat completions against the DeepSeek API,
// which is OpenAI wire compatible.
type DeepSeekProvider struct {
	apiKey      string
	timeout     time.Duration
	rateLimiter RateLimiter
}

// NewDeepSeekProvider creates a new DeepSeek provider instance.
func NewDeepSeekProvider(apiKey string, timeout time.Duration, limiter RateLimiter) *DeepSeekProvider {
	if limiter == nil {
		limiter = NewNoOpLimiter()
	}
	return &DeepSeekProvider{apiKey: apiKey, timeout: timeout, rateLimiter: limiter}
}

// Name returns provider name.
func (p *DeepSeekProvider) Name() ProviderName { return ProviderNameDeepSeek }

// SupportsTools indicates tool calling support.
func (p *DeepSeekProvider) SupportsTools() bool { return true }

// Chat sends a chat completion request to the DeepSeek API.
func (p *DeepSeekProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "deepseek API key not configured")
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{
			Provider: ProviderNameDeepSeek,
			Limit:    p.rateLimiter.Limit(),
			Err:      err,
		}
	}

	return doChatRequest(ctx, deepseekAPIURL, p.apiKey, p.timeout, ProviderNameDeepSeek, req)
}
